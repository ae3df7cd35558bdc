// Package config loads cxxcorpus settings.
//
// Priority, highest first: CXXCORPUS_* environment variables, the config
// file (.cxxcorpus/config.yaml under the project root, or an explicit path),
// then the defaults below. Nested keys map to variables with "." replaced by
// "_", e.g. CXXCORPUS_INDEX_WORKERS.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dshills/cxxcorpus/internal/discovery"
	"github.com/dshills/cxxcorpus/internal/storage"
)

// DefaultDBPath is expanded against the home directory at load time
const DefaultDBPath = "~/.cxxcorpus/corpus.db"

// Config is the complete cxxcorpus configuration
type Config struct {
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Index   IndexConfig   `yaml:"index" mapstructure:"index"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StorageConfig locates the database
type StorageConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"`
}

// IndexConfig controls discovery and persistence
type IndexConfig struct {
	Workers          int      `yaml:"workers" mapstructure:"workers"`
	BatchSize        int      `yaml:"batch_size" mapstructure:"batch_size"` // entities per transaction
	Include          []string `yaml:"include" mapstructure:"include"`
	Exclude          []string `yaml:"exclude" mapstructure:"exclude"`
	RespectGitignore bool     `yaml:"respect_gitignore" mapstructure:"respect_gitignore"`
	MaxFileSize      int64    `yaml:"max_file_size" mapstructure:"max_file_size"` // bytes
}

// CacheConfig sizes the in-memory caches
type CacheConfig struct {
	OverloadEntries int           `yaml:"overload_entries" mapstructure:"overload_entries"`
	SearchEntries   int           `yaml:"search_entries" mapstructure:"search_entries"`
	SearchTTL       time.Duration `yaml:"search_ttl" mapstructure:"search_ttl"`
}

// LogConfig controls stderr logging
type LogConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Storage: StorageConfig{DBPath: DefaultDBPath},
		Index: IndexConfig{
			Workers:          runtime.NumCPU(),
			BatchSize:        discovery.DefaultBatchSize,
			Include:          append([]string(nil), discovery.DefaultInclude...),
			Exclude:          []string{},
			RespectGitignore: true,
			MaxFileSize:      discovery.DefaultMaxFileSize,
		},
		Cache: CacheConfig{
			OverloadEntries: 512,
			SearchEntries:   1000,
			SearchTTL:       5 * time.Minute,
		},
	}
}

// Discovery converts the index section into an indexing run configuration
func (c *Config) Discovery() *discovery.Config {
	return &discovery.Config{
		Workers:          c.Index.Workers,
		BatchSize:        c.Index.BatchSize,
		Include:          c.Index.Include,
		Exclude:          c.Index.Exclude,
		RespectGitignore: c.Index.RespectGitignore,
		MaxFileSize:      c.Index.MaxFileSize,
		Verbose:          c.Log.Verbose,
	}
}

// OpenStorage opens the configured database, creating its directory first
func (c *Config) OpenStorage() (*storage.SQLiteStorage, error) {
	dbPath, err := ExpandHome(c.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}
