package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "CXXCORPUS"

// Load reads the configuration for a project rooted at rootDir. A non-empty
// configFile replaces the .cxxcorpus/config.yaml lookup and must exist.
func Load(rootDir, configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(rootDir, ".cxxcorpus"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	path, err := ExpandHome(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}
	cfg.Storage.DBPath = path

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so that AutomaticEnv sees it
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("storage.db_path", d.Storage.DBPath)

	v.SetDefault("index.workers", d.Index.Workers)
	v.SetDefault("index.batch_size", d.Index.BatchSize)
	v.SetDefault("index.include", d.Index.Include)
	v.SetDefault("index.exclude", d.Index.Exclude)
	v.SetDefault("index.respect_gitignore", d.Index.RespectGitignore)
	v.SetDefault("index.max_file_size", d.Index.MaxFileSize)

	v.SetDefault("cache.overload_entries", d.Cache.OverloadEntries)
	v.SetDefault("cache.search_entries", d.Cache.SearchEntries)
	v.SetDefault("cache.search_ttl", d.Cache.SearchTTL)

	v.SetDefault("log.verbose", d.Log.Verbose)
}

// ExpandHome replaces a leading "~/" with the user's home directory
func ExpandHome(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok && path != "~" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, rest), nil
}
