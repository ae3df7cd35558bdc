package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/cxxcorpus/internal/discovery"
)

var (
	// ErrInvalidIndex indicates invalid worker, batch or size settings
	ErrInvalidIndex = errors.New("invalid index settings")

	// ErrInvalidPattern indicates a glob pattern that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrInvalidCache indicates invalid cache settings
	ErrInvalidCache = errors.New("invalid cache settings")

	// ErrEmptyDBPath indicates a missing database path
	ErrEmptyDBPath = errors.New("empty database path")
)

// Validate checks every section and reports all problems at once
func Validate(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.Storage.DBPath) == "" {
		errs = append(errs, ErrEmptyDBPath)
	}

	idx := cfg.Index
	if idx.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidIndex, idx.Workers))
	}
	if idx.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: batch_size must be positive, got %d", ErrInvalidIndex, idx.BatchSize))
	}
	if idx.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("%w: max_file_size must not be negative, got %d", ErrInvalidIndex, idx.MaxFileSize))
	}
	if err := discovery.ValidatePatterns(idx.Include); err != nil {
		errs = append(errs, fmt.Errorf("%w: include: %v", ErrInvalidPattern, err))
	}
	if err := discovery.ValidatePatterns(idx.Exclude); err != nil {
		errs = append(errs, fmt.Errorf("%w: exclude: %v", ErrInvalidPattern, err))
	}

	c := cfg.Cache
	if c.OverloadEntries <= 0 {
		errs = append(errs, fmt.Errorf("%w: overload_entries must be positive, got %d", ErrInvalidCache, c.OverloadEntries))
	}
	if c.SearchEntries <= 0 {
		errs = append(errs, fmt.Errorf("%w: search_entries must be positive, got %d", ErrInvalidCache, c.SearchEntries))
	}
	if c.SearchTTL <= 0 {
		errs = append(errs, fmt.Errorf("%w: search_ttl must be positive, got %v", ErrInvalidCache, c.SearchTTL))
	}

	return errors.Join(errs...)
}
