package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/LeJamon/goFixedPriceSale/internal/storage/compression"
)

var (
	ErrInvalidBackend     = errors.New("invalid ledger backend")
	ErrInvalidCompression = errors.New("invalid compression")
	ErrMissingPath        = errors.New("path is required")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("invalid log format")
	ErrInvalidWorkers     = errors.New("workers must be >= 0")
)

// Backends lists the ledger backends a config may name
var Backends = []string{"memory", "pebble", "leveldb", "bbolt"}

// ValidateConfig performs validation on the complete configuration
func ValidateConfig(config *Config) error {
	if err := validateLedger(&config.Ledger); err != nil {
		return fmt.Errorf("ledger config validation failed: %w", err)
	}

	if config.Engine.Workers < 0 {
		return fmt.Errorf("engine config validation failed: %w", ErrInvalidWorkers)
	}

	if config.History.Enabled {
		if err := config.RelationalConfig().Validate(); err != nil {
			return fmt.Errorf("history config validation failed: %w", err)
		}
	}

	if err := validateLog(&config.Log); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}
	return nil
}

func validateLedger(l *LedgerConfig) error {
	l.Backend = strings.ToLower(l.Backend)
	if !slices.Contains(Backends, l.Backend) {
		return fmt.Errorf("%w: %q (supported: %s)", ErrInvalidBackend, l.Backend, strings.Join(Backends, ", "))
	}
	if l.Backend != "memory" && l.Path == "" {
		return fmt.Errorf("ledger.%w", ErrMissingPath)
	}
	if !slices.Contains(compression.Available(), l.Compression) {
		return fmt.Errorf("%w: %q", ErrInvalidCompression, l.Compression)
	}
	return nil
}

func validateLog(l *LogConfig) error {
	if _, err := ParseLevel(l.Level); err != nil {
		return err
	}
	switch strings.ToLower(l.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, l.Format)
	}
	return nil
}

// ParseLevel maps a level name to its slog level
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s)
	}
	return level, nil
}
