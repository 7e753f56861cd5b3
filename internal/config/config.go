package config

import (
	"path/filepath"
	"time"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger"
	"github.com/LeJamon/goFixedPriceSale/internal/storage/relationaldb"
)

// Config represents the complete fpsaled configuration
type Config struct {
	// DataDir is the base directory for relative storage paths
	DataDir string `toml:"data_dir" mapstructure:"data_dir"`

	// GenesisFile seeds an empty ledger (JSON format). Optional.
	GenesisFile string `toml:"genesis_file" mapstructure:"genesis_file"`

	Ledger  LedgerConfig  `toml:"ledger" mapstructure:"ledger"`
	Engine  EngineConfig  `toml:"engine" mapstructure:"engine"`
	History HistoryConfig `toml:"history" mapstructure:"history"`
	Log     LogConfig     `toml:"log" mapstructure:"log"`

	configPath string `toml:"-" mapstructure:"-"`
}

// LedgerConfig selects the key-value store holding the ledger state
type LedgerConfig struct {
	// Backend is one of memory, pebble, leveldb or bbolt
	Backend     string `toml:"backend" mapstructure:"backend"`
	Path        string `toml:"path" mapstructure:"path"`
	CacheSize   int    `toml:"cache_size" mapstructure:"cache_size"`
	Compression string `toml:"compression" mapstructure:"compression"`
}

// EngineConfig configures transaction processing
type EngineConfig struct {
	SkipSignatureVerification bool `toml:"skip_signature_verification" mapstructure:"skip_signature_verification"`

	// Workers bounds parallel signers in a batch; 0 means GOMAXPROCS
	Workers int `toml:"workers" mapstructure:"workers"`
}

// HistoryConfig configures the transaction history database
type HistoryConfig struct {
	Enabled          bool          `toml:"enabled" mapstructure:"enabled"`
	Driver           string        `toml:"driver" mapstructure:"driver"`
	Database         string        `toml:"database" mapstructure:"database"`
	ConnectionString string        `toml:"connection_string" mapstructure:"connection_string"`
	Host             string        `toml:"host" mapstructure:"host"`
	Port             int           `toml:"port" mapstructure:"port"`
	Username         string        `toml:"username" mapstructure:"username"`
	Password         string        `toml:"password" mapstructure:"password"`
	SSLMode          string        `toml:"ssl_mode" mapstructure:"ssl_mode"`
	MaxOpenConns     int           `toml:"max_open_conns" mapstructure:"max_open_conns"`
	Timeout          time.Duration `toml:"timeout" mapstructure:"timeout"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`

	// File enables rotation through lumberjack; empty logs to stderr
	File       string `toml:"file" mapstructure:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

// GetConfigPath returns the path of the loaded configuration file, if any
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// ResolvePath makes p relative to DataDir unless it is absolute.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// LedgerPath returns the resolved ledger store path
func (c *Config) LedgerPath() string {
	return c.ResolvePath(c.Ledger.Path)
}

// StateConfig returns the ledger.State configuration
func (c *Config) StateConfig() ledger.StateConfig {
	return ledger.StateConfig{
		CacheSize:   c.Ledger.CacheSize,
		Compression: c.Ledger.Compression,
	}
}

// RelationalConfig converts the history section for relationaldb.Open
func (c *Config) RelationalConfig() *relationaldb.Config {
	rc := relationaldb.NewConfig()
	rc.Driver = c.History.Driver
	rc.ConnectionString = c.History.ConnectionString
	rc.Host = c.History.Host
	rc.Port = c.History.Port
	rc.Username = c.History.Username
	rc.Password = c.History.Password
	rc.SSLMode = c.History.SSLMode
	rc.MaxOpenConns = c.History.MaxOpenConns
	rc.DefaultTimeout = c.History.Timeout

	rc.Database = c.History.Database
	if rc.Driver == "sqlite" || rc.Driver == "sqlite3" {
		rc.Database = c.ResolvePath(c.History.Database)
		rc.MaxOpenConns = 1
		rc.MaxIdleConns = 1
	}
	return rc
}
