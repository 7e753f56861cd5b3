package relationaldb

import (
	"fmt"
	"net/url"
	"time"
)

// Config contains database configuration settings
type Config struct {
	// Driver is "sqlite" or "postgres".
	Driver           string `mapstructure:"driver"`
	ConnectionString string `mapstructure:"connection_string"`

	// Database is the file path for sqlite and the database name for postgres.
	Database string `mapstructure:"database"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`

	// Connection pool settings
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`

	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// NewConfig creates a new Config with sensible defaults
func NewConfig() *Config {
	return &Config{
		Driver:          "sqlite",
		Database:        "history.db",
		Host:            "localhost",
		Port:            5432,
		SSLMode:         "prefer",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		DefaultTimeout:  10 * time.Second,
	}
}

// SQLiteConfig returns the configuration for a sqlite file at path
func SQLiteConfig(path string) *Config {
	c := NewConfig()
	c.Driver = "sqlite"
	c.Database = path
	c.MaxOpenConns = 1
	c.MaxIdleConns = 1
	return c
}

// Validate checks the configuration and normalizes the driver name
func (c *Config) Validate() error {
	switch c.Driver {
	case "postgres", "postgresql":
		c.Driver = "postgres"
	case "sqlite", "sqlite3":
		c.Driver = "sqlite"
	default:
		return fmt.Errorf("%w: %s", ErrInvalidDriver, c.Driver)
	}

	if c.ConnectionString == "" {
		if c.Database == "" {
			return ErrMissingDatabase
		}
		if c.Driver == "postgres" {
			if c.Host == "" {
				return ErrMissingHost
			}
			if c.Port <= 0 || c.Port > 65535 {
				return ErrInvalidPort
			}
			if c.Username == "" {
				return ErrMissingUsername
			}
		}
	}

	if c.MaxOpenConns < 0 {
		return ErrInvalidMaxOpenConns
	}
	if c.DefaultTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// BuildConnectionString builds a connection string from the config
func (c *Config) BuildConnectionString() (string, error) {
	if c.ConnectionString != "" {
		return c.ConnectionString, nil
	}

	switch c.Driver {
	case "postgres":
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.Username, c.Password),
			Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
			Path:   "/" + c.Database,
		}
		if c.Password == "" {
			u.User = url.User(c.Username)
		}
		params := url.Values{}
		params.Set("sslmode", c.SSLMode)
		params.Set("application_name", "fpsaled")
		u.RawQuery = params.Encode()
		return u.String(), nil
	case "sqlite":
		params := url.Values{}
		params.Add("_pragma", "busy_timeout(5000)")
		params.Add("_pragma", "journal_mode(WAL)")
		return c.Database + "?" + params.Encode(), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidDriver, c.Driver)
	}
}

// String returns the configuration without the password
func (c *Config) String() string {
	return fmt.Sprintf("Config{Driver: %s, Host: %s, Port: %d, Database: %s, Username: %s}",
		c.Driver, c.Host, c.Port, c.Database, c.Username)
}
