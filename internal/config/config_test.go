package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "pebble", config.Ledger.Backend)
	assert.Equal(t, "lz4", config.Ledger.Compression)
	assert.Equal(t, filepath.Join("data", "ledger"), config.LedgerPath())
	assert.True(t, config.History.Enabled)
	assert.Equal(t, 10*time.Second, config.History.Timeout)
	assert.Equal(t, "info", config.Log.Level)
	assert.Empty(t, config.GetConfigPath())
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := writeFile(t, dir, "fpsaled.toml", `
data_dir = "/var/lib/fpsaled"
genesis_file = "genesis.json"

[ledger]
backend = "LevelDB"
path = "state"
cache_size = 128

[engine]
skip_signature_verification = true
workers = 4

[history]
driver = "sqlite"
database = "tx.db"
timeout = "3s"

[log]
level = "debug"
format = "text"
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, path, config.GetConfigPath())
	assert.Equal(t, "leveldb", config.Ledger.Backend)
	assert.Equal(t, "/var/lib/fpsaled/state", config.LedgerPath())
	assert.Equal(t, 128, config.StateConfig().CacheSize)
	assert.True(t, config.Engine.SkipSignatureVerification)
	assert.Equal(t, 4, config.Engine.Workers)
	assert.Equal(t, 3*time.Second, config.History.Timeout)

	rc := config.RelationalConfig()
	assert.Equal(t, "/var/lib/fpsaled/tx.db", rc.Database)
	assert.Equal(t, 1, rc.MaxOpenConns)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, ".env", "FPSALED_LOG_LEVEL=warn\nFPSALED_LEDGER_BACKEND=leveldb\n")
	t.Setenv("FPSALED_LEDGER_BACKEND", "memory")
	t.Cleanup(func() { os.Unsetenv("FPSALED_LOG_LEVEL") })

	config, err := LoadConfig("")
	require.NoError(t, err)

	// The real environment wins over .env
	assert.Equal(t, "memory", config.Ledger.Backend)
	assert.Equal(t, "warn", config.Log.Level)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Ledger:  LedgerConfig{Backend: "memory", Compression: "lz4"},
			History: HistoryConfig{Enabled: true, Driver: "sqlite", Database: "h.db", Timeout: time.Second},
			Log:     LogConfig{Level: "info", Format: "json"},
		}
	}
	require.NoError(t, ValidateConfig(valid()))

	tests := []struct {
		name   string
		mutate func(*Config)
		err    error
	}{
		{"backend", func(c *Config) { c.Ledger.Backend = "bolt" }, ErrInvalidBackend},
		{"path", func(c *Config) { c.Ledger.Backend = "pebble" }, ErrMissingPath},
		{"compression", func(c *Config) { c.Ledger.Compression = "zstd" }, ErrInvalidCompression},
		{"workers", func(c *Config) { c.Engine.Workers = -1 }, ErrInvalidWorkers},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, ErrInvalidLogLevel},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, ErrInvalidLogFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			require.ErrorIs(t, ValidateConfig(c), tt.err)
		})
	}

	c := valid()
	c.History.Driver = "mysql"
	require.Error(t, ValidateConfig(c))
	c.History.Enabled = false
	require.NoError(t, ValidateConfig(c))
}
