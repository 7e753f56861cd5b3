package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets every key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")
	v.SetDefault("genesis_file", "")

	// Ledger state
	v.SetDefault("ledger.backend", "pebble")
	v.SetDefault("ledger.path", "ledger")
	v.SetDefault("ledger.cache_size", 4096)
	v.SetDefault("ledger.compression", "lz4")

	// Engine
	v.SetDefault("engine.skip_signature_verification", false)
	v.SetDefault("engine.workers", 0) // 0 means GOMAXPROCS

	// History
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.driver", "sqlite")
	v.SetDefault("history.database", "history.db")
	v.SetDefault("history.connection_string", "")
	v.SetDefault("history.host", "localhost")
	v.SetDefault("history.port", 5432)
	v.SetDefault("history.username", "")
	v.SetDefault("history.password", "")
	v.SetDefault("history.ssl_mode", "prefer")
	v.SetDefault("history.max_open_conns", 10)
	v.SetDefault("history.timeout", 10*time.Second)

	// Logging
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)
}
