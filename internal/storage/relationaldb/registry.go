package relationaldb

import (
	"context"
	"fmt"
	"sync"
)

// Factory opens a repository for a validated configuration.
type Factory func(ctx context.Context, cfg *Config) (TxRepository, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a driver available to Open.
func Register(driver string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[driver] = f
}

// Open validates cfg and opens the repository of its driver. The driver
// package must be linked in, usually through a blank import.
func Open(ctx context.Context, cfg *Config) (TxRepository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, NewConfigurationError("open", "invalid configuration", err)
	}

	mu.RLock()
	f, ok := factories[cfg.Driver]
	mu.RUnlock()
	if !ok {
		return nil, NewConfigurationError("open", fmt.Sprintf("driver %q is not linked", cfg.Driver), ErrInvalidDriver)
	}
	return f(ctx, cfg)
}
