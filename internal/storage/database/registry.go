package database

import (
	"fmt"
	"sort"
	"sync"
)

// Opener opens a database stored under path.
type Opener func(path string) (DB, error)

var (
	mu      sync.RWMutex
	openers = make(map[string]Opener)
)

// Register makes a backend available by name. Backends register themselves
// from their package init.
func Register(name string, open Opener) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := openers[name]; dup {
		panic(fmt.Sprintf("database: backend %q registered twice", name))
	}
	openers[name] = open
}

// Open opens the named backend at path.
func Open(name, path string) (DB, error) {
	mu.RLock()
	open, ok := openers[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
	return open(path)
}

// Backends returns the registered backend names.
func Backends() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(openers))
	for name := range openers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
