// Package ledger holds the ledger state the transaction engine applies to.
package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/storage/compression"
	"github.com/LeJamon/goFixedPriceSale/internal/storage/database"
	"github.com/LeJamon/goFixedPriceSale/internal/storage/database/memory"
	lru "github.com/hashicorp/golang-lru/v2"
)

// stateKeyPrefix namespaces entry blobs inside the key-value store.
var stateKeyPrefix = []byte("s/")

// StateConfig configures a State.
type StateConfig struct {
	// CacheSize is the number of decoded entries kept in memory. Defaults to 4096.
	CacheSize int

	// Compression names the compressor applied to stored blobs. Defaults to "lz4".
	Compression string
}

// DefaultStateConfig returns the default state configuration
func DefaultStateConfig() StateConfig {
	return StateConfig{
		CacheSize:   4096,
		Compression: "lz4",
	}
}

// State is the set of ledger entries, keyed by 32-byte address. Entries
// are stored compressed in a database.DB with an LRU cache of decoded
// blobs in front. State implements tx.LedgerView and tx.Committer, so the
// engine commits every transaction as a single batch.
type State struct {
	mu         sync.RWMutex
	db         database.DB
	compressor compression.Compressor
	cache      *lru.Cache[[32]byte, []byte]
}

var (
	_ tx.LedgerView = (*State)(nil)
	_ tx.Committer  = (*State)(nil)
)

// NewState returns a State over db.
func NewState(db database.DB, cfg StateConfig) (*State, error) {
	def := DefaultStateConfig()
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = def.CacheSize
	}
	if cfg.Compression == "" {
		cfg.Compression = def.Compression
	}

	c, err := compression.Get(cfg.Compression)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[[32]byte, []byte](cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &State{db: db, compressor: c, cache: cache}, nil
}

// NewMemoryState returns an empty State backed by an in-memory database.
func NewMemoryState() *State {
	s, err := NewState(memory.New(), DefaultStateConfig())
	if err != nil {
		panic(err)
	}
	return s
}

func storageKey(key [32]byte) []byte {
	return append(bytes.Clone(stateKeyPrefix), key[:]...)
}

// read must be called with mu held.
func (s *State) read(key [32]byte) ([]byte, error) {
	if data, ok := s.cache.Get(key); ok {
		return data, nil
	}

	raw, err := s.db.Read(context.Background(), storageKey(key))
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	data, err := s.compressor.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("entry %x: %w", key, err)
	}
	s.cache.Add(key, data)
	return data, nil
}

// Read returns a copy of the entry at k, or nil when it does not exist.
func (s *State) Read(k keylet.Keylet) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.read(k.Key)
	if data == nil || err != nil {
		return nil, err
	}
	return bytes.Clone(data), nil
}

func (s *State) Exists(k keylet.Keylet) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.read(k.Key)
	return data != nil, err
}

func (s *State) Insert(k keylet.Keylet, data []byte) error {
	return s.Commit([]tx.Change{{Key: k.Key, Data: data, Insert: true}})
}

func (s *State) Update(k keylet.Keylet, data []byte) error {
	if data == nil {
		return errors.New("ledger: update with nil data")
	}
	return s.Commit([]tx.Change{{Key: k.Key, Data: data}})
}

func (s *State) Erase(k keylet.Keylet) error {
	return s.Commit([]tx.Change{{Key: k.Key}})
}

// Commit writes changes in one database batch. Either every change is
// written or none is: an insert over an existing entry, or an update or
// erase of a missing one, rejects the whole set.
func (s *State) Commit(changes []tx.Change) error {
	if len(changes) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ops := make([]database.BatchOperation, 0, len(changes))
	for _, ch := range changes {
		current, err := s.read(ch.Key)
		if err != nil {
			return err
		}
		switch {
		case ch.Insert && current != nil:
			return fmt.Errorf("%w: %x", tx.ErrEntryExists, ch.Key)
		case !ch.Insert && current == nil:
			return fmt.Errorf("%w: %x", tx.ErrEntryNotFound, ch.Key)
		}

		if ch.Data == nil {
			ops = append(ops, database.BatchOperation{Type: database.BatchDelete, Key: storageKey(ch.Key)})
			continue
		}
		packed, err := s.compressor.Compress(ch.Data)
		if err != nil {
			return err
		}
		ops = append(ops, database.BatchOperation{Type: database.BatchPut, Key: storageKey(ch.Key), Value: packed})
	}

	if err := s.db.Batch(context.Background(), ops); err != nil {
		// The cache may hold entries read above; they still match the store.
		return fmt.Errorf("%w: %v", database.ErrBatchOperationFailed, err)
	}

	for _, ch := range changes {
		if ch.Data == nil {
			s.cache.Remove(ch.Key)
		} else {
			s.cache.Add(ch.Key, bytes.Clone(ch.Data))
		}
	}
	return nil
}

// ForEach calls fn for every entry in key order until fn returns false.
// fn sees a snapshot and may call back into the State.
func (s *State) ForEach(fn func(key [32]byte, data []byte) bool) error {
	type item struct {
		key  [32]byte
		data []byte
	}

	s.mu.RLock()
	it, err := s.db.Iterator(context.Background(), stateKeyPrefix, database.PrefixEnd(stateKeyPrefix))
	if err != nil {
		s.mu.RUnlock()
		return err
	}
	var items []item
	for it.Next() {
		raw := it.Key()[len(stateKeyPrefix):]
		if len(raw) != 32 {
			continue
		}
		data, err := s.compressor.Decompress(it.Value())
		if err != nil {
			it.Close()
			s.mu.RUnlock()
			return fmt.Errorf("entry %x: %w", raw, err)
		}
		items = append(items, item{key: [32]byte(raw), data: data})
	}
	err = it.Error()
	it.Close()
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	for _, e := range items {
		if !fn(e.key, e.data) {
			return nil
		}
	}
	return nil
}

// Len returns the number of entries.
func (s *State) Len() (int, error) {
	n := 0
	err := s.ForEach(func([32]byte, []byte) bool {
		n++
		return true
	})
	return n, err
}

// Close closes the underlying database.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Purge()
	return s.db.Close()
}
