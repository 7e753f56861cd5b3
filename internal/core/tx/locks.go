package tx

import (
	"context"
	"sync"
)

type lockState struct {
	writer  bool
	readers int
}

// AccountLocks serializes transactions over the addresses they declare.
// Writable addresses are held exclusively and read-only ones are shared.
// A transaction takes all of its locks at once or none, so two
// transactions never wait on each other in a cycle.
type AccountLocks struct {
	mu      sync.Mutex
	held    map[[32]byte]*lockState
	changed chan struct{}
}

// NewAccountLocks creates an empty lock table.
func NewAccountLocks() *AccountLocks {
	return &AccountLocks{
		held:    make(map[[32]byte]*lockState),
		changed: make(chan struct{}),
	}
}

// Acquire blocks until every declared address can be locked, or ctx is
// done. The returned function releases the locks.
func (l *AccountLocks) Acquire(ctx context.Context, metas []AccountMeta) (func(), error) {
	want := dedupe(metas)

	for {
		l.mu.Lock()
		if l.available(want) {
			l.take(want)
			l.mu.Unlock()

			var once sync.Once
			return func() { once.Do(func() { l.release(want) }) }, nil
		}
		wait := l.changed
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-wait:
		}
	}
}

// Held returns the number of addresses currently locked.
func (l *AccountLocks) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}

func (l *AccountLocks) available(want map[[32]byte]bool) bool {
	for key, writable := range want {
		s, ok := l.held[key]
		if !ok {
			continue
		}
		if s.writer || (writable && s.readers > 0) {
			return false
		}
	}
	return true
}

func (l *AccountLocks) take(want map[[32]byte]bool) {
	for key, writable := range want {
		s, ok := l.held[key]
		if !ok {
			s = &lockState{}
			l.held[key] = s
		}
		if writable {
			s.writer = true
		} else {
			s.readers++
		}
	}
}

func (l *AccountLocks) release(want map[[32]byte]bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, writable := range want {
		s := l.held[key]
		if s == nil {
			continue
		}
		if writable {
			s.writer = false
		} else {
			s.readers--
		}
		if !s.writer && s.readers == 0 {
			delete(l.held, key)
		}
	}

	// Wake every waiter; each re-checks its own addresses.
	close(l.changed)
	l.changed = make(chan struct{})
}

func dedupe(metas []AccountMeta) map[[32]byte]bool {
	out := make(map[[32]byte]bool, len(metas))
	for _, m := range metas {
		out[m.Key] = out[m.Key] || m.Writable
	}
	return out
}
