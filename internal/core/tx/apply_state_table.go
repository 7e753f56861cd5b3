package tx

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
)

// Access errors raised when a transaction touches an address it did not
// declare. They indicate a bug in the transaction type and map to tefINTERNAL.
var (
	ErrUndeclaredAccount = errors.New("account was not declared by the transaction")
	ErrReadonlyAccount   = errors.New("account was declared read-only")
	ErrEntryExists       = errors.New("entry already exists")
	ErrEntryNotFound     = errors.New("entry not found")
)

// Action represents the type of modification to a ledger entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
	// ActionErase means an entry was deleted
	ActionErase
)

// TrackedEntry represents a ledger entry being tracked for changes
type TrackedEntry struct {
	Action   Action
	Original []byte // Original state (nil for inserts)
	Current  []byte
}

// ApplyStateTable wraps a LedgerView and buffers every modification made
// by one transaction. Nothing reaches the base view until Apply is called,
// so a failed transaction is discarded by dropping the table.
type ApplyStateTable struct {
	base     LedgerView
	items    map[[32]byte]*TrackedEntry
	declared map[[32]byte]bool // key -> writable
	txHash   [32]byte
}

// NewApplyStateTable creates a new ApplyStateTable wrapping the given base view.
// Only the declared addresses may be read, and only writable ones changed.
// A nil declared map disables the access checks.
func NewApplyStateTable(base LedgerView, txHash [32]byte, declared []AccountMeta) *ApplyStateTable {
	t := &ApplyStateTable{
		base:   base,
		items:  make(map[[32]byte]*TrackedEntry),
		txHash: txHash,
	}
	if declared != nil {
		t.declared = make(map[[32]byte]bool, len(declared))
		for _, m := range declared {
			t.declared[m.Key] = t.declared[m.Key] || m.Writable
		}
	}
	return t
}

func (t *ApplyStateTable) checkRead(key [32]byte) error {
	if t.declared == nil {
		return nil
	}
	if _, ok := t.declared[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUndeclaredAccount, solana.PublicKeyFromBytes(key[:]))
	}
	return nil
}

func (t *ApplyStateTable) checkWrite(key [32]byte) error {
	if t.declared == nil {
		return nil
	}
	writable, ok := t.declared[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUndeclaredAccount, solana.PublicKeyFromBytes(key[:]))
	}
	if !writable {
		return fmt.Errorf("%w: %s", ErrReadonlyAccount, solana.PublicKeyFromBytes(key[:]))
	}
	return nil
}

// Read reads a ledger entry, tracking it as cached. A missing entry
// returns nil data and no error.
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if err := t.checkRead(k.Key); err != nil {
		return nil, err
	}

	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return nil, nil
		}
		return entry.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}

	if data != nil {
		t.items[k.Key] = &TrackedEntry{
			Action:   ActionCache,
			Original: data,
			Current:  data,
		}
	}

	return data, nil
}

// Exists checks if an entry exists
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if err := t.checkRead(k.Key); err != nil {
		return false, err
	}
	if entry, exists := t.items[k.Key]; exists {
		return entry.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	if err := t.checkWrite(k.Key); err != nil {
		return err
	}

	if entry, exists := t.items[k.Key]; exists {
		if entry.Action != ActionErase {
			return ErrEntryExists
		}
		// Re-inserting a deleted entry becomes a modify
		entry.Action = ActionModify
		entry.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return ErrEntryExists
	}

	t.items[k.Key] = &TrackedEntry{
		Action:  ActionInsert,
		Current: data,
	}
	return nil
}

// Update modifies an existing entry
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if err := t.checkWrite(k.Key); err != nil {
		return err
	}

	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return ErrEntryNotFound
		}
		if entry.Action == ActionCache {
			entry.Action = ActionModify
		}
		entry.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return ErrEntryNotFound
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}
	return nil
}

// Erase removes an entry
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	if err := t.checkWrite(k.Key); err != nil {
		return err
	}

	if entry, exists := t.items[k.Key]; exists {
		switch entry.Action {
		case ActionErase:
			return ErrEntryNotFound
		case ActionInsert:
			// Inserting then deleting = no change
			delete(t.items, k.Key)
			return nil
		}
		entry.Action = ActionErase
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return ErrEntryNotFound
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionErase,
		Original: original,
		Current:  original,
	}
	return nil
}

// ForEach iterates over the base view. Pending changes are not visible.
func (t *ApplyStateTable) ForEach(fn func(key [32]byte, data []byte) bool) error {
	return t.base.ForEach(fn)
}

// Change is one write produced by a transaction. A nil Data erases the entry.
type Change struct {
	Key    [32]byte
	Data   []byte
	Insert bool
}

// Committer is implemented by views that can write a set of changes
// atomically. ApplyStateTable uses it when the base view provides it.
type Committer interface {
	Commit(changes []Change) error
}

// Apply commits all changes to the base view and returns generated metadata.
// Entries are written in key order so the result is deterministic.
func (t *ApplyStateTable) Apply() (*Metadata, error) {
	metadata := &Metadata{
		TransactionHash: t.txHash,
		AffectedNodes:   make([]AffectedNode, 0, len(t.items)),
	}

	keys := make([][32]byte, 0, len(t.items))
	for key := range t.items {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i][:], keys[j][:]) < 0 })

	changes := make([]Change, 0, len(keys))
	for _, key := range keys {
		entry := t.items[key]

		switch entry.Action {
		case ActionCache:
			continue

		case ActionInsert:
			metadata.AffectedNodes = append(metadata.AffectedNodes, newAffectedNode("CreatedNode", key, entry.Current))
			changes = append(changes, Change{Key: key, Data: entry.Current, Insert: true})

		case ActionModify:
			if bytes.Equal(entry.Original, entry.Current) {
				continue
			}
			metadata.AffectedNodes = append(metadata.AffectedNodes, newAffectedNode("ModifiedNode", key, entry.Current))
			changes = append(changes, Change{Key: key, Data: entry.Current})

		case ActionErase:
			metadata.AffectedNodes = append(metadata.AffectedNodes, newAffectedNode("DeletedNode", key, entry.Original))
			changes = append(changes, Change{Key: key})
		}
	}

	if c, ok := t.base.(Committer); ok {
		if err := c.Commit(changes); err != nil {
			return nil, err
		}
		return metadata, nil
	}

	for _, ch := range changes {
		k := keylet.Keylet{Key: ch.Key}
		var err error
		switch {
		case ch.Data == nil:
			err = t.base.Erase(k)
		case ch.Insert:
			err = t.base.Insert(k, ch.Data)
		default:
			err = t.base.Update(k, ch.Data)
		}
		if err != nil {
			return nil, err
		}
	}
	return metadata, nil
}

// Changes returns the number of entries that Apply would write.
func (t *ApplyStateTable) Changes() int {
	n := 0
	for _, entry := range t.items {
		if entry.Action == ActionInsert || entry.Action == ActionErase ||
			(entry.Action == ActionModify && !bytes.Equal(entry.Original, entry.Current)) {
			n++
		}
	}
	return n
}

func newAffectedNode(nodeType string, key [32]byte, data []byte) AffectedNode {
	entryType := "Unknown"
	if t, err := sle.EntryType(data); err == nil {
		entryType = t.String()
	}
	return AffectedNode{
		NodeType:        nodeType,
		LedgerEntryType: entryType,
		LedgerIndex:     solana.PublicKeyFromBytes(key[:]).String(),
	}
}
