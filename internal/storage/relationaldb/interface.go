package relationaldb

import (
	"context"
	"encoding/hex"
	"strings"
	"time"
)

// Hash is a 256-bit transaction hash
type Hash [32]byte

func (h Hash) String() string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

// ParseHash parses a hex transaction hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(h) {
		return h, ErrInvalidTransactionHash
	}
	copy(h[:], b)
	return h, nil
}

// TxRecord is one submitted transaction and its outcome. Rejected
// transactions are recorded too, with Applied false.
type TxRecord struct {
	ID        int64     `json:"id"`
	Hash      Hash      `json:"hash"`
	BatchID   string    `json:"batch_id,omitempty"`
	Account   string    `json:"account"`
	Sequence  uint32    `json:"sequence"`
	Type      string    `json:"type"`
	Result    string    `json:"result"`
	Applied   bool      `json:"applied"`
	RawTx     []byte    `json:"raw_tx"`
	Metadata  []byte    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountTxOptions selects the transactions signed by one account, newest first.
type AccountTxOptions struct {
	Account     string
	Limit       int
	Offset      int
	AppliedOnly bool
}

// TxRepository stores transaction history
type TxRepository interface {
	SaveTransaction(ctx context.Context, rec *TxRecord) error

	// GetTransaction returns the latest record with the given hash.
	GetTransaction(ctx context.Context, hash Hash) (*TxRecord, error)

	GetAccountTransactions(ctx context.Context, opts AccountTxOptions) ([]TxRecord, error)
	GetTransactionCount(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// NormalizeLimit clamps a page size to [1, MaxPageSize].
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)
