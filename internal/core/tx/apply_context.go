package tx

import (
	"log/slog"

	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
)

// ApplyContext provides all the state and helpers needed to apply a transaction.
// It is passed to Appliable.Apply() instead of individual parameters.
type ApplyContext struct {
	// View provides read/write access to ledger state (the ApplyStateTable)
	View LedgerView

	// Account is the signer account root (mutable, written back by the engine)
	Account *sle.AccountRoot

	// AccountID is the signer address
	AccountID [32]byte

	// Config holds engine configuration
	Config EngineConfig

	// Now is the unix time at which the transaction is applied. Every
	// time-dependent rule uses this value and never reads a clock itself.
	Now int64

	// TxHash is the hash of the current transaction
	TxHash [32]byte

	// Metadata collects the ledger changes of the transaction
	Metadata *Metadata

	// Logger is scoped to the transaction
	Logger *slog.Logger

	// Engine provides access to shared helper methods
	Engine *Engine
}

// Sequence returns the signer sequence consumed by this transaction.
func (ctx *ApplyContext) Sequence() uint32 {
	return ctx.Account.Sequence
}
