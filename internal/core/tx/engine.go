package tx

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
)

// Clock supplies the current time to the engine.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// EngineConfig holds configuration for the transaction engine
type EngineConfig struct {
	// SkipSignatureVerification skips signature checks (for testing/standalone)
	SkipSignatureVerification bool

	// Clock provides the time used for market windows. Defaults to the system clock.
	Clock Clock

	// Logger receives engine logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// LedgerView provides read/write access to ledger state
type LedgerView interface {
	// Read reads a ledger entry. A missing entry returns nil, nil.
	Read(k keylet.Keylet) ([]byte, error)

	// Exists checks if an entry exists
	Exists(k keylet.Keylet) (bool, error)

	// Insert adds a new entry
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry
	Erase(k keylet.Keylet) error

	// ForEach iterates over all state entries
	// If fn returns false, iteration stops early
	ForEach(fn func(key [32]byte, data []byte) bool) error
}

// ApplyResult contains the result of applying a transaction
type ApplyResult struct {
	// Result is the transaction result code
	Result Result

	// Applied indicates if the transaction changed the ledger
	Applied bool

	// Hash is the transaction hash
	Hash [32]byte

	// Metadata contains the changes made by the transaction
	Metadata *Metadata

	// Message is a human-readable result message
	Message string
}

// Metadata tracks changes made by a transaction
type Metadata struct {
	TransactionHash   [32]byte       `json:"-"`
	AffectedNodes     []AffectedNode `json:"AffectedNodes"`
	TransactionResult Result         `json:"-"`
}

// AffectedNode describes one created, modified or deleted ledger entry
type AffectedNode struct {
	NodeType        string `json:"NodeType"`
	LedgerEntryType string `json:"LedgerEntryType"`
	LedgerIndex     string `json:"LedgerIndex"`
}

// Engine validates and applies transactions to a ledger view. It is safe
// for concurrent use: transactions whose writable addresses overlap are
// applied one after the other, the others run in parallel.
type Engine struct {
	view   LedgerView
	config EngineConfig
	locks  *AccountLocks
	logger *slog.Logger
}

// NewEngine creates a new transaction engine
func NewEngine(view LedgerView, config EngineConfig) *Engine {
	if config.Clock == nil {
		config.Clock = SystemClock()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		view:   view,
		config: config,
		locks:  NewAccountLocks(),
		logger: logger.With("component", "tx-engine"),
	}
}

// View returns the underlying ledger view
func (e *Engine) View() LedgerView {
	return e.view
}

// Config returns the engine configuration
func (e *Engine) Config() EngineConfig {
	return e.config
}

// Apply processes a transaction and applies it to the ledger
func (e *Engine) Apply(tx Transaction) ApplyResult {
	return e.ApplyWithContext(context.Background(), tx)
}

// ApplyWithContext processes a transaction. ctx bounds the wait for
// account locks; once the locks are held the transaction runs to completion.
func (e *Engine) ApplyWithContext(ctx context.Context, tx Transaction) ApplyResult {
	// Step 1: Preflight checks (syntax validation)
	result := e.preflight(tx)
	if !result.IsSuccess() {
		return e.finish(tx, [32]byte{}, result, nil)
	}

	// Step 2: Compute transaction hash
	txHash, err := ComputeTransactionHash(tx)
	if err != nil {
		e.logger.Error("failed to compute transaction hash", "type", tx.TxType(), "error", err)
		return e.finish(tx, txHash, TefINTERNAL, nil)
	}

	// Step 3: Lock every declared address plus the signer account root
	accountID := [32]byte(tx.GetCommon().Account)
	declared := append([]AccountMeta{Writable(keylet.Account(accountID).Key)}, tx.Accounts()...)

	release, err := e.locks.Acquire(ctx, declared)
	if err != nil {
		return e.finish(tx, txHash, TelFAILED_PROCESSING, nil)
	}
	defer release()

	// Step 4: Preclaim checks (validate against ledger state)
	account, result := e.preclaim(tx)
	if !result.IsSuccess() {
		return e.finish(tx, txHash, result, nil)
	}

	// Step 5: Apply
	metadata, result := e.doApply(tx, account, txHash, declared)
	return e.finish(tx, txHash, result, metadata)
}

func (e *Engine) finish(tx Transaction, txHash [32]byte, result Result, metadata *Metadata) ApplyResult {
	log := e.logger.With(
		"type", tx.TxType().String(),
		"account", tx.GetCommon().Account.String(),
		"hash", strings.ToUpper(hex.EncodeToString(txHash[:])),
		"result", result.String(),
	)
	switch {
	case result.IsSuccess():
		log.Debug("transaction applied")
	case result.IsTef():
		log.Error("transaction failed", "message", result.Message())
	default:
		log.Info("transaction rejected", "message", result.Message())
	}

	if metadata != nil {
		metadata.TransactionResult = result
	}
	return ApplyResult{
		Result:   result,
		Applied:  result.IsSuccess(),
		Hash:     txHash,
		Metadata: metadata,
		Message:  result.Message(),
	}
}

// preflight performs syntax validation that does not need ledger state
func (e *Engine) preflight(tx Transaction) Result {
	if tx == nil {
		return TemMALFORMED
	}
	common := tx.GetCommon()
	if common.TransactionType != tx.TxType().String() {
		return TemMALFORMED
	}

	if err := tx.Validate(); err != nil {
		return parseValidationError(err)
	}

	if !e.config.SkipSignatureVerification {
		if err := VerifySignature(tx); err != nil {
			return TefBAD_SIGNATURE
		}
	}

	if _, ok := tx.(Appliable); !ok {
		return TemUNKNOWN_TYPE
	}

	return TesSUCCESS
}

// parseValidationError maps a "code: message" validation error to its result.
func parseValidationError(err error) Result {
	msg := err.Error()
	code := msg
	if i := strings.IndexAny(msg, ": "); i >= 0 {
		code = msg[:i]
	}
	if r, ok := ResultFromName(code); ok && r.IsTem() {
		return r
	}
	return TemMALFORMED
}

// preclaim checks the signer account and its sequence
func (e *Engine) preclaim(tx Transaction) (*sle.AccountRoot, Result) {
	common := tx.GetCommon()

	data, err := e.view.Read(keylet.Account([32]byte(common.Account)))
	if err != nil {
		e.logger.Error("failed to read account", "account", common.Account.String(), "error", err)
		return nil, TefINTERNAL
	}
	if data == nil {
		return nil, TerNO_ACCOUNT
	}

	account, err := sle.ParseAccountRoot(data)
	if err != nil {
		e.logger.Error("failed to parse account", "account", common.Account.String(), "error", err)
		return nil, TefINTERNAL
	}

	switch {
	case common.Sequence < account.Sequence:
		return nil, TefPAST_SEQ
	case common.Sequence > account.Sequence:
		return nil, TerPRE_SEQ
	}

	return account, TesSUCCESS
}

// doApply runs the transaction against a state table and commits the
// table only on tesSUCCESS.
func (e *Engine) doApply(tx Transaction, account *sle.AccountRoot, txHash [32]byte, declared []AccountMeta) (*Metadata, Result) {
	table := NewApplyStateTable(e.view, txHash, declared)
	accountID := [32]byte(tx.GetCommon().Account)

	metadata := &Metadata{TransactionHash: txHash}
	ctx := &ApplyContext{
		View:      table,
		Account:   account,
		AccountID: accountID,
		Config:    e.config,
		Now:       e.config.Clock.Now().Unix(),
		TxHash:    txHash,
		Metadata:  metadata,
		Logger:    e.logger.With("type", tx.TxType().String()),
		Engine:    e,
	}

	result := tx.(Appliable).Apply(ctx)
	if !result.IsSuccess() {
		// Dropping the table discards every change.
		return nil, result
	}

	account.Sequence++
	accountData, err := account.Serialize()
	if err != nil {
		e.logger.Error("failed to serialize account", "error", err)
		return nil, TefINTERNAL
	}
	if err := table.Update(keylet.Account(accountID), accountData); err != nil {
		e.logger.Error("failed to update account", "error", err)
		return nil, TefINTERNAL
	}

	applied, err := table.Apply()
	if err != nil {
		e.logger.Error("failed to commit transaction", "error", err)
		return nil, TefINTERNAL
	}
	metadata.AffectedNodes = applied.AffectedNodes
	return metadata, TesSUCCESS
}

// ViewResult maps an error returned by a LedgerView inside Apply. Access
// violations and storage failures are internal errors.
func ViewResult(err error) Result {
	switch {
	case err == nil:
		return TesSUCCESS
	case errors.Is(err, ErrEntryExists):
		return TecDUPLICATE
	default:
		return TefINTERNAL
	}
}
