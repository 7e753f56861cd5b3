package testing

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/service"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"

	// Registers the sale program transaction types.
	_ "github.com/LeJamon/goFixedPriceSale/internal/core/tx/all"
)

// TestEnv manages a test ledger for transaction testing. It provides a
// simplified interface for creating wallets and mints, funding them,
// submitting transactions, and verifying results.
type TestEnv struct {
	t        *testing.T
	state    *ledger.State
	clock    *ManualClock
	service  *service.Service
	verifier *tx.Engine
	accounts map[solana.PublicKey]*Account
}

// EnvOption customizes a TestEnv.
type EnvOption func(*envOptions)

type envOptions struct {
	state    *ledger.State
	recorder service.Recorder
	logger   *slog.Logger
}

// WithState runs the environment over an existing state, for instance one
// backed by pebble.
func WithState(state *ledger.State) EnvOption {
	return func(o *envOptions) { o.state = state }
}

// WithRecorder records every submitted transaction.
func WithRecorder(r service.Recorder) EnvOption {
	return func(o *envOptions) { o.recorder = r }
}

// WithLogger sends engine logs to logger instead of discarding them.
func WithLogger(logger *slog.Logger) EnvOption {
	return func(o *envOptions) { o.logger = logger }
}

// NewTestEnv creates a new test environment over an empty in-memory ledger.
// Signatures are not verified by Submit; use SubmitSigned for that.
func NewTestEnv(t *testing.T, opts ...EnvOption) *TestEnv {
	t.Helper()

	o := envOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.state == nil {
		o.state = ledger.NewMemoryState()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	clock := NewManualClock()
	engineConfig := tx.EngineConfig{
		SkipSignatureVerification: true,
		Clock:                     clock,
		Logger:                    o.logger,
	}

	env := &TestEnv{
		t:     t,
		state: o.state,
		clock: clock,
		service: service.New(o.state, service.Config{
			Engine:   engineConfig,
			Recorder: o.recorder,
		}),
		accounts: make(map[solana.PublicKey]*Account),
	}

	engineConfig.SkipSignatureVerification = false
	env.verifier = tx.NewEngine(o.state, engineConfig)
	return env
}

// write applies direct ledger edits outside any transaction.
func (e *TestEnv) write(fn func(view tx.LedgerView) error) {
	e.t.Helper()
	table := tx.NewApplyStateTable(e.state, [32]byte{}, nil)
	if err := fn(table); err != nil {
		e.t.Fatalf("ledger setup failed: %v", err)
	}
	if _, err := table.Apply(); err != nil {
		e.t.Fatalf("ledger setup commit failed: %v", err)
	}
}

// Fund creates the account root of each wallet. Already funded wallets
// are left untouched.
func (e *TestEnv) Fund(accounts ...*Account) {
	e.t.Helper()
	e.write(func(view tx.LedgerView) error {
		for _, acc := range accounts {
			e.accounts[acc.Address] = acc
			k := keylet.Account(acc.ID())
			found, err := view.Exists(k)
			if err != nil {
				return err
			}
			if found {
				continue
			}
			data, err := sle.NewAccountRoot(acc.ID()).Serialize()
			if err != nil {
				return err
			}
			if err := view.Insert(k, data); err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateMint creates a mint named name whose authority is authority, and
// returns its address. The address is derived from the name.
func (e *TestEnv) CreateMint(name string, authority *Account, decimals uint8) solana.PublicKey {
	e.t.Helper()
	mint := NewAccount("mint:" + name)
	e.write(func(view tx.LedgerView) error {
		data, err := sle.NewMint(authority.ID(), decimals).Serialize()
		if err != nil {
			return err
		}
		return view.Insert(keylet.Mint(mint.ID()), data)
	})
	return mint.Address
}

// MintTo credits amount units of mint to the associated token account of
// owner, creating it if needed.
func (e *TestEnv) MintTo(mint solana.PublicKey, owner *Account, amount uint64) {
	e.t.Helper()
	e.write(func(view tx.LedgerView) error {
		mk := keylet.Mint(mint)
		data, err := view.Read(mk)
		if err != nil {
			return err
		}
		m, err := sle.ParseMint(data)
		if err != nil {
			return err
		}
		if m.Supply+amount < m.Supply {
			return sle.ErrAmountOverflow
		}
		m.Supply += amount
		if data, err = m.Serialize(); err != nil {
			return err
		}
		if err := view.Update(mk, data); err != nil {
			return err
		}

		key, _, err := tx.EnsureTokenAccount(view, owner.ID(), mint)
		if err != nil {
			return err
		}
		acc, err := tx.ReadTokenAccount(view, key)
		if err != nil {
			return err
		}
		if err := acc.Credit(amount); err != nil {
			return err
		}
		if data, err = acc.Serialize(); err != nil {
			return err
		}
		return view.Update(keylet.Keylet{Type: entry.TypeTokenAccount, Key: key}, data)
	})
}

// SetTokenAmount overwrites the balance of the token account at key. It
// exists to break ledger invariants on purpose.
func (e *TestEnv) SetTokenAmount(key [32]byte, amount uint64) {
	e.t.Helper()
	e.write(func(view tx.LedgerView) error {
		acc, err := tx.ReadTokenAccount(view, key)
		if err != nil {
			return err
		}
		acc.Amount = amount
		data, err := acc.Serialize()
		if err != nil {
			return err
		}
		return view.Update(keylet.Keylet{Type: entry.TypeTokenAccount, Key: key}, data)
	})
}

// UpdateSellingResource rewrites the selling resource at addr through fn.
// Like SetTokenAmount it exists to break ledger invariants on purpose.
func (e *TestEnv) UpdateSellingResource(addr solana.PublicKey, fn func(r *sle.SellingResource)) {
	e.t.Helper()
	e.write(func(view tx.LedgerView) error {
		k := keylet.Keylet{Type: entry.TypeSellingResource, Key: addr}
		data, err := view.Read(k)
		if err != nil {
			return err
		}
		r, err := sle.ParseSellingResource(data)
		if err != nil {
			return err
		}
		fn(r)
		if data, err = r.Serialize(); err != nil {
			return err
		}
		return view.Update(k, data)
	})
}

// Submit applies a transaction without checking its signature. A zero
// Sequence is filled from the signer's account root.
func (e *TestEnv) Submit(txn tx.Transaction) TxResult {
	e.t.Helper()
	e.autofill(txn)
	res, err := e.service.Submit(context.Background(), txn)
	if err != nil {
		e.t.Fatalf("submit %s: %v", txn.TxType(), err)
	}
	return newTxResult(res.ApplyResult)
}

// SubmitSigned fills the sequence, signs the transaction with the key of
// its registered signer and applies it with signature verification.
func (e *TestEnv) SubmitSigned(txn tx.Transaction) TxResult {
	e.t.Helper()
	acc, ok := e.accounts[txn.GetCommon().Account]
	if !ok {
		e.t.Fatalf("SubmitSigned: account %s not registered in test env", txn.GetCommon().Account)
	}
	return e.SubmitSignedWith(txn, acc)
}

// SubmitSignedWith signs with signer, which may differ from the
// transaction Account, and applies with signature verification.
func (e *TestEnv) SubmitSignedWith(txn tx.Transaction, signer *Account) TxResult {
	e.t.Helper()
	e.autofill(txn)
	common := txn.GetCommon()
	common.Signature = ""
	if err := tx.Sign(txn, signer.Key); err != nil {
		// A foreign key still produces a signature, just not the right one.
		payload, perr := tx.SigningPayload(txn)
		if perr != nil {
			e.t.Fatalf("signing payload: %v", perr)
		}
		sig, serr := signer.Key.Sign(payload)
		if serr != nil {
			e.t.Fatalf("sign: %v", serr)
		}
		common.Signature = sig.String()
	}
	return newTxResult(e.verifier.Apply(txn))
}

func (e *TestEnv) autofill(txn tx.Transaction) {
	e.t.Helper()
	common := txn.GetCommon()
	if common.Sequence != 0 {
		return
	}
	if seq := e.Seq(common.Account); seq != 0 {
		common.Sequence = seq
	}
}

// Service returns the ledger service the environment submits through.
func (e *TestEnv) Service() *service.Service {
	return e.service
}

// State returns the underlying ledger state.
func (e *TestEnv) State() *ledger.State {
	return e.state
}

// Now returns the current ledger time.
func (e *TestEnv) Now() time.Time {
	return e.clock.Now()
}

// Unix returns the current ledger time in seconds.
func (e *TestEnv) Unix() int64 {
	return e.clock.Now().Unix()
}

// AdvanceTime moves the ledger clock forward.
func (e *TestEnv) AdvanceTime(d time.Duration) {
	e.clock.Advance(d)
}

// SetTime sets the ledger clock.
func (e *TestEnv) SetTime(t time.Time) {
	e.clock.Set(t)
}

// Clock returns the clock used by the engine.
func (e *TestEnv) Clock() *ManualClock {
	return e.clock
}

// AccountRoot returns the account root of addr, or nil.
func (e *TestEnv) AccountRoot(addr solana.PublicKey) *sle.AccountRoot {
	e.t.Helper()
	data := e.LedgerEntry(keylet.Account(addr))
	if data == nil {
		return nil
	}
	root, err := sle.ParseAccountRoot(data)
	if err != nil {
		e.t.Fatalf("parse account root: %v", err)
	}
	return root
}

// Seq returns the next sequence of addr, or 0 when it has no account root.
func (e *TestEnv) Seq(addr solana.PublicKey) uint32 {
	e.t.Helper()
	if root := e.AccountRoot(addr); root != nil {
		return root.Sequence
	}
	return 0
}

// OwnerCount returns the number of entries owned by acc.
func (e *TestEnv) OwnerCount(acc *Account) uint32 {
	e.t.Helper()
	if root := e.AccountRoot(acc.Address); root != nil {
		return root.OwnerCount
	}
	return 0
}

// Balance returns the amount of mint held in the associated token account
// of acc.
func (e *TestEnv) Balance(acc *Account, mint solana.PublicKey) uint64 {
	e.t.Helper()
	amount, err := e.service.GetTokenBalance(acc.ID(), mint)
	if err != nil {
		e.t.Fatalf("balance of %s: %v", acc, err)
	}
	return amount
}

// TokenAmount returns the amount held by the token account at key.
func (e *TestEnv) TokenAmount(key [32]byte) uint64 {
	e.t.Helper()
	acc, err := tx.ReadTokenAccount(e.state, key)
	if err != nil {
		e.t.Fatalf("token account %s: %v", solana.PublicKeyFromBytes(key[:]), err)
	}
	return acc.Amount
}

// LedgerEntry returns the raw entry at k, or nil.
func (e *TestEnv) LedgerEntry(k keylet.Keylet) []byte {
	e.t.Helper()
	data, err := e.state.Read(k)
	if err != nil {
		e.t.Fatalf("read %s: %v", k, err)
	}
	return data
}

// LedgerEntryExists reports whether an entry exists at k.
func (e *TestEnv) LedgerEntryExists(k keylet.Keylet) bool {
	e.t.Helper()
	return e.LedgerEntry(k) != nil
}

// Market returns the market at addr.
func (e *TestEnv) Market(addr solana.PublicKey) *sle.Market {
	e.t.Helper()
	m, err := e.service.GetMarket(addr)
	if err != nil {
		e.t.Fatalf("market %s: %v", addr, err)
	}
	return m
}

// SellingResource returns the selling resource at addr.
func (e *TestEnv) SellingResource(addr solana.PublicKey) *sle.SellingResource {
	e.t.Helper()
	r, err := sle.ParseSellingResource(e.LedgerEntry(keylet.Keylet{Type: entry.TypeSellingResource, Key: addr}))
	if err != nil {
		e.t.Fatalf("selling resource %s: %v", addr, err)
	}
	return r
}

// TradeHistory returns the purchase counter of wallet in market, or nil.
func (e *TestEnv) TradeHistory(market solana.PublicKey, wallet *Account) *sle.TradeHistory {
	e.t.Helper()
	data := e.LedgerEntry(keylet.TradeHistory(market, wallet.ID()))
	if data == nil {
		return nil
	}
	h, err := sle.ParseTradeHistory(data)
	if err != nil {
		e.t.Fatalf("trade history: %v", err)
	}
	return h
}

// PayoutTicket returns the payout ticket of payee in market, or nil.
func (e *TestEnv) PayoutTicket(market solana.PublicKey, payee *Account) *sle.PayoutTicket {
	e.t.Helper()
	data := e.LedgerEntry(keylet.PayoutTicket(market, payee.ID()))
	if data == nil {
		return nil
	}
	p, err := sle.ParsePayoutTicket(data)
	if err != nil {
		e.t.Fatalf("payout ticket: %v", err)
	}
	return p
}

// Snapshot copies every ledger entry, keyed by address.
func (e *TestEnv) Snapshot() map[[32]byte][]byte {
	e.t.Helper()
	out := make(map[[32]byte][]byte)
	err := e.state.ForEach(func(key [32]byte, data []byte) bool {
		out[key] = append([]byte(nil), data...)
		return true
	})
	if err != nil {
		e.t.Fatalf("snapshot: %v", err)
	}
	return out
}
