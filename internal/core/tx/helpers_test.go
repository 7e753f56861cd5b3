package tx

import (
	"errors"
	"sync"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
)

// memView is a minimal in-memory LedgerView for engine tests.
type memView struct {
	mu      sync.RWMutex
	entries map[[32]byte][]byte
}

func newMemView() *memView {
	return &memView{entries: make(map[[32]byte][]byte)}
}

func (v *memView) Read(k keylet.Keylet) ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.entries[k.Key], nil
}

func (v *memView) Exists(k keylet.Keylet) (bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.entries[k.Key]
	return ok, nil
}

func (v *memView) Insert(k keylet.Keylet, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.entries[k.Key]; ok {
		return ErrEntryExists
	}
	v.entries[k.Key] = data
	return nil
}

func (v *memView) Update(k keylet.Keylet, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.entries[k.Key]; !ok {
		return ErrEntryNotFound
	}
	v.entries[k.Key] = data
	return nil
}

func (v *memView) Erase(k keylet.Keylet) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.entries, k.Key)
	return nil
}

func (v *memView) ForEach(fn func(key [32]byte, data []byte) bool) error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for k, d := range v.entries {
		if !fn(k, d) {
			return nil
		}
	}
	return nil
}

func (v *memView) len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries)
}

func (v *memView) putAccount(owner [32]byte, seq uint32) {
	root := sle.NewAccountRoot(owner)
	root.Sequence = seq
	data, _ := root.Serialize()
	v.entries[keylet.Account(owner).Key] = data
}

func (v *memView) putTokenAccount(owner, mint [32]byte, amount uint64) [32]byte {
	k := keylet.TokenAccount(owner, mint)
	acc := sle.NewTokenAccount(owner, mint)
	acc.Amount = amount
	data, _ := acc.Serialize()
	v.entries[k.Key] = data
	return k.Key
}

// transferTx moves tokens between two token accounts owned by the signer
// and the destination. It exercises the engine without the sale program.
type transferTx struct {
	BaseTx
	From   [32]byte `json:"From" codec:"From"`
	To     [32]byte `json:"To" codec:"To"`
	Amount uint64   `json:"Amount" codec:"Amount"`

	// Extra is touched without being declared when set.
	Extra *[32]byte `json:"-" codec:"-"`
	// Fail forces the given result after the transfer.
	Fail Result `json:"-" codec:"-"`
}

func newTransferTx(signer solana.PublicKey, seq uint32, from, to [32]byte, amount uint64) *transferTx {
	t := &transferTx{BaseTx: *NewBaseTx(TypeBuy, signer), From: from, To: to, Amount: amount}
	t.Sequence = seq
	return t
}

func (t *transferTx) TxType() Type { return TypeBuy }

func (t *transferTx) Validate() error {
	if err := t.BaseTx.Validate(); err != nil {
		return err
	}
	if t.Amount == 0 {
		return errZeroAmount
	}
	return nil
}

func (t *transferTx) Accounts() []AccountMeta {
	return []AccountMeta{Writable(t.From), Writable(t.To)}
}

func (t *transferTx) Apply(ctx *ApplyContext) Result {
	if err := TransferTokens(ctx.View, t.From, t.To, ctx.AccountID, t.Amount); err != nil {
		return TokenResult(err)
	}
	if t.Extra != nil {
		if _, err := ctx.View.Read(keylet.Keylet{Key: *t.Extra}); err != nil {
			return ViewResult(err)
		}
	}
	if t.Fail != TesSUCCESS {
		return t.Fail
	}
	return TesSUCCESS
}

var errZeroAmount = errors.New("temINVALID_PARAMETERS: amount must be positive")
