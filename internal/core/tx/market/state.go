package market

import (
	"errors"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
)

var zeroKey solana.PublicKey

type serializer interface {
	Serialize() ([]byte, error)
}

// load reads and parses the entry at k. A missing entry is tecNO_ENTRY.
func load[T any](view tx.LedgerView, k keylet.Keylet, parse func([]byte) (*T, error)) (*T, tx.Result) {
	data, err := view.Read(k)
	if err != nil {
		return nil, tx.ViewResult(err)
	}
	if data == nil {
		return nil, tx.TecNO_ENTRY
	}
	v, err := parse(data)
	if errors.Is(err, sle.ErrWrongEntryType) {
		// The caller pointed at an entry of another kind.
		return nil, tx.TecNO_ENTRY
	}
	if err != nil {
		return nil, tx.TefINTERNAL
	}
	return v, tx.TesSUCCESS
}

func update(view tx.LedgerView, k keylet.Keylet, v serializer) tx.Result {
	data, err := v.Serialize()
	if err != nil {
		return tx.TefINTERNAL
	}
	return tx.ViewResult(view.Update(k, data))
}

func insert(view tx.LedgerView, k keylet.Keylet, v serializer) tx.Result {
	data, err := v.Serialize()
	if err != nil {
		return tx.TefINTERNAL
	}
	return tx.ViewResult(view.Insert(k, data))
}

func exists(view tx.LedgerView, k keylet.Keylet) (bool, tx.Result) {
	ok, err := view.Exists(k)
	if err != nil {
		return false, tx.ViewResult(err)
	}
	return ok, tx.TesSUCCESS
}

// at addresses an entry whose key the transaction already holds.
func at(t entry.Type, key [32]byte) keylet.Keylet {
	return keylet.Keylet{Type: t, Key: key}
}
