package tx

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
)

// Token movement errors
var (
	ErrTokenAccountNotFound = errors.New("token account not found")
	ErrMintMismatch         = errors.New("token accounts hold different mints")
	ErrNotTokenOwner        = errors.New("authority does not own the source token account")
)

// ReadTokenAccount reads the token account at key. A missing account
// returns ErrTokenAccountNotFound.
func ReadTokenAccount(view LedgerView, key [32]byte) (*sle.TokenAccount, error) {
	data, err := view.Read(keylet.Keylet{Type: entry.TypeTokenAccount, Key: key})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrTokenAccountNotFound
	}
	return sle.ParseTokenAccount(data)
}

func writeTokenAccount(view LedgerView, key [32]byte, acc *sle.TokenAccount) error {
	data, err := acc.Serialize()
	if err != nil {
		return err
	}
	return view.Update(keylet.Keylet{Type: entry.TypeTokenAccount, Key: key}, data)
}

// TransferTokens moves amount tokens from src to dst. authority must be
// the owner of src. A zero amount is a no-op once the accounts are checked.
func TransferTokens(view LedgerView, src, dst, authority [32]byte, amount uint64) error {
	from, err := ReadTokenAccount(view, src)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	to, err := ReadTokenAccount(view, dst)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if from.Mint != to.Mint {
		return ErrMintMismatch
	}
	if from.Owner != authority {
		return ErrNotTokenOwner
	}
	if amount == 0 || src == dst {
		return nil
	}

	if err := from.Debit(amount); err != nil {
		return err
	}
	if err := to.Credit(amount); err != nil {
		return err
	}

	if err := writeTokenAccount(view, src, from); err != nil {
		return err
	}
	return writeTokenAccount(view, dst, to)
}

// EnsureTokenAccount returns the associated token account of (owner, mint),
// creating an empty one if it does not exist yet.
func EnsureTokenAccount(view LedgerView, owner, mint [32]byte) (key [32]byte, created bool, err error) {
	k := keylet.TokenAccount(owner, mint)

	data, err := view.Read(k)
	if err != nil {
		return k.Key, false, err
	}
	if data != nil {
		acc, err := sle.ParseTokenAccount(data)
		if err != nil {
			return k.Key, false, err
		}
		if acc.Mint != mint || acc.Owner != owner {
			return k.Key, false, ErrMintMismatch
		}
		return k.Key, false, nil
	}

	data, err = sle.NewTokenAccount(owner, mint).Serialize()
	if err != nil {
		return k.Key, false, err
	}
	if err := view.Insert(k, data); err != nil {
		return k.Key, false, err
	}
	return k.Key, true, nil
}

// TokenResult maps a token movement error to a result code.
func TokenResult(err error) Result {
	switch {
	case err == nil:
		return TesSUCCESS
	case errors.Is(err, sle.ErrInsufficientBalance):
		return TecINSUFFICIENT_FUNDS
	case errors.Is(err, ErrTokenAccountNotFound):
		return TecNO_ENTRY
	case errors.Is(err, ErrMintMismatch):
		return TecMINT_MISMATCH
	case errors.Is(err, ErrNotTokenOwner):
		return TecUNAUTHORIZED
	default:
		return TefINTERNAL
	}
}
