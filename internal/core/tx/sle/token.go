package sle

import (
	"math"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"
)

// Mint describes a token: who may mint it, its decimals and total supply.
type Mint struct {
	LedgerEntryType entry.Type `codec:"LedgerEntryType"`
	Authority       AccountID  `codec:"Authority"`
	Decimals        uint8      `codec:"Decimals"`
	Supply          uint64     `codec:"Supply"`
}

// NewMint returns an empty mint.
func NewMint(authority AccountID, decimals uint8) *Mint {
	return &Mint{
		LedgerEntryType: entry.TypeMint,
		Authority:       authority,
		Decimals:        decimals,
	}
}

// ParseMint parses a Mint ledger entry.
func ParseMint(data []byte) (*Mint, error) {
	var m Mint
	if err := decodeAs(data, entry.TypeMint, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Serialize encodes the entry.
func (m *Mint) Serialize() ([]byte, error) {
	return Encode(m)
}

// TokenAccount holds a balance of one mint for one owner. The owner is the
// only authority allowed to move tokens out; for escrows the owner is a
// program-derived address.
type TokenAccount struct {
	LedgerEntryType entry.Type `codec:"LedgerEntryType"`
	Mint            AccountID  `codec:"Mint"`
	Owner           AccountID  `codec:"Owner"`
	Amount          uint64     `codec:"Amount"`
}

// NewTokenAccount returns an empty token account.
func NewTokenAccount(owner, mint AccountID) *TokenAccount {
	return &TokenAccount{
		LedgerEntryType: entry.TypeTokenAccount,
		Mint:            mint,
		Owner:           owner,
	}
}

// ParseTokenAccount parses a TokenAccount ledger entry.
func ParseTokenAccount(data []byte) (*TokenAccount, error) {
	var t TokenAccount
	if err := decodeAs(data, entry.TypeTokenAccount, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Serialize encodes the entry.
func (t *TokenAccount) Serialize() ([]byte, error) {
	return Encode(t)
}

// Credit adds amount to the balance.
func (t *TokenAccount) Credit(amount uint64) error {
	if t.Amount > math.MaxUint64-amount {
		return ErrAmountOverflow
	}
	t.Amount += amount
	return nil
}

// Debit removes amount from the balance.
func (t *TokenAccount) Debit(amount uint64) error {
	if amount > t.Amount {
		return ErrInsufficientBalance
	}
	t.Amount -= amount
	return nil
}
