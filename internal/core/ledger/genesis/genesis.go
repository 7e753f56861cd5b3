// Package genesis seeds an empty ledger with accounts, mints and token
// balances described by a JSON document.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
)

var (
	ErrUnknownMint      = errors.New("genesis: balance references an unknown mint")
	ErrDuplicateEntry   = errors.New("genesis: duplicate entry")
	ErrSupplyOverflow   = errors.New("genesis: mint supply overflows")
	ErrStateNotEmpty    = errors.New("genesis: ledger state is not empty")
	ErrMissingAuthority = errors.New("genesis: mint authority is required")
)

// Account is a wallet that may sign transactions.
type Account struct {
	Address solana.PublicKey `json:"address"`
}

// Mint declares a token.
type Mint struct {
	Address   solana.PublicKey `json:"address"`
	Authority solana.PublicKey `json:"authority"`
	Decimals  uint8            `json:"decimals"`
}

// Balance funds the associated token account of Owner. Amount is a
// decimal string in whole tokens.
type Balance struct {
	Owner  solana.PublicKey `json:"owner"`
	Mint   solana.PublicKey `json:"mint"`
	Amount string           `json:"amount"`
}

// Genesis is the initial ledger content.
type Genesis struct {
	Accounts []Account `json:"accounts"`
	Mints    []Mint    `json:"mints"`
	Balances []Balance `json:"balances"`
}

// Load reads a genesis document from path.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis: %w", err)
	}
	return Parse(data)
}

// Parse decodes a genesis document.
func Parse(data []byte) (*Genesis, error) {
	var g Genesis
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse genesis: %w", err)
	}
	return &g, nil
}

// Result summarizes what Apply created.
type Result struct {
	Accounts      int
	Mints         int
	TokenAccounts int
}

// Apply writes the genesis entries into view. The view must be empty and
// every entry is committed in a single batch.
func Apply(view tx.LedgerView, g *Genesis) (*Result, error) {
	empty := true
	if err := view.ForEach(func([32]byte, []byte) bool {
		empty = false
		return false
	}); err != nil {
		return nil, err
	}
	if !empty {
		return nil, ErrStateNotEmpty
	}

	table := tx.NewApplyStateTable(view, [32]byte{}, nil)
	res := &Result{}

	for _, a := range g.Accounts {
		data, err := sle.NewAccountRoot(a.Address).Serialize()
		if err != nil {
			return nil, err
		}
		if err := table.Insert(keylet.Account(a.Address), data); err != nil {
			return nil, fmt.Errorf("%w: account %s", ErrDuplicateEntry, a.Address)
		}
		res.Accounts++
	}

	mints := make(map[solana.PublicKey]*sle.Mint, len(g.Mints))
	for _, m := range g.Mints {
		if m.Authority.IsZero() {
			return nil, fmt.Errorf("%w: %s", ErrMissingAuthority, m.Address)
		}
		if _, dup := mints[m.Address]; dup {
			return nil, fmt.Errorf("%w: mint %s", ErrDuplicateEntry, m.Address)
		}
		mints[m.Address] = sle.NewMint(m.Authority, m.Decimals)
	}

	for _, b := range g.Balances {
		mint, ok := mints[b.Mint]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMint, b.Mint)
		}
		units, err := sle.ParseAmount(b.Amount, mint.Decimals)
		if err != nil {
			return nil, fmt.Errorf("genesis: balance of %s: %w", b.Owner, err)
		}
		if mint.Supply+units < mint.Supply {
			return nil, fmt.Errorf("%w: %s", ErrSupplyOverflow, b.Mint)
		}
		mint.Supply += units

		acc := sle.NewTokenAccount(b.Owner, b.Mint)
		acc.Amount = units
		data, err := acc.Serialize()
		if err != nil {
			return nil, err
		}
		if err := table.Insert(keylet.TokenAccount(b.Owner, b.Mint), data); err != nil {
			return nil, fmt.Errorf("%w: balance %s/%s", ErrDuplicateEntry, b.Owner, b.Mint)
		}
		res.TokenAccounts++
	}

	for _, m := range g.Mints {
		data, err := mints[m.Address].Serialize()
		if err != nil {
			return nil, err
		}
		if err := table.Insert(keylet.Mint(m.Address), data); err != nil {
			return nil, fmt.Errorf("%w: mint %s", ErrDuplicateEntry, m.Address)
		}
		res.Mints++
	}

	if _, err := table.Apply(); err != nil {
		return nil, err
	}
	return res, nil
}
