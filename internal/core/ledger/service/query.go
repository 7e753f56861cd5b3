package service

import (
	"errors"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
)

var ErrEntryNotFound = errors.New("ledger entry not found")

// LedgerEntryResult is a decoded ledger entry
type LedgerEntryResult struct {
	Index string     `json:"index"`
	Type  entry.Type `json:"-"`
	Kind  string     `json:"LedgerEntryType"`
	Entry any        `json:"node"`
}

// GetLedgerEntry reads and decodes the entry at addr.
func (s *Service) GetLedgerEntry(addr [32]byte) (*LedgerEntryResult, error) {
	k := keylet.Keylet{Key: addr}
	data, err := s.view.Read(k)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrEntryNotFound
	}
	t, v, err := sle.ParseEntry(data)
	if err != nil {
		return nil, err
	}
	return &LedgerEntryResult{Index: k.String(), Type: t, Kind: t.String(), Entry: v}, nil
}

// GetMarket reads the market at addr.
func (s *Service) GetMarket(addr [32]byte) (*sle.Market, error) {
	res, err := s.GetLedgerEntry(addr)
	if err != nil {
		return nil, err
	}
	m, ok := res.Entry.(*sle.Market)
	if !ok {
		return nil, sle.ErrWrongEntryType
	}
	return m, nil
}

// GetTokenBalance returns the amount held by the token account of
// (owner, mint), or zero when it does not exist.
func (s *Service) GetTokenBalance(owner, mint [32]byte) (uint64, error) {
	data, err := s.view.Read(keylet.TokenAccount(owner, mint))
	if err != nil || data == nil {
		return 0, err
	}
	acc, err := sle.ParseTokenAccount(data)
	if err != nil {
		return 0, err
	}
	return acc.Amount, nil
}

// EntryCounts returns the number of entries of each type.
func (s *Service) EntryCounts() (map[entry.Type]int, error) {
	counts := make(map[entry.Type]int)
	err := s.view.ForEach(func(_ [32]byte, data []byte) bool {
		t, err := sle.EntryType(data)
		if err != nil {
			t = entry.TypeInvalid
		}
		counts[t]++
		return true
	})
	return counts, err
}
