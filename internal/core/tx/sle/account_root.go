package sle

import "github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"

// AccountRoot tracks the sequence and owned-object count of a wallet.
type AccountRoot struct {
	LedgerEntryType entry.Type `codec:"LedgerEntryType"`
	Owner           AccountID  `codec:"Owner"`
	Sequence        uint32     `codec:"Sequence"`
	OwnerCount      uint32     `codec:"OwnerCount"`
}

// NewAccountRoot returns a fresh account root starting at sequence 1.
func NewAccountRoot(owner AccountID) *AccountRoot {
	return &AccountRoot{
		LedgerEntryType: entry.TypeAccountRoot,
		Owner:           owner,
		Sequence:        1,
	}
}

// ParseAccountRoot parses an AccountRoot ledger entry.
func ParseAccountRoot(data []byte) (*AccountRoot, error) {
	var a AccountRoot
	if err := decodeAs(data, entry.TypeAccountRoot, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Serialize encodes the entry.
func (a *AccountRoot) Serialize() ([]byte, error) {
	return Encode(a)
}
