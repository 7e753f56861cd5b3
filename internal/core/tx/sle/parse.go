package sle

import (
	"fmt"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"
)

// ParseEntry decodes data into the struct of its stored entry type.
func ParseEntry(data []byte) (entry.Type, any, error) {
	t, err := EntryType(data)
	if err != nil {
		return entry.TypeInvalid, nil, err
	}

	var v any
	switch t {
	case entry.TypeAccountRoot:
		v, err = ParseAccountRoot(data)
	case entry.TypeMint:
		v, err = ParseMint(data)
	case entry.TypeTokenAccount:
		v, err = ParseTokenAccount(data)
	case entry.TypeStore:
		v, err = ParseStore(data)
	case entry.TypeSellingResource:
		v, err = ParseSellingResource(data)
	case entry.TypeMarket:
		v, err = ParseMarket(data)
	case entry.TypeTradeHistory:
		v, err = ParseTradeHistory(data)
	case entry.TypePayoutTicket:
		v, err = ParsePayoutTicket(data)
	default:
		return t, nil, fmt.Errorf("%w: %s", ErrWrongEntryType, t)
	}
	return t, v, err
}
