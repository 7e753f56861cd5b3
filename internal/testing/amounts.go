package testing

import (
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
)

// Units converts a decimal token amount such as "1.5" to base units.
// It panics on invalid input.
func Units(amount string, decimals uint8) uint64 {
	units, err := sle.ParseAmount(amount, decimals)
	if err != nil {
		panic("invalid test amount " + amount + ": " + err.Error())
	}
	return units
}

// Pieces returns a pointer to n, for per-wallet caps.
func Pieces(n uint64) *uint64 {
	return &n
}

// Date returns a pointer to the unix time t, for optional end dates.
func Date(t int64) *int64 {
	return &t
}
