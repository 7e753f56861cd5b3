package sle

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid token amount")

var maxUnits = decimal.NewFromUint64(math.MaxUint64)

// ParseAmount converts a decimal string such as "12.5" into base units of
// a mint with the given decimals. Fractions finer than one unit and
// negative values are rejected.
func ParseAmount(s string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	units := d.Shift(int32(decimals))
	if units.IsNegative() || !units.Equal(units.Truncate(0)) || units.GreaterThan(maxUnits) {
		return 0, fmt.Errorf("%w: %q with %d decimals", ErrInvalidAmount, s, decimals)
	}
	return units.BigInt().Uint64(), nil
}

// FormatAmount renders base units as a decimal string.
func FormatAmount(units uint64, decimals uint8) string {
	return decimal.NewFromUint64(units).Shift(-int32(decimals)).String()
}
