package sle

import "errors"

var (
	// ErrWrongEntryType is returned when data decodes to a different entry type.
	ErrWrongEntryType = errors.New("wrong ledger entry type")

	// ErrInsufficientSupply is returned when a vault has no unit left to release.
	ErrInsufficientSupply = errors.New("insufficient supply")

	// ErrWalletCapExceeded is returned when a buyer would exceed the per-wallet cap.
	ErrWalletCapExceeded = errors.New("wallet cap exceeded")

	// ErrInsufficientBalance is returned when a token account cannot cover a debit.
	ErrInsufficientBalance = errors.New("insufficient token balance")

	// ErrAmountOverflow is returned when a credit would overflow uint64.
	ErrAmountOverflow = errors.New("amount overflow")

	// ErrResourceInUse is returned when a selling resource already backs a market.
	ErrResourceInUse = errors.New("selling resource already used by a market")

	// ErrStateRegression is returned when a market state change would move backwards.
	ErrStateRegression = errors.New("market state cannot move backwards")
)
