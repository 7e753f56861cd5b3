package testing

import (
	"testing"

	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

// RequireTxSuccess asserts that a transaction result indicates success.
func RequireTxSuccess(t *testing.T, result TxResult) {
	t.Helper()
	require.True(t, result.Success,
		"Expected transaction success, got %s: %s", result.Code, result.Message)
	require.Equal(t, "tesSUCCESS", result.Code,
		"Expected tesSUCCESS, got %s: %s", result.Code, result.Message)
}

// RequireTxFail asserts that a transaction result indicates failure with a specific code.
func RequireTxFail(t *testing.T, result TxResult, expected tx.Result) {
	t.Helper()
	require.False(t, result.Success,
		"Expected transaction failure with code %s, but transaction succeeded", expected)
	require.Equal(t, expected.String(), result.Code,
		"Expected failure code %s, got %s: %s", expected, result.Code, result.Message)
}

// RequireBalance asserts that acc holds expected units of mint.
func RequireBalance(t *testing.T, env *TestEnv, acc *Account, mint solana.PublicKey, expected uint64) {
	t.Helper()
	actual := env.Balance(acc, mint)
	require.Equal(t, expected, actual,
		"Account %s balance mismatch: expected %d, got %d", acc.Name, expected, actual)
}

// RequireSequence asserts that an account has the expected sequence number.
func RequireSequence(t *testing.T, env *TestEnv, acc *Account, expected uint32) {
	t.Helper()
	actual := env.Seq(acc.Address)
	require.Equal(t, expected, actual,
		"Account %s sequence mismatch: expected %d, got %d", acc.Name, expected, actual)
}

// RequireOwnerCount asserts that an account has the expected owner count.
func RequireOwnerCount(t *testing.T, env *TestEnv, acc *Account, expected uint32) {
	t.Helper()
	actual := env.OwnerCount(acc)
	require.Equal(t, expected, actual,
		"Account %s owner count mismatch: expected %d, got %d", acc.Name, expected, actual)
}

// RequireMarketState asserts the stored state of a market.
func RequireMarketState(t *testing.T, env *TestEnv, market solana.PublicKey, expected sle.MarketState) {
	t.Helper()
	actual := env.Market(market).State
	require.Equal(t, expected, actual,
		"Market %s state mismatch: expected %s, got %s", market, expected, actual)
}

// AssertBalanceChange runs a function and asserts the expected balance change.
// The change can be positive (increase) or negative (decrease).
func AssertBalanceChange(t *testing.T, env *TestEnv, acc *Account, mint solana.PublicKey, expectedChange int64, fn func()) {
	t.Helper()
	before := env.Balance(acc, mint)
	fn()
	after := env.Balance(acc, mint)

	actualChange := int64(after) - int64(before)
	require.Equal(t, expectedChange, actualChange,
		"Account %s balance change mismatch: expected %d, got %d (before: %d, after: %d)",
		acc.Name, expectedChange, actualChange, before, after)
}

// AssertNoLedgerChange runs fn and asserts that no ledger entry changed.
func AssertNoLedgerChange(t *testing.T, env *TestEnv, fn func()) {
	t.Helper()
	before := env.Snapshot()
	fn()
	require.Equal(t, before, env.Snapshot(), "ledger changed")
}
