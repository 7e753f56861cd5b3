package genesis

import (
	"fmt"
	"testing"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pk(b byte) solana.PublicKey {
	var k solana.PublicKey
	k[0] = b
	k[31] = 0xAA
	return k
}

func doc(alice, usdc, nft solana.PublicKey) string {
	return fmt.Sprintf(`{
		"accounts": [{"address": %q}],
		"mints": [
			{"address": %q, "authority": %q, "decimals": 6},
			{"address": %q, "authority": %q, "decimals": 0}
		],
		"balances": [
			{"owner": %q, "mint": %q, "amount": "12.5"},
			{"owner": %q, "mint": %q, "amount": "100"}
		]
	}`, alice, usdc, alice, nft, alice, alice, usdc, alice, nft)
}

func TestApplySeedsLedger(t *testing.T) {
	alice, usdc, nft := pk(1), pk(2), pk(3)
	g, err := Parse([]byte(doc(alice, usdc, nft)))
	require.NoError(t, err)

	state := ledger.NewMemoryState()
	res, err := Apply(state, g)
	require.NoError(t, err)
	assert.Equal(t, &Result{Accounts: 1, Mints: 2, TokenAccounts: 2}, res)

	data, err := state.Read(keylet.Account(alice))
	require.NoError(t, err)
	root, err := sle.ParseAccountRoot(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), root.Sequence)

	data, err = state.Read(keylet.TokenAccount(alice, usdc))
	require.NoError(t, err)
	acc, err := sle.ParseTokenAccount(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(12_500_000), acc.Amount)

	data, err = state.Read(keylet.Mint(nft))
	require.NoError(t, err)
	mint, err := sle.ParseMint(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), mint.Supply)
	assert.Equal(t, [32]byte(alice), mint.Authority)
}

func TestApplyRejectsNonEmptyState(t *testing.T) {
	g, err := Parse([]byte(doc(pk(1), pk(2), pk(3))))
	require.NoError(t, err)

	state := ledger.NewMemoryState()
	_, err = Apply(state, g)
	require.NoError(t, err)

	_, err = Apply(state, g)
	require.ErrorIs(t, err, ErrStateNotEmpty)
}

func TestApplyErrorsLeaveStateEmpty(t *testing.T) {
	alice := pk(1)
	tests := []struct {
		name string
		g    *Genesis
		err  error
	}{
		{
			name: "unknown mint",
			g: &Genesis{
				Accounts: []Account{{Address: alice}},
				Balances: []Balance{{Owner: alice, Mint: pk(9), Amount: "1"}},
			},
			err: ErrUnknownMint,
		},
		{
			name: "duplicate account",
			g:    &Genesis{Accounts: []Account{{Address: alice}, {Address: alice}}},
			err:  ErrDuplicateEntry,
		},
		{
			name: "fractional units",
			g: &Genesis{
				Mints:    []Mint{{Address: pk(2), Authority: alice}},
				Balances: []Balance{{Owner: alice, Mint: pk(2), Amount: "0.5"}},
			},
			err: sle.ErrInvalidAmount,
		},
		{
			name: "missing authority",
			g:    &Genesis{Mints: []Mint{{Address: pk(2)}}},
			err:  ErrMissingAuthority,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := ledger.NewMemoryState()
			_, err := Apply(state, tt.g)
			require.ErrorIs(t, err, tt.err)

			n, err := state.Len()
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestParseRejectsBadAddress(t *testing.T) {
	_, err := Parse([]byte(`{"accounts":[{"address":"not-base58!"}]}`))
	require.Error(t, err)
}
