package market

import (
	"testing"
	"time"

	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/market"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	fpsTesting "github.com/LeJamon/goFixedPriceSale/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseMarketOwnerOnly(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).Build()
	mallory := sale.Buyer("mallory", 0)

	fpsTesting.RequireTxFail(t, sale.Close(mallory), tx.TecUNAUTHORIZED)
	fpsTesting.RequireMarketState(t, env, sale.Market, sle.MarketStateCreated)

	fpsTesting.RequireTxSuccess(t, sale.Close(sale.Admin))
	fpsTesting.RequireTxFail(t, sale.Close(sale.Admin), tx.TecMARKET_WRONG_STATE)
}

func TestCloseFromEveryOpenState(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, env *fpsTesting.TestEnv, sale *Sale)
		want  sle.MarketState
	}{
		{
			name:  "created",
			setup: func(*testing.T, *fpsTesting.TestEnv, *Sale) {},
			want:  sle.MarketStateCreated,
		},
		{
			name: "active",
			setup: func(t *testing.T, env *fpsTesting.TestEnv, sale *Sale) {
				env.AdvanceTime(2 * time.Hour)
				fpsTesting.RequireTxSuccess(t, sale.Buy(sale.Buyer("alice", 5)))
			},
			want: sle.MarketStateActive,
		},
		{
			name: "ended",
			setup: func(t *testing.T, env *fpsTesting.TestEnv, sale *Sale) {
				env.AdvanceTime(2 * time.Hour)
				fpsTesting.RequireTxSuccess(t, sale.Buy(sale.Buyer("alice", 5)))
				fpsTesting.RequireTxSuccess(t, sale.Buy(sale.Buyer("bob", 5)))
			},
			want: sle.MarketStateEnded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := fpsTesting.NewTestEnv(t)
			sale := NewSale(env).MaxSupply(2).StartsIn(time.Hour).Build()
			tt.setup(t, env, sale)
			fpsTesting.RequireMarketState(t, env, sale.Market, tt.want)

			fpsTesting.RequireTxSuccess(t, sale.Close(sale.Admin))
			fpsTesting.RequireMarketState(t, env, sale.Market, sle.MarketStateClosed)
		})
	}
}

func TestBuyAfterClose(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).Build()
	alice := sale.Buyer("alice", 10)

	fpsTesting.RequireTxSuccess(t, sale.Close(sale.Admin))
	fpsTesting.AssertNoLedgerChange(t, env, func() {
		fpsTesting.RequireTxFail(t, sale.Buy(alice), tx.TecMARKET_NOT_ACTIVE)
	})
	fpsTesting.RequireBalance(t, env, alice, sale.TreasuryMint, 10)
}

func TestWithdrawRequiresClosedMarket(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).MaxSupply(1).Build()
	alice := sale.Buyer("alice", 10)

	fpsTesting.RequireTxFail(t, sale.Withdraw(sale.Admin), tx.TecMARKET_WRONG_STATE)

	// Ended is not enough.
	fpsTesting.RequireTxSuccess(t, sale.Buy(alice))
	fpsTesting.RequireMarketState(t, env, sale.Market, sle.MarketStateEnded)
	fpsTesting.RequireTxFail(t, sale.Withdraw(sale.Admin), tx.TecMARKET_WRONG_STATE)
	assert.Nil(t, env.PayoutTicket(sale.Market, sale.Admin))
}

func TestWithdrawPaysOwnerOnce(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).MaxSupply(10).Price(7).Build()
	for _, name := range []string{"alice", "bob", "carol"} {
		fpsTesting.RequireTxSuccess(t, sale.Buy(sale.Buyer(name, 7)))
	}
	fpsTesting.RequireTxSuccess(t, sale.Close(sale.Admin))

	mallory := sale.Buyer("mallory", 0)
	fpsTesting.RequireTxFail(t, sale.Withdraw(mallory), tx.TecUNAUTHORIZED)

	fpsTesting.AssertBalanceChange(t, env, sale.Admin, sale.TreasuryMint, 21, func() {
		fpsTesting.RequireTxSuccess(t, sale.Withdraw(sale.Admin))
	})
	ticket := env.PayoutTicket(sale.Market, sale.Admin)
	require.NotNil(t, ticket)
	assert.Equal(t, uint64(21), ticket.Amount)
	assert.Equal(t, env.Unix(), ticket.CreatedAt)

	fpsTesting.AssertNoLedgerChange(t, env, func() {
		fpsTesting.RequireTxFail(t, sale.Withdraw(sale.Admin), tx.TecALREADY_WITHDRAWN)
	})
}

func TestWithdrawNothingCollected(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).Build()
	fpsTesting.RequireTxSuccess(t, sale.Close(sale.Admin))

	fpsTesting.RequireTxSuccess(t, sale.Withdraw(sale.Admin))
	ticket := env.PayoutTicket(sale.Market, sale.Admin)
	require.NotNil(t, ticket)
	assert.Zero(t, ticket.Amount)
	fpsTesting.RequireTxFail(t, sale.Withdraw(sale.Admin), tx.TecALREADY_WITHDRAWN)
}

func TestWithdrawInsufficientEscrow(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).Price(5).Build()
	fpsTesting.RequireTxSuccess(t, sale.Buy(sale.Buyer("alice", 5)))
	fpsTesting.RequireTxSuccess(t, sale.Close(sale.Admin))

	// Drain the holder behind the program's back.
	env.SetTokenAmount(sale.TreasuryHolderKey(), 4)

	fpsTesting.AssertNoLedgerChange(t, env, func() {
		result := sale.Withdraw(sale.Admin)
		fpsTesting.RequireTxFail(t, result, tx.TefINSUFFICIENT_ESCROW)
		assert.True(t, result.Result.IsFatal())
		assert.False(t, result.IsRetry())
	})
}

func TestWithdrawRejectsForeignMarket(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).Build()
	fpsTesting.RequireTxSuccess(t, sale.Close(sale.Admin))

	w := market.NewWithdraw(sale.Admin.Address, sale.Market, sale.SellingResource, sale.ResourceMint)
	fpsTesting.RequireTxFail(t, env.Submit(w), tx.TemMALFORMED)

	w = market.NewWithdraw(sale.Admin.Address, sale.Market, sale.SellingResource, sale.TreasuryMint)
	w.PayoutTicketBump++
	fpsTesting.RequireTxFail(t, env.Submit(w), tx.TemMALFORMED)
}
