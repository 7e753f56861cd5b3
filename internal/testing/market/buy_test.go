package market

import (
	"testing"
	"time"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	fpsTesting "github.com/LeJamon/goFixedPriceSale/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyMovesPriceAndUnit(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).MaxSupply(3).Price(250).Build()
	alice := sale.Buyer("alice", 1000)

	result := sale.Buy(alice)
	fpsTesting.RequireTxSuccess(t, result)

	fpsTesting.RequireBalance(t, env, alice, sale.TreasuryMint, 750)
	fpsTesting.RequireBalance(t, env, alice, sale.ResourceMint, 1)
	assert.Equal(t, uint64(250), env.TokenAmount(sale.TreasuryHolderKey()))
	assert.Equal(t, uint64(2), env.TokenAmount(sale.VaultKey()))

	m := env.Market(sale.Market)
	assert.Equal(t, uint64(250), m.FundsCollected)
	assert.Equal(t, sle.MarketStateActive, m.State)

	history := env.TradeHistory(sale.Market, alice)
	require.NotNil(t, history)
	assert.Equal(t, uint64(1), history.AlreadyBought)
	assert.Equal(t, keylet.TradeHistory(sale.Market, alice.ID()).Bump, history.Bump)

	// The buyer's resource account, the trade history and every counter
	// show up in the metadata.
	require.NotNil(t, result.Metadata)
	var created int
	for _, n := range result.Metadata.AffectedNodes {
		if n.NodeType == "CreatedNode" {
			created++
		}
	}
	assert.Equal(t, 2, created)
}

func TestBuyWalletCap(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).MaxSupply(10).Price(1).PiecesInOneWallet(2).Build()
	alice := sale.Buyer("alice", 10)
	bob := sale.Buyer("bob", 10)

	fpsTesting.RequireTxSuccess(t, sale.Buy(alice))
	fpsTesting.RequireTxSuccess(t, sale.Buy(alice))
	fpsTesting.AssertNoLedgerChange(t, env, func() {
		fpsTesting.RequireTxFail(t, sale.Buy(alice), tx.TecWALLET_CAP_EXCEEDED)
	})

	// Caps are per wallet.
	fpsTesting.RequireTxSuccess(t, sale.Buy(bob))
	assert.Equal(t, uint64(2), env.TradeHistory(sale.Market, alice).AlreadyBought)
	assert.Equal(t, uint64(1), env.TradeHistory(sale.Market, bob).AlreadyBought)
	assert.Equal(t, uint64(3), env.SellingResource(sale.SellingResource).Supply)
}

func TestBuyWithoutCap(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).MaxSupply(5).Price(1).Build()
	alice := sale.Buyer("alice", 10)

	for i := 0; i < 5; i++ {
		fpsTesting.RequireTxSuccess(t, sale.Buy(alice))
	}
	fpsTesting.RequireBalance(t, env, alice, sale.ResourceMint, 5)
}

func TestBuyInsufficientFunds(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).Price(100).Build()
	poor := sale.Buyer("poor", 99)
	broke := sale.Buyer("broke", 0)

	fpsTesting.AssertNoLedgerChange(t, env, func() {
		fpsTesting.RequireTxFail(t, sale.Buy(poor), tx.TecINSUFFICIENT_FUNDS)
		// No payment account at all.
		fpsTesting.RequireTxFail(t, sale.Buy(broke), tx.TecINSUFFICIENT_FUNDS)
	})
	assert.Nil(t, env.TradeHistory(sale.Market, poor))
}

func TestBuyFreeMarket(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).Price(0).Build()
	alice := sale.Buyer("alice", 0)

	fpsTesting.RequireTxSuccess(t, sale.Buy(alice))
	fpsTesting.RequireBalance(t, env, alice, sale.ResourceMint, 1)
	assert.Zero(t, env.Market(sale.Market).FundsCollected)
}

func TestBuyOutsideWindow(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).StartsIn(time.Hour).Lasts(time.Hour).Build()
	alice := sale.Buyer("alice", 10)

	fpsTesting.RequireMarketState(t, env, sale.Market, sle.MarketStateCreated)
	fpsTesting.AssertNoLedgerChange(t, env, func() {
		fpsTesting.RequireTxFail(t, sale.Buy(alice), tx.TecMARKET_NOT_ACTIVE)
	})

	env.AdvanceTime(time.Hour)
	fpsTesting.RequireTxSuccess(t, sale.Buy(alice))
	fpsTesting.RequireMarketState(t, env, sale.Market, sle.MarketStateActive)

	env.AdvanceTime(time.Hour - time.Second)
	fpsTesting.RequireTxSuccess(t, sale.Buy(alice))

	// The end date is exclusive.
	env.AdvanceTime(time.Second)
	fpsTesting.AssertNoLedgerChange(t, env, func() {
		fpsTesting.RequireTxFail(t, sale.Buy(alice), tx.TecMARKET_NOT_ACTIVE)
	})
	assert.Equal(t, sle.MarketStateEnded, env.Market(sale.Market).StateAt(env.Unix()))
}

func TestBuyLastUnitEndsMarket(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).MaxSupply(2).Build()
	alice := sale.Buyer("alice", 10)
	bob := sale.Buyer("bob", 10)

	fpsTesting.RequireTxSuccess(t, sale.Buy(alice))
	fpsTesting.RequireTxSuccess(t, sale.Buy(bob))
	fpsTesting.RequireMarketState(t, env, sale.Market, sle.MarketStateEnded)
	assert.Zero(t, env.TokenAmount(sale.VaultKey()))
	assert.Equal(t, sle.SellingResourceExhausted, env.SellingResource(sale.SellingResource).State)

	fpsTesting.RequireTxFail(t, sale.Buy(alice), tx.TecMARKET_NOT_ACTIVE)
}

func TestBuyInsufficientSupply(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).MaxSupply(2).Build()
	alice := sale.Buyer("alice", 10)

	// A market stays active until its resource sells out, so the supply
	// check only fires on a ledger whose counters disagree.
	env.UpdateSellingResource(sale.SellingResource, func(r *sle.SellingResource) {
		r.Supply = r.MaxSupply
	})

	fpsTesting.AssertNoLedgerChange(t, env, func() {
		fpsTesting.RequireTxFail(t, sale.Buy(alice), tx.TecINSUFFICIENT_SUPPLY)
	})
	fpsTesting.RequireMarketState(t, env, sale.Market, sle.MarketStateActive)
}

func TestBuyRejectsMismatchedAccounts(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).Build()
	alice := sale.Buyer("alice", 10)

	wrongMint := sale.BuyTx(alice)
	wrongMint.TreasuryMint = sale.ResourceMint
	fpsTesting.RequireTxFail(t, env.Submit(wrongMint), tx.TemMALFORMED)

	wrongBump := sale.BuyTx(alice)
	wrongBump.TradeHistoryBump++
	fpsTesting.RequireTxFail(t, env.Submit(wrongBump), tx.TemMALFORMED)

	noMarket := sale.BuyTx(alice)
	noMarket.Market = sale.Store
	noMarket.TradeHistoryBump = keylet.TradeHistory(sale.Store, alice.ID()).Bump
	fpsTesting.RequireTxFail(t, env.Submit(noMarket), tx.TecNO_ENTRY)

	fpsTesting.RequireSequence(t, env, alice, 1)
}

func TestBuySigned(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).Build()
	alice := sale.Buyer("alice", 10)
	mallory := sale.Buyer("mallory", 10)

	fpsTesting.RequireTxFail(t, env.SubmitSignedWith(sale.BuyTx(alice), mallory), tx.TefBAD_SIGNATURE)
	fpsTesting.RequireTxSuccess(t, env.SubmitSigned(sale.BuyTx(alice)))
	fpsTesting.RequireBalance(t, env, alice, sale.ResourceMint, 1)
}
