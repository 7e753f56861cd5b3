package market

import (
	"strings"
	"testing"
	"time"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/market"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	fpsTesting "github.com/LeJamon/goFixedPriceSale/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeMarket(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).Name("Genesis drop").Description("first pieces").
		MaxSupply(100).Price(1).PiecesInOneWallet(1).Lasts(24 * time.Hour).Build()

	m := env.Market(sale.Market)
	assert.Equal(t, "Genesis drop", m.Name)
	assert.Equal(t, "first pieces", m.Description)
	assert.Equal(t, sale.Admin.ID(), m.Owner)
	assert.Equal(t, sle.MarketStateCreated, m.State)
	assert.Equal(t, uint64(1), m.Price)
	require.NotNil(t, m.PiecesInOneWallet)
	assert.Equal(t, uint64(1), *m.PiecesInOneWallet)
	require.NotNil(t, m.EndDate)
	assert.Equal(t, m.StartDate+86400, *m.EndDate)
	assert.Zero(t, m.FundsCollected)
	assert.Equal(t, sale.TreasuryHolderKey(), m.TreasuryHolder)
	assert.Equal(t, keylet.TreasuryOwner(sale.TreasuryMint, sale.SellingResource).Bump, m.TreasuryOwnerBump)

	r := env.SellingResource(sale.SellingResource)
	assert.Equal(t, uint64(100), r.MaxSupply)
	assert.Zero(t, r.Supply)
	assert.Equal(t, sale.VaultKey(), r.Vault)
	assert.Equal(t, uint64(100), env.TokenAmount(sale.VaultKey()))
	fpsTesting.RequireBalance(t, env, sale.Admin, sale.ResourceMint, 0)
	assert.Zero(t, env.TokenAmount(sale.TreasuryHolderKey()))

	// Store, selling resource and market.
	fpsTesting.RequireOwnerCount(t, env, sale.Admin, 3)
	fpsTesting.RequireSequence(t, env, sale.Admin, 4)
}

func TestCreateStoreValidation(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	admin := fpsTesting.NewAccount("admin")
	env.Fund(admin)

	long := market.NewCreateStore(admin.Address, strings.Repeat("n", market.MaxNameLength+1), "")
	fpsTesting.RequireTxFail(t, env.Submit(long), tx.TemINVALID_PARAMETERS)

	bad := market.NewCreateStore(admin.Address, "ok", string([]byte{0xff, 0xfe}))
	fpsTesting.RequireTxFail(t, env.Submit(bad), tx.TemINVALID_PARAMETERS)

	fpsTesting.RequireTxSuccess(t, env.Submit(market.NewCreateStore(admin.Address, strings.Repeat("n", market.MaxNameLength), "")))
}

func TestInitSellingResourceChecks(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	admin := fpsTesting.NewAccount("admin")
	mallory := fpsTesting.NewAccount("mallory")
	env.Fund(admin, mallory)
	mint := env.CreateMint("art", admin, 0)
	env.MintTo(mint, admin, 5)
	env.MintTo(mint, mallory, 5)

	createStore := market.NewCreateStore(admin.Address, "Store", "")
	fpsTesting.RequireTxSuccess(t, env.Submit(createStore))
	store := createStore.StoreKeylet().Address()

	zero := market.NewInitSellingResource(admin.Address, store, mint, 0)
	fpsTesting.RequireTxFail(t, env.Submit(zero), tx.TemINVALID_PARAMETERS)

	foreign := market.NewInitSellingResource(mallory.Address, store, mint, 1)
	fpsTesting.RequireTxFail(t, env.Submit(foreign), tx.TecUNAUTHORIZED)

	tooMany := market.NewInitSellingResource(admin.Address, store, mint, 6)
	fpsTesting.AssertNoLedgerChange(t, env, func() {
		fpsTesting.RequireTxFail(t, env.Submit(tooMany), tx.TecINSUFFICIENT_FUNDS)
	})

	unknownMint := market.NewInitSellingResource(admin.Address, store, fpsTesting.NewAccount("nothing").Address, 1)
	fpsTesting.RequireTxFail(t, env.Submit(unknownMint), tx.TecNO_ENTRY)

	fpsTesting.RequireTxSuccess(t, env.Submit(market.NewInitSellingResource(admin.Address, store, mint, 3)))
	fpsTesting.RequireBalance(t, env, admin, mint, 2)

	again := market.NewInitSellingResource(admin.Address, store, mint, 1)
	fpsTesting.RequireTxFail(t, env.Submit(again), tx.TecDUPLICATE)
}

func TestCreateMarketChecks(t *testing.T) {
	env := fpsTesting.NewTestEnv(t)
	sale := NewSale(env).Build()
	mallory := sale.Buyer("mallory", 0)
	other := env.CreateMint("other", sale.Admin, 0)

	tests := []struct {
		name  string
		build func() *market.CreateMarket
		want  tx.Result
	}{
		{
			name: "start in the past",
			build: func() *market.CreateMarket {
				m := NewSale(env).CreateMarket(sale.Store, sale.SellingResource, other)
				m.StartDate = env.Unix() - 1
				return m
			},
			want: tx.TemINVALID_PARAMETERS,
		},
		{
			name: "end before start",
			build: func() *market.CreateMarket {
				m := NewSale(env).CreateMarket(sale.Store, sale.SellingResource, other)
				end := m.StartDate
				m.EndDate = &end
				return m
			},
			want: tx.TemINVALID_PARAMETERS,
		},
		{
			name: "zero cap",
			build: func() *market.CreateMarket {
				m := NewSale(env).CreateMarket(sale.Store, sale.SellingResource, other)
				m.PiecesInOneWallet = fpsTesting.Pieces(0)
				return m
			},
			want: tx.TemINVALID_PARAMETERS,
		},
		{
			name: "name too long",
			build: func() *market.CreateMarket {
				return NewSale(env).Name(strings.Repeat("x", market.MaxNameLength+1)).
					CreateMarket(sale.Store, sale.SellingResource, other)
			},
			want: tx.TemINVALID_PARAMETERS,
		},
		{
			name: "description too long",
			build: func() *market.CreateMarket {
				return NewSale(env).Description(strings.Repeat("x", market.MaxDescriptionLength+1)).
					CreateMarket(sale.Store, sale.SellingResource, other)
			},
			want: tx.TemINVALID_PARAMETERS,
		},
		{
			name: "not the store admin",
			build: func() *market.CreateMarket {
				return NewSale(env).Admin(mallory).CreateMarket(sale.Store, sale.SellingResource, other)
			},
			want: tx.TecUNAUTHORIZED,
		},
		{
			name: "unknown treasury mint",
			build: func() *market.CreateMarket {
				return NewSale(env).CreateMarket(sale.Store, sale.SellingResource, fpsTesting.NewAccount("nothing").Address)
			},
			want: tx.TecNO_ENTRY,
		},
		{
			name: "resource already backs a market",
			build: func() *market.CreateMarket {
				return NewSale(env).CreateMarket(sale.Store, sale.SellingResource, other)
			},
			want: tx.TecRESOURCE_IN_USE,
		},
		{
			name: "same treasury mint again",
			build: func() *market.CreateMarket {
				return NewSale(env).CreateMarket(sale.Store, sale.SellingResource, sale.TreasuryMint)
			},
			want: tx.TecRESOURCE_IN_USE,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fpsTesting.AssertNoLedgerChange(t, env, func() {
				fpsTesting.RequireTxFail(t, env.Submit(tt.build()), tt.want)
			})
		})
	}
}
