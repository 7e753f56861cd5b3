// Package market holds the scenario tests of the sale program and the
// builders they share.
package market

import (
	"fmt"
	"time"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/market"
	"github.com/LeJamon/goFixedPriceSale/internal/testing"
	"github.com/gagliardetto/solana-go"
)

// SaleBuilder provides a fluent interface for setting up a store, a
// selling resource and a market over it.
type SaleBuilder struct {
	env         *testing.TestEnv
	admin       *testing.Account
	name        string
	description string
	maxSupply   uint64
	price       uint64
	pieces      *uint64
	startsIn    time.Duration
	duration    *time.Duration
	mutable     bool
	decimals    uint8
}

// NewSale creates a SaleBuilder with a supply of 10 units priced at 1.
func NewSale(env *testing.TestEnv) *SaleBuilder {
	return &SaleBuilder{
		env:       env,
		admin:     testing.NewAccount("admin"),
		name:      "Sale",
		maxSupply: 10,
		price:     1,
	}
}

// Admin sets the store admin and market owner.
func (b *SaleBuilder) Admin(acc *testing.Account) *SaleBuilder {
	b.admin = acc
	return b
}

// Name sets the market name.
func (b *SaleBuilder) Name(name string) *SaleBuilder {
	b.name = name
	return b
}

// Description sets the market description.
func (b *SaleBuilder) Description(d string) *SaleBuilder {
	b.description = d
	return b
}

// MaxSupply sets the number of units escrowed for sale.
func (b *SaleBuilder) MaxSupply(n uint64) *SaleBuilder {
	b.maxSupply = n
	return b
}

// Price sets the unit price in treasury base units.
func (b *SaleBuilder) Price(p uint64) *SaleBuilder {
	b.price = p
	return b
}

// PiecesInOneWallet sets the per-wallet cap.
func (b *SaleBuilder) PiecesInOneWallet(n uint64) *SaleBuilder {
	b.pieces = &n
	return b
}

// StartsIn delays the market start relative to the ledger clock.
func (b *SaleBuilder) StartsIn(d time.Duration) *SaleBuilder {
	b.startsIn = d
	return b
}

// Lasts sets an end date d after the start.
func (b *SaleBuilder) Lasts(d time.Duration) *SaleBuilder {
	b.duration = &d
	return b
}

// Mutable allows ChangeMarket before the start.
func (b *SaleBuilder) Mutable() *SaleBuilder {
	b.mutable = true
	return b
}

// TreasuryDecimals sets the decimals of the treasury mint.
func (b *SaleBuilder) TreasuryDecimals(d uint8) *SaleBuilder {
	b.decimals = d
	return b
}

// CreateMarket returns the CreateMarket transaction the builder would
// submit for an existing store and selling resource.
func (b *SaleBuilder) CreateMarket(store, sellingResource, treasuryMint solana.PublicKey) *market.CreateMarket {
	start := b.env.Unix() + int64(b.startsIn/time.Second)
	m := market.NewCreateMarket(b.admin.Address, store, sellingResource, treasuryMint, b.name, b.price, start)
	m.Description = b.description
	m.Mutable = b.mutable
	m.PiecesInOneWallet = b.pieces
	if b.duration != nil {
		end := start + int64(*b.duration/time.Second)
		m.EndDate = &end
	}
	return m
}

// Build funds the admin, creates the mints and submits CreateStore,
// InitSellingResource and CreateMarket. It fails the test on any error.
func (b *SaleBuilder) Build() *Sale {
	env := b.env
	env.Fund(b.admin)

	resourceMint := env.CreateMint(b.name+"/resource", b.admin, 0)
	treasuryMint := env.CreateMint(b.name+"/treasury", b.admin, b.decimals)
	env.MintTo(resourceMint, b.admin, b.maxSupply)

	createStore := market.NewCreateStore(b.admin.Address, b.name+" store", "")
	mustSucceed(env.Submit(createStore), "CreateStore")
	store := createStore.StoreKeylet().Address()

	initResource := market.NewInitSellingResource(b.admin.Address, store, resourceMint, b.maxSupply)
	mustSucceed(env.Submit(initResource), "InitSellingResource")
	sellingResource := keylet.SellingResource(store, resourceMint).Address()

	createMarket := b.CreateMarket(store, sellingResource, treasuryMint)
	mustSucceed(env.Submit(createMarket), "CreateMarket")

	return &Sale{
		env:             env,
		Admin:           b.admin,
		Store:           store,
		ResourceMint:    resourceMint,
		TreasuryMint:    treasuryMint,
		SellingResource: sellingResource,
		Market:          createMarket.MarketKeylet().Address(),
	}
}

func mustSucceed(res testing.TxResult, what string) {
	if !res.Success {
		panic(fmt.Sprintf("%s failed: %s", what, res.Code))
	}
}

// Sale is a created market and the addresses around it.
type Sale struct {
	env *testing.TestEnv

	Admin           *testing.Account
	Store           solana.PublicKey
	ResourceMint    solana.PublicKey
	TreasuryMint    solana.PublicKey
	SellingResource solana.PublicKey
	Market          solana.PublicKey
}

// Buyer funds a new wallet and gives it amount treasury units.
func (s *Sale) Buyer(name string, amount uint64) *testing.Account {
	acc := testing.NewAccount(name)
	s.env.Fund(acc)
	if amount > 0 {
		s.env.MintTo(s.TreasuryMint, acc, amount)
	}
	return acc
}

// BuyTx returns a Buy transaction for buyer.
func (s *Sale) BuyTx(buyer *testing.Account) *market.Buy {
	return market.NewBuy(buyer.Address, s.Market, s.SellingResource, s.Store, s.ResourceMint, s.TreasuryMint)
}

// Buy submits a purchase by buyer.
func (s *Sale) Buy(buyer *testing.Account) testing.TxResult {
	return s.env.Submit(s.BuyTx(buyer))
}

// Close submits CloseMarket signed by signer.
func (s *Sale) Close(signer *testing.Account) testing.TxResult {
	return s.env.Submit(market.NewCloseMarket(signer.Address, s.Market))
}

// Withdraw submits a Withdraw by payee.
func (s *Sale) Withdraw(payee *testing.Account) testing.TxResult {
	return s.env.Submit(market.NewWithdraw(payee.Address, s.Market, s.SellingResource, s.TreasuryMint))
}

// Claim submits ClaimResource signed by signer.
func (s *Sale) Claim(signer *testing.Account) testing.TxResult {
	return s.env.Submit(market.NewClaimResource(signer.Address, s.Market, s.SellingResource, s.Store, s.ResourceMint))
}

// Change returns an empty ChangeMarket signed by signer.
func (s *Sale) Change(signer *testing.Account) *market.ChangeMarket {
	return market.NewChangeMarket(signer.Address, s.Market)
}

// VaultKey returns the vault escrowing the resource.
func (s *Sale) VaultKey() [32]byte {
	return keylet.Vault(s.ResourceMint, s.Store).Key
}

// TreasuryHolderKey returns the token account collecting proceeds.
func (s *Sale) TreasuryHolderKey() [32]byte {
	return keylet.TreasuryHolder(s.TreasuryMint, s.SellingResource).Key
}
