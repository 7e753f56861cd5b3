package market

import (
	"errors"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
)

// Buy purchases one unit of a market's resource at the market price. The
// price is paid from the buyer's treasury-mint token account and the unit
// lands in the buyer's resource token account, created if needed.
type Buy struct {
	tx.BaseTx

	Market           solana.PublicKey `json:"Market" codec:"Market"`
	SellingResource  solana.PublicKey `json:"SellingResource" codec:"SellingResource"`
	Store            solana.PublicKey `json:"Store" codec:"Store"`
	ResourceMint     solana.PublicKey `json:"ResourceMint" codec:"ResourceMint"`
	TreasuryMint     solana.PublicKey `json:"TreasuryMint" codec:"TreasuryMint"`
	TradeHistoryBump uint8            `json:"TradeHistoryBump" codec:"TradeHistoryBump"`
	VaultOwnerBump   uint8            `json:"VaultOwnerBump" codec:"VaultOwnerBump"`
}

// NewBuy creates a Buy transaction with the bumps derived from its addresses
func NewBuy(buyer, market, sellingResource, store, resourceMint, treasuryMint solana.PublicKey) *Buy {
	return &Buy{
		BaseTx:           *tx.NewBaseTx(tx.TypeBuy, buyer),
		Market:           market,
		SellingResource:  sellingResource,
		Store:            store,
		ResourceMint:     resourceMint,
		TreasuryMint:     treasuryMint,
		TradeHistoryBump: keylet.TradeHistory(market, buyer).Bump,
		VaultOwnerBump:   keylet.VaultOwner(resourceMint, store).Bump,
	}
}

// TxType returns the transaction type
func (b *Buy) TxType() tx.Type {
	return tx.TypeBuy
}

// Validate validates the Buy transaction
func (b *Buy) Validate() error {
	if err := b.BaseTx.Validate(); err != nil {
		return err
	}
	if err := requireAddresses(b.Market, b.SellingResource, b.Store, b.ResourceMint, b.TreasuryMint); err != nil {
		return err
	}
	if err := checkBump(keylet.TradeHistory(b.Market, b.Account), b.TradeHistoryBump); err != nil {
		return err
	}
	return checkBump(keylet.VaultOwner(b.ResourceMint, b.Store), b.VaultOwnerBump)
}

// Accounts declares the addresses used by the transaction
func (b *Buy) Accounts() []tx.AccountMeta {
	return []tx.AccountMeta{
		tx.Writable(b.Market),
		tx.Writable(b.SellingResource),
		tx.Writable(keylet.TradeHistory(b.Market, b.Account).Key),
		tx.Writable(keylet.TokenAccount(b.Account, b.TreasuryMint).Key),
		tx.Writable(keylet.TreasuryHolder(b.TreasuryMint, b.SellingResource).Key),
		tx.Writable(keylet.Vault(b.ResourceMint, b.Store).Key),
		tx.Writable(keylet.TokenAccount(b.Account, b.ResourceMint).Key),
		tx.Readonly(b.Store),
		tx.Readonly(b.ResourceMint),
		tx.Readonly(b.TreasuryMint),
	}
}

// Apply applies a Buy transaction. Checks run in a fixed order: market
// window, supply, wallet cap, then payment.
func (b *Buy) Apply(ctx *tx.ApplyContext) tx.Result {
	marketKey := at(entry.TypeMarket, b.Market)
	market, res := load(ctx.View, marketKey, sle.ParseMarket)
	if !res.IsSuccess() {
		return res
	}
	if market.SellingResource != b.SellingResource || market.Store != b.Store || market.TreasuryMint != b.TreasuryMint {
		return tx.TemMALFORMED
	}

	if market.StateAt(ctx.Now) != sle.MarketStateActive || !market.InWindow(ctx.Now) {
		return tx.TecMARKET_NOT_ACTIVE
	}

	resourceKey := at(entry.TypeSellingResource, b.SellingResource)
	resource, res := load(ctx.View, resourceKey, sle.ParseSellingResource)
	if !res.IsSuccess() {
		return res
	}
	if resource.ResourceMint != b.ResourceMint {
		return tx.TemMALFORMED
	}

	// (a) supply
	if err := resource.Reserve(); err != nil {
		return tx.TecINSUFFICIENT_SUPPLY
	}

	// (b) wallet cap
	historyKey := keylet.TradeHistory(b.Market, ctx.AccountID)
	history, res := load(ctx.View, historyKey, sle.ParseTradeHistory)
	newHistory := false
	switch res {
	case tx.TesSUCCESS:
	case tx.TecNO_ENTRY:
		history = sle.NewTradeHistory(b.Market, ctx.AccountID, historyKey.Bump)
		newHistory = true
	default:
		return res
	}
	if err := history.RecordPurchase(1, market.PiecesInOneWallet); err != nil {
		if errors.Is(err, sle.ErrWalletCapExceeded) {
			return tx.TecWALLET_CAP_EXCEEDED
		}
		return tx.TefINTERNAL
	}

	// (c) payment into the treasury holder
	if market.Price > 0 {
		payment := keylet.TokenAccount(ctx.AccountID, b.TreasuryMint).Key
		if err := tx.TransferTokens(ctx.View, payment, market.TreasuryHolder, ctx.AccountID, market.Price); err != nil {
			if errors.Is(err, sle.ErrInsufficientBalance) || errors.Is(err, tx.ErrTokenAccountNotFound) {
				return tx.TecINSUFFICIENT_FUNDS
			}
			return tx.TokenResult(err)
		}
	}
	if err := market.Collect(market.Price); err != nil {
		return tx.TefINTERNAL
	}

	// (d) release one unit from the vault
	destination, _, err := tx.EnsureTokenAccount(ctx.View, ctx.AccountID, b.ResourceMint)
	if err != nil {
		return tx.TokenResult(err)
	}
	if err := tx.TransferTokens(ctx.View, resource.Vault, destination, resource.VaultOwner, 1); err != nil {
		// The vault always holds the unsold supply.
		ctx.Logger.Error("vault release failed", "market", b.Market.String(), "error", err)
		return tx.TefINTERNAL
	}

	// (e) counters and state
	if market.State == sle.MarketStateCreated {
		if err := market.Advance(sle.MarketStateActive); err != nil {
			return tx.TefINTERNAL
		}
	}
	if resource.SoldOut() {
		if err := market.Advance(sle.MarketStateEnded); err != nil {
			return tx.TefINTERNAL
		}
		resource.Exhaust()
	}

	if res := update(ctx.View, marketKey, market); !res.IsSuccess() {
		return res
	}
	if res := update(ctx.View, resourceKey, resource); !res.IsSuccess() {
		return res
	}
	if newHistory {
		return insert(ctx.View, historyKey, history)
	}
	return update(ctx.View, historyKey, history)
}
