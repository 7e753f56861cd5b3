package market

import (
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
)

// ClaimResource returns the unsold units of a closed market's selling
// resource from the vault to the admin's resource token account. The
// resource backs only that market, and it is capped at what was sold and
// marked exhausted.
type ClaimResource struct {
	tx.BaseTx

	Market          solana.PublicKey `json:"Market" codec:"Market"`
	SellingResource solana.PublicKey `json:"SellingResource" codec:"SellingResource"`
	Store           solana.PublicKey `json:"Store" codec:"Store"`
	ResourceMint    solana.PublicKey `json:"ResourceMint" codec:"ResourceMint"`
	VaultOwnerBump  uint8            `json:"VaultOwnerBump" codec:"VaultOwnerBump"`
}

// NewClaimResource creates a ClaimResource transaction with the vault owner bump derived
func NewClaimResource(admin, market, sellingResource, store, resourceMint solana.PublicKey) *ClaimResource {
	return &ClaimResource{
		BaseTx:          *tx.NewBaseTx(tx.TypeClaimResource, admin),
		Market:          market,
		SellingResource: sellingResource,
		Store:           store,
		ResourceMint:    resourceMint,
		VaultOwnerBump:  keylet.VaultOwner(resourceMint, store).Bump,
	}
}

// TxType returns the transaction type
func (c *ClaimResource) TxType() tx.Type {
	return tx.TypeClaimResource
}

// Validate validates the ClaimResource transaction
func (c *ClaimResource) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if err := requireAddresses(c.Market, c.SellingResource, c.Store, c.ResourceMint); err != nil {
		return err
	}
	return checkBump(keylet.VaultOwner(c.ResourceMint, c.Store), c.VaultOwnerBump)
}

// Accounts declares the addresses used by the transaction
func (c *ClaimResource) Accounts() []tx.AccountMeta {
	return []tx.AccountMeta{
		tx.Readonly(c.Market),
		tx.Readonly(c.Store),
		tx.Readonly(c.ResourceMint),
		tx.Writable(c.SellingResource),
		tx.Writable(keylet.Vault(c.ResourceMint, c.Store).Key),
		tx.Writable(keylet.TokenAccount(c.Account, c.ResourceMint).Key),
	}
}

// Apply applies a ClaimResource transaction
func (c *ClaimResource) Apply(ctx *tx.ApplyContext) tx.Result {
	market, res := load(ctx.View, at(entry.TypeMarket, c.Market), sle.ParseMarket)
	if !res.IsSuccess() {
		return res
	}
	if market.SellingResource != c.SellingResource || market.Store != c.Store {
		return tx.TemMALFORMED
	}
	if market.StateAt(ctx.Now) != sle.MarketStateClosed {
		return tx.TecMARKET_WRONG_STATE
	}

	resourceKey := at(entry.TypeSellingResource, c.SellingResource)
	resource, res := load(ctx.View, resourceKey, sle.ParseSellingResource)
	if !res.IsSuccess() {
		return res
	}
	if resource.ResourceMint != c.ResourceMint {
		return tx.TemMALFORMED
	}
	if resource.Owner != ctx.AccountID {
		return tx.TecUNAUTHORIZED
	}

	remaining := resource.Remaining()
	destination, _, err := tx.EnsureTokenAccount(ctx.View, ctx.AccountID, c.ResourceMint)
	if err != nil {
		return tx.TokenResult(err)
	}
	if remaining > 0 {
		if err := tx.TransferTokens(ctx.View, resource.Vault, destination, resource.VaultOwner, remaining); err != nil {
			ctx.Logger.Error("vault claim failed", "selling_resource", c.SellingResource.String(), "error", err)
			return tx.TefINTERNAL
		}
	}

	resource.MaxSupply = resource.Supply
	resource.Exhaust()
	return update(ctx.View, resourceKey, resource)
}
