package market

import (
	"errors"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
)

// InitSellingResource escrows MaxSupply units of a resource mint in a
// vault owned by the program and registers them for sale in a store.
// The units come from the admin's associated token account.
type InitSellingResource struct {
	tx.BaseTx

	Store        solana.PublicKey `json:"Store" codec:"Store"`
	ResourceMint solana.PublicKey `json:"ResourceMint" codec:"ResourceMint"`
	MaxSupply    uint64           `json:"MaxSupply" codec:"MaxSupply"`
}

// NewInitSellingResource creates a new InitSellingResource transaction
func NewInitSellingResource(admin, store, resourceMint solana.PublicKey, maxSupply uint64) *InitSellingResource {
	return &InitSellingResource{
		BaseTx:       *tx.NewBaseTx(tx.TypeInitSellingResource, admin),
		Store:        store,
		ResourceMint: resourceMint,
		MaxSupply:    maxSupply,
	}
}

// TxType returns the transaction type
func (r *InitSellingResource) TxType() tx.Type {
	return tx.TypeInitSellingResource
}

// Validate validates the InitSellingResource transaction
func (r *InitSellingResource) Validate() error {
	if err := r.BaseTx.Validate(); err != nil {
		return err
	}
	if err := requireAddresses(r.Store, r.ResourceMint); err != nil {
		return err
	}
	if r.MaxSupply == 0 {
		return errors.New("temINVALID_PARAMETERS: MaxSupply must be positive")
	}
	return nil
}

// Accounts declares the addresses used by the transaction
func (r *InitSellingResource) Accounts() []tx.AccountMeta {
	return []tx.AccountMeta{
		tx.Readonly(r.Store),
		tx.Readonly(r.ResourceMint),
		tx.Writable(keylet.SellingResource(r.Store, r.ResourceMint).Key),
		tx.Writable(keylet.Vault(r.ResourceMint, r.Store).Key),
		tx.Writable(keylet.TokenAccount(r.Account, r.ResourceMint).Key),
	}
}

// Apply applies an InitSellingResource transaction
func (r *InitSellingResource) Apply(ctx *tx.ApplyContext) tx.Result {
	store, res := load(ctx.View, at(entry.TypeStore, r.Store), sle.ParseStore)
	if !res.IsSuccess() {
		return res
	}
	if store.Admin != ctx.AccountID {
		return tx.TecUNAUTHORIZED
	}

	if _, res := load(ctx.View, keylet.Mint(r.ResourceMint), sle.ParseMint); !res.IsSuccess() {
		return res
	}

	resourceKey := keylet.SellingResource(r.Store, r.ResourceMint)
	found, res := exists(ctx.View, resourceKey)
	if !res.IsSuccess() {
		return res
	}
	if found {
		return tx.TecDUPLICATE
	}

	vaultOwner := keylet.VaultOwner(r.ResourceMint, r.Store)
	vault, _, err := tx.EnsureTokenAccount(ctx.View, vaultOwner.Key, r.ResourceMint)
	if err != nil {
		return tx.TokenResult(err)
	}

	source := keylet.TokenAccount(ctx.AccountID, r.ResourceMint).Key
	if err := tx.TransferTokens(ctx.View, source, vault, ctx.AccountID, r.MaxSupply); err != nil {
		if errors.Is(err, tx.ErrTokenAccountNotFound) {
			return tx.TecINSUFFICIENT_FUNDS
		}
		return tx.TokenResult(err)
	}

	resource := &sle.SellingResource{
		LedgerEntryType: entry.TypeSellingResource,
		Store:           r.Store,
		Owner:           ctx.AccountID,
		ResourceMint:    r.ResourceMint,
		Vault:           vault,
		VaultOwner:      vaultOwner.Key,
		VaultOwnerBump:  vaultOwner.Bump,
		MaxSupply:       r.MaxSupply,
		State:           sle.SellingResourceCreated,
	}
	if res := insert(ctx.View, resourceKey, resource); !res.IsSuccess() {
		return res
	}

	ctx.Account.OwnerCount++
	return tx.TesSUCCESS
}
