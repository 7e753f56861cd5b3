package market

import (
	"errors"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
)

// CreateMarket opens a fixed-price market over a selling resource. The
// market starts in Created and becomes purchasable at StartDate. Proceeds
// are paid in TreasuryMint into a treasury holder owned by the program.
type CreateMarket struct {
	tx.BaseTx

	Store             solana.PublicKey `json:"Store" codec:"Store"`
	SellingResource   solana.PublicKey `json:"SellingResource" codec:"SellingResource"`
	TreasuryMint      solana.PublicKey `json:"TreasuryMint" codec:"TreasuryMint"`
	Name              string           `json:"Name" codec:"Name"`
	Description       string           `json:"Description,omitempty" codec:"Description"`
	Mutable           bool             `json:"Mutable,omitempty" codec:"Mutable"`
	Price             uint64           `json:"Price" codec:"Price"`
	PiecesInOneWallet *uint64          `json:"PiecesInOneWallet,omitempty" codec:"PiecesInOneWallet,omitempty"`
	StartDate         int64            `json:"StartDate" codec:"StartDate"`
	EndDate           *int64           `json:"EndDate,omitempty" codec:"EndDate,omitempty"`
}

// NewCreateMarket creates a new CreateMarket transaction
func NewCreateMarket(admin, store, sellingResource, treasuryMint solana.PublicKey, name string, price uint64, startDate int64) *CreateMarket {
	return &CreateMarket{
		BaseTx:          *tx.NewBaseTx(tx.TypeCreateMarket, admin),
		Store:           store,
		SellingResource: sellingResource,
		TreasuryMint:    treasuryMint,
		Name:            name,
		Price:           price,
		StartDate:       startDate,
	}
}

// TxType returns the transaction type
func (m *CreateMarket) TxType() tx.Type {
	return tx.TypeCreateMarket
}

// MarketKeylet returns the address of the market this transaction creates.
func (m *CreateMarket) MarketKeylet() keylet.Keylet {
	return keylet.Market(m.Store, m.SellingResource, m.Sequence)
}

// Validate validates the CreateMarket transaction
func (m *CreateMarket) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}
	if err := requireAddresses(m.Store, m.SellingResource, m.TreasuryMint); err != nil {
		return err
	}
	if err := validateText("Name", m.Name, MaxNameLength); err != nil {
		return err
	}
	if err := validateText("Description", m.Description, MaxDescriptionLength); err != nil {
		return err
	}
	if m.PiecesInOneWallet != nil && *m.PiecesInOneWallet == 0 {
		return errors.New("temINVALID_PARAMETERS: PiecesInOneWallet must be at least 1")
	}
	if m.StartDate < 0 {
		return errors.New("temINVALID_PARAMETERS: StartDate must not be negative")
	}
	if m.EndDate != nil && *m.EndDate <= m.StartDate {
		return errors.New("temINVALID_PARAMETERS: EndDate must be after StartDate")
	}
	return nil
}

// Accounts declares the addresses used by the transaction
func (m *CreateMarket) Accounts() []tx.AccountMeta {
	return []tx.AccountMeta{
		tx.Readonly(m.Store),
		tx.Writable(m.SellingResource),
		tx.Readonly(m.TreasuryMint),
		tx.Writable(m.MarketKeylet().Key),
		tx.Writable(keylet.TreasuryHolder(m.TreasuryMint, m.SellingResource).Key),
	}
}

// Apply applies a CreateMarket transaction
func (m *CreateMarket) Apply(ctx *tx.ApplyContext) tx.Result {
	// The start must not lie in the past at execution time.
	if m.StartDate < ctx.Now {
		return tx.TemINVALID_PARAMETERS
	}

	store, res := load(ctx.View, at(entry.TypeStore, m.Store), sle.ParseStore)
	if !res.IsSuccess() {
		return res
	}
	resourceKey := at(entry.TypeSellingResource, m.SellingResource)
	resource, res := load(ctx.View, resourceKey, sle.ParseSellingResource)
	if !res.IsSuccess() {
		return res
	}
	if resource.Store != m.Store {
		return tx.TemINVALID_PARAMETERS
	}
	if store.Admin != ctx.AccountID || resource.Owner != ctx.AccountID {
		return tx.TecUNAUTHORIZED
	}
	if _, res := load(ctx.View, keylet.Mint(m.TreasuryMint), sle.ParseMint); !res.IsSuccess() {
		return res
	}
	if err := resource.Attach(); err != nil {
		return tx.TecRESOURCE_IN_USE
	}

	marketKey := m.MarketKeylet()
	found, res := exists(ctx.View, marketKey)
	if !res.IsSuccess() {
		return res
	}
	if found {
		return tx.TecDUPLICATE
	}

	// Each (treasury mint, selling resource) pair has one treasury holder,
	// and it belongs to a single market.
	treasuryOwner := keylet.TreasuryOwner(m.TreasuryMint, m.SellingResource)
	holder, created, err := tx.EnsureTokenAccount(ctx.View, treasuryOwner.Key, m.TreasuryMint)
	if err != nil {
		return tx.TokenResult(err)
	}
	if !created {
		return tx.TecDUPLICATE
	}

	market := &sle.Market{
		LedgerEntryType:   entry.TypeMarket,
		Store:             m.Store,
		Owner:             ctx.AccountID,
		SellingResource:   m.SellingResource,
		TreasuryMint:      m.TreasuryMint,
		TreasuryHolder:    holder,
		TreasuryOwner:     treasuryOwner.Key,
		TreasuryOwnerBump: treasuryOwner.Bump,
		Name:              m.Name,
		Description:       m.Description,
		Mutable:           m.Mutable,
		Price:             m.Price,
		PiecesInOneWallet: m.PiecesInOneWallet,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		State:             sle.MarketStateCreated,
		CreationSequence:  m.Sequence,
	}
	if res := insert(ctx.View, marketKey, market); !res.IsSuccess() {
		return res
	}
	if res := update(ctx.View, resourceKey, resource); !res.IsSuccess() {
		return res
	}

	ctx.Account.OwnerCount++
	return tx.TesSUCCESS
}
