package market

import (
	"errors"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
)

// ChangeMarket edits a mutable market before it opens. Nil fields are left
// unchanged. RemoveWalletCap drops the per-wallet cap; NewPiecesInOneWallet
// sets a new one and must be at least 1.
type ChangeMarket struct {
	tx.BaseTx

	Market               solana.PublicKey `json:"Market" codec:"Market"`
	NewName              *string          `json:"NewName,omitempty" codec:"NewName,omitempty"`
	NewDescription       *string          `json:"NewDescription,omitempty" codec:"NewDescription,omitempty"`
	Mutable              *bool            `json:"Mutable,omitempty" codec:"Mutable,omitempty"`
	NewPrice             *uint64          `json:"NewPrice,omitempty" codec:"NewPrice,omitempty"`
	NewPiecesInOneWallet *uint64          `json:"NewPiecesInOneWallet,omitempty" codec:"NewPiecesInOneWallet,omitempty"`
	RemoveWalletCap      bool             `json:"RemoveWalletCap,omitempty" codec:"RemoveWalletCap,omitempty"`
}

// NewChangeMarket creates an empty ChangeMarket transaction
func NewChangeMarket(owner, market solana.PublicKey) *ChangeMarket {
	return &ChangeMarket{
		BaseTx: *tx.NewBaseTx(tx.TypeChangeMarket, owner),
		Market: market,
	}
}

// TxType returns the transaction type
func (c *ChangeMarket) TxType() tx.Type {
	return tx.TypeChangeMarket
}

// Validate validates the ChangeMarket transaction
func (c *ChangeMarket) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if err := requireAddresses(c.Market); err != nil {
		return err
	}
	if c.NewName == nil && c.NewDescription == nil && c.Mutable == nil && c.NewPrice == nil &&
		c.NewPiecesInOneWallet == nil && !c.RemoveWalletCap {
		return errors.New("temINVALID_PARAMETERS: nothing to change")
	}
	if c.NewPiecesInOneWallet != nil {
		if c.RemoveWalletCap {
			return errors.New("temINVALID_PARAMETERS: NewPiecesInOneWallet conflicts with RemoveWalletCap")
		}
		if *c.NewPiecesInOneWallet == 0 {
			return errors.New("temINVALID_PARAMETERS: NewPiecesInOneWallet must be at least 1")
		}
	}
	if c.NewName != nil {
		if err := validateText("NewName", *c.NewName, MaxNameLength); err != nil {
			return err
		}
	}
	if c.NewDescription != nil {
		if err := validateText("NewDescription", *c.NewDescription, MaxDescriptionLength); err != nil {
			return err
		}
	}
	return nil
}

// Accounts declares the market as writable
func (c *ChangeMarket) Accounts() []tx.AccountMeta {
	return []tx.AccountMeta{tx.Writable(c.Market)}
}

// Apply applies a ChangeMarket transaction
func (c *ChangeMarket) Apply(ctx *tx.ApplyContext) tx.Result {
	marketKey := at(entry.TypeMarket, c.Market)
	market, res := load(ctx.View, marketKey, sle.ParseMarket)
	if !res.IsSuccess() {
		return res
	}
	if market.Owner != ctx.AccountID {
		return tx.TecUNAUTHORIZED
	}
	if !market.Mutable {
		return tx.TecNOT_MUTABLE
	}
	if market.StateAt(ctx.Now) != sle.MarketStateCreated {
		return tx.TecMARKET_WRONG_STATE
	}

	if c.NewName != nil {
		market.Name = *c.NewName
	}
	if c.NewDescription != nil {
		market.Description = *c.NewDescription
	}
	if c.Mutable != nil {
		market.Mutable = *c.Mutable
	}
	if c.NewPrice != nil {
		market.Price = *c.NewPrice
	}
	if c.NewPiecesInOneWallet != nil {
		pieces := *c.NewPiecesInOneWallet
		market.PiecesInOneWallet = &pieces
	}
	if c.RemoveWalletCap {
		market.PiecesInOneWallet = nil
	}

	return update(ctx.View, marketKey, market)
}
