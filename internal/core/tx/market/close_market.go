package market

import (
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
)

// CloseMarket closes a market for good. Only the market owner may close
// it, from any state except Closed. No funds move.
type CloseMarket struct {
	tx.BaseTx

	Market solana.PublicKey `json:"Market" codec:"Market"`
}

// NewCloseMarket creates a new CloseMarket transaction
func NewCloseMarket(owner, market solana.PublicKey) *CloseMarket {
	return &CloseMarket{
		BaseTx: *tx.NewBaseTx(tx.TypeCloseMarket, owner),
		Market: market,
	}
}

// TxType returns the transaction type
func (c *CloseMarket) TxType() tx.Type {
	return tx.TypeCloseMarket
}

// Validate validates the CloseMarket transaction
func (c *CloseMarket) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	return requireAddresses(c.Market)
}

// Accounts declares the market as writable
func (c *CloseMarket) Accounts() []tx.AccountMeta {
	return []tx.AccountMeta{tx.Writable(c.Market)}
}

// Apply applies a CloseMarket transaction
func (c *CloseMarket) Apply(ctx *tx.ApplyContext) tx.Result {
	marketKey := at(entry.TypeMarket, c.Market)
	market, res := load(ctx.View, marketKey, sle.ParseMarket)
	if !res.IsSuccess() {
		return res
	}
	if market.Owner != ctx.AccountID {
		return tx.TecUNAUTHORIZED
	}
	if market.State == sle.MarketStateClosed {
		return tx.TecMARKET_WRONG_STATE
	}

	if err := market.Advance(sle.MarketStateClosed); err != nil {
		return tx.TefINTERNAL
	}
	return update(ctx.View, marketKey, market)
}
