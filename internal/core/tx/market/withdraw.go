package market

import (
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
)

// Withdraw pays the signer's share of a closed market's proceeds from the
// treasury holder into the signer's treasury-mint token account. A payout
// ticket derived from (market, payee) records the payment; its existence
// blocks any second withdrawal.
type Withdraw struct {
	tx.BaseTx

	Market            solana.PublicKey `json:"Market" codec:"Market"`
	SellingResource   solana.PublicKey `json:"SellingResource" codec:"SellingResource"`
	TreasuryMint      solana.PublicKey `json:"TreasuryMint" codec:"TreasuryMint"`
	TreasuryOwnerBump uint8            `json:"TreasuryOwnerBump" codec:"TreasuryOwnerBump"`
	PayoutTicketBump  uint8            `json:"PayoutTicketBump" codec:"PayoutTicketBump"`
}

// NewWithdraw creates a Withdraw transaction with the bumps derived from its addresses
func NewWithdraw(payee, market, sellingResource, treasuryMint solana.PublicKey) *Withdraw {
	return &Withdraw{
		BaseTx:            *tx.NewBaseTx(tx.TypeWithdraw, payee),
		Market:            market,
		SellingResource:   sellingResource,
		TreasuryMint:      treasuryMint,
		TreasuryOwnerBump: keylet.TreasuryOwner(treasuryMint, sellingResource).Bump,
		PayoutTicketBump:  keylet.PayoutTicket(market, payee).Bump,
	}
}

// TxType returns the transaction type
func (w *Withdraw) TxType() tx.Type {
	return tx.TypeWithdraw
}

// Validate validates the Withdraw transaction
func (w *Withdraw) Validate() error {
	if err := w.BaseTx.Validate(); err != nil {
		return err
	}
	if err := requireAddresses(w.Market, w.SellingResource, w.TreasuryMint); err != nil {
		return err
	}
	if err := checkBump(keylet.TreasuryOwner(w.TreasuryMint, w.SellingResource), w.TreasuryOwnerBump); err != nil {
		return err
	}
	return checkBump(keylet.PayoutTicket(w.Market, w.Account), w.PayoutTicketBump)
}

// Accounts declares the addresses used by the transaction
func (w *Withdraw) Accounts() []tx.AccountMeta {
	return []tx.AccountMeta{
		tx.Readonly(w.Market),
		tx.Readonly(w.TreasuryMint),
		tx.Writable(keylet.TreasuryHolder(w.TreasuryMint, w.SellingResource).Key),
		tx.Writable(keylet.TokenAccount(w.Account, w.TreasuryMint).Key),
		tx.Writable(keylet.PayoutTicket(w.Market, w.Account).Key),
	}
}

// Apply applies a Withdraw transaction
func (w *Withdraw) Apply(ctx *tx.ApplyContext) tx.Result {
	market, res := load(ctx.View, at(entry.TypeMarket, w.Market), sle.ParseMarket)
	if !res.IsSuccess() {
		return res
	}
	if market.SellingResource != w.SellingResource || market.TreasuryMint != w.TreasuryMint {
		return tx.TemMALFORMED
	}
	if market.StateAt(ctx.Now) != sle.MarketStateClosed {
		return tx.TecMARKET_WRONG_STATE
	}

	amount, ok := payeeShare(market, ctx.AccountID)
	if !ok {
		return tx.TecUNAUTHORIZED
	}

	ticketKey := keylet.PayoutTicket(w.Market, ctx.AccountID)
	found, res := exists(ctx.View, ticketKey)
	if !res.IsSuccess() {
		return res
	}
	if found {
		return tx.TecALREADY_WITHDRAWN
	}

	if res := debitTreasury(ctx, market, amount); !res.IsSuccess() {
		return res
	}

	ticket := sle.NewPayoutTicket(w.Market, ctx.AccountID, amount, ticketKey.Bump, ctx.Now)
	return insert(ctx.View, ticketKey, ticket)
}

// payeeShare returns the amount owed to payee. The market owner is the only
// payee and is owed everything collected.
func payeeShare(market *sle.Market, payee [32]byte) (uint64, bool) {
	if market.Owner != payee {
		return 0, false
	}
	return market.FundsCollected, true
}

// debitTreasury moves amount from the market's treasury holder to the
// signer. A holder holding less than the recorded proceeds is an invariant
// breach.
func debitTreasury(ctx *tx.ApplyContext, market *sle.Market, amount uint64) tx.Result {
	holder, err := tx.ReadTokenAccount(ctx.View, market.TreasuryHolder)
	if err != nil {
		ctx.Logger.Error("treasury holder unreadable", "holder", solana.PublicKeyFromBytes(market.TreasuryHolder[:]).String(), "error", err)
		return tx.TefINSUFFICIENT_ESCROW
	}
	if holder.Amount < amount {
		ctx.Logger.Error("treasury holder below recorded proceeds",
			"holder", solana.PublicKeyFromBytes(market.TreasuryHolder[:]).String(),
			"balance", holder.Amount,
			"owed", amount,
		)
		return tx.TefINSUFFICIENT_ESCROW
	}

	destination, _, err := tx.EnsureTokenAccount(ctx.View, ctx.AccountID, market.TreasuryMint)
	if err != nil {
		return tx.TokenResult(err)
	}
	if amount == 0 {
		return tx.TesSUCCESS
	}
	if err := tx.TransferTokens(ctx.View, market.TreasuryHolder, destination, market.TreasuryOwner, amount); err != nil {
		return tx.TokenResult(err)
	}
	return tx.TesSUCCESS
}
