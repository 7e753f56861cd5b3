package sle

import (
	"fmt"
	"math"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"
)

// MarketState is the lifecycle state of a market. States only move forward.
type MarketState uint8

const (
	MarketStateUninitialized MarketState = iota
	MarketStateCreated
	MarketStateActive
	MarketStateEnded
	MarketStateClosed
)

func (s MarketState) String() string {
	switch s {
	case MarketStateUninitialized:
		return "Uninitialized"
	case MarketStateCreated:
		return "Created"
	case MarketStateActive:
		return "Active"
	case MarketStateEnded:
		return "Ended"
	case MarketStateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("MarketState(%d)", uint8(s))
	}
}

// Market sells units of a selling resource at a fixed price in the
// treasury mint.
type Market struct {
	LedgerEntryType   entry.Type  `codec:"LedgerEntryType"`
	Store             AccountID   `codec:"Store"`
	Owner             AccountID   `codec:"Owner"`
	SellingResource   AccountID   `codec:"SellingResource"`
	TreasuryMint      AccountID   `codec:"TreasuryMint"`
	TreasuryHolder    AccountID   `codec:"TreasuryHolder"`
	TreasuryOwner     AccountID   `codec:"TreasuryOwner"`
	TreasuryOwnerBump uint8       `codec:"TreasuryOwnerBump"`
	Name              string      `codec:"Name"`
	Description       string      `codec:"Description"`
	Mutable           bool        `codec:"Mutable"`
	Price             uint64      `codec:"Price"`
	PiecesInOneWallet *uint64     `codec:"PiecesInOneWallet,omitempty"`
	StartDate         int64       `codec:"StartDate"`
	EndDate           *int64      `codec:"EndDate,omitempty"`
	State             MarketState `codec:"State"`
	FundsCollected    uint64      `codec:"FundsCollected"`
	CreationSequence  uint32      `codec:"CreationSequence"`
}

// ParseMarket parses a Market ledger entry.
func ParseMarket(data []byte) (*Market, error) {
	var m Market
	if err := decodeAs(data, entry.TypeMarket, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Serialize encodes the entry.
func (m *Market) Serialize() ([]byte, error) {
	return Encode(m)
}

// StateAt returns the effective state at unix time now. Ended and Closed
// are sticky; otherwise the purchase window decides.
func (m *Market) StateAt(now int64) MarketState {
	switch m.State {
	case MarketStateEnded, MarketStateClosed:
		return m.State
	}
	if m.EndDate != nil && now >= *m.EndDate {
		return MarketStateEnded
	}
	if now >= m.StartDate {
		return MarketStateActive
	}
	return MarketStateCreated
}

// InWindow reports whether now falls in [start, end).
func (m *Market) InWindow(now int64) bool {
	if now < m.StartDate {
		return false
	}
	return m.EndDate == nil || now < *m.EndDate
}

// Advance moves the stored state to next. Moving backwards is an error.
func (m *Market) Advance(next MarketState) error {
	if next < m.State {
		return fmt.Errorf("%w: %s -> %s", ErrStateRegression, m.State, next)
	}
	m.State = next
	return nil
}

// WalletCap returns the per-wallet cap; ok is false when unlimited.
func (m *Market) WalletCap() (limit uint64, ok bool) {
	if m.PiecesInOneWallet == nil {
		return 0, false
	}
	return *m.PiecesInOneWallet, true
}

// Collect records amount of proceeds received by the treasury holder.
func (m *Market) Collect(amount uint64) error {
	if m.FundsCollected > math.MaxUint64-amount {
		return ErrAmountOverflow
	}
	m.FundsCollected += amount
	return nil
}

// TradeHistory counts the units one wallet bought in one market.
type TradeHistory struct {
	LedgerEntryType entry.Type `codec:"LedgerEntryType"`
	Market          AccountID  `codec:"Market"`
	Wallet          AccountID  `codec:"Wallet"`
	AlreadyBought   uint64     `codec:"AlreadyBought"`
	Bump            uint8      `codec:"Bump"`
}

// NewTradeHistory returns an empty purchase counter.
func NewTradeHistory(market, wallet AccountID, bump uint8) *TradeHistory {
	return &TradeHistory{
		LedgerEntryType: entry.TypeTradeHistory,
		Market:          market,
		Wallet:          wallet,
		Bump:            bump,
	}
}

// ParseTradeHistory parses a TradeHistory ledger entry.
func ParseTradeHistory(data []byte) (*TradeHistory, error) {
	var h TradeHistory
	if err := decodeAs(data, entry.TypeTradeHistory, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Serialize encodes the entry.
func (h *TradeHistory) Serialize() ([]byte, error) {
	return Encode(h)
}

// RecordPurchase adds units to the counter if the cap allows it. A nil cap
// means unlimited.
func (h *TradeHistory) RecordPurchase(units uint64, limit *uint64) error {
	if h.AlreadyBought > math.MaxUint64-units {
		return ErrAmountOverflow
	}
	if limit != nil && h.AlreadyBought+units > *limit {
		return ErrWalletCapExceeded
	}
	h.AlreadyBought += units
	return nil
}

// PayoutTicket marks that payee has withdrawn from market. It is created
// once and never changed.
type PayoutTicket struct {
	LedgerEntryType entry.Type `codec:"LedgerEntryType"`
	Market          AccountID  `codec:"Market"`
	Payee           AccountID  `codec:"Payee"`
	Amount          uint64     `codec:"Amount"`
	Bump            uint8      `codec:"Bump"`
	CreatedAt       int64      `codec:"CreatedAt"`
}

// NewPayoutTicket returns the ticket for a withdrawal of amount.
func NewPayoutTicket(market, payee AccountID, amount uint64, bump uint8, createdAt int64) *PayoutTicket {
	return &PayoutTicket{
		LedgerEntryType: entry.TypePayoutTicket,
		Market:          market,
		Payee:           payee,
		Amount:          amount,
		Bump:            bump,
		CreatedAt:       createdAt,
	}
}

// ParsePayoutTicket parses a PayoutTicket ledger entry.
func ParsePayoutTicket(data []byte) (*PayoutTicket, error) {
	var p PayoutTicket
	if err := decodeAs(data, entry.TypePayoutTicket, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Serialize encodes the entry.
func (p *PayoutTicket) Serialize() ([]byte, error) {
	return Encode(p)
}
