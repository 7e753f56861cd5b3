package entry

import (
	"fmt"
)

// Type represents a ledger entry type
type Type uint16

// All known ledger entry types
const (
	TypeInvalid Type = 0x0000

	// Wallet-side objects
	TypeAccountRoot  Type = 0x0061 // Signer sequence and owner count
	TypeMint         Type = 0x006d // Token mint
	TypeTokenAccount Type = 0x0074 // Token balance of (owner, mint)

	// Program objects
	TypeStore           Type = 0x0053 // Store (seller)
	TypeSellingResource Type = 0x0052 // Resource escrowed in a vault
	TypeMarket          Type = 0x004d // Fixed-price market
	TypeTradeHistory    Type = 0x0048 // Per-(market, buyer) purchase counter
	TypePayoutTicket    Type = 0x0050 // One-shot withdrawal marker
)

// String returns the string representation of the Type
func (t Type) String() string {
	switch t {
	case TypeAccountRoot:
		return "AccountRoot"
	case TypeMint:
		return "Mint"
	case TypeTokenAccount:
		return "TokenAccount"
	case TypeStore:
		return "Store"
	case TypeSellingResource:
		return "SellingResource"
	case TypeMarket:
		return "Market"
	case TypeTradeHistory:
		return "TradeHistory"
	case TypePayoutTicket:
		return "PayoutTicket"
	default:
		return fmt.Sprintf("Unknown(%#x)", uint16(t))
	}
}

// IsProgramOwned reports whether entries of this type can only be
// created by the sale program (never directly by a wallet).
func (t Type) IsProgramOwned() bool {
	switch t {
	case TypeStore, TypeSellingResource, TypeMarket, TypeTradeHistory, TypePayoutTicket:
		return true
	}
	return false
}
