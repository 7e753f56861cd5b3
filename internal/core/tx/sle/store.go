package sle

import (
	"fmt"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"
)

// Store groups the selling resources and markets of one admin.
type Store struct {
	LedgerEntryType entry.Type `codec:"LedgerEntryType"`
	Admin           AccountID  `codec:"Admin"`
	Name            string     `codec:"Name"`
	Description     string     `codec:"Description"`
	Bump            uint8      `codec:"Bump"`
}

// NewStore returns a store owned by admin.
func NewStore(admin AccountID, name, description string, bump uint8) *Store {
	return &Store{
		LedgerEntryType: entry.TypeStore,
		Admin:           admin,
		Name:            name,
		Description:     description,
		Bump:            bump,
	}
}

// ParseStore parses a Store ledger entry.
func ParseStore(data []byte) (*Store, error) {
	var s Store
	if err := decodeAs(data, entry.TypeStore, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Serialize encodes the entry.
func (s *Store) Serialize() ([]byte, error) {
	return Encode(s)
}

// SellingResourceState tracks which market, if any, sells a resource.
// A resource is sold by at most one market and is never reused.
type SellingResourceState uint8

const (
	SellingResourceUninitialized SellingResourceState = iota
	SellingResourceCreated
	SellingResourceInUse
	SellingResourceExhausted
)

func (s SellingResourceState) String() string {
	switch s {
	case SellingResourceUninitialized:
		return "Uninitialized"
	case SellingResourceCreated:
		return "Created"
	case SellingResourceInUse:
		return "InUse"
	case SellingResourceExhausted:
		return "Exhausted"
	default:
		return fmt.Sprintf("SellingResourceState(%d)", uint8(s))
	}
}

// SellingResource is a resource escrowed in a vault for sale through a
// single market of its store.
type SellingResource struct {
	LedgerEntryType entry.Type `codec:"LedgerEntryType"`
	Store           AccountID  `codec:"Store"`
	Owner           AccountID  `codec:"Owner"`
	ResourceMint    AccountID  `codec:"ResourceMint"`
	Vault           AccountID  `codec:"Vault"`
	VaultOwner      AccountID  `codec:"VaultOwner"`
	VaultOwnerBump  uint8      `codec:"VaultOwnerBump"`
	MaxSupply       uint64     `codec:"MaxSupply"`
	Supply          uint64     `codec:"Supply"`

	State SellingResourceState `codec:"State"`
}

// ParseSellingResource parses a SellingResource ledger entry.
func ParseSellingResource(data []byte) (*SellingResource, error) {
	var r SellingResource
	if err := decodeAs(data, entry.TypeSellingResource, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Serialize encodes the entry.
func (r *SellingResource) Serialize() ([]byte, error) {
	return Encode(r)
}

// Attach binds the resource to a new market. Only a resource no market
// has used yet can be attached.
func (r *SellingResource) Attach() error {
	if r.State != SellingResourceCreated {
		return fmt.Errorf("%w: %s", ErrResourceInUse, r.State)
	}
	r.State = SellingResourceInUse
	return nil
}

// Exhaust marks the resource as finished: sold out or claimed back.
func (r *SellingResource) Exhaust() {
	r.State = SellingResourceExhausted
}

// Reserve claims one unit of supply for a purchase.
func (r *SellingResource) Reserve() error {
	if r.Supply >= r.MaxSupply {
		return ErrInsufficientSupply
	}
	r.Supply++
	return nil
}

// Remaining returns the number of units the vault must still hold.
func (r *SellingResource) Remaining() uint64 {
	return r.MaxSupply - r.Supply
}

// SoldOut reports whether every unit has been sold.
func (r *SellingResource) SoldOut() bool {
	return r.Supply >= r.MaxSupply
}
