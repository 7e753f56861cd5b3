package market

import (
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
)

// CreateStore creates a store administered by the signer. The store
// address is derived from the signer and the transaction sequence.
type CreateStore struct {
	tx.BaseTx

	Name        string `json:"Name" codec:"Name"`
	Description string `json:"Description,omitempty" codec:"Description"`
}

// NewCreateStore creates a new CreateStore transaction
func NewCreateStore(admin solana.PublicKey, name, description string) *CreateStore {
	return &CreateStore{
		BaseTx:      *tx.NewBaseTx(tx.TypeCreateStore, admin),
		Name:        name,
		Description: description,
	}
}

// TxType returns the transaction type
func (c *CreateStore) TxType() tx.Type {
	return tx.TypeCreateStore
}

// StoreKeylet returns the address of the store this transaction creates.
func (c *CreateStore) StoreKeylet() keylet.Keylet {
	return keylet.Store(c.Account, c.Sequence)
}

// Validate validates the CreateStore transaction
func (c *CreateStore) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if err := validateText("Name", c.Name, MaxNameLength); err != nil {
		return err
	}
	return validateText("Description", c.Description, MaxDescriptionLength)
}

// Accounts declares the store as writable
func (c *CreateStore) Accounts() []tx.AccountMeta {
	return []tx.AccountMeta{tx.Writable(c.StoreKeylet().Key)}
}

// Apply applies a CreateStore transaction
func (c *CreateStore) Apply(ctx *tx.ApplyContext) tx.Result {
	storeKey := c.StoreKeylet()

	found, res := exists(ctx.View, storeKey)
	if !res.IsSuccess() {
		return res
	}
	if found {
		return tx.TecDUPLICATE
	}

	store := sle.NewStore(ctx.AccountID, c.Name, c.Description, storeKey.Bump)
	if res := insert(ctx.View, storeKey, store); !res.IsSuccess() {
		return res
	}

	ctx.Account.OwnerCount++
	return tx.TesSUCCESS
}
