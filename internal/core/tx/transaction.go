package tx

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

// Common errors
var (
	ErrMissingRequiredField   = errors.New("temMALFORMED: missing required field")
	ErrInvalidTransactionType = errors.New("temUNKNOWN_TYPE: invalid transaction type")
	ErrInvalidAccount         = errors.New("temMALFORMED: invalid account")
)

// Transaction is the interface that all transaction types must implement
type Transaction interface {
	// TxType returns the transaction type
	TxType() Type

	// GetCommon returns the common transaction fields
	GetCommon() *Common

	// Validate checks if the transaction is well formed. Errors carry a
	// result code prefix such as "temINVALID_PARAMETERS: ...".
	Validate() error

	// Accounts lists every ledger address the transaction touches besides
	// the signer's account root, with its access mode.
	Accounts() []AccountMeta
}

// Appliable is implemented by transaction types that can apply themselves to ledger state.
type Appliable interface {
	Apply(ctx *ApplyContext) Result
}

// AccountMeta declares one ledger address used by a transaction.
type AccountMeta struct {
	Key      [32]byte
	Writable bool
}

// Writable declares a read-write address.
func Writable(key [32]byte) AccountMeta {
	return AccountMeta{Key: key, Writable: true}
}

// Readonly declares a read-only address.
func Readonly(key [32]byte) AccountMeta {
	return AccountMeta{Key: key}
}

// Common contains fields common to all transaction types
type Common struct {
	Account         solana.PublicKey `json:"Account" codec:"Account"`
	TransactionType string           `json:"TransactionType" codec:"TransactionType"`
	Sequence        uint32           `json:"Sequence" codec:"Sequence"`

	// Signature is the base58 ed25519 signature over the signing payload.
	// It is not part of the payload itself.
	Signature string `json:"Signature,omitempty" codec:"-"`
}

// Validate validates the common fields
func (c *Common) Validate() error {
	if c.Account.IsZero() {
		return errors.New("temMALFORMED: Account is required")
	}
	if c.TransactionType == "" {
		return errors.New("temMALFORMED: TransactionType is required")
	}
	if _, ok := TypeFromName(c.TransactionType); !ok {
		return ErrInvalidTransactionType
	}
	if c.Sequence == 0 {
		return errors.New("temMALFORMED: Sequence is required")
	}
	return nil
}

// BaseTx is embedded by every transaction type
type BaseTx struct {
	Common
}

// NewBaseTx creates a new BaseTx for the given type and signer
func NewBaseTx(txType Type, account solana.PublicKey) *BaseTx {
	return &BaseTx{
		Common: Common{
			Account:         account,
			TransactionType: txType.String(),
		},
	}
}

// GetCommon returns the common fields
func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

// AccountID returns the signer address as raw bytes
func (b *BaseTx) AccountID() [32]byte {
	return [32]byte(b.Account)
}

// SetSequence sets the signer sequence
func (b *BaseTx) SetSequence(seq uint32) {
	b.Sequence = seq
}
