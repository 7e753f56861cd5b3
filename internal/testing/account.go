package testing

import (
	"crypto/ed25519"

	crypto "github.com/LeJamon/goFixedPriceSale/internal/crypto/common"
	"github.com/gagliardetto/solana-go"
)

// Account represents a test wallet with an ed25519 keypair.
type Account struct {
	// Name is a human-readable identifier for the account (used for debugging).
	Name string

	// Key is the 64-byte ed25519 private key.
	Key solana.PrivateKey

	// Address is the wallet public key.
	Address solana.PublicKey
}

// NewAccount creates a new test account with a deterministic keypair derived from the name.
// Using the same name will always produce the same account, making tests reproducible.
func NewAccount(name string) *Account {
	seed := crypto.Sha512Half([]byte("account"), []byte(name))
	key := solana.PrivateKey(ed25519.NewKeyFromSeed(seed[:]))
	return &Account{
		Name:    name,
		Key:     key,
		Address: key.PublicKey(),
	}
}

// ID returns the account address as raw bytes.
func (a *Account) ID() [32]byte {
	return a.Address
}

func (a *Account) String() string {
	return a.Name + "(" + a.Address.String() + ")"
}
