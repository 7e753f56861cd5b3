package tx

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	crypto "github.com/LeJamon/goFixedPriceSale/internal/crypto/common"
	"github.com/gagliardetto/solana-go"
)

// Signature verification errors
var (
	ErrMissingSignature = errors.New("transaction is not signed")
	ErrInvalidSignature = errors.New("signature is invalid")
)

var (
	signingPrefix = []byte{'S', 'T', 'X', 0x00}
	hashPrefix    = []byte{'T', 'X', 'N', 0x00}
)

// SigningPayload returns the bytes a signer signs: a fixed prefix followed
// by the canonical CBOR encoding of the transaction without its signature.
func SigningPayload(tx Transaction) ([]byte, error) {
	body, err := sle.Encode(tx)
	if err != nil {
		return nil, fmt.Errorf("signing payload: %w", err)
	}
	out := make([]byte, 0, len(signingPrefix)+len(body))
	out = append(out, signingPrefix...)
	return append(out, body...), nil
}

// ComputeTransactionHash computes the hash of a transaction
// The hash is SHA512Half of the "TXN\x00" prefix + encoded transaction
func ComputeTransactionHash(tx Transaction) ([32]byte, error) {
	body, err := sle.Encode(tx)
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.Sha512Half(hashPrefix, body), nil
}

// Sign signs tx with key and stores the base58 signature on it. The key
// must belong to the transaction Account.
func Sign(tx Transaction, key solana.PrivateKey) error {
	common := tx.GetCommon()
	if !key.PublicKey().Equals(common.Account) {
		return errors.New("signing key does not match account")
	}

	payload, err := SigningPayload(tx)
	if err != nil {
		return err
	}
	sig, err := key.Sign(payload)
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}
	common.Signature = sig.String()
	return nil
}

// VerifySignature verifies that a transaction is signed by its Account
func VerifySignature(tx Transaction) error {
	common := tx.GetCommon()
	if common.Signature == "" {
		return ErrMissingSignature
	}

	sig, err := solana.SignatureFromBase58(common.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	payload, err := SigningPayload(tx)
	if err != nil {
		return err
	}
	if !sig.Verify(common.Account, payload) {
		return ErrInvalidSignature
	}
	return nil
}
