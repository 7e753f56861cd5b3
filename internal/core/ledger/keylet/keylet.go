package keylet

import (
	"encoding/binary"
	"fmt"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"
	crypto "github.com/LeJamon/goFixedPriceSale/internal/crypto/common"
	"github.com/gagliardetto/solana-go"
)

// Seed prefixes for program-derived addresses. Each prefix gives its own
// namespace; the full preimage lengths also differ per namespace, so two
// namespaces can never share a preimage.
const (
	seedStore           = "store"            // admin, sequence
	seedSellingResource = "selling_resource" // store, resource mint
	seedMarket          = "market"           // store, selling resource, sequence
	seedVaultOwner      = "mt_vault"         // resource mint, store
	seedTreasuryOwner   = "holder"           // treasury mint, selling resource
	seedTradeHistory    = "history"          // wallet, market
	seedPayoutTicket    = "payout_ticket"    // market, payee
)

// ProgramID is the address of the fixed-price sale program. All
// program-derived addresses are computed under it.
var ProgramID = solana.PublicKeyFromBytes(programIDHash())

func programIDHash() []byte {
	h := crypto.Sha512Half([]byte("goFixedPriceSale/program"))
	return h[:]
}

// Keylet represents an addressable location in the ledger state.
// It combines a type identifier with a 256-bit key and, for
// program-derived addresses, the bump that made the key valid.
type Keylet struct {
	Type entry.Type
	Key  [32]byte
	Bump uint8
}

// Address returns the key as a public key.
func (k Keylet) Address() solana.PublicKey {
	return solana.PublicKeyFromBytes(k.Key[:])
}

// String returns the base58 form of the key.
func (k Keylet) String() string {
	return k.Address().String()
}

// Matches reports whether a caller-supplied address and bump are the ones
// this keylet derives to.
func (k Keylet) Matches(addr [32]byte, bump uint8) bool {
	return k.Key == addr && k.Bump == bump
}

// derive computes a program-derived keylet. Seeds are fixed-size here, so
// FindProgramAddress only fails if no bump yields an off-curve point,
// which does not happen in practice.
func derive(t entry.Type, seeds ...[]byte) Keylet {
	addr, bump, err := solana.FindProgramAddress(seeds, ProgramID)
	if err != nil {
		panic(fmt.Sprintf("keylet: derive %s: %v", t, err))
	}
	return Keylet{Type: t, Key: addr, Bump: bump}
}

func seqBytes(seq uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, seq)
	return b
}

// Account returns the keylet for a wallet's account root. Wallet keys are
// ed25519 points, so they never collide with program-derived addresses.
func Account(owner [32]byte) Keylet {
	return Keylet{Type: entry.TypeAccountRoot, Key: owner}
}

// Mint returns the keylet for a token mint.
func Mint(mint [32]byte) Keylet {
	return Keylet{Type: entry.TypeMint, Key: mint}
}

// TokenAccount returns the keylet for the associated token account of
// (owner, mint).
func TokenAccount(owner, mint [32]byte) Keylet {
	addr, bump, err := solana.FindAssociatedTokenAddress(
		solana.PublicKeyFromBytes(owner[:]),
		solana.PublicKeyFromBytes(mint[:]),
	)
	if err != nil {
		panic(fmt.Sprintf("keylet: derive token account: %v", err))
	}
	return Keylet{Type: entry.TypeTokenAccount, Key: addr, Bump: bump}
}

// Store returns the keylet for a store created by admin with the given
// transaction sequence.
func Store(admin [32]byte, sequence uint32) Keylet {
	return derive(entry.TypeStore, []byte(seedStore), admin[:], seqBytes(sequence))
}

// SellingResource returns the keylet for the selling resource of a
// resource mint inside a store.
func SellingResource(store, resourceMint [32]byte) Keylet {
	return derive(entry.TypeSellingResource, []byte(seedSellingResource), store[:], resourceMint[:])
}

// Market returns the keylet for a market over a selling resource, created
// by the store admin with the given transaction sequence.
func Market(store, sellingResource [32]byte, sequence uint32) Keylet {
	return derive(entry.TypeMarket, []byte(seedMarket), store[:], sellingResource[:], seqBytes(sequence))
}

// VaultOwner returns the program authority owning the resource vault.
// The returned keylet addresses no ledger entry; it is only an owner.
func VaultOwner(resourceMint, store [32]byte) Keylet {
	return derive(entry.TypeInvalid, []byte(seedVaultOwner), resourceMint[:], store[:])
}

// TreasuryOwner returns the program authority owning the treasury holder.
func TreasuryOwner(treasuryMint, sellingResource [32]byte) Keylet {
	return derive(entry.TypeInvalid, []byte(seedTreasuryOwner), treasuryMint[:], sellingResource[:])
}

// Vault returns the token account escrowing the resource of a store.
func Vault(resourceMint, store [32]byte) Keylet {
	return TokenAccount(VaultOwner(resourceMint, store).Key, resourceMint)
}

// TreasuryHolder returns the token account collecting a market's proceeds.
func TreasuryHolder(treasuryMint, sellingResource [32]byte) Keylet {
	return TokenAccount(TreasuryOwner(treasuryMint, sellingResource).Key, treasuryMint)
}

// TradeHistory returns the keylet for the purchase counter of wallet in market.
func TradeHistory(market, wallet [32]byte) Keylet {
	return derive(entry.TypeTradeHistory, []byte(seedTradeHistory), wallet[:], market[:])
}

// PayoutTicket returns the keylet for the withdrawal marker of payee in market.
func PayoutTicket(market, payee [32]byte) Keylet {
	return derive(entry.TypePayoutTicket, []byte(seedPayoutTicket), market[:], payee[:])
}
