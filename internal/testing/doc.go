// Package testing provides test infrastructure for sale program transactions.
//
// # Overview
//
// The testing package provides:
//   - TestEnv: an in-memory ledger with a controllable clock
//   - Account: deterministic ed25519 wallets
//   - Assertions: helpers for result codes, balances and market state
//
// # Basic Usage
//
//	func TestBuy(t *testing.T) {
//	    env := testing.NewTestEnv(t)
//
//	    admin := testing.NewAccount("admin")
//	    buyer := testing.NewAccount("buyer")
//	    env.Fund(admin, buyer)
//
//	    usdc := env.CreateMint("usdc", admin, 6)
//	    env.MintTo(usdc, buyer, testing.Units("10", 6))
//
//	    result := env.Submit(market.NewBuy(buyer.Address, ...))
//	    testing.RequireTxSuccess(t, result)
//	}
//
// # TestEnv
//
// TestEnv owns a ledger.State and a ledger service. Fund, CreateMint and
// MintTo edit the ledger directly; everything else goes through
// transactions.
//
//	env.Fund(alice)                    // create the account root
//	env.Balance(alice, mint)           // token balance
//	env.AdvanceTime(time.Hour)         // move the market clock
//	env.Snapshot()                     // copy of every entry
//
// Submit fills a zero Sequence from the signer's account root and skips
// signature checks. SubmitSigned signs with the registered wallet key and
// verifies it.
//
// # Account
//
// Using the same name always produces the same wallet:
//
//	alice := testing.NewAccount("alice")
//
// Subpackages hold the scenario tests of each transaction family.
package testing
