package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

// deriver computes a keylet from parsed arguments. seq is only set for
// kinds that take a trailing sequence.
type deriver struct {
	args   string
	hasSeq bool
	fn     func(keys []solana.PublicKey, seq uint32) keylet.Keylet
}

var derivers = map[string]deriver{
	"account": {"<owner>", false, func(k []solana.PublicKey, _ uint32) keylet.Keylet {
		return keylet.Account(k[0])
	}},
	"mint": {"<mint>", false, func(k []solana.PublicKey, _ uint32) keylet.Keylet {
		return keylet.Mint(k[0])
	}},
	"token-account": {"<owner> <mint>", false, func(k []solana.PublicKey, _ uint32) keylet.Keylet {
		return keylet.TokenAccount(k[0], k[1])
	}},
	"store": {"<admin> <sequence>", true, func(k []solana.PublicKey, seq uint32) keylet.Keylet {
		return keylet.Store(k[0], seq)
	}},
	"selling-resource": {"<store> <resource-mint>", false, func(k []solana.PublicKey, _ uint32) keylet.Keylet {
		return keylet.SellingResource(k[0], k[1])
	}},
	"market": {"<store> <selling-resource> <sequence>", true, func(k []solana.PublicKey, seq uint32) keylet.Keylet {
		return keylet.Market(k[0], k[1], seq)
	}},
	"vault-owner": {"<resource-mint> <store>", false, func(k []solana.PublicKey, _ uint32) keylet.Keylet {
		return keylet.VaultOwner(k[0], k[1])
	}},
	"vault": {"<resource-mint> <store>", false, func(k []solana.PublicKey, _ uint32) keylet.Keylet {
		return keylet.Vault(k[0], k[1])
	}},
	"treasury-owner": {"<treasury-mint> <selling-resource>", false, func(k []solana.PublicKey, _ uint32) keylet.Keylet {
		return keylet.TreasuryOwner(k[0], k[1])
	}},
	"treasury-holder": {"<treasury-mint> <selling-resource>", false, func(k []solana.PublicKey, _ uint32) keylet.Keylet {
		return keylet.TreasuryHolder(k[0], k[1])
	}},
	"trade-history": {"<market> <wallet>", false, func(k []solana.PublicKey, _ uint32) keylet.Keylet {
		return keylet.TradeHistory(k[0], k[1])
	}},
	"payout-ticket": {"<market> <payee>", false, func(k []solana.PublicKey, _ uint32) keylet.Keylet {
		return keylet.PayoutTicket(k[0], k[1])
	}},
}

func deriveKinds() []string {
	kinds := make([]string, 0, len(derivers))
	for k, d := range derivers {
		kinds = append(kinds, "  "+k+" "+d.args)
	}
	sort.Strings(kinds)
	return kinds
}

func newDeriveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "derive <kind> <args...>",
		Short: "Compute the address of a program entry",
		Long: "Derive prints the address and bump of a ledger entry without\nopening the ledger. Kinds:\n\n" +
			strings.Join(deriveKinds(), "\n"),
		Args: cobra.MinimumNArgs(1),
		// Pure computation, no configuration needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := deriveKeylet(args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", k.String(), k.Bump)
			return nil
		},
	}
}

func deriveKeylet(kind string, args []string) (keylet.Keylet, error) {
	d, ok := derivers[kind]
	if !ok {
		return keylet.Keylet{}, fmt.Errorf("unknown kind %q", kind)
	}
	want := len(strings.Fields(d.args))
	if len(args) != want {
		return keylet.Keylet{}, fmt.Errorf("%s takes %s", kind, d.args)
	}

	var seq uint32
	if d.hasSeq {
		n, err := strconv.ParseUint(args[len(args)-1], 10, 32)
		if err != nil {
			return keylet.Keylet{}, fmt.Errorf("invalid sequence: %w", err)
		}
		seq = uint32(n)
		args = args[:len(args)-1]
	}

	keys := make([]solana.PublicKey, len(args))
	for i, a := range args {
		key, err := solana.PublicKeyFromBase58(a)
		if err != nil {
			return keylet.Keylet{}, fmt.Errorf("invalid address %q: %w", a, err)
		}
		keys[i] = key
	}
	return d.fn(keys, seq), nil
}
