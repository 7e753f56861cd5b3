package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

// marketSummary is the readable form of a market printed by inspect market.
type marketSummary struct {
	Address           string  `json:"address"`
	Name              string  `json:"name"`
	Description       string  `json:"description,omitempty"`
	Owner             string  `json:"owner"`
	Store             string  `json:"store"`
	SellingResource   string  `json:"selling_resource"`
	TreasuryMint      string  `json:"treasury_mint"`
	TreasuryHolder    string  `json:"treasury_holder"`
	State             string  `json:"state"`
	StoredState       string  `json:"stored_state"`
	Price             string  `json:"price"`
	FundsCollected    string  `json:"funds_collected"`
	Supply            uint64  `json:"supply"`
	MaxSupply         uint64  `json:"max_supply"`
	ResourceState     string  `json:"resource_state"`
	PiecesInOneWallet *uint64 `json:"pieces_in_one_wallet,omitempty"`
	StartDate         int64   `json:"start_date"`
	EndDate           *int64  `json:"end_date,omitempty"`
	Mutable           bool    `json:"mutable"`
}

func newInspectCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Read ledger entries",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "entry <address>",
		Short: "Print the decoded ledger entry at an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("invalid address: %w", err)
			}
			return withNode(cmd, g, func(n *node) error {
				res, err := n.service.GetLedgerEntry(addr)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "balance <owner> <mint>",
		Short: "Print the token balance of an owner",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, mint, err := parseTwoKeys(args)
			if err != nil {
				return err
			}
			return withNode(cmd, g, func(n *node) error {
				m, err := readMint(n, mint)
				if err != nil {
					return err
				}
				amount, err := n.service.GetTokenBalance(owner, mint)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), sle.FormatAmount(amount, m.Decimals))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "market <address>",
		Short: "Print a market with its effective state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("invalid address: %w", err)
			}
			return withNode(cmd, g, func(n *node) error {
				summary, err := summarizeMarket(n, addr)
				if err != nil {
					return err
				}
				return printJSON(cmd, summary)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Count ledger entries by type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(cmd, g, func(n *node) error {
				counts, err := n.service.EntryCounts()
				if err != nil {
					return err
				}
				names := make([]string, 0, len(counts))
				byName := make(map[string]int, len(counts))
				for t, c := range counts {
					names = append(names, t.String())
					byName[t.String()] = c
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(cmd.OutOrStdout(), "%-16s %d\n", name, byName[name])
				}
				return nil
			})
		},
	})

	return cmd
}

func withNode(cmd *cobra.Command, g *globalOptions, fn func(n *node) error) error {
	ctx := cmd.Context()
	n, err := openNode(ctx, g.cfg, g.logger, g.clock)
	if err != nil {
		return err
	}
	defer n.close(ctx)
	return fn(n)
}

func summarizeMarket(n *node, addr solana.PublicKey) (*marketSummary, error) {
	m, err := n.service.GetMarket(addr)
	if err != nil {
		return nil, err
	}
	data, err := n.state.Read(keylet.Keylet{Key: m.SellingResource})
	if err != nil {
		return nil, err
	}
	sr, err := sle.ParseSellingResource(data)
	if err != nil {
		return nil, fmt.Errorf("selling resource: %w", err)
	}
	mint, err := readMint(n, m.TreasuryMint)
	if err != nil {
		return nil, err
	}

	return &marketSummary{
		Address:           addr.String(),
		Name:              m.Name,
		Description:       m.Description,
		Owner:             base58(m.Owner),
		Store:             base58(m.Store),
		SellingResource:   base58(m.SellingResource),
		TreasuryMint:      base58(m.TreasuryMint),
		TreasuryHolder:    base58(m.TreasuryHolder),
		State:             m.StateAt(n.now()).String(),
		StoredState:       m.State.String(),
		Price:             sle.FormatAmount(m.Price, mint.Decimals),
		FundsCollected:    sle.FormatAmount(m.FundsCollected, mint.Decimals),
		Supply:            sr.Supply,
		MaxSupply:         sr.MaxSupply,
		ResourceState:     sr.State.String(),
		PiecesInOneWallet: m.PiecesInOneWallet,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		Mutable:           m.Mutable,
	}, nil
}

func readMint(n *node, mint [32]byte) (*sle.Mint, error) {
	data, err := n.state.Read(keylet.Mint(mint))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("mint %s not found", base58(mint))
	}
	return sle.ParseMint(data)
}

func parseTwoKeys(args []string) (solana.PublicKey, solana.PublicKey, error) {
	a, err := solana.PublicKeyFromBase58(args[0])
	if err != nil {
		return a, solana.PublicKey{}, fmt.Errorf("invalid address %q: %w", args[0], err)
	}
	b, err := solana.PublicKeyFromBase58(args[1])
	if err != nil {
		return a, b, fmt.Errorf("invalid address %q: %w", args[1], err)
	}
	return a, b, nil
}

func base58(key [32]byte) string {
	return solana.PublicKeyFromBytes(key[:]).String()
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
