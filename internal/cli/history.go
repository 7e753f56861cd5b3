package cli

import (
	"fmt"

	"github.com/LeJamon/goFixedPriceSale/internal/storage/relationaldb"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

func newHistoryCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query the transaction history database",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "tx <hash>",
		Short: "Print the record of one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := relationaldb.ParseHash(args[0])
			if err != nil {
				return err
			}
			return withHistory(cmd, g, func(repo relationaldb.TxRepository) error {
				rec, err := repo.GetTransaction(cmd.Context(), hash)
				if err != nil {
					return err
				}
				return printJSON(cmd, newHistoryRecord(rec))
			})
		},
	})

	opts := relationaldb.AccountTxOptions{}
	accountCmd := &cobra.Command{
		Use:   "account <address>",
		Short: "List the transactions signed by an account, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("invalid address: %w", err)
			}
			opts.Account = addr.String()
			return withHistory(cmd, g, func(repo relationaldb.TxRepository) error {
				recs, err := repo.GetAccountTransactions(cmd.Context(), opts)
				if err != nil {
					return err
				}
				out := make([]historyRecord, 0, len(recs))
				for i := range recs {
					out = append(out, newHistoryRecord(&recs[i]))
				}
				return printJSON(cmd, out)
			})
		},
	}
	accountCmd.Flags().IntVar(&opts.Limit, "limit", relationaldb.DefaultPageSize, "page size")
	accountCmd.Flags().IntVar(&opts.Offset, "offset", 0, "records to skip")
	accountCmd.Flags().BoolVar(&opts.AppliedOnly, "applied", false, "only transactions that changed the ledger")
	cmd.AddCommand(accountCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "count",
		Short: "Print the number of recorded transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, g, func(repo relationaldb.TxRepository) error {
				n, err := repo.GetTransactionCount(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	})

	return cmd
}

// historyRecord prints a TxRecord with its raw JSON kept as JSON.
type historyRecord struct {
	*relationaldb.TxRecord
	Hash     string     `json:"hash"`
	RawTx    jsonOrNull `json:"raw_tx"`
	Metadata jsonOrNull `json:"metadata,omitempty"`
}

type jsonOrNull []byte

func (j jsonOrNull) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func newHistoryRecord(rec *relationaldb.TxRecord) historyRecord {
	return historyRecord{
		TxRecord: rec,
		Hash:     rec.Hash.String(),
		RawTx:    jsonOrNull(rec.RawTx),
		Metadata: jsonOrNull(rec.Metadata),
	}
}

func withHistory(cmd *cobra.Command, g *globalOptions, fn func(repo relationaldb.TxRepository) error) error {
	ctx := cmd.Context()
	repo, err := openHistory(ctx, g.cfg)
	if err != nil {
		return err
	}
	defer repo.Close(ctx)
	return fn(repo)
}
