package cli

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

type applyOptions struct {
	keyFiles   []string
	noAutofill bool
}

// applyResult is the JSON line printed for each transaction.
type applyResult struct {
	Hash     string `json:"hash"`
	Type     string `json:"type"`
	Account  string `json:"account"`
	Sequence uint32 `json:"sequence"`
	Result   string `json:"result"`
	Applied  bool   `json:"applied"`
	Message  string `json:"message"`
	BatchID  string `json:"batch_id"`
}

func newApplyCmd(g *globalOptions) *cobra.Command {
	opts := &applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply [file...]",
		Short: "Apply transactions to the ledger",
		Long: `Apply reads transactions as JSON (one object or an array per file,
"-" for stdin) and applies them as one batch. Transactions signed by an
account whose keypair is given with --key are signed before submission.
A zero Sequence is filled from the ledger.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, g, opts, args)
		},
	}
	cmd.Flags().StringSliceVarP(&opts.keyFiles, "key", "k", nil, "keypair file (solana-keygen JSON) used to sign; repeatable")
	cmd.Flags().BoolVar(&opts.noAutofill, "no-autofill", false, "submit sequences as given")
	return cmd
}

func runApply(cmd *cobra.Command, g *globalOptions, opts *applyOptions, args []string) error {
	txs, err := readTransactions(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	keys := make(map[solana.PublicKey]solana.PrivateKey, len(opts.keyFiles))
	for _, f := range opts.keyFiles {
		key, err := solana.PrivateKeyFromSolanaKeygenFile(f)
		if err != nil {
			return fmt.Errorf("load key %s: %w", f, err)
		}
		keys[key.PublicKey()] = key
	}

	ctx := cmd.Context()
	n, err := openNode(ctx, g.cfg, g.logger, g.clock)
	if err != nil {
		return err
	}
	defer n.close(ctx)

	if !opts.noAutofill {
		if err := autofillSequences(n, txs); err != nil {
			return err
		}
	}
	for _, t := range txs {
		if key, ok := keys[t.GetCommon().Account]; ok {
			if err := tx.Sign(t, key); err != nil {
				return err
			}
		}
	}

	batch, err := n.service.SubmitBatch(ctx, txs)
	if err != nil && batch == nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for i, res := range batch.Results {
		common := txs[i].GetCommon()
		line := applyResult{
			Hash:     strings.ToUpper(hex.EncodeToString(res.Hash[:])),
			Type:     txs[i].TxType().String(),
			Account:  common.Account.String(),
			Sequence: common.Sequence,
			Result:   res.Result.String(),
			Applied:  res.Applied,
			Message:  res.Message,
			BatchID:  batch.ID,
		}
		if encErr := enc.Encode(line); encErr != nil {
			return encErr
		}
	}
	if err != nil {
		return err
	}
	if applied := batch.Applied(); applied != len(txs) {
		return fmt.Errorf("%d of %d transactions were not applied", len(txs)-applied, len(txs))
	}
	return nil
}

// readTransactions decodes every file in paths. A file holds one
// transaction object or an array of them.
func readTransactions(stdin io.Reader, paths []string) ([]tx.Transaction, error) {
	var txs []tx.Transaction
	for _, p := range paths {
		var (
			data []byte
			err  error
		)
		if p == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(p)
		}
		if err != nil {
			return nil, err
		}

		parsed, err := decodeTransactions(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		txs = append(txs, parsed...)
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("no transactions to apply")
	}
	return txs, nil
}

func decodeTransactions(data []byte) ([]tx.Transaction, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, err
		}
		txs := make([]tx.Transaction, 0, len(raws))
		for i, raw := range raws {
			t, err := tx.FromJSON(raw)
			if err != nil {
				return nil, fmt.Errorf("transaction %d: %w", i, err)
			}
			txs = append(txs, t)
		}
		return txs, nil
	}
	t, err := tx.FromJSON(data)
	if err != nil {
		return nil, err
	}
	return []tx.Transaction{t}, nil
}

// autofillSequences numbers the transactions of each signer that carry a
// zero Sequence, continuing from the signer's account root.
func autofillSequences(n *node, txs []tx.Transaction) error {
	next := make(map[solana.PublicKey]uint32)
	for _, t := range txs {
		common := t.GetCommon()
		if common.Sequence != 0 {
			next[common.Account] = common.Sequence + 1
			continue
		}
		seq, ok := next[common.Account]
		if !ok {
			data, err := n.state.Read(keylet.Account(common.Account))
			if err != nil {
				return err
			}
			if data == nil {
				// Left at zero so the engine reports terNO_ACCOUNT.
				continue
			}
			root, err := sle.ParseAccountRoot(data)
			if err != nil {
				return err
			}
			seq = root.Sequence
		}
		common.Sequence = seq
		next[common.Account] = seq + 1
	}
	return nil
}
