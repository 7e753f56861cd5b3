// Package cli implements the fpsaled command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/LeJamon/goFixedPriceSale/internal/config"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/logging"
	"github.com/spf13/cobra"
)

// Version is the release reported by the version command.
var Version = "0.1.0-dev"

// globalOptions holds the persistent flags and what PersistentPreRunE
// builds from them.
type globalOptions struct {
	configFile string
	debug      bool
	quiet      bool

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer

	// clock overrides the engine clock; nil uses the system clock.
	clock tx.Clock
}

// NewRootCmd builds the fpsaled command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&globalOptions{})
}

func newRootCmd(opts *globalOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fpsaled",
		Short: "fpsaled - fixed-price sale ledger",
		Long: `fpsaled runs the fixed-price sale program against a local ledger.

Transactions (CreateStore, InitSellingResource, CreateMarket, Buy,
CloseMarket, Withdraw, ChangeMarket, ClaimResource) are read as JSON,
applied atomically and recorded in the history database.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logCloser != nil {
				return opts.logCloser.Close()
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable normally suppressed debug logging")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "only log errors")

	rootCmd.AddCommand(
		newApplyCmd(opts),
		newInspectCmd(opts),
		newDeriveCmd(),
		newHistoryCmd(opts),
		newKeygenCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (o *globalOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return err
	}
	switch {
	case o.debug:
		cfg.Log.Level = "debug"
	case o.quiet:
		cfg.Log.Level = "error"
	}

	logger, closer, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	slog.SetDefault(logger)

	o.cfg = cfg
	o.logger = logger
	o.logCloser = closer
	return nil
}
