package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/LeJamon/goFixedPriceSale/internal/config"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/genesis"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/service"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/storage/database"
	"github.com/LeJamon/goFixedPriceSale/internal/storage/relationaldb"

	// Transaction types, ledger backends and history drivers register
	// themselves on import.
	_ "github.com/LeJamon/goFixedPriceSale/internal/core/tx/all"
	_ "github.com/LeJamon/goFixedPriceSale/internal/storage/database/bbolt"
	_ "github.com/LeJamon/goFixedPriceSale/internal/storage/database/leveldb"
	_ "github.com/LeJamon/goFixedPriceSale/internal/storage/database/memory"
	_ "github.com/LeJamon/goFixedPriceSale/internal/storage/database/pebble"
	_ "github.com/LeJamon/goFixedPriceSale/internal/storage/relationaldb/postgres"
	_ "github.com/LeJamon/goFixedPriceSale/internal/storage/relationaldb/sqlite"
)

// node is an opened ledger with its service and optional history.
type node struct {
	state   *ledger.State
	history relationaldb.TxRepository
	service *service.Service
	logger  *slog.Logger
}

// openNode opens the ledger store, seeds it from the genesis file when it
// is empty and connects the history database when enabled.
func openNode(ctx context.Context, cfg *config.Config, logger *slog.Logger, clock tx.Clock) (*node, error) {
	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := database.Open(cfg.Ledger.Backend, cfg.LedgerPath())
	if err != nil {
		return nil, fmt.Errorf("open ledger store: %w", err)
	}
	state, err := ledger.NewState(db, cfg.StateConfig())
	if err != nil {
		db.Close()
		return nil, err
	}
	n := &node{state: state, logger: logger}

	if err := n.seed(cfg); err != nil {
		n.close(ctx)
		return nil, err
	}

	svcCfg := service.Config{
		Engine: tx.EngineConfig{
			SkipSignatureVerification: cfg.Engine.SkipSignatureVerification,
			Logger:                    logger,
			Clock:                     clock,
		},
		Workers: cfg.Engine.Workers,
	}
	if cfg.History.Enabled {
		repo, err := relationaldb.Open(ctx, cfg.RelationalConfig())
		if err != nil {
			n.close(ctx)
			return nil, fmt.Errorf("open history: %w", err)
		}
		n.history = repo
		svcCfg.Recorder = repo
	}
	n.service = service.New(state, svcCfg)
	return n, nil
}

func (n *node) seed(cfg *config.Config) error {
	if cfg.GenesisFile == "" {
		return nil
	}
	entries, err := n.state.Len()
	if err != nil {
		return err
	}
	if entries > 0 {
		return nil
	}

	g, err := genesis.Load(cfg.ResolvePath(cfg.GenesisFile))
	if err != nil {
		return err
	}
	res, err := genesis.Apply(n.state, g)
	if err != nil {
		return err
	}
	n.logger.Info("ledger seeded from genesis",
		"file", cfg.GenesisFile,
		"accounts", res.Accounts,
		"mints", res.Mints,
		"token_accounts", res.TokenAccounts,
	)
	return nil
}

func (n *node) close(ctx context.Context) error {
	var errs []error
	if n.history != nil {
		errs = append(errs, n.history.Close(ctx))
	}
	errs = append(errs, n.state.Close())
	return errors.Join(errs...)
}

// now returns the unix time the engine applies transactions at.
func (n *node) now() int64 {
	return n.service.Engine().Config().Clock.Now().Unix()
}

// openHistory connects only the history database.
func openHistory(ctx context.Context, cfg *config.Config) (relationaldb.TxRepository, error) {
	if !cfg.History.Enabled {
		return nil, errors.New("history is disabled in the configuration")
	}
	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return relationaldb.Open(ctx, cfg.RelationalConfig())
}
