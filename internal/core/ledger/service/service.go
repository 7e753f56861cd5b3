package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/storage/relationaldb"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -destination=mock_service/mock_recorder.go -package=mock_service . Recorder

// Common errors
var (
	ErrNilTransaction = errors.New("nil transaction")
	ErrRecordFailed   = errors.New("failed to record transaction")
)

// Recorder persists the outcome of every submitted transaction.
// relationaldb.TxRepository satisfies it.
type Recorder interface {
	SaveTransaction(ctx context.Context, rec *relationaldb.TxRecord) error
}

// Config holds configuration for the Service
type Config struct {
	// Engine configures the transaction engine.
	Engine tx.EngineConfig

	// Recorder receives the history of submitted transactions (optional).
	Recorder Recorder

	// Workers bounds the number of signers applied in parallel by
	// SubmitBatch. Defaults to GOMAXPROCS.
	Workers int

	// Hooks are called after each transaction (optional).
	Hooks *EventHooks
}

// Service applies transactions to a ledger state and records the outcome.
type Service struct {
	view     tx.LedgerView
	engine   *tx.Engine
	recorder Recorder
	hooks    *EventHooks
	workers  int
	clock    tx.Clock
	logger   *slog.Logger
}

// New creates a service over view.
func New(view tx.LedgerView, cfg Config) *Service {
	if cfg.Engine.Logger == nil {
		cfg.Engine.Logger = slog.Default()
	}
	if cfg.Engine.Clock == nil {
		cfg.Engine.Clock = tx.SystemClock()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Service{
		view:     view,
		engine:   tx.NewEngine(view, cfg.Engine),
		recorder: cfg.Recorder,
		hooks:    cfg.Hooks,
		workers:  cfg.Workers,
		clock:    cfg.Engine.Clock,
		logger:   cfg.Engine.Logger.With("component", "ledger-service"),
	}
}

// Engine returns the transaction engine
func (s *Service) Engine() *tx.Engine {
	return s.engine
}

// View returns the ledger state the service applies to
func (s *Service) View() tx.LedgerView {
	return s.view
}

// SubmitResult is the outcome of one submitted transaction
type SubmitResult struct {
	tx.ApplyResult

	// BatchID groups the transactions of one SubmitBatch call.
	BatchID string
}

// Submit applies one transaction. A recorder failure is returned as an
// error wrapping ErrRecordFailed; the ledger change itself stands.
func (s *Service) Submit(ctx context.Context, t tx.Transaction) (*SubmitResult, error) {
	if t == nil {
		return nil, ErrNilTransaction
	}
	return s.apply(ctx, t, "")
}

func (s *Service) apply(ctx context.Context, t tx.Transaction, batchID string) (*SubmitResult, error) {
	res := &SubmitResult{ApplyResult: s.engine.ApplyWithContext(ctx, t), BatchID: batchID}
	s.hooks.transaction(t, res)

	if s.recorder == nil {
		return res, nil
	}
	rec, err := newTxRecord(t, res, s.clock.Now())
	if err == nil {
		err = s.recorder.SaveTransaction(ctx, rec)
	}
	if err != nil {
		s.logger.Error("failed to record transaction",
			"type", t.TxType().String(),
			"result", res.Result.String(),
			"error", err,
		)
		return res, fmt.Errorf("%w: %v", ErrRecordFailed, err)
	}
	return res, nil
}

// BatchResult holds the per-transaction results of a batch, in
// submission order.
type BatchResult struct {
	ID      string
	Results []*SubmitResult
}

// Applied counts the transactions that changed the ledger.
func (b *BatchResult) Applied() int {
	n := 0
	for _, r := range b.Results {
		if r != nil && r.Applied {
			n++
		}
	}
	return n
}

// SubmitBatch applies txs. Transactions of one signer are applied in
// submission order so their sequences line up; different signers run in
// parallel and serialize only on the accounts they share. The first
// recorder error is returned after every transaction has been applied.
func (s *Service) SubmitBatch(ctx context.Context, txs []tx.Transaction) (*BatchResult, error) {
	batch := &BatchResult{
		ID:      uuid.NewString(),
		Results: make([]*SubmitResult, len(txs)),
	}

	var order []solana.PublicKey
	bySigner := make(map[solana.PublicKey][]int)
	for i, t := range txs {
		if t == nil {
			return nil, fmt.Errorf("%w at index %d", ErrNilTransaction, i)
		}
		signer := t.GetCommon().Account
		if _, seen := bySigner[signer]; !seen {
			order = append(order, signer)
		}
		bySigner[signer] = append(bySigner[signer], i)
	}

	log := s.logger.With("batch", batch.ID)
	log.Debug("applying batch", "transactions", len(txs), "signers", len(order))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, signer := range order {
		indexes := bySigner[signer]
		g.Go(func() error {
			var firstErr error
			for _, i := range indexes {
				res, err := s.apply(ctx, txs[i], batch.ID)
				batch.Results[i] = res
				if err != nil && firstErr == nil {
					firstErr = err
				}
			}
			return firstErr
		})
	}
	err := g.Wait()

	log.Info("batch applied", "transactions", len(txs), "applied", batch.Applied())
	return batch, err
}

func newTxRecord(t tx.Transaction, res *SubmitResult, now time.Time) (*relationaldb.TxRecord, error) {
	raw, err := tx.ToJSON(t)
	if err != nil {
		return nil, err
	}
	var meta []byte
	if res.Metadata != nil {
		if meta, err = json.Marshal(res.Metadata); err != nil {
			return nil, err
		}
	}
	common := t.GetCommon()
	return &relationaldb.TxRecord{
		Hash:      relationaldb.Hash(res.Hash),
		BatchID:   res.BatchID,
		Account:   common.Account.String(),
		Sequence:  common.Sequence,
		Type:      t.TxType().String(),
		Result:    res.Result.String(),
		Applied:   res.Applied,
		RawTx:     raw,
		Metadata:  meta,
		CreatedAt: now.UTC(),
	}, nil
}
