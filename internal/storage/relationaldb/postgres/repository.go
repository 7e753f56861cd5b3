// Package postgres stores transaction history in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/LeJamon/goFixedPriceSale/internal/storage/relationaldb"
	_ "github.com/lib/pq" // PostgreSQL driver
)

func init() {
	relationaldb.Register("postgres", func(ctx context.Context, cfg *relationaldb.Config) (relationaldb.TxRepository, error) {
		return Open(ctx, cfg)
	})
}

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id         BIGSERIAL PRIMARY KEY,
	hash       BYTEA   NOT NULL,
	batch_id   TEXT,
	account    TEXT    NOT NULL,
	sequence   BIGINT  NOT NULL,
	tx_type    TEXT    NOT NULL,
	result     TEXT    NOT NULL,
	applied    BOOLEAN NOT NULL,
	raw_tx     BYTEA   NOT NULL,
	metadata   BYTEA,
	created_at BIGINT  NOT NULL
);
CREATE INDEX IF NOT EXISTS transactions_hash_idx ON transactions(hash);
CREATE INDEX IF NOT EXISTS transactions_account_idx ON transactions(account, id);
`

// Repository implements relationaldb.TxRepository for PostgreSQL
type Repository struct {
	db      *sql.DB
	timeout time.Duration
}

// Open connects, configures the pool and creates the schema.
func Open(ctx context.Context, cfg *relationaldb.Config) (*Repository, error) {
	connStr, err := cfg.BuildConnectionString()
	if err != nil {
		return nil, relationaldb.NewConfigurationError("open", "failed to build connection string", err)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, relationaldb.NewConnectionError("open", "failed to open database connection", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(ctx, cfg.DefaultTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, relationaldb.NewConnectionError("open", "failed to ping database", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, relationaldb.NewSchemaError("open", "failed to initialize schema", err)
	}

	return &Repository{db: db, timeout: cfg.DefaultTimeout}, nil
}

func (r *Repository) SaveTransaction(ctx context.Context, rec *relationaldb.TxRecord) error {
	if r.db == nil {
		return relationaldb.ErrDatabaseClosed
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.QueryRowContext(ctx, `INSERT INTO transactions
		(hash, batch_id, account, sequence, tx_type, result, applied, raw_tx, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		rec.Hash[:], relationaldb.NullString(rec.BatchID), rec.Account, int64(rec.Sequence), rec.Type,
		rec.Result, rec.Applied, rec.RawTx, rec.Metadata, rec.CreatedAt.UnixNano()).Scan(&rec.ID)
	if err != nil {
		return relationaldb.NewQueryError("save_transaction", "failed to insert transaction", err)
	}
	return nil
}

func (r *Repository) GetTransaction(ctx context.Context, hash relationaldb.Hash) (*relationaldb.TxRecord, error) {
	if r.db == nil {
		return nil, relationaldb.ErrDatabaseClosed
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx,
		`SELECT `+relationaldb.TxColumns+` FROM transactions WHERE hash = $1 ORDER BY id DESC LIMIT 1`, hash[:])
	rec, err := relationaldb.ScanTxRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, relationaldb.ErrTransactionNotFound
	}
	if err != nil {
		return nil, relationaldb.NewQueryError("get_transaction", "failed to query transaction", err)
	}
	return rec, nil
}

func (r *Repository) GetAccountTransactions(ctx context.Context, opts relationaldb.AccountTxOptions) ([]relationaldb.TxRecord, error) {
	if r.db == nil {
		return nil, relationaldb.ErrDatabaseClosed
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + relationaldb.TxColumns + ` FROM transactions WHERE account = $1`
	if opts.AppliedOnly {
		query += ` AND applied`
	}
	query += ` ORDER BY id DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, opts.Account, relationaldb.NormalizeLimit(opts.Limit), max(opts.Offset, 0))
	if err != nil {
		return nil, relationaldb.NewQueryError("get_account_transactions", "failed to query account transactions", err)
	}
	return relationaldb.ScanTxRecords(rows)
}

func (r *Repository) GetTransactionCount(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, relationaldb.ErrDatabaseClosed
	}
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, relationaldb.NewQueryError("get_transaction_count", "failed to count transactions", err)
	}
	return n, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return relationaldb.ErrDatabaseClosed
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.db.PingContext(ctx); err != nil {
		return relationaldb.NewConnectionError("ping", "database ping failed", err)
	}
	return nil
}

func (r *Repository) Close(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	if err != nil {
		return relationaldb.NewConnectionError("close", "failed to close database connection", err)
	}
	return nil
}
