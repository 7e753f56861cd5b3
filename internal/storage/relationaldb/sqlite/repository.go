// Package sqlite stores transaction history in an embedded sqlite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/LeJamon/goFixedPriceSale/internal/storage/relationaldb"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

func init() {
	relationaldb.Register("sqlite", func(ctx context.Context, cfg *relationaldb.Config) (relationaldb.TxRepository, error) {
		return Open(ctx, cfg)
	})
}

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	hash       BLOB    NOT NULL,
	batch_id   TEXT,
	account    TEXT    NOT NULL,
	sequence   INTEGER NOT NULL,
	tx_type    TEXT    NOT NULL,
	result     TEXT    NOT NULL,
	applied    INTEGER NOT NULL,
	raw_tx     BLOB    NOT NULL,
	metadata   BLOB,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS transactions_hash_idx ON transactions(hash);
CREATE INDEX IF NOT EXISTS transactions_account_idx ON transactions(account, id);
`

// Repository implements relationaldb.TxRepository on sqlite
type Repository struct {
	db      *sql.DB
	timeout time.Duration
}

// Open opens the database file and creates the schema.
func Open(ctx context.Context, cfg *relationaldb.Config) (*Repository, error) {
	dsn, err := cfg.BuildConnectionString()
	if err != nil {
		return nil, relationaldb.NewConfigurationError("open", "failed to build connection string", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, relationaldb.NewConnectionError("open", "failed to open database", err)
	}
	// sqlite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(ctx, cfg.DefaultTimeout)
	defer cancel()
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

	res, err := r.db.ExecContext(ctx, `INSERT INTO transactions
		(hash, batch_id, account, sequence, tx_type, result, applied, raw_tx, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Hash[:], relationaldb.NullString(rec.BatchID), rec.Account, rec.Sequence, rec.Type,
		rec.Result, rec.Applied, rec.RawTx, rec.Metadata, rec.CreatedAt.UnixNano())
	if err != nil {
		return relationaldb.NewQueryError("save_transaction", "failed to insert transaction", err)
	}
	rec.ID, err = res.LastInsertId()
	return err
}

func (r *Repository) GetTransaction(ctx context.Context, hash relationaldb.Hash) (*relationaldb.TxRecord, error) {
	if r.db == nil {
		return nil, relationaldb.ErrDatabaseClosed
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx,
		`SELECT `+relationaldb.TxColumns+` FROM transactions WHERE hash = ? ORDER BY id DESC LIMIT 1`, hash[:])
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

	query := `SELECT ` + relationaldb.TxColumns + ` FROM transactions WHERE account = ?`
	if opts.AppliedOnly {
		query += ` AND applied = 1`
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`

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
	return r.db.PingContext(ctx)
}

func (r *Repository) Close(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}
