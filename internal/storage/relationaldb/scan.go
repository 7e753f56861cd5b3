package relationaldb

import (
	"database/sql"
	"time"
)

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// TxColumns is the column list ScanTxRecord expects, in order.
const TxColumns = "id, hash, batch_id, account, sequence, tx_type, result, applied, raw_tx, metadata, created_at"

// ScanTxRecord reads one row selected with TxColumns.
func ScanTxRecord(row RowScanner) (*TxRecord, error) {
	var (
		rec       TxRecord
		hash      []byte
		batchID   sql.NullString
		metadata  []byte
		createdAt int64
	)
	if err := row.Scan(&rec.ID, &hash, &batchID, &rec.Account, &rec.Sequence, &rec.Type,
		&rec.Result, &rec.Applied, &rec.RawTx, &metadata, &createdAt); err != nil {
		return nil, err
	}
	if len(hash) != len(rec.Hash) {
		return nil, ErrInvalidTransactionHash
	}
	copy(rec.Hash[:], hash)
	rec.BatchID = batchID.String
	if len(metadata) > 0 {
		rec.Metadata = metadata
	}
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	return &rec, nil
}

// ScanTxRecords drains rows.
func ScanTxRecords(rows *sql.Rows) ([]TxRecord, error) {
	defer rows.Close()
	var out []TxRecord
	for rows.Next() {
		rec, err := ScanTxRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// NullString maps "" to NULL.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
