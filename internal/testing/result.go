package testing

import (
	"encoding/hex"
	"strings"

	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
)

// TxResult represents the result of applying a transaction.
type TxResult struct {
	// Code is the transaction engine result code (e.g., "tesSUCCESS").
	Code string

	// Result is the typed result code.
	Result tx.Result

	// Success indicates whether the transaction was successfully applied.
	Success bool

	// Message provides additional details about the result.
	Message string

	// Hash is the upper-case hex transaction hash, empty for malformed transactions.
	Hash string

	// Metadata lists the entries the transaction changed, if it applied.
	Metadata *tx.Metadata
}

func newTxResult(res tx.ApplyResult) TxResult {
	r := TxResult{
		Code:     res.Result.String(),
		Result:   res.Result,
		Success:  res.Applied,
		Message:  res.Message,
		Metadata: res.Metadata,
	}
	if res.Hash != ([32]byte{}) {
		r.Hash = strings.ToUpper(hex.EncodeToString(res.Hash[:]))
	}
	return r
}

// IsSuccess returns true if the result code indicates success.
func (r TxResult) IsSuccess() bool {
	return r.Result.IsSuccess()
}

// IsClaimed returns true for tec codes: the ledger state refused the
// transaction and nothing changed.
func (r TxResult) IsClaimed() bool {
	return r.Result.IsTec()
}

// IsRetry returns true if the result code indicates a retry is possible.
func (r TxResult) IsRetry() bool {
	return r.Result.IsTer()
}

// IsMalformed returns true if the result code indicates the transaction is malformed.
func (r TxResult) IsMalformed() bool {
	return r.Result.IsTem()
}

// IsFailed returns true if the result code indicates a failure.
func (r TxResult) IsFailed() bool {
	return r.Result.IsTef()
}
