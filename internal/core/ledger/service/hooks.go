package service

import "github.com/LeJamon/goFixedPriceSale/internal/core/tx"

// EventHooks allows external systems to observe submitted transactions
// without the service depending on them.
type EventHooks struct {
	// OnTransaction is called after every transaction, applied or not.
	// It runs on the submitting goroutine and must not block.
	OnTransaction func(t tx.Transaction, result *SubmitResult)
}

func (h *EventHooks) transaction(t tx.Transaction, result *SubmitResult) {
	if h == nil || h.OnTransaction == nil {
		return
	}
	h.OnTransaction(t, result)
}
