// Package market implements the fixed-price sale transactions: CreateStore,
// InitSellingResource, CreateMarket, ChangeMarket, Buy, CloseMarket,
// Withdraw and ClaimResource.
package market

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
)

// Field limits, in bytes.
const (
	MaxNameLength        = 40
	MaxDescriptionLength = 60
)

var (
	errBumpMismatch = errors.New("temMALFORMED: bump does not match the derived address")
	errZeroAddress  = errors.New("temMALFORMED: address is required")
)

func init() {
	tx.Register(tx.TypeCreateStore, func() tx.Transaction {
		return &CreateStore{BaseTx: *tx.NewBaseTx(tx.TypeCreateStore, zeroKey)}
	})
	tx.Register(tx.TypeInitSellingResource, func() tx.Transaction {
		return &InitSellingResource{BaseTx: *tx.NewBaseTx(tx.TypeInitSellingResource, zeroKey)}
	})
	tx.Register(tx.TypeCreateMarket, func() tx.Transaction {
		return &CreateMarket{BaseTx: *tx.NewBaseTx(tx.TypeCreateMarket, zeroKey)}
	})
	tx.Register(tx.TypeChangeMarket, func() tx.Transaction {
		return &ChangeMarket{BaseTx: *tx.NewBaseTx(tx.TypeChangeMarket, zeroKey)}
	})
	tx.Register(tx.TypeBuy, func() tx.Transaction {
		return &Buy{BaseTx: *tx.NewBaseTx(tx.TypeBuy, zeroKey)}
	})
	tx.Register(tx.TypeCloseMarket, func() tx.Transaction {
		return &CloseMarket{BaseTx: *tx.NewBaseTx(tx.TypeCloseMarket, zeroKey)}
	})
	tx.Register(tx.TypeWithdraw, func() tx.Transaction {
		return &Withdraw{BaseTx: *tx.NewBaseTx(tx.TypeWithdraw, zeroKey)}
	})
	tx.Register(tx.TypeClaimResource, func() tx.Transaction {
		return &ClaimResource{BaseTx: *tx.NewBaseTx(tx.TypeClaimResource, zeroKey)}
	})
}

func validateText(field, value string, limit int) error {
	if len(value) > limit {
		return fmt.Errorf("temINVALID_PARAMETERS: %s longer than %d bytes", field, limit)
	}
	if !utf8.ValidString(value) {
		return fmt.Errorf("temINVALID_PARAMETERS: %s is not valid UTF-8", field)
	}
	return nil
}

func requireAddresses(addrs ...[32]byte) error {
	for _, a := range addrs {
		if a == zeroKey {
			return errZeroAddress
		}
	}
	return nil
}

func checkBump(k keylet.Keylet, bump uint8) error {
	if k.Bump != bump {
		return errBumpMismatch
	}
	return nil
}
