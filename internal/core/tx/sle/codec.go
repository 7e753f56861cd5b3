// Package sle defines the serialized ledger entries of the sale program and
// the pure guard-and-mutate rules that apply to each of them.
package sle

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"
	"github.com/ugorji/go/codec"
)

// AccountID is a 32-byte ledger address: a wallet key, a mint, or a
// program-derived address.
type AccountID = [32]byte

var cborHandle = newCborHandle()

func newCborHandle() *codec.CborHandle {
	h := &codec.CborHandle{}
	h.Canonical = true
	return h
}

// Encode serializes v as canonical CBOR.
func Encode(v any) ([]byte, error) {
	var out []byte
	if err := codec.NewEncoderBytes(&out, cborHandle).Encode(v); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return out, nil
}

// Decode deserializes CBOR data into v.
func Decode(data []byte, v any) error {
	if len(data) == 0 {
		return errors.New("decode: empty data")
	}
	if err := codec.NewDecoderBytes(data, cborHandle).Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

type typeHeader struct {
	LedgerEntryType entry.Type `codec:"LedgerEntryType"`
}

// EntryType reads the LedgerEntryType field of a serialized entry without
// decoding the rest.
func EntryType(data []byte) (entry.Type, error) {
	var h typeHeader
	if err := Decode(data, &h); err != nil {
		return entry.TypeInvalid, err
	}
	return h.LedgerEntryType, nil
}

// decodeAs decodes data into v and checks that the stored entry type is want.
func decodeAs(data []byte, want entry.Type, v any) error {
	if err := Decode(data, v); err != nil {
		return err
	}
	got, err := EntryType(data)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: want %s, got %s", ErrWrongEntryType, want, got)
	}
	return nil
}
