package tx

import (
	"encoding/json"
	"fmt"
	"io"
)

// DecodeBatch reads a JSON array of transactions. A JSON null element
// decodes to a nil entry, which settlement skips.
func DecodeBatch(r io.Reader) ([]*Transaction, error) {
	var batch []*Transaction
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&batch); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	return batch, nil
}

// EncodeBatch writes transactions as an indented JSON array.
func EncodeBatch(w io.Writer, batch []*Transaction) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(batch); err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	return nil
}

// DecodeTransaction reads a single JSON transaction.
func DecodeTransaction(r io.Reader) (*Transaction, error) {
	var t Transaction
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return &t, nil
}
