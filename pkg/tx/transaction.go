// Package tx defines the transaction value types consumed by the ledger:
// inputs that claim unspent outputs, outputs that create new ones, and the
// canonical byte encodings used for hashing and signing.
package tx

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"

	"github.com/Klingon-tech/klingnet-settle/pkg/crypto"
	"github.com/Klingon-tech/klingnet-settle/pkg/types"
)

// ErrValueOverflow is returned when a sum of output values does not fit
// in an int64.
var ErrValueOverflow = errors.New("value sum overflows int64")

// Transaction is an ordered list of inputs and an ordered list of outputs.
type Transaction struct {
	Inputs  []Input  `json:"inputs"`
	Outputs []Output `json:"outputs"`
}

// Input claims a previously produced output and carries the signature
// authorising the spend.
type Input struct {
	PrevOut   types.Outpoint `json:"prevout"`
	Signature []byte         `json:"signature"`
}

// inputJSON is the JSON representation of Input with a hex signature.
type inputJSON struct {
	PrevOut   types.Outpoint `json:"prevout"`
	Signature *string        `json:"signature"`
}

// MarshalJSON encodes the input with a hex-encoded signature.
func (in Input) MarshalJSON() ([]byte, error) {
	j := inputJSON{PrevOut: in.PrevOut}
	if in.Signature != nil {
		s := hex.EncodeToString(in.Signature)
		j.Signature = &s
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes an input with a hex-encoded signature.
func (in *Input) UnmarshalJSON(data []byte) error {
	var j inputJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&j); err != nil {
		return err
	}
	in.PrevOut = j.PrevOut
	in.Signature = nil
	if j.Signature != nil {
		b, err := hex.DecodeString(*j.Signature)
		if err != nil {
			return err
		}
		in.Signature = b
	}
	return nil
}

// Output pays Value base units to Address. Value is signed so that a
// malformed negative amount survives decoding and can be rejected by
// validation.
type Output struct {
	Value   int64         `json:"value"`
	Address types.Address `json:"address"`
}

// Hash returns the transaction ID: the BLAKE3 hash of the full encoding,
// signatures included. Outputs created by the transaction are keyed by
// (Hash(), position).
func (tx *Transaction) Hash() types.Hash {
	return crypto.Hash(tx.Bytes())
}

// Bytes returns the full canonical encoding of the transaction.
// Format: input_count(4) | [prevout(36) | sig_len(4) | sig]... | output_count(4) | [value(8) | address(33)]...
func (tx *Transaction) Bytes() []byte {
	var buf []byte
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		buf = appendOutpoint(buf, in.PrevOut)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(in.Signature)))
		buf = append(buf, in.Signature...)
	}
	return tx.appendOutputs(buf)
}

// SigningBytes returns the payload the owner of input index signs.
// Format: index(4) | input_count(4) | [prevout(36)]... | output_count(4) | [value(8) | address(33)]...
//
// No signature is part of the payload, so inputs can be signed in any
// order and a signature never covers itself.
func (tx *Transaction) SigningBytes(index int) []byte {
	var buf []byte
	buf = binary.LittleEndian.AppendUint32(buf, uint32(index))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		buf = appendOutpoint(buf, in.PrevOut)
	}
	return tx.appendOutputs(buf)
}

func (tx *Transaction) appendOutputs(buf []byte) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(out.Value))
		buf = append(buf, out.Address[:]...)
	}
	return buf
}

func appendOutpoint(buf []byte, op types.Outpoint) []byte {
	buf = append(buf, op.TxID[:]...)
	return binary.LittleEndian.AppendUint32(buf, op.Index)
}

// TotalOutputValue returns the sum of all output values.
// Returns ErrValueOverflow if the sum leaves the int64 range.
func (tx *Transaction) TotalOutputValue() (int64, error) {
	var total int64
	for _, out := range tx.Outputs {
		sum, ok := AddValues(total, out.Value)
		if !ok {
			return 0, ErrValueOverflow
		}
		total = sum
	}
	return total, nil
}

// AddValues returns a+b and false if the sum overflows int64.
func AddValues(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}
