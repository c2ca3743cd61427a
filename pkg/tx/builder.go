package tx

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-settle/pkg/crypto"
	"github.com/Klingon-tech/klingnet-settle/pkg/types"
)

// Builder constructs transactions incrementally.
type Builder struct {
	tx *Transaction
}

// NewBuilder creates a new transaction builder.
func NewBuilder() *Builder {
	return &Builder{tx: &Transaction{}}
}

// AddInput adds an unsigned input claiming prevOut.
func (b *Builder) AddInput(prevOut types.Outpoint) *Builder {
	b.tx.Inputs = append(b.tx.Inputs, Input{PrevOut: prevOut})
	return b
}

// AddOutput adds an output paying value to addr.
func (b *Builder) AddOutput(value int64, addr types.Address) *Builder {
	b.tx.Outputs = append(b.tx.Outputs, Output{Value: value, Address: addr})
	return b
}

// SignInput signs input index with key. Call it after all inputs and
// outputs are in place: the payload covers every prevout and output.
func (b *Builder) SignInput(index int, key *crypto.PrivateKey) error {
	if index < 0 || index >= len(b.tx.Inputs) {
		return fmt.Errorf("sign input %d: out of range (have %d inputs)", index, len(b.tx.Inputs))
	}
	sig, err := key.Sign(b.tx.SigningBytes(index))
	if err != nil {
		return fmt.Errorf("sign input %d: %w", index, err)
	}
	b.tx.Inputs[index].Signature = sig
	return nil
}

// Sign signs every input with key (single-owner spending).
func (b *Builder) Sign(key *crypto.PrivateKey) error {
	for i := range b.tx.Inputs {
		if err := b.SignInput(i, key); err != nil {
			return err
		}
	}
	return nil
}

// SignMulti signs each input with the key owning the output it claims.
// owners maps each claimed outpoint to its address; signers maps each
// address to the key that can spend from it.
func (b *Builder) SignMulti(
	signers map[types.Address]*crypto.PrivateKey,
	owners map[types.Outpoint]types.Address,
) error {
	for i, in := range b.tx.Inputs {
		addr, ok := owners[in.PrevOut]
		if !ok {
			return fmt.Errorf("no owner for input %d (%s)", i, in.PrevOut)
		}
		key, ok := signers[addr]
		if !ok {
			return fmt.Errorf("no signer for address %s (input %d)", addr, i)
		}
		if err := b.SignInput(i, key); err != nil {
			return err
		}
	}
	return nil
}

// Build returns the constructed transaction.
// It does not validate; that needs the UTXO pool.
func (b *Builder) Build() *Transaction {
	return b.tx
}
