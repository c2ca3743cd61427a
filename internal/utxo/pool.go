// Package utxo holds the pool of unspent transaction outputs and the
// helpers that move pools in and out of files and snapshot storage.
package utxo

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Klingon-tech/klingnet-settle/pkg/tx"
	"github.com/Klingon-tech/klingnet-settle/pkg/types"
)

// ErrNotFound is returned by Get for an outpoint that is not in the pool.
var ErrNotFound = errors.New("utxo not found")

// UTXO is one pool entry: an outpoint and the output it identifies.
type UTXO struct {
	Outpoint types.Outpoint `json:"outpoint"`
	Address  types.Address  `json:"address"`
	Value    int64          `json:"value"`
}

// Output returns the entry's output data.
func (u UTXO) Output() tx.Output {
	return tx.Output{Value: u.Value, Address: u.Address}
}

// Pool maps outpoints to the outputs they identify. Every key present is
// an output that has been produced and not yet consumed.
//
// A Pool is not safe for concurrent use.
type Pool struct {
	utxos map[types.Outpoint]tx.Output
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{utxos: make(map[types.Outpoint]tx.Output)}
}

// Clone returns an independent copy of the pool. Outputs are plain
// values, so later changes to either pool never show in the other.
func (p *Pool) Clone() *Pool {
	c := &Pool{utxos: make(map[types.Outpoint]tx.Output, len(p.utxos))}
	for op, out := range p.utxos {
		c.utxos[op] = out
	}
	return c
}

// Contains reports whether op is in the pool.
func (p *Pool) Contains(op types.Outpoint) bool {
	_, ok := p.utxos[op]
	return ok
}

// Get returns the output identified by op.
func (p *Pool) Get(op types.Outpoint) (tx.Output, error) {
	out, ok := p.utxos[op]
	if !ok {
		return tx.Output{}, fmt.Errorf("%w: %s", ErrNotFound, op)
	}
	return out, nil
}

// Insert adds the output at op, replacing any existing entry.
func (p *Pool) Insert(op types.Outpoint, out tx.Output) {
	p.utxos[op] = out
}

// Remove deletes op from the pool. Removing an absent outpoint is a no-op.
func (p *Pool) Remove(op types.Outpoint) {
	delete(p.utxos, op)
}

// Len returns the number of unspent outputs.
func (p *Pool) Len() int {
	return len(p.utxos)
}

// TotalValue returns the sum of all output values.
func (p *Pool) TotalValue() (int64, error) {
	var total int64
	for _, out := range p.utxos {
		sum, ok := tx.AddValues(total, out.Value)
		if !ok {
			return 0, tx.ErrValueOverflow
		}
		total = sum
	}
	return total, nil
}

// UTXOs returns every entry sorted by outpoint.
func (p *Pool) UTXOs() []UTXO {
	all := make([]UTXO, 0, len(p.utxos))
	for op, out := range p.utxos {
		all = append(all, UTXO{Outpoint: op, Address: out.Address, Value: out.Value})
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Outpoint.Compare(all[j].Outpoint) < 0
	})
	return all
}

// Outputs returns every output, ordered by outpoint.
func (p *Pool) Outputs() []tx.Output {
	entries := p.UTXOs()
	outs := make([]tx.Output, len(entries))
	for i, u := range entries {
		outs[i] = u.Output()
	}
	return outs
}

// ForEach calls fn for every entry in outpoint order, stopping at the
// first error.
func (p *Pool) ForEach(fn func(UTXO) error) error {
	for _, u := range p.UTXOs() {
		if err := fn(u); err != nil {
			return err
		}
	}
	return nil
}
