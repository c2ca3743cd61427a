package utxo

import (
	"errors"
	"math"
	"testing"

	"github.com/Klingon-tech/klingnet-settle/pkg/crypto"
	"github.com/Klingon-tech/klingnet-settle/pkg/tx"
	"github.com/Klingon-tech/klingnet-settle/pkg/types"
)

func makeOutpoint(data string, index uint32) types.Outpoint {
	return types.Outpoint{
		TxID:  crypto.Hash([]byte(data)),
		Index: index,
	}
}

func makeOutput(value int64) tx.Output {
	return tx.Output{Value: value, Address: types.Address{0x02, 0x01, 0x02, 0x03}}
}

func TestPool_InsertGetRemove(t *testing.T) {
	p := NewPool()
	op := makeOutpoint("tx1", 0)

	if p.Contains(op) {
		t.Fatal("empty pool should not contain anything")
	}
	if _, err := p.Get(op); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() on empty pool error = %v, want ErrNotFound", err)
	}

	p.Insert(op, makeOutput(5000))
	if !p.Contains(op) {
		t.Fatal("Contains() = false after Insert")
	}
	got, err := p.Get(op)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Value != 5000 {
		t.Errorf("Value = %d, want 5000", got.Value)
	}

	// Overwrite.
	p.Insert(op, makeOutput(7000))
	got, _ = p.Get(op)
	if got.Value != 7000 || p.Len() != 1 {
		t.Errorf("after overwrite: value %d len %d, want 7000 1", got.Value, p.Len())
	}

	p.Remove(op)
	if p.Contains(op) {
		t.Error("Contains() = true after Remove")
	}
	// Removing again is a no-op.
	p.Remove(op)
	if p.Len() != 0 {
		t.Errorf("Len() = %d, want 0", p.Len())
	}
}

func TestPool_Clone_Independent(t *testing.T) {
	orig := NewPool()
	a := makeOutpoint("a", 0)
	b := makeOutpoint("b", 0)
	orig.Insert(a, makeOutput(1))

	c := orig.Clone()
	c.Remove(a)
	c.Insert(b, makeOutput(2))

	if !orig.Contains(a) {
		t.Error("removing from clone affected the original")
	}
	if orig.Contains(b) {
		t.Error("inserting into clone affected the original")
	}

	orig.Insert(a, makeOutput(99))
	if c.Contains(a) {
		t.Error("original change leaked into clone")
	}
}

func TestPool_UTXOsSorted(t *testing.T) {
	p := NewPool()
	ops := []types.Outpoint{
		{TxID: types.Hash{0x03}, Index: 0},
		{TxID: types.Hash{0x01}, Index: 2},
		{TxID: types.Hash{0x01}, Index: 1},
	}
	for i, op := range ops {
		p.Insert(op, makeOutput(int64(i)))
	}

	all := p.UTXOs()
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Outpoint.Compare(all[i].Outpoint) >= 0 {
			t.Errorf("UTXOs not sorted at %d: %s >= %s", i, all[i-1].Outpoint, all[i].Outpoint)
		}
	}

	outs := p.Outputs()
	if len(outs) != 3 || outs[0].Value != 2 {
		t.Errorf("Outputs() = %v, want ordered by outpoint", outs)
	}

	var visited int
	p.ForEach(func(UTXO) error {
		visited++
		return nil
	})
	if visited != 3 {
		t.Errorf("ForEach visited %d, want 3", visited)
	}
}

func TestPool_TotalValue(t *testing.T) {
	p := NewPool()
	p.Insert(makeOutpoint("a", 0), makeOutput(10))
	p.Insert(makeOutpoint("a", 1), makeOutput(32))

	total, err := p.TotalValue()
	if err != nil || total != 42 {
		t.Fatalf("TotalValue() = %d, %v; want 42", total, err)
	}

	p.Insert(makeOutpoint("b", 0), makeOutput(math.MaxInt64))
	if _, err := p.TotalValue(); !errors.Is(err, tx.ErrValueOverflow) {
		t.Errorf("TotalValue() overflow error = %v", err)
	}
}
