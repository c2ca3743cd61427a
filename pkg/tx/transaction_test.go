package tx

import (
	"bytes"
	"math"
	"testing"

	"github.com/Klingon-tech/klingnet-settle/pkg/crypto"
	"github.com/Klingon-tech/klingnet-settle/pkg/types"
)

func sampleTx() *Transaction {
	return &Transaction{
		Inputs: []Input{
			{PrevOut: types.Outpoint{TxID: types.Hash{0x01}, Index: 0}},
			{PrevOut: types.Outpoint{TxID: types.Hash{0x02}, Index: 3}},
		},
		Outputs: []Output{
			{Value: 1000, Address: types.Address{0x02, 0xaa}},
		},
	}
}

func TestTransaction_Hash_Deterministic(t *testing.T) {
	tx := sampleTx()
	h1 := tx.Hash()
	h2 := tx.Hash()
	if h1 != h2 {
		t.Error("Hash() should be deterministic")
	}
	if h1.IsZero() {
		t.Error("Hash() should not be zero")
	}
}

func TestTransaction_Hash_ChangesWithContent(t *testing.T) {
	tx1 := sampleTx()
	tx2 := sampleTx()
	tx2.Outputs[0].Value = 2000

	if tx1.Hash() == tx2.Hash() {
		t.Error("different transactions should have different hashes")
	}
}

func TestTransaction_Hash_CoversSignatures(t *testing.T) {
	tx := sampleTx()
	h1 := tx.Hash()

	tx.Inputs[0].Signature = []byte("some signature")
	if tx.Hash() == h1 {
		t.Error("Hash() should change when a signature is added")
	}
}

func TestTransaction_SigningBytes(t *testing.T) {
	tx := sampleTx()

	p0 := tx.SigningBytes(0)
	p1 := tx.SigningBytes(1)
	if bytes.Equal(p0, p1) {
		t.Error("payloads for different inputs should differ")
	}
	if !bytes.Equal(p0, tx.SigningBytes(0)) {
		t.Error("SigningBytes should be deterministic")
	}

	// Signatures never feed into the payload.
	tx.Inputs[1].Signature = []byte("sig")
	if !bytes.Equal(p0, tx.SigningBytes(0)) {
		t.Error("SigningBytes should not depend on signatures")
	}

	// Outputs do.
	tx.Outputs[0].Value = 999
	if bytes.Equal(p0, tx.SigningBytes(0)) {
		t.Error("SigningBytes should cover output values")
	}
}

func TestTransaction_TotalOutputValue(t *testing.T) {
	tx := &Transaction{Outputs: []Output{{Value: 1000}, {Value: 2000}, {Value: 3000}}}
	got, err := tx.TotalOutputValue()
	if err != nil {
		t.Fatalf("TotalOutputValue() error: %v", err)
	}
	if got != 6000 {
		t.Errorf("TotalOutputValue() = %d, want 6000", got)
	}

	tx.Outputs = []Output{{Value: math.MaxInt64}, {Value: 1}}
	if _, err := tx.TotalOutputValue(); err != ErrValueOverflow {
		t.Errorf("expected ErrValueOverflow, got %v", err)
	}
}

func TestAddValues(t *testing.T) {
	tests := []struct {
		a, b   int64
		want   int64
		wantOK bool
	}{
		{1, 2, 3, true},
		{-5, 3, -2, true},
		{math.MaxInt64, 1, 0, false},
		{math.MinInt64, -1, 0, false},
		{math.MaxInt64, -1, math.MaxInt64 - 1, true},
	}
	for _, tt := range tests {
		got, ok := AddValues(tt.a, tt.b)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("AddValues(%d, %d) = %d, %v; want %d, %v", tt.a, tt.b, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestBuilder_SignInput(t *testing.T) {
	key, _ := crypto.GenerateKey()
	b := NewBuilder().
		AddInput(types.Outpoint{TxID: types.Hash{0x01}}).
		AddInput(types.Outpoint{TxID: types.Hash{0x02}}).
		AddOutput(500, key.Address())

	if err := b.Sign(key); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	tx := b.Build()

	for i, in := range tx.Inputs {
		if !crypto.VerifySignature(key.Address(), tx.SigningBytes(i), in.Signature) {
			t.Errorf("input %d: signature does not verify", i)
		}
	}
	// A signature for one position does not verify at another.
	if crypto.VerifySignature(key.Address(), tx.SigningBytes(1), tx.Inputs[0].Signature) {
		t.Error("input 0 signature should not verify for input 1")
	}

	if err := b.SignInput(5, key); err == nil {
		t.Error("SignInput out of range should fail")
	}
}

func TestBuilder_SignMulti(t *testing.T) {
	k1, _ := crypto.GenerateKey()
	k2, _ := crypto.GenerateKey()
	op1 := types.Outpoint{TxID: types.Hash{0x01}}
	op2 := types.Outpoint{TxID: types.Hash{0x02}}

	b := NewBuilder().AddInput(op1).AddInput(op2).AddOutput(1, k1.Address())
	err := b.SignMulti(
		map[types.Address]*crypto.PrivateKey{k1.Address(): k1, k2.Address(): k2},
		map[types.Outpoint]types.Address{op1: k1.Address(), op2: k2.Address()},
	)
	if err != nil {
		t.Fatalf("SignMulti: %v", err)
	}
	tx := b.Build()
	if !crypto.VerifySignature(k1.Address(), tx.SigningBytes(0), tx.Inputs[0].Signature) {
		t.Error("input 0 should be signed by k1")
	}
	if !crypto.VerifySignature(k2.Address(), tx.SigningBytes(1), tx.Inputs[1].Signature) {
		t.Error("input 1 should be signed by k2")
	}

	missing := NewBuilder().AddInput(op1).AddOutput(1, k1.Address())
	if err := missing.SignMulti(nil, map[types.Outpoint]types.Address{}); err == nil {
		t.Error("SignMulti without owner mapping should fail")
	}
}
