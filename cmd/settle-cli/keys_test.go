package main

import (
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-settle/internal/ledger"
	"github.com/Klingon-tech/klingnet-settle/internal/utxo"
	"github.com/Klingon-tech/klingnet-settle/internal/wallet"
	"github.com/Klingon-tech/klingnet-settle/pkg/crypto"
	"github.com/Klingon-tech/klingnet-settle/pkg/tx"
	"github.com/Klingon-tech/klingnet-settle/pkg/types"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func testKeyring(t *testing.T) *wallet.Keyring {
	t.Helper()
	kr, err := wallet.NewKeyring(testMnemonic, "", 0, 3)
	if err != nil {
		t.Fatalf("NewKeyring: %v", err)
	}
	t.Cleanup(kr.Zero)
	return kr
}

func outpoint(tag string) types.Outpoint {
	return types.Outpoint{TxID: crypto.Hash([]byte(tag))}
}

func TestBuildTransfer_Settles(t *testing.T) {
	kr := testKeyring(t)
	addrs := kr.Addresses()
	recipient, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	stranger, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}

	pool := utxo.NewPool()
	pool.Insert(outpoint("a"), tx.Output{Value: 6, Address: addrs[0]})
	pool.Insert(outpoint("b"), tx.Output{Value: 5, Address: addrs[2]})
	pool.Insert(outpoint("c"), tx.Output{Value: 100, Address: stranger.Address()})

	// Nothing single covers 9, so both wallet outputs are spent: change 2.
	payment, sel, err := buildTransfer(kr, pool, recipient.Address(), 8, 1)
	if err != nil {
		t.Fatalf("buildTransfer: %v", err)
	}
	if len(sel.Inputs) != 2 || sel.Change != 2 {
		t.Fatalf("selection = %+v, want 2 inputs and change 2", sel)
	}
	if len(payment.Outputs) != 2 || payment.Outputs[1].Address != addrs[0] {
		t.Fatalf("outputs = %+v, want payment then change to first address", payment.Outputs)
	}

	h, err := ledger.New(pool)
	if err != nil {
		t.Fatalf("ledger.New: %v", err)
	}
	r := h.SettleWithReport([]*tx.Transaction{payment})
	if len(r.Accepted) != 1 {
		t.Fatalf("transfer rejected: %+v", r.Rejected)
	}
	if r.Fees != 1 {
		t.Errorf("fees = %d, want 1", r.Fees)
	}

	after := h.Pool()
	txid := payment.Hash()
	paid, err := after.Get(types.Outpoint{TxID: txid, Index: 0})
	if err != nil || paid.Value != 8 || paid.Address != recipient.Address() {
		t.Errorf("payment output = %+v, %v", paid, err)
	}
	change, err := after.Get(types.Outpoint{TxID: txid, Index: 1})
	if err != nil || change.Value != 2 {
		t.Errorf("change output = %+v, %v", change, err)
	}
	if after.Contains(outpoint("a")) || after.Contains(outpoint("b")) {
		t.Error("spent wallet outputs still in pool")
	}
	if !after.Contains(outpoint("c")) {
		t.Error("stranger's output should be untouched")
	}
}

func TestBuildTransfer_ExactAmount(t *testing.T) {
	kr := testKeyring(t)
	pool := utxo.NewPool()
	pool.Insert(outpoint("a"), tx.Output{Value: 10, Address: kr.Addresses()[1]})

	payment, sel, err := buildTransfer(kr, pool, kr.Addresses()[2], 10, 0)
	if err != nil {
		t.Fatalf("buildTransfer: %v", err)
	}
	if sel.Change != 0 || len(payment.Outputs) != 1 {
		t.Errorf("exact payment should have no change output: %+v", payment.Outputs)
	}

	h, err := ledger.New(pool)
	if err != nil {
		t.Fatal(err)
	}
	if !h.IsValid(payment) {
		t.Errorf("exact payment invalid: %v", h.Check(payment))
	}
}

func TestBuildTransfer_Errors(t *testing.T) {
	kr := testKeyring(t)
	pool := utxo.NewPool()
	pool.Insert(outpoint("a"), tx.Output{Value: 5, Address: kr.Addresses()[0]})
	to := kr.Addresses()[1]

	if _, _, err := buildTransfer(kr, pool, to, 5, 1); !errors.Is(err, wallet.ErrInsufficientFunds) {
		t.Errorf("short funds: err = %v, want ErrInsufficientFunds", err)
	}
	if _, _, err := buildTransfer(kr, utxo.NewPool(), to, 1, 0); !errors.Is(err, wallet.ErrNoUTXOs) {
		t.Errorf("empty pool: err = %v, want ErrNoUTXOs", err)
	}
	if _, _, err := buildTransfer(kr, pool, to, 1<<62, 1<<62); err == nil {
		t.Error("amount plus fee overflow should fail")
	}
}
