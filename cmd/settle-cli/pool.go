package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/Klingon-tech/klingnet-settle/config"
	"github.com/Klingon-tech/klingnet-settle/internal/ledger"
	"github.com/Klingon-tech/klingnet-settle/internal/storage"
	"github.com/Klingon-tech/klingnet-settle/internal/utxo"
	"github.com/Klingon-tech/klingnet-settle/pkg/tx"
)

// ── check ───────────────────────────────────────────────────────────────

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	seedFile := fs.String("seed", "", "Seed pool JSON file")
	txFile := fs.String("tx", "", "Transaction JSON file")
	fs.Parse(args)

	if *seedFile == "" || *txFile == "" {
		fatal("Usage: settle-cli check --seed <file> --tx <file>")
	}
	pool := loadSeed(*seedFile)
	t := readTransaction(*txFile)

	h, err := ledger.New(pool)
	if err != nil {
		fatal("%v", err)
	}

	fmt.Printf("TxID:    %s\n", t.Hash())
	if err := h.Check(t); err != nil {
		fmt.Printf("Valid:   no\n")
		fmt.Printf("Reason:  %v\n", err)
		os.Exit(2)
	}
	// Settling on the handler's private copy yields the fee.
	r := h.SettleWithReport([]*tx.Transaction{t})
	fmt.Printf("Valid:   yes\n")
	fmt.Printf("Fee:     %s\n", config.FormatAmount(r.Fees))
}

// ── pool ────────────────────────────────────────────────────────────────

func cmdPool(args []string) {
	fs := flag.NewFlagSet("pool", flag.ExitOnError)
	seedFile := fs.String("seed", "", "Seed pool JSON file")
	fs.Parse(args)

	if *seedFile == "" {
		fatal("Usage: settle-cli pool --seed <file>")
	}
	printPool(loadSeed(*seedFile))
}

func printPool(p *utxo.Pool) {
	for _, u := range p.UTXOs() {
		fmt.Printf("%s  %s  %s\n", u.Outpoint, u.Address, config.FormatAmount(u.Value))
	}
	total, err := p.TotalValue()
	if err != nil {
		fmt.Printf("\nOutputs:     %d\nTotal:       overflow\n", p.Len())
	} else {
		fmt.Printf("\nOutputs:     %d\nTotal:       %s\n", p.Len(), config.FormatAmount(total))
	}
	fmt.Printf("Commitment:  %s\n", utxo.Commitment(p))
}

// ── snapshot ────────────────────────────────────────────────────────────

func cmdSnapshot(args []string, dataDir string) {
	if len(args) == 0 {
		fatal("Usage: settle-cli snapshot <list|show|delete> [name] [--db <dir>]")
	}
	sub := args[0]
	args = args[1:]

	var name string
	if sub != "list" {
		if len(args) == 0 {
			fatal("Usage: settle-cli snapshot %s <name> [--db <dir>]", sub)
		}
		name = args[0]
		args = args[1:]
	}

	fs := flag.NewFlagSet("snapshot "+sub, flag.ExitOnError)
	dbDir := fs.String("db", "", "Snapshot store directory (default: <datadir>/snapshots)")
	fs.Parse(args)
	if *dbDir == "" {
		cfg := config.Default()
		cfg.DataDir = dataDir
		*dbDir = cfg.SnapshotDir()
	}

	db, err := storage.NewBadger(*dbDir)
	if err != nil {
		fatal("open snapshot store: %v", err)
	}
	defer db.Close()
	store := utxo.NewStore(db)

	switch sub {
	case "list":
		infos, err := store.Snapshots()
		if err != nil {
			fatal("%v", err)
		}
		if len(infos) == 0 {
			fmt.Println("No snapshots.")
			return
		}
		for _, info := range infos {
			fmt.Printf("%-20s  %6d outputs  %s  %s\n",
				info.Name, info.UTXOs, config.FormatAmount(info.TotalValue), info.Commitment)
		}
	case "show":
		p, err := store.LoadSnapshot(name)
		if err != nil {
			fatal("%v", err)
		}
		printPool(p)
	case "delete":
		if err := store.DeleteSnapshot(name); err != nil {
			fatal("%v", err)
		}
		fmt.Printf("Deleted snapshot %s\n", name)
	default:
		fatal("unknown snapshot command %q", sub)
	}
}

// ── File helpers ────────────────────────────────────────────────────────

func loadSeed(path string) *utxo.Pool {
	p, err := utxo.LoadSeedFile(path)
	if err != nil {
		fatal("load seed: %v", err)
	}
	return p
}

func readTransaction(path string) *tx.Transaction {
	f, err := os.Open(path)
	if err != nil {
		fatal("open transaction: %v", err)
	}
	defer f.Close()

	t, err := tx.DecodeTransaction(f)
	if err != nil {
		fatal("%s: %v", path, err)
	}
	return t
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal("encode: %v", err)
	}
}
