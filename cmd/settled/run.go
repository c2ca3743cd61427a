package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Klingon-tech/klingnet-settle/config"
	"github.com/Klingon-tech/klingnet-settle/internal/ledger"
	"github.com/Klingon-tech/klingnet-settle/internal/log"
	"github.com/Klingon-tech/klingnet-settle/internal/storage"
	"github.com/Klingon-tech/klingnet-settle/internal/utxo"
	"github.com/Klingon-tech/klingnet-settle/pkg/tx"
	"github.com/Klingon-tech/klingnet-settle/pkg/types"
)

// result is the JSON document written after settlement.
type result struct {
	Accepted   []types.Hash `json:"accepted"`
	Rejected   []rejected   `json:"rejected"`
	Fees       int64        `json:"fees"`
	Commitment types.Hash   `json:"commitment"`
	Pool       []utxo.UTXO  `json:"pool"`
}

type rejected struct {
	Index  int        `json:"index"`
	TxID   types.Hash `json:"txid"`
	Reason string     `json:"reason"`
}

// run settles cfg.BatchFile against the configured seed and writes the
// result to cfg.OutputFile, or stdout when that is empty.
func run(cfg *config.Config, stdout io.Writer) error {
	var store *utxo.Store
	if cfg.Snapshot.Enabled {
		db, err := storage.NewBadger(cfg.SnapshotDir())
		if err != nil {
			return fmt.Errorf("open snapshot store: %w", err)
		}
		defer db.Close()
		store = utxo.NewStore(db)
	}

	seed, err := loadSeed(cfg, store)
	if err != nil {
		return err
	}

	batch, err := readBatch(cfg.BatchFile)
	if err != nil {
		return err
	}

	h, err := ledger.New(seed)
	if err != nil {
		return err
	}
	report := h.SettleWithReport(batch)
	final := h.Pool()

	if store != nil && cfg.Snapshot.Save != "" {
		info, err := store.SaveSnapshot(cfg.Snapshot.Save, final)
		if err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		log.Storage.Info().
			Str("name", info.Name).
			Int("utxos", info.UTXOs).
			Str("commitment", info.Commitment.String()).
			Msg("snapshot saved")
	}

	return writeResult(cfg.OutputFile, stdout, newResult(report, final))
}

func loadSeed(cfg *config.Config, store *utxo.Store) (*utxo.Pool, error) {
	if cfg.Snapshot.Load != "" {
		if store == nil {
			return nil, fmt.Errorf("snapshot.load %q needs the snapshot store enabled", cfg.Snapshot.Load)
		}
		p, err := store.LoadSnapshot(cfg.Snapshot.Load)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		log.Storage.Info().Str("name", cfg.Snapshot.Load).Int("utxos", p.Len()).Msg("seed loaded from snapshot")
		return p, nil
	}

	p, err := utxo.LoadSeedFile(cfg.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	log.Ledger.Info().Str("file", cfg.SeedFile).Int("utxos", p.Len()).Msg("seed loaded")
	return p, nil
}

func readBatch(path string) ([]*tx.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch: %w", err)
	}
	defer f.Close()

	batch, err := tx.DecodeBatch(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(batch) > config.MaxBatchSize {
		return nil, fmt.Errorf("batch has %d transactions, max is %d", len(batch), config.MaxBatchSize)
	}
	return batch, nil
}

func newResult(r *ledger.Report, final *utxo.Pool) *result {
	res := &result{
		Accepted:   make([]types.Hash, len(r.Accepted)),
		Rejected:   make([]rejected, len(r.Rejected)),
		Fees:       r.Fees,
		Commitment: utxo.Commitment(final),
		Pool:       final.UTXOs(),
	}
	for i, t := range r.Accepted {
		res.Accepted[i] = t.Hash()
	}
	for i, rej := range r.Rejected {
		res.Rejected[i] = rejected{Index: rej.Index, TxID: rej.TxID, Reason: rej.Err.Error()}
	}
	return res
}

func writeResult(path string, stdout io.Writer, res *result) error {
	if path == "" {
		return encodeResult(stdout, res)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := encodeResult(f, res); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func encodeResult(w io.Writer, res *result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
