package ledger

import (
	"math"

	"github.com/Klingon-tech/klingnet-settle/internal/log"
	"github.com/Klingon-tech/klingnet-settle/pkg/tx"
	"github.com/Klingon-tech/klingnet-settle/pkg/types"
)

// Rejection records why one batch entry was not accepted.
type Rejection struct {
	Index int        // Position in the batch.
	TxID  types.Hash // Zero for a nil entry.
	Err   error
}

// Report is the outcome of settling one batch.
type Report struct {
	Accepted []*tx.Transaction
	Rejected []Rejection
	Fees     int64 // Sum of accepted fees, saturating at math.MaxInt64.
}

// Settle applies every valid transaction in batch to the pool, in batch
// order, and returns the accepted ones in that order. Each transaction is
// checked against the pool as left by the transactions accepted before it,
// so when several entries claim the same output the first one wins and
// the others fail with ErrMissingUTXO. Nil entries are skipped.
func (h *Handler) Settle(batch []*tx.Transaction) []*tx.Transaction {
	return h.SettleWithReport(batch).Accepted
}

// SettleWithReport is Settle, also reporting why each entry was rejected.
func (h *Handler) SettleWithReport(batch []*tx.Transaction) *Report {
	defer log.Benchmark("settle")()

	r := &Report{Accepted: make([]*tx.Transaction, 0, len(batch))}

	for i, t := range batch {
		if t == nil {
			r.Rejected = append(r.Rejected, Rejection{Index: i, Err: ErrNilTx})
			continue
		}
		txid := t.Hash()

		fee, err := h.check(t)
		if err != nil {
			r.Rejected = append(r.Rejected, Rejection{Index: i, TxID: txid, Err: err})
			h.logger.Debug().
				Int("index", i).
				Str("txid", txid.String()).
				Err(err).
				Msg("transaction rejected")
			continue
		}

		h.apply(t, txid)
		r.Accepted = append(r.Accepted, t)
		if sum, ok := tx.AddValues(r.Fees, fee); ok {
			r.Fees = sum
		} else {
			r.Fees = math.MaxInt64
		}
		h.logger.Debug().
			Int("index", i).
			Str("txid", txid.String()).
			Int64("fee", fee).
			Msg("transaction accepted")
	}

	h.logger.Info().
		Int("batch", len(batch)).
		Int("accepted", len(r.Accepted)).
		Int("rejected", len(r.Rejected)).
		Int("utxos", h.pool.Len()).
		Msg("batch settled")
	return r
}
