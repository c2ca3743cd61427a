// Package ledger validates transactions against a UTXO pool and settles
// batches of them, applying each accepted transaction to the pool.
package ledger

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-settle/internal/log"
	"github.com/Klingon-tech/klingnet-settle/internal/utxo"
	"github.com/Klingon-tech/klingnet-settle/pkg/crypto"
	"github.com/Klingon-tech/klingnet-settle/pkg/tx"
	"github.com/Klingon-tech/klingnet-settle/pkg/types"
	"github.com/rs/zerolog"
)

// ErrNilPool is returned by New when no seed pool is given.
var ErrNilPool = errors.New("nil utxo pool")

// Rejection reasons returned by Check.
var (
	ErrNilTx              = errors.New("nil transaction")
	ErrNegativeOutput     = errors.New("negative output value")
	ErrMissingUTXO        = errors.New("claimed output not in pool")
	ErrMissingSig         = errors.New("input missing signature")
	ErrInvalidSig         = errors.New("invalid signature")
	ErrDoubleClaim        = errors.New("output claimed twice in transaction")
	ErrInsufficientInputs = errors.New("inputs less than outputs")
	ErrValueOverflow      = tx.ErrValueOverflow
)

// Handler owns a UTXO pool and applies transactions to it.
//
// A Handler is not safe for concurrent use: settlement is one sequential
// pass in which every commit is visible to the next check.
type Handler struct {
	pool     *utxo.Pool
	verifier crypto.Verifier
	logger   zerolog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithVerifier replaces the default Schnorr signature verifier.
func WithVerifier(v crypto.Verifier) Option {
	return func(h *Handler) {
		h.verifier = v
	}
}

// WithLogger sets the logger used for settlement events.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// New creates a Handler whose pool is an independent copy of seed. Later
// changes to seed are not seen by the Handler, and settlement never
// touches seed.
func New(seed *utxo.Pool, opts ...Option) (*Handler, error) {
	if seed == nil {
		return nil, ErrNilPool
	}
	h := &Handler{
		pool:     seed.Clone(),
		verifier: crypto.SchnorrVerifier{},
		logger:   log.Ledger,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.verifier == nil {
		return nil, fmt.Errorf("ledger: nil verifier")
	}
	return h, nil
}

// Pool returns a copy of the current pool.
func (h *Handler) Pool() *utxo.Pool {
	return h.pool.Clone()
}

// IsValid reports whether t can be applied to the current pool.
func (h *Handler) IsValid(t *tx.Transaction) bool {
	return h.Check(t) == nil
}

// Check validates t against the current pool and returns the first rule it
// breaks, or nil. Rules are checked in order and the first failure wins:
//
//  1. t is not nil
//  2. no output value is negative
//  3. for each input in order: the claimed output is in the pool, the
//     input is signed, the signature verifies under the claimed output's
//     address, and no earlier input of t claimed the same output
//  4. the claimed values sum to at least the output values
//
// Check never modifies the pool.
func (h *Handler) Check(t *tx.Transaction) error {
	_, err := h.check(t)
	return err
}

// check returns the implicit fee (inputs minus outputs) of a valid t.
func (h *Handler) check(t *tx.Transaction) (int64, error) {
	if t == nil {
		return 0, ErrNilTx
	}

	for i, out := range t.Outputs {
		if out.Value < 0 {
			return 0, fmt.Errorf("output %d: %w: %d", i, ErrNegativeOutput, out.Value)
		}
	}
	outputTotal, err := t.TotalOutputValue()
	if err != nil {
		return 0, fmt.Errorf("outputs: %w", err)
	}

	var inputTotal int64
	claimed := make(map[types.Outpoint]struct{}, len(t.Inputs))
	for i, in := range t.Inputs {
		prev, err := h.pool.Get(in.PrevOut)
		if err != nil {
			return 0, fmt.Errorf("input %d (%s): %w", i, in.PrevOut, ErrMissingUTXO)
		}
		if len(in.Signature) == 0 {
			return 0, fmt.Errorf("input %d: %w", i, ErrMissingSig)
		}
		if !h.verifier.Verify(prev.Address, t.SigningBytes(i), in.Signature) {
			return 0, fmt.Errorf("input %d: %w", i, ErrInvalidSig)
		}
		if _, dup := claimed[in.PrevOut]; dup {
			return 0, fmt.Errorf("input %d (%s): %w", i, in.PrevOut, ErrDoubleClaim)
		}
		claimed[in.PrevOut] = struct{}{}

		sum, ok := tx.AddValues(inputTotal, prev.Value)
		if !ok {
			return 0, fmt.Errorf("input %d: %w", i, ErrValueOverflow)
		}
		inputTotal = sum
	}

	if inputTotal < outputTotal {
		return 0, fmt.Errorf("%w: inputs=%d outputs=%d", ErrInsufficientInputs, inputTotal, outputTotal)
	}
	return inputTotal - outputTotal, nil
}

// apply commits a validated transaction: its outputs become UTXOs keyed by
// (txid, position) and every output it claims leaves the pool.
func (h *Handler) apply(t *tx.Transaction, txid types.Hash) {
	for i, out := range t.Outputs {
		h.pool.Insert(types.Outpoint{TxID: txid, Index: uint32(i)}, out)
	}
	for _, in := range t.Inputs {
		h.pool.Remove(in.PrevOut)
	}
}
