package wallet

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Klingon-tech/klingnet-settle/internal/utxo"
	"github.com/Klingon-tech/klingnet-settle/pkg/tx"
)

// Coin selection errors.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoUTXOs           = errors.New("no UTXOs available")
)

// CoinSelection is the set of outputs chosen to fund a payment.
type CoinSelection struct {
	Inputs []utxo.UTXO
	Total  int64 // Sum of Inputs.
	Change int64 // Total - target.
}

// SelectCoins chooses outputs worth at least target. It compares the
// smallest single output that covers target against largest-first
// accumulation and returns whichever leaves less change; a tie goes to the
// single output.
func SelectCoins(utxos []utxo.UTXO, target int64) (*CoinSelection, error) {
	if target <= 0 {
		return nil, fmt.Errorf("target must be positive")
	}

	candidates := make([]utxo.UTXO, 0, len(utxos))
	for _, u := range utxos {
		if u.Value > 0 {
			candidates = append(candidates, u)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoUTXOs
	}

	// Ascending by value, outpoint breaks ties so selection is stable.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Value != candidates[j].Value {
			return candidates[i].Value < candidates[j].Value
		}
		return candidates[i].Outpoint.Compare(candidates[j].Outpoint) < 0
	})

	var single *CoinSelection
	for _, u := range candidates {
		if u.Value >= target {
			single = &CoinSelection{
				Inputs: []utxo.UTXO{u},
				Total:  u.Value,
				Change: u.Value - target,
			}
			break
		}
	}

	var accum *CoinSelection
	var selected []utxo.UTXO
	var total int64
	for i := len(candidates) - 1; i >= 0; i-- {
		sum, ok := tx.AddValues(total, candidates[i].Value)
		if !ok {
			break
		}
		selected = append(selected, candidates[i])
		total = sum
		if total >= target {
			accum = &CoinSelection{
				Inputs: selected,
				Total:  total,
				Change: total - target,
			}
			break
		}
	}

	switch {
	case single != nil && accum != nil:
		if single.Change <= accum.Change {
			return single, nil
		}
		return accum, nil
	case single != nil:
		return single, nil
	case accum != nil:
		return accum, nil
	default:
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, total, target)
	}
}
