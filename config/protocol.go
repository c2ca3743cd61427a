package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Denomination.
const (
	Decimals = 8
	Coin     = 100_000_000 // 10^8 base units per coin
)

// Limits enforced by the settlement tools. Validation itself has none.
const (
	MaxBatchSize = 10_000 // Transactions per settlement batch
	MaxTxInputs  = 2_500  // Inputs the wallet may select for one transaction
)

// FormatAmount renders base units as a decimal coin string.
func FormatAmount(units int64) string {
	sign := ""
	u := uint64(units)
	if units < 0 {
		sign = "-"
		u = uint64(-(units + 1)) + 1
	}
	return fmt.Sprintf("%s%d.%0*d", sign, u/Coin, Decimals, u%Coin)
}

// ParseAmount converts a non-negative decimal coin string to base units.
func ParseAmount(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("negative amount")
	}

	parts := strings.SplitN(s, ".", 2)
	whole, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid whole part: %w", err)
	}

	var frac uint64
	if len(parts) == 2 {
		fracStr := parts[1]
		if fracStr == "" || len(fracStr) > Decimals {
			return 0, fmt.Errorf("fraction must have 1 to %d digits", Decimals)
		}
		fracStr += strings.Repeat("0", Decimals-len(fracStr))
		frac, err = strconv.ParseUint(fracStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid fractional part: %q", parts[1])
		}
	}

	if whole > (math.MaxInt64-frac)/Coin {
		return 0, fmt.Errorf("amount too large")
	}
	return int64(whole*Coin + frac), nil
}
