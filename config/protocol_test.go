package config

import (
	"math"
	"testing"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		units int64
		want  string
	}{
		{0, "0.00000000"},
		{1, "0.00000001"},
		{Coin, "1.00000000"},
		{15 * Coin / 10, "1.50000000"},
		{-Coin, "-1.00000000"},
		{math.MinInt64, "-92233720368.54775808"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.units); got != tt.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tt.units, got, tt.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1", Coin, false},
		{"0.5", Coin / 2, false},
		{"12.00000001", 12*Coin + 1, false},
		{"92233720368.54775807", math.MaxInt64, false},
		{"92233720368.54775808", 0, true},
		{"", 0, true},
		{"-1", 0, true},
		{"1.", 0, true},
		{"1.123456789", 0, true},
		{"abc", 0, true},
		{"1.-5", 0, true},
		{"1.+5", 0, true},
		{"+1", 0, true},
		{" 1", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseAmount(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}

	for _, units := range []int64{0, 1, Coin, 123456789012} {
		back, err := ParseAmount(FormatAmount(units))
		if err != nil || back != units {
			t.Errorf("round trip %d: got %d, %v", units, back, err)
		}
	}
}
