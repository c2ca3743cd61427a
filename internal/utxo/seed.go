package utxo

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadSeed decodes a JSON array of UTXO entries into a new pool.
// An outpoint listed twice is an error.
func ReadSeed(r io.Reader) (*Pool, error) {
	var entries []UTXO
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	p := NewPool()
	for i, u := range entries {
		if p.Contains(u.Outpoint) {
			return nil, fmt.Errorf("seed entry %d: duplicate outpoint %s", i, u.Outpoint)
		}
		p.Insert(u.Outpoint, u.Output())
	}
	return p, nil
}

// WriteSeed encodes the pool as an indented JSON array sorted by outpoint,
// in the format ReadSeed accepts.
func WriteSeed(w io.Writer, p *Pool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p.UTXOs()); err != nil {
		return fmt.Errorf("encode seed: %w", err)
	}
	return nil
}

// LoadSeedFile reads a seed file from disk.
func LoadSeedFile(path string) (*Pool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := ReadSeed(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
