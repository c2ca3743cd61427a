// Package crypto provides the hashing and signature primitives used by the
// ledger: BLAKE3 digests and Schnorr signatures over secp256k1.
package crypto

import (
	"github.com/Klingon-tech/klingnet-settle/pkg/types"
	"github.com/zeebo/blake3"
)

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// HashConcat hashes the concatenation of two hashes.
// Used for building merkle trees.
func HashConcat(a, b types.Hash) types.Hash {
	var buf [2 * types.HashSize]byte
	copy(buf[:types.HashSize], a[:])
	copy(buf[types.HashSize:], b[:])
	return Hash(buf[:])
}

// MerkleRoot folds a list of hashes into a single root.
//
//   - 0 hashes: zero hash
//   - 1 hash: that hash
//   - otherwise pairwise HashConcat, duplicating the last element of an odd
//     level, until one hash remains.
func MerkleRoot(leaves []types.Hash) types.Hash {
	if len(leaves) == 0 {
		return types.Hash{}
	}

	level := make([]types.Hash, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]types.Hash, len(level)/2)
		for i := range next {
			next[i] = HashConcat(level[2*i], level[2*i+1])
		}
		level = next
	}
	return level[0]
}
