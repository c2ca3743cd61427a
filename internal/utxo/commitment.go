package utxo

import (
	"encoding/binary"
	"sort"

	"github.com/Klingon-tech/klingnet-settle/pkg/crypto"
	"github.com/Klingon-tech/klingnet-settle/pkg/types"
)

// Commitment computes a merkle root over every UTXO in the pool.
// Each UTXO is hashed deterministically, the hashes are sorted, and a
// merkle tree is built from them. Returns a zero hash for an empty pool.
//
// Two pools with the same contents always have the same commitment,
// whatever order they were built in.
func Commitment(p *Pool) types.Hash {
	if p.Len() == 0 {
		return types.Hash{}
	}

	hashes := make([]types.Hash, 0, p.Len())
	for op, out := range p.utxos {
		hashes = append(hashes, hashUTXO(UTXO{Outpoint: op, Address: out.Address, Value: out.Value}))
	}
	sort.Slice(hashes, func(i, j int) bool {
		return hashes[i].Compare(hashes[j]) < 0
	})
	return crypto.MerkleRoot(hashes)
}

// hashUTXO produces a deterministic BLAKE3 hash of a UTXO.
// Format: txid(32) | index(4) | value(8) | address(33)
func hashUTXO(u UTXO) types.Hash {
	buf := make([]byte, 0, types.HashSize+4+8+types.AddressSize)
	buf = append(buf, u.Outpoint.TxID[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, u.Outpoint.Index)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(u.Value))
	buf = append(buf, u.Address[:]...)
	return crypto.Hash(buf)
}

