package utxo

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Klingon-tech/klingnet-settle/internal/log"
	"github.com/Klingon-tech/klingnet-settle/internal/storage"
	"github.com/Klingon-tech/klingnet-settle/pkg/types"
)

// Snapshot store errors.
var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrSnapshotCorrupt  = errors.New("snapshot corrupt")
	ErrSnapshotName     = errors.New("invalid snapshot name")
)

// Key prefixes for the snapshot store.
var (
	prefixIndex    = []byte("i/") // i/<name> -> SnapshotInfo JSON
	prefixSnapshot = []byte("s/") // s/<name>/u/<txid><index> -> entry JSON
	prefixUTXO     = []byte("u/")
)

// SnapshotInfo describes a saved snapshot.
type SnapshotInfo struct {
	Name       string     `json:"name"`
	UTXOs      int        `json:"utxos"`
	TotalValue int64      `json:"total_value"`
	Commitment types.Hash `json:"commitment"`
}

type snapshotEntry struct {
	Address types.Address `json:"address"`
	Value   int64         `json:"value"`
}

// Store keeps named pool snapshots in a storage.DB. Each snapshot lives in
// its own key namespace, so saving one never touches another.
type Store struct {
	db storage.DB
}

// NewStore creates a snapshot store backed by db.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

// utxoKey builds a storage key for an outpoint: "u/" + txid(32) + index(4).
func utxoKey(op types.Outpoint) []byte {
	key := make([]byte, len(prefixUTXO)+types.HashSize+4)
	copy(key, prefixUTXO)
	copy(key[len(prefixUTXO):], op.TxID[:])
	binary.BigEndian.PutUint32(key[len(prefixUTXO)+types.HashSize:], op.Index)
	return key
}

func parseUTXOKey(key []byte) (types.Outpoint, error) {
	if len(key) != len(prefixUTXO)+types.HashSize+4 {
		return types.Outpoint{}, fmt.Errorf("%w: key length %d", ErrSnapshotCorrupt, len(key))
	}
	var op types.Outpoint
	copy(op.TxID[:], key[len(prefixUTXO):])
	op.Index = binary.BigEndian.Uint32(key[len(prefixUTXO)+types.HashSize:])
	return op, nil
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\x00") {
		return fmt.Errorf("%w: %q", ErrSnapshotName, name)
	}
	return nil
}

func (s *Store) namespace(name string) *storage.PrefixDB {
	return storage.NewPrefixDB(s.db, append(append([]byte{}, prefixSnapshot...), name+"/"...))
}

func indexKey(name string) []byte {
	return append(append([]byte{}, prefixIndex...), name...)
}

// SaveSnapshot replaces the snapshot called name with the contents of p.
// The UTXO entries and the index entry go out in one batch on the root DB.
func (s *Store) SaveSnapshot(name string, p *Pool) (*SnapshotInfo, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	total, err := p.TotalValue()
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", name, err)
	}

	ns := s.namespace(name)
	prefix := ns.Prefix()
	batch := storage.NewBatch(s.db)

	// Drop entries the new pool no longer has.
	err = ns.ForEach(prefixUTXO, func(key, _ []byte) error {
		op, err := parseUTXOKey(key)
		if err != nil || !p.Contains(op) {
			return batch.Delete(append(prefix[:len(prefix):len(prefix)], key...))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: scan: %w", name, err)
	}

	for _, u := range p.UTXOs() {
		data, err := json.Marshal(snapshotEntry{Address: u.Address, Value: u.Value})
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: marshal %s: %w", name, u.Outpoint, err)
		}
		key := append(prefix[:len(prefix):len(prefix)], utxoKey(u.Outpoint)...)
		if err := batch.Put(key, data); err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", name, err)
		}
	}

	info := &SnapshotInfo{
		Name:       name,
		UTXOs:      p.Len(),
		TotalValue: total,
		Commitment: Commitment(p),
	}
	data, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: marshal info: %w", name, err)
	}
	if err := batch.Put(indexKey(name), data); err != nil {
		return nil, fmt.Errorf("snapshot %s: index: %w", name, err)
	}
	if err := batch.Commit(); err != nil {
		return nil, fmt.Errorf("snapshot %s: commit: %w", name, err)
	}

	log.Storage.Debug().
		Str("snapshot", name).
		Int("utxos", info.UTXOs).
		Str("commitment", info.Commitment.String()).
		Msg("snapshot saved")
	return info, nil
}

// Info returns the index entry of a snapshot.
func (s *Store) Info(name string) (*SnapshotInfo, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	data, err := s.db.Get(indexKey(name))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", name, err)
	}
	var info SnapshotInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSnapshotCorrupt, name, err)
	}
	return &info, nil
}

// LoadSnapshot reads the snapshot called name into a new pool and checks
// it against the commitment recorded when it was saved.
func (s *Store) LoadSnapshot(name string) (*Pool, error) {
	info, err := s.Info(name)
	if err != nil {
		return nil, err
	}

	p := NewPool()
	err = s.namespace(name).ForEach(prefixUTXO, func(key, value []byte) error {
		op, err := parseUTXOKey(key)
		if err != nil {
			return err
		}
		var e snapshotEntry
		if err := json.Unmarshal(value, &e); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSnapshotCorrupt, op, err)
		}
		p.Insert(op, UTXO{Outpoint: op, Address: e.Address, Value: e.Value}.Output())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", name, err)
	}

	if p.Len() != info.UTXOs || Commitment(p) != info.Commitment {
		return nil, fmt.Errorf("%w: %s: contents do not match index", ErrSnapshotCorrupt, name)
	}
	return p, nil
}

// DeleteSnapshot removes a snapshot and its index entry.
func (s *Store) DeleteSnapshot(name string) error {
	if _, err := s.Info(name); err != nil {
		return err
	}
	if err := s.db.Delete(indexKey(name)); err != nil {
		return fmt.Errorf("snapshot %s: %w", name, err)
	}
	if err := s.namespace(name).DeleteAll(); err != nil {
		return fmt.Errorf("snapshot %s: %w", name, err)
	}
	return nil
}

// Snapshots lists every saved snapshot in name order.
func (s *Store) Snapshots() ([]SnapshotInfo, error) {
	var infos []SnapshotInfo
	err := s.db.ForEach(prefixIndex, func(key, value []byte) error {
		var info SnapshotInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSnapshotCorrupt, key[len(prefixIndex):], err)
		}
		infos = append(infos, info)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return infos, nil
}
