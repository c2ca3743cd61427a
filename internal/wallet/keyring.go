package wallet

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-settle/internal/log"
	"github.com/Klingon-tech/klingnet-settle/internal/utxo"
	"github.com/Klingon-tech/klingnet-settle/pkg/crypto"
	"github.com/Klingon-tech/klingnet-settle/pkg/types"
)

// Keyring holds the first count external keys of one account.
type Keyring struct {
	account uint32
	keys    []*crypto.PrivateKey
	index   map[types.Address]int
}

// NewKeyring derives keys m/44'/8888'/account'/0/0 through /count-1.
func NewKeyring(mnemonic, passphrase string, account uint32, count int) (*Keyring, error) {
	if count <= 0 {
		return nil, fmt.Errorf("keyring needs at least one key, got %d", count)
	}
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}

	kr := &Keyring{
		account: account,
		keys:    make([]*crypto.PrivateKey, 0, count),
		index:   make(map[types.Address]int, count),
	}
	for i := 0; i < count; i++ {
		hd, err := master.DeriveAddress(account, ChangeExternal, uint32(i))
		if err != nil {
			return nil, err
		}
		key, err := hd.Signer()
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		kr.index[key.Address()] = i
		kr.keys = append(kr.keys, key)
	}
	log.Wallet.Debug().Uint32("account", account).Int("keys", count).Msg("keyring derived")
	return kr, nil
}

// Len returns the number of keys.
func (kr *Keyring) Len() int {
	return len(kr.keys)
}

// Key returns the key at derivation index i.
func (kr *Keyring) Key(i int) (*crypto.PrivateKey, error) {
	if i < 0 || i >= len(kr.keys) {
		return nil, fmt.Errorf("key index %d out of range (have %d)", i, len(kr.keys))
	}
	return kr.keys[i], nil
}

// Lookup returns the key for addr.
func (kr *Keyring) Lookup(addr types.Address) (*crypto.PrivateKey, bool) {
	i, ok := kr.index[addr]
	if !ok {
		return nil, false
	}
	return kr.keys[i], true
}

// Addresses returns the addresses in derivation order.
func (kr *Keyring) Addresses() []types.Address {
	addrs := make([]types.Address, len(kr.keys))
	for i, k := range kr.keys {
		addrs[i] = k.Address()
	}
	return addrs
}

// Signers maps every address to its key, for tx.Builder.SignMulti.
func (kr *Keyring) Signers() map[types.Address]*crypto.PrivateKey {
	m := make(map[types.Address]*crypto.PrivateKey, len(kr.keys))
	for _, k := range kr.keys {
		m[k.Address()] = k
	}
	return m
}

// Owned returns the pool's outputs paid to a keyring address, in outpoint
// order.
func (kr *Keyring) Owned(p *utxo.Pool) []utxo.UTXO {
	var owned []utxo.UTXO
	for _, u := range p.UTXOs() {
		if _, ok := kr.index[u.Address]; ok {
			owned = append(owned, u)
		}
	}
	return owned
}

// Zero wipes every private key.
func (kr *Keyring) Zero() {
	for _, k := range kr.keys {
		k.Zero()
	}
}
