package crypto

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-settle/pkg/types"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
)

// Verifier decides whether signature is a valid signature of message by
// the owner of address. Implementations must be pure and deterministic.
type Verifier interface {
	Verify(address types.Address, message, signature []byte) bool
}

// VerifierFunc adapts an ordinary function to the Verifier interface.
type VerifierFunc func(address types.Address, message, signature []byte) bool

// Verify calls f.
func (f VerifierFunc) Verify(address types.Address, message, signature []byte) bool {
	return f(address, message, signature)
}

// PrivateKey wraps a secp256k1 private key for Schnorr signing.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// GenerateKey creates a new random secp256k1 private key.
func GenerateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes creates a PrivateKey from a 32-byte secret.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(b))
	}
	return &PrivateKey{key: secp256k1.PrivKeyFromBytes(b)}, nil
}

// Sign produces a Schnorr signature over the BLAKE3 digest of message.
func (pk *PrivateKey) Sign(message []byte) ([]byte, error) {
	digest := Hash(message)
	sig, err := schnorr.Sign(pk.key, digest[:])
	if err != nil {
		return nil, fmt.Errorf("schnorr sign: %w", err)
	}
	return sig.Serialize(), nil
}

// Address returns the compressed public key as an Address.
func (pk *PrivateKey) Address() types.Address {
	var a types.Address
	copy(a[:], pk.key.PubKey().SerializeCompressed())
	return a
}

// Serialize returns the 32-byte private key scalar.
func (pk *PrivateKey) Serialize() []byte {
	return pk.key.Serialize()
}

// Zero clears the private key from memory.
func (pk *PrivateKey) Zero() {
	pk.key.Zero()
}

// VerifySignature checks a Schnorr signature of message against the
// public key stored in address. Returns false on any parse error.
func VerifySignature(address types.Address, message, signature []byte) bool {
	pubKey, err := secp256k1.ParsePubKey(address[:])
	if err != nil {
		return false
	}
	sig, err := schnorr.ParseSignature(signature)
	if err != nil {
		return false
	}
	digest := Hash(message)
	return sig.Verify(digest[:], pubKey)
}

// SchnorrVerifier implements Verifier with VerifySignature.
type SchnorrVerifier struct{}

// Verify checks a Schnorr signature against address and message.
func (SchnorrVerifier) Verify(address types.Address, message, signature []byte) bool {
	return VerifySignature(address, message, signature)
}
