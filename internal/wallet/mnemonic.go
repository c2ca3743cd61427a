// Package wallet derives signing keys from a BIP-39 mnemonic and picks the
// outputs a wallet spends.
package wallet

import (
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// MnemonicEntropyBits is the entropy size for 24-word mnemonics.
const MnemonicEntropyBits = 256

// GenerateMnemonic creates a new 24-word BIP-39 mnemonic.
func GenerateMnemonic() (string, error) {
	return generateMnemonic(MnemonicEntropyBits)
}

// GenerateMnemonicWords creates a mnemonic of 12, 15, 18, 21 or 24 words.
func GenerateMnemonicWords(words int) (string, error) {
	switch words {
	case 12, 15, 18, 21, 24:
	default:
		return "", fmt.Errorf("unsupported mnemonic length %d", words)
	}
	// Each word encodes 11 bits; one bit in 33 is checksum.
	return generateMnemonic(words * 32 / 3)
}

func generateMnemonic(bits int) (string, error) {
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic checks word count, wordlist membership and checksum.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}
