// Package wallet implements seed and key derivation: BIP-39 mnemonics
// against an explicit word list, BIP-32/BIP-44 secp256k1 keys, SLIP-10
// ed25519 keys and the encrypted seed vault.
package wallet

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// MnemonicEntropyBits is the entropy size for 24-word mnemonics.
const MnemonicEntropyBits = 256

// Mnemonic errors.
var (
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
	ErrUnknownWord     = errors.New("mnemonic word not in word list")
	ErrWordCount       = errors.New("mnemonic word count must be 12, 15, 18, 21 or 24")
	ErrMnemonicCheck   = errors.New("mnemonic checksum mismatch")
)

// GenerateMnemonic creates a new mnemonic from entropyBits of randomness
// (128 to 256, a multiple of 32) using wl.
func GenerateMnemonic(wl *WordList, entropyBits int) (string, error) {
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	return EncodeMnemonic(wl, entropy), nil
}

// EncodeMnemonic renders entropy as words: the entropy bits followed by
// the first len/32 bits of its SHA-256, in 11-bit groups.
func EncodeMnemonic(wl *WordList, entropy []byte) string {
	sum := sha256.Sum256(entropy)
	bits := append(append([]byte{}, entropy...), sum[0])
	total := len(entropy)*8 + len(entropy)*8/32

	words := make([]string, 0, total/11)
	for off := 0; off < total; off += 11 {
		words = append(words, wl.Word(readBits(bits, off, 11)))
	}
	return strings.Join(words, " ")
}

// MnemonicToEntropy validates a mnemonic against wl and returns its
// entropy.
func MnemonicToEntropy(wl *WordList, mnemonic string) ([]byte, error) {
	words := strings.Fields(mnemonic)
	switch len(words) {
	case 12, 15, 18, 21, 24:
	default:
		return nil, fmt.Errorf("%w: got %d", ErrWordCount, len(words))
	}

	total := len(words) * 11
	buf := make([]byte, (total+7)/8)
	for i, w := range words {
		idx, ok := wl.Index(w)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownWord, w)
		}
		writeBits(buf, i*11, 11, idx)
	}

	checkBits := total / 33
	entropy := buf[:(total-checkBits)/8]
	sum := sha256.Sum256(entropy)
	if readBits(buf, total-checkBits, checkBits) != readBits(sum[:], 0, checkBits) {
		return nil, ErrMnemonicCheck
	}
	return append([]byte(nil), entropy...), nil
}

// ValidateMnemonic checks word count, words and checksum against wl.
func ValidateMnemonic(wl *WordList, mnemonic string) error {
	if _, err := MnemonicToEntropy(wl, mnemonic); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMnemonic, err)
	}
	return nil
}

// readBits reads n (<= 16) bits starting at bit offset off, MSB first.
func readBits(b []byte, off, n int) uint16 {
	var v uint16
	for i := 0; i < n; i++ {
		bit := (b[(off+i)/8] >> (7 - uint((off+i)%8))) & 1
		v = v<<1 | uint16(bit)
	}
	return v
}

// writeBits stores the low n bits of v at bit offset off, MSB first.
func writeBits(b []byte, off, n int, v uint16) {
	for i := 0; i < n; i++ {
		if v>>(n-1-i)&1 == 1 {
			b[(off+i)/8] |= 1 << (7 - uint((off+i)%8))
		}
	}
}
