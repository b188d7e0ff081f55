package wallet

import "github.com/tyler-smith/go-bip39"

// SeedSize is the length of a derived seed in bytes (512 bits).
const SeedSize = 64

// SeedFromMnemonic validates mnemonic against wl and derives the 512-bit
// seed using PBKDF2-SHA512 as specified in BIP-39.
func SeedFromMnemonic(wl *WordList, mnemonic, passphrase string) ([]byte, error) {
	if err := ValidateMnemonic(wl, mnemonic); err != nil {
		return nil, err
	}
	return bip39.NewSeed(mnemonic, passphrase), nil
}
