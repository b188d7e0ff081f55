package wallet

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/walletkit-core/pkg/crypto"
	"github.com/Klingon-tech/walletkit-core/pkg/types"
	"github.com/tyler-smith/go-bip32"
)

// BIP-44 derivation path constants.
// Full path: m/44'/CoinType'/account'/change/index
const (
	// PurposeBIP44 is the BIP-44 purpose field (hardened).
	PurposeBIP44 = bip32.FirstHardenedChild + 44

	// CoinTypeBitcoin is the SLIP-44 coin type of bitcoin (hardened).
	CoinTypeBitcoin = bip32.FirstHardenedChild + 0

	// CoinTypeTestnet is shared by every test network (hardened).
	CoinTypeTestnet = bip32.FirstHardenedChild + 1

	// CoinTypeEthereum is the SLIP-44 coin type of ethereum (hardened).
	CoinTypeEthereum = bip32.FirstHardenedChild + 60

	// CoinTypeBitcoinCash is the SLIP-44 coin type of bitcoin cash (hardened).
	CoinTypeBitcoinCash = bip32.FirstHardenedChild + 145

	// ChangeExternal is for receiving addresses.
	ChangeExternal = 0

	// ChangeInternal is for change addresses.
	ChangeInternal = 1
)

// ErrPublicOnly is returned when a private operation is attempted on a
// neutered key.
var ErrPublicOnly = errors.New("key has no private part")

// HDKey represents a hierarchical deterministic key (BIP-32).
type HDKey struct {
	key *bip32.Key
}

// NewMasterKey creates a master HD key from a 64-byte seed.
func NewMasterKey(seed []byte) (*HDKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	return &HDKey{key: master}, nil
}

// ParseExtendedKey decodes an xprv or xpub string.
func ParseExtendedKey(s string) (*HDKey, error) {
	key, err := bip32.B58Deserialize(s)
	if err != nil {
		return nil, fmt.Errorf("parse extended key: %w", err)
	}
	return &HDKey{key: key}, nil
}

// DeriveChild derives a child key at the given index.
// For hardened derivation, add bip32.FirstHardenedChild to the index.
func (k *HDKey) DeriveChild(index uint32) (*HDKey, error) {
	child, err := k.key.NewChildKey(index)
	if err != nil {
		return nil, fmt.Errorf("derive child %d: %w", index, err)
	}
	return &HDKey{key: child}, nil
}

// DerivePath derives a key along a sequence of indices.
func (k *HDKey) DerivePath(indices ...uint32) (*HDKey, error) {
	current := k
	for _, idx := range indices {
		child, err := current.DeriveChild(idx)
		if err != nil {
			return nil, err
		}
		current = child
	}
	return current, nil
}

// DeriveAddress derives the key at m/44'/coinType/account'/change/index.
// coinType must already carry the hardened bit.
func (k *HDKey) DeriveAddress(coinType, account, change, index uint32) (*HDKey, error) {
	return k.DerivePath(
		PurposeBIP44,
		coinType,
		bip32.FirstHardenedChild+account,
		change,
		index,
	)
}

// EthereumKey derives the external ethereum key m/44'/60'/0'/0/index
// from a seed.
func EthereumKey(seed []byte, index uint32) (*HDKey, error) {
	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	return master.DeriveAddress(CoinTypeEthereum, 0, ChangeExternal, index)
}

// PrivateKeyBytes returns the raw 32-byte private key.
// Returns nil if this is a public-only key.
func (k *HDKey) PrivateKeyBytes() []byte {
	if !k.key.IsPrivate {
		return nil
	}
	// bip32 Key.Key is 33 bytes with a leading 0x00 for private keys.
	raw := k.key.Key
	if len(raw) == 33 && raw[0] == 0 {
		return raw[1:]
	}
	return raw
}

// PublicKeyBytes returns the compressed 33-byte public key.
func (k *HDKey) PublicKeyBytes() []byte {
	return k.key.PublicKey().Key
}

// UncompressedPublicKey returns the 65-byte 0x04-tagged public key.
func (k *HDKey) UncompressedPublicKey() ([]byte, error) {
	return crypto.DecompressPublicKey(k.PublicKeyBytes())
}

// Signer returns a signing key for this HD key's private part.
func (k *HDKey) Signer() (*crypto.PrivateKey, error) {
	priv := k.PrivateKeyBytes()
	if priv == nil {
		return nil, ErrPublicOnly
	}
	return crypto.PrivateKeyFromBytes(priv)
}

// EthereumAddress derives the account address of this key.
func (k *HDKey) EthereumAddress() (types.Address, error) {
	pub, err := k.UncompressedPublicKey()
	if err != nil {
		return types.Address{}, err
	}
	return crypto.AddressFromPublicKey(pub), nil
}

// PubKeyHash returns hash160 of the compressed public key, the payload of
// a P2PKH address.
func (k *HDKey) PubKeyHash() [crypto.Hash160Size]byte {
	return crypto.Hash160(k.PublicKeyBytes())
}

// IsPrivate returns true if this key contains a private key.
func (k *HDKey) IsPrivate() bool {
	return k.key.IsPrivate
}

// Depth returns the derivation depth (0 for master).
func (k *HDKey) Depth() uint8 {
	return k.key.Depth
}

// Neuter returns a public-key-only copy (for watch-only wallets).
func (k *HDKey) Neuter() *HDKey {
	return &HDKey{key: k.key.PublicKey()}
}

// String returns the base58 extended key (xprv or xpub).
func (k *HDKey) String() string {
	return k.key.B58Serialize()
}
