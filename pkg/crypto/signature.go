package crypto

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Key sizes.
const (
	PrivateKeySize            = 32
	CompressedPublicKeySize   = 33
	UncompressedPublicKeySize = 65
	// RawPublicKeySize is an uncompressed key with its 0x04 tag stripped.
	RawPublicKeySize = 64
)

// Recoverable signature errors.
var (
	ErrInvalidRecoveryID = errors.New("recovery id must be 0 or 1")
	ErrRecoverFailed     = errors.New("public key recovery failed")
)

// PrivateKey wraps a secp256k1 private key for recoverable ECDSA signing.
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
	if len(b) != PrivateKeySize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", PrivateKeySize, len(b))
	}
	key := secp256k1.PrivKeyFromBytes(b)
	return &PrivateKey{key: key}, nil
}

// SignRecoverable produces a deterministic (RFC 6979) ECDSA signature over
// a 32-byte hash and returns the recovery id (0 or 1) with the r and s
// scalars.
func (pk *PrivateKey) SignRecoverable(hash []byte) (recID byte, r, s [32]byte, err error) {
	if len(hash) != 32 {
		return 0, r, s, fmt.Errorf("hash must be 32 bytes, got %d", len(hash))
	}
	// Compact layout: [27 + recid][r][s] for an uncompressed key.
	sig := ecdsa.SignCompact(pk.key, hash, false)
	recID = sig[0] - 27
	if recID > 1 {
		return 0, r, s, ErrInvalidRecoveryID
	}
	copy(r[:], sig[1:33])
	copy(s[:], sig[33:65])
	return recID, r, s, nil
}

// PublicKey returns the 65-byte uncompressed public key.
func (pk *PrivateKey) PublicKey() []byte {
	return pk.key.PubKey().SerializeUncompressed()
}

// CompressedPublicKey returns the 33-byte compressed public key.
func (pk *PrivateKey) CompressedPublicKey() []byte {
	return pk.key.PubKey().SerializeCompressed()
}

// Serialize returns the 32-byte private key scalar.
func (pk *PrivateKey) Serialize() []byte {
	return pk.key.Serialize()
}

// Zero securely zeroes the private key memory.
func (pk *PrivateKey) Zero() {
	pk.key.Zero()
}

// RecoverPublicKey recovers the 65-byte uncompressed public key that
// produced (recID, r, s) over hash.
func RecoverPublicKey(hash []byte, recID byte, r, s [32]byte) ([]byte, error) {
	if recID > 1 {
		return nil, ErrInvalidRecoveryID
	}
	compact := make([]byte, 65)
	compact[0] = 27 + recID
	copy(compact[1:33], r[:])
	copy(compact[33:], s[:])

	pub, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecoverFailed, err)
	}
	return pub.SerializeUncompressed(), nil
}

// DecompressPublicKey parses a compressed, uncompressed or raw 64-byte
// public key and returns its 65-byte uncompressed form.
func DecompressPublicKey(pub []byte) ([]byte, error) {
	if len(pub) == RawPublicKeySize {
		pub = append([]byte{0x04}, pub...)
	}
	key, err := secp256k1.ParsePubKey(pub)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return key.SerializeUncompressed(), nil
}

// CompressPublicKey returns the 33-byte compressed form of a public key.
func CompressPublicKey(pub []byte) ([]byte, error) {
	if len(pub) == RawPublicKeySize {
		pub = append([]byte{0x04}, pub...)
	}
	key, err := secp256k1.ParsePubKey(pub)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return key.SerializeCompressed(), nil
}
