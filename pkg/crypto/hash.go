// Package crypto provides the hashing, signing and text-encoding primitives
// used by the wallet core.
package crypto

import (
	"crypto/sha256"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"

	"github.com/Klingon-tech/walletkit-core/pkg/types"
)

// Hash160Size is the length of a hash160 or blake2b-160 digest.
const Hash160Size = 20

// Keccak256 computes the legacy (pre-NIST) Keccak-256 digest of the
// concatenated inputs.
func Keccak256(data ...[]byte) types.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out types.Hash
	h.Sum(out[:0])
	return out
}

// SHA256 computes a single SHA-256 digest.
func SHA256(data []byte) types.Hash {
	return sha256.Sum256(data)
}

// DoubleSHA256 computes SHA256(SHA256(data)).
func DoubleSHA256(data []byte) types.Hash {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// Hash160 computes RIPEMD160(SHA256(data)).
func Hash160(data []byte) [Hash160Size]byte {
	first := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(first[:])
	var out [Hash160Size]byte
	h.Sum(out[:0])
	return out
}

// Blake2b256 computes an unkeyed 32-byte BLAKE2b digest.
func Blake2b256(data ...[]byte) types.Hash {
	h, _ := blake2b.New256(nil)
	for _, d := range data {
		h.Write(d)
	}
	var out types.Hash
	h.Sum(out[:0])
	return out
}

// Blake2b160 computes an unkeyed 20-byte BLAKE2b digest.
func Blake2b160(data []byte) [Hash160Size]byte {
	h, _ := blake2b.New(Hash160Size, nil)
	h.Write(data)
	var out [Hash160Size]byte
	h.Sum(out[:0])
	return out
}

// Checksum computes a BLAKE3-256 digest. It guards persisted records
// against silent corruption; it is not part of any chain format.
func Checksum(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// AddressFromPublicKey derives an account address from a 65-byte
// uncompressed or 64-byte raw public key: the trailing 20 bytes of the
// keccak-256 of the 64 coordinate bytes.
func AddressFromPublicKey(pub []byte) types.Address {
	if len(pub) == UncompressedPublicKeySize {
		pub = pub[1:]
	}
	h := Keccak256(pub)
	var addr types.Address
	copy(addr[:], h[types.HashSize-types.AddressSize:])
	return addr
}
