package crypto

import (
	"crypto/ed25519"
	"fmt"
)

// Ed25519 sizes.
const (
	Ed25519SeedSize      = ed25519.SeedSize
	Ed25519PublicKeySize = ed25519.PublicKeySize
	Ed25519SignatureSize = ed25519.SignatureSize
)

// Ed25519Key is an ed25519 key pair expanded from a 32-byte secret.
type Ed25519Key struct {
	priv ed25519.PrivateKey
}

// Ed25519FromSeed expands a 32-byte secret into a key pair.
func Ed25519FromSeed(seed []byte) (*Ed25519Key, error) {
	if len(seed) != Ed25519SeedSize {
		return nil, fmt.Errorf("ed25519 secret must be %d bytes, got %d", Ed25519SeedSize, len(seed))
	}
	return &Ed25519Key{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

// PublicKey returns the 32-byte public key.
func (k *Ed25519Key) PublicKey() [Ed25519PublicKeySize]byte {
	var pub [Ed25519PublicKeySize]byte
	copy(pub[:], k.priv.Public().(ed25519.PublicKey))
	return pub
}

// Sign signs msg.
func (k *Ed25519Key) Sign(msg []byte) []byte {
	return ed25519.Sign(k.priv, msg)
}

// Zero wipes the private key.
func (k *Ed25519Key) Zero() {
	for i := range k.priv {
		k.priv[i] = 0
	}
}

// VerifyEd25519 checks an ed25519 signature.
func VerifyEd25519(pub, msg, sig []byte) bool {
	if len(pub) != Ed25519PublicKeySize {
		return false
	}
	return ed25519.Verify(pub, msg, sig)
}
