package tezos

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/walletkit-core/pkg/crypto"
	"github.com/Klingon-tech/walletkit-core/pkg/types"
)

// ErrBadSignature is returned when a signed operation fails verification.
var ErrBadSignature = errors.New("operation signature does not verify")

// watermarkGeneric prefixes forged bytes before hashing for signing.
const watermarkGeneric = 0x03

// SignedOperation is a forged operation list with its signature appended.
type SignedOperation struct {
	Bytes     []byte // forged || signature
	Signature [crypto.Ed25519SignatureSize]byte
	Hash      types.Hash
}

// SigningDigest returns BLAKE2b-256(0x03 || forged).
func SigningDigest(forged []byte) types.Hash {
	return crypto.Blake2b256([]byte{watermarkGeneric}, forged)
}

// Sign forges l and signs it with key.
func Sign(l OperationList, key *crypto.Ed25519Key) SignedOperation {
	forged := l.Forge()
	digest := SigningDigest(forged)

	var so SignedOperation
	copy(so.Signature[:], key.Sign(digest[:]))
	so.Bytes = append(forged, so.Signature[:]...)
	so.Hash = crypto.Blake2b256(so.Bytes)
	return so
}

// Verify checks the signature of a signed operation against pub.
func (so SignedOperation) Verify(pub [crypto.Ed25519PublicKeySize]byte) error {
	if len(so.Bytes) < len(so.Signature) {
		return ErrBadSignature
	}
	forged := so.Bytes[:len(so.Bytes)-len(so.Signature)]
	digest := SigningDigest(forged)
	if !crypto.VerifyEd25519(pub[:], digest[:], so.Signature[:]) {
		return ErrBadSignature
	}
	return nil
}

// HashString returns the "o..." operation hash.
func (so SignedOperation) HashString() string {
	return OperationHashString(so.Hash)
}

// SignatureString returns the "edsig..." signature text.
func (so SignedOperation) SignatureString() string {
	return crypto.Base58CheckEncode(prefixEd25519Sig, so.Signature[:])
}

// Hex returns the signed bytes as hex, as injected through the RPC.
func (so SignedOperation) Hex() string {
	return fmt.Sprintf("%x", so.Bytes)
}

// OperationHashString renders an operation hash with its "o" prefix.
func OperationHashString(h types.Hash) string {
	return crypto.Base58CheckEncode(prefixOpHash, h[:])
}

// ParseOperationHash decodes an "o..." operation hash.
func ParseOperationHash(s string) (types.Hash, error) {
	raw, err := crypto.Base58CheckDecodePrefix(s, prefixOpHash)
	if err != nil {
		return types.Hash{}, fmt.Errorf("parse operation hash %q: %w", s, err)
	}
	if len(raw) != types.HashSize {
		return types.Hash{}, fmt.Errorf("parse operation hash %q: %d bytes", s, len(raw))
	}
	return types.Hash(raw), nil
}
