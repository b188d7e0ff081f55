package eth

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/walletkit-core/pkg/crypto"
	"github.com/Klingon-tech/walletkit-core/pkg/types"
)

// Signature errors.
var (
	ErrInvalidV      = errors.New("invalid signature recovery value")
	ErrUnsigned      = errors.New("signature is empty")
	ErrSignatureSize = errors.New("signature must be 65 bytes")
)

// SignatureKind tags the recovery scheme of a Signature.
type SignatureKind uint8

const (
	// SignatureVRS carries V in {27, 28}, the pre-EIP-155 convention that
	// transactions are signed with.
	SignatureVRS SignatureKind = iota + 1
	// SignatureRSV carries V in {0, 1}, as used for message signing.
	SignatureRSV
)

func (k SignatureKind) String() string {
	switch k {
	case SignatureVRS:
		return "vrs"
	case SignatureRSV:
		return "rsv"
	}
	return fmt.Sprintf("SignatureKind(%d)", k)
}

// Signature is a recoverable secp256k1 signature. It is implemented by
// VRS and RSV only.
type Signature interface {
	Kind() SignatureKind
	// Bytes returns the 65-byte serialization in the kind's field order.
	Bytes() []byte
	isSignature()
}

// VRS is a signature whose recovery byte is 27 or 28. A zero V means
// "not signed".
type VRS struct {
	V byte
	R [32]byte
	S [32]byte
}

// RSV is a signature whose recovery byte is 0 or 1.
type RSV struct {
	R [32]byte
	S [32]byte
	V byte
}

func (VRS) Kind() SignatureKind { return SignatureVRS }
func (RSV) Kind() SignatureKind { return SignatureRSV }
func (VRS) isSignature()        {}
func (RSV) isSignature()        {}

// IsZero reports whether the signature is unset.
func (s VRS) IsZero() bool {
	return s.V == 0
}

// IsZero reports whether the signature is unset.
func (s RSV) IsZero() bool {
	return s.R == [32]byte{} && s.S == [32]byte{}
}

// Bytes returns V || R || S.
func (s VRS) Bytes() []byte {
	out := make([]byte, 0, 65)
	out = append(out, s.V)
	out = append(out, s.R[:]...)
	return append(out, s.S[:]...)
}

// Bytes returns R || S || V.
func (s RSV) Bytes() []byte {
	out := make([]byte, 0, 65)
	out = append(out, s.R[:]...)
	out = append(out, s.S[:]...)
	return append(out, s.V)
}

// ParseSignature reads a 65-byte serialization of the given kind.
func ParseSignature(kind SignatureKind, b []byte) (Signature, error) {
	if len(b) != 65 {
		return nil, fmt.Errorf("%w: got %d", ErrSignatureSize, len(b))
	}
	switch kind {
	case SignatureVRS:
		var s VRS
		s.V = b[0]
		copy(s.R[:], b[1:33])
		copy(s.S[:], b[33:65])
		return s, nil
	case SignatureRSV:
		var s RSV
		copy(s.R[:], b[0:32])
		copy(s.S[:], b[32:64])
		s.V = b[64]
		return s, nil
	}
	return nil, fmt.Errorf("unknown signature kind %d", kind)
}

// Sign signs a 32-byte digest with key, producing a signature of the
// requested kind.
func Sign(key *crypto.PrivateKey, digest types.Hash, kind SignatureKind) (Signature, error) {
	recID, r, s, err := key.SignRecoverable(digest[:])
	if err != nil {
		return nil, err
	}
	switch kind {
	case SignatureVRS:
		return VRS{V: 27 + recID, R: r, S: s}, nil
	case SignatureRSV:
		return RSV{R: r, S: s, V: recID}, nil
	}
	return nil, fmt.Errorf("unknown signature kind %d", kind)
}

// recoveryParts extracts the secp256k1 recovery id and scalars.
func recoveryParts(sig Signature) (byte, [32]byte, [32]byte, error) {
	switch s := sig.(type) {
	case VRS:
		if s.IsZero() {
			return 0, s.R, s.S, ErrUnsigned
		}
		if s.V != 27 && s.V != 28 {
			return 0, s.R, s.S, fmt.Errorf("%w: v=%d", ErrInvalidV, s.V)
		}
		return s.V - 27, s.R, s.S, nil
	case RSV:
		if s.IsZero() {
			return 0, s.R, s.S, ErrUnsigned
		}
		if s.V > 1 {
			return 0, s.R, s.S, fmt.Errorf("%w: v=%d", ErrInvalidV, s.V)
		}
		return s.V, s.R, s.S, nil
	default:
		panic(fmt.Sprintf("eth: unhandled signature type %T", sig))
	}
}

// RecoverPublicKey returns the 65-byte uncompressed key that produced sig
// over digest.
func RecoverPublicKey(sig Signature, digest types.Hash) ([]byte, error) {
	recID, r, s, err := recoveryParts(sig)
	if err != nil {
		return nil, err
	}
	return crypto.RecoverPublicKey(digest[:], recID, r, s)
}

// RecoverAddress returns the address of the key that produced sig over
// digest.
func RecoverAddress(sig Signature, digest types.Hash) (types.Address, error) {
	pub, err := RecoverPublicKey(sig, digest)
	if err != nil {
		return types.EmptyAddress, err
	}
	return crypto.AddressFromPublicKey(pub), nil
}
