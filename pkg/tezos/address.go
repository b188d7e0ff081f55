// Package tezos implements Tezos addresses, the binary "forge" encoding
// of manager operations, operation signing and fee estimation.
package tezos

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Klingon-tech/walletkit-core/pkg/crypto"
)

// Address errors.
var (
	ErrUnknownPrefix = errors.New("unknown tezos address prefix")
	ErrNotImplicit   = errors.New("address is not an implicit (tz) account")
	ErrAddressSize   = errors.New("tezos address must carry a 20-byte hash")
)

// HashSize is the size of the public key hash inside an address.
const HashSize = 20

// Base58Check prefixes.
var (
	prefixTZ1        = []byte{6, 161, 159}
	prefixTZ2        = []byte{6, 161, 161}
	prefixTZ3        = []byte{6, 161, 164}
	prefixKT1        = []byte{2, 90, 121}
	prefixBlockHash  = []byte{1, 52}
	prefixOpHash     = []byte{5, 116}
	prefixEd25519Pub = []byte{13, 15, 37, 217}
	prefixEd25519Sig = []byte{9, 245, 205, 134, 18}
)

// AddressKind identifies the account type an address refers to. The zero
// value is not a valid kind.
type AddressKind uint8

const (
	TZ1 AddressKind = iota + 1 // ed25519 implicit account
	TZ2                        // secp256k1 implicit account
	TZ3                        // p256 implicit account
	KT1                        // originated contract
)

func (k AddressKind) prefix() []byte {
	switch k {
	case TZ1:
		return prefixTZ1
	case TZ2:
		return prefixTZ2
	case TZ3:
		return prefixTZ3
	case KT1:
		return prefixKT1
	}
	return nil
}

func (k AddressKind) String() string {
	switch k {
	case TZ1:
		return "tz1"
	case TZ2:
		return "tz2"
	case TZ3:
		return "tz3"
	case KT1:
		return "KT1"
	}
	return fmt.Sprintf("AddressKind(%d)", k)
}

// Address is a Tezos account address.
type Address struct {
	Kind AddressKind
	Hash [HashSize]byte
}

// NewAddress creates an address of kind from a public key hash.
func NewAddress(kind AddressKind, hash [HashSize]byte) Address {
	return Address{Kind: kind, Hash: hash}
}

// AddressFromPublicKey returns the tz1 address of an ed25519 public key.
func AddressFromPublicKey(pub [crypto.Ed25519PublicKeySize]byte) Address {
	return Address{Kind: TZ1, Hash: crypto.Blake2b160(pub[:])}
}

// ParseAddress decodes a Base58Check address string.
func ParseAddress(s string) (Address, error) {
	raw, err := crypto.Base58CheckDecode(s)
	if err != nil {
		return Address{}, fmt.Errorf("parse tezos address %q: %w", s, err)
	}
	return AddressFromRaw(raw)
}

// AddressFromRaw decodes the 23-byte prefix || hash form.
func AddressFromRaw(raw []byte) (Address, error) {
	if len(raw) != 3+HashSize {
		return Address{}, fmt.Errorf("%w: got %d bytes", ErrAddressSize, len(raw))
	}
	for _, k := range []AddressKind{TZ1, TZ2, TZ3, KT1} {
		if bytes.Equal(raw[:3], k.prefix()) {
			var a Address
			a.Kind = k
			copy(a.Hash[:], raw[3:])
			return a, nil
		}
	}
	return Address{}, fmt.Errorf("%w: %x", ErrUnknownPrefix, raw[:3])
}

// ParseImplicitAddress is ParseAddress restricted to tz1, tz2 and tz3.
func ParseImplicitAddress(s string) (Address, error) {
	a, err := ParseAddress(s)
	if err != nil {
		return Address{}, err
	}
	if !a.IsImplicit() {
		return Address{}, fmt.Errorf("%w: %s", ErrNotImplicit, s)
	}
	return a, nil
}

// Raw returns the 23-byte prefix || hash form.
func (a Address) Raw() []byte {
	return append(append([]byte{}, a.Kind.prefix()...), a.Hash[:]...)
}

// String returns the Base58Check text form, or "" for the zero address.
func (a Address) String() string {
	if a.Kind.prefix() == nil {
		return ""
	}
	return crypto.Base58CheckEncode(a.Kind.prefix(), a.Hash[:])
}

// IsZero reports whether a is the zero value.
func (a Address) IsZero() bool {
	return a == Address{}
}

// IsImplicit reports whether a is a tz1, tz2 or tz3 address.
func (a Address) IsImplicit() bool {
	return a.Kind == TZ1 || a.Kind == TZ2 || a.Kind == TZ3
}

// Account is an ed25519 key's public identity.
type Account struct {
	PublicKey [crypto.Ed25519PublicKeySize]byte
	Address   Address
}

// NewAccount derives the tz1 account of pub.
func NewAccount(pub [crypto.Ed25519PublicKeySize]byte) Account {
	return Account{PublicKey: pub, Address: AddressFromPublicKey(pub)}
}

// PublicKeyString returns the "edpk" text form of the account key.
func (a Account) PublicKeyString() string {
	return crypto.Base58CheckEncode(prefixEd25519Pub, a.PublicKey[:])
}
