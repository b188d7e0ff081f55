package tezos

import (
	"fmt"

	"github.com/Klingon-tech/walletkit-core/pkg/crypto"
)

// OperationKind is the one-byte tag of a manager operation.
type OperationKind uint8

const (
	KindReveal      OperationKind = 107
	KindTransaction OperationKind = 108
	KindDelegation  OperationKind = 110
)

func (k OperationKind) String() string {
	switch k {
	case KindReveal:
		return "reveal"
	case KindTransaction:
		return "transaction"
	case KindDelegation:
		return "delegation"
	}
	return fmt.Sprintf("OperationKind(%d)", uint8(k))
}

// Operation is the kind-specific part of a manager operation. It is
// implemented by Reveal, Transfer and Delegation.
type Operation interface {
	Kind() OperationKind
	isOperation()
}

// Reveal publishes the source's ed25519 public key.
type Reveal struct {
	PublicKey [crypto.Ed25519PublicKeySize]byte
}

// Transfer moves Amount mutez to an implicit account.
type Transfer struct {
	Amount      uint64
	Destination Address
}

// Delegation sets the source's delegate, or clears it when Delegate is
// the zero address.
type Delegation struct {
	Delegate Address
}

func (Reveal) Kind() OperationKind     { return KindReveal }
func (Transfer) Kind() OperationKind   { return KindTransaction }
func (Delegation) Kind() OperationKind { return KindDelegation }

func (Reveal) isOperation()     {}
func (Transfer) isOperation()   {}
func (Delegation) isOperation() {}

// Content is one manager operation with its fee and limits.
type Content struct {
	Source       Address
	Fee          uint64 // mutez
	Counter      uint64
	GasLimit     uint64
	StorageLimit uint64
	Operation    Operation
}

// BlockHash identifies the block an operation list is branched from. It
// holds the hash without its Base58Check prefix.
type BlockHash [32]byte

// ParseBlockHash decodes a "B..." block hash string.
func ParseBlockHash(s string) (BlockHash, error) {
	raw, err := crypto.Base58CheckDecodePrefix(s, prefixBlockHash)
	if err != nil {
		return BlockHash{}, fmt.Errorf("parse block hash %q: %w", s, err)
	}
	if len(raw) != len(BlockHash{}) {
		return BlockHash{}, fmt.Errorf("parse block hash %q: %d bytes", s, len(raw))
	}
	return BlockHash(raw), nil
}

// BlockHashFromPrefixed strips the 2-byte type prefix of a 34-byte
// block hash.
func BlockHashFromPrefixed(b [34]byte) BlockHash {
	return BlockHash(b[len(prefixBlockHash):])
}

func (h BlockHash) String() string {
	return crypto.Base58CheckEncode(prefixBlockHash, h[:])
}

// OperationList is a batch of operations signed together.
type OperationList struct {
	Branch   BlockHash
	Contents []Content
}
