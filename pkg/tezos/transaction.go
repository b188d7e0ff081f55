package tezos

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/walletkit-core/pkg/crypto"
	"github.com/Klingon-tech/walletkit-core/pkg/types"
)

// ErrNotSigned is returned when a signed artifact is requested early.
var ErrNotSigned = errors.New("tezos transaction is not signed")

// Transaction is a wallet-level Tezos operation: a transfer or a
// delegation from Source, with the fee basis it will be forged with.
type Transaction struct {
	Source    Address
	Operation Operation
	FeeBasis  FeeBasis

	signed *SignedOperation
}

// NewTransfer creates a transfer of amount mutez. Both addresses must be
// implicit accounts.
func NewTransfer(source, target Address, amount uint64, fb FeeBasis) (*Transaction, error) {
	if !source.IsImplicit() {
		return nil, fmt.Errorf("source: %w", ErrNotImplicit)
	}
	if !target.IsImplicit() {
		return nil, fmt.Errorf("target %s: %w", target, ErrNotImplicit)
	}
	return &Transaction{
		Source:    source,
		Operation: Transfer{Amount: amount, Destination: target},
		FeeBasis:  fb,
	}, nil
}

// NewDelegation creates a delegation to delegate, or a delegate removal
// when delegate is the zero address.
func NewDelegation(source, delegate Address, fb FeeBasis) (*Transaction, error) {
	if !source.IsImplicit() {
		return nil, fmt.Errorf("source: %w", ErrNotImplicit)
	}
	if !delegate.IsZero() && !delegate.IsImplicit() {
		return nil, fmt.Errorf("delegate %s: %w", delegate, ErrNotImplicit)
	}
	return &Transaction{
		Source:    source,
		Operation: Delegation{Delegate: delegate},
		FeeBasis:  fb,
	}, nil
}

// Fee returns the fee of the main operation in mutez.
func (tx *Transaction) Fee() uint64 {
	return tx.FeeBasis.Fee()
}

// Contents returns the operations to forge. With needsReveal a reveal of
// pub is placed first at the fee basis counter and the main operation
// takes the next counter.
func (tx *Transaction) Contents(pub [crypto.Ed25519PublicKeySize]byte, needsReveal bool) []Content {
	counter := tx.FeeBasis.Counter
	var out []Content
	if needsReveal {
		out = append(out, Content{
			Source:    tx.Source,
			Fee:       RevealFee,
			Counter:   counter,
			GasLimit:  RevealGasLimit,
			Operation: Reveal{PublicKey: pub},
		})
		counter++
	}
	return append(out, Content{
		Source:       tx.Source,
		Fee:          tx.Fee(),
		Counter:      counter,
		GasLimit:     tx.FeeBasis.GasLimit,
		StorageLimit: tx.FeeBasis.StorageLimit,
		Operation:    tx.Operation,
	})
}

// SerializeForFeeEstimation forges the operation list with a blank
// signature, as submitted for simulation, and records its size on the
// fee basis.
func (tx *Transaction) SerializeForFeeEstimation(branch BlockHash, pub [crypto.Ed25519PublicKeySize]byte, needsReveal bool) []byte {
	l := OperationList{Branch: branch, Contents: tx.Contents(pub, needsReveal)}
	out := append(l.Forge(), make([]byte, signatureSize)...)
	tx.FeeBasis.SizeInBytes = uint64(len(out))
	return out
}

// SerializeAndSign forges and signs the operation list with key and
// stores the result. It returns the size of the signed bytes.
func (tx *Transaction) SerializeAndSign(branch BlockHash, key *crypto.Ed25519Key, needsReveal bool) int {
	l := OperationList{Branch: branch, Contents: tx.Contents(key.PublicKey(), needsReveal)}
	so := Sign(l, key)
	tx.signed = &so
	return len(so.Bytes)
}

// IsSigned reports whether SerializeAndSign has run.
func (tx *Transaction) IsSigned() bool {
	return tx.signed != nil
}

// Signed returns the signed operation.
func (tx *Transaction) Signed() (SignedOperation, error) {
	if tx.signed == nil {
		return SignedOperation{}, ErrNotSigned
	}
	return *tx.signed, nil
}

// Hash returns the operation hash, zero until signed.
func (tx *Transaction) Hash() types.Hash {
	if tx.signed == nil {
		return types.Hash{}
	}
	return tx.signed.Hash
}
