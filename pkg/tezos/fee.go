package tezos

import (
	"fmt"
	"math"
)

// Fee constants, in mutez unless noted.
const (
	MinimalFee      uint64 = 100
	GasPerMutez     uint64 = 10 // one mutez per ten gas units
	FeePaddingPct          = 10
	DefaultGasLimit uint64 = 10600
	DefaultStorage  uint64 = 300

	// Reveal operations are prepended with fixed limits.
	RevealFee      uint64 = 1420
	RevealGasLimit uint64 = 10000

	// Size of an ed25519 signature appended to a forged list.
	signatureSize = 64
)

// FeeBasisKind tags how a FeeBasis was obtained.
type FeeBasisKind uint8

const (
	// FeeBasisInitial carries default limits before an estimate exists.
	FeeBasisInitial FeeBasisKind = iota + 1
	// FeeBasisEstimate carries node-simulated limits and a counter.
	FeeBasisEstimate
	// FeeBasisActual carries the fee paid by an included operation.
	FeeBasisActual
)

func (k FeeBasisKind) String() string {
	switch k {
	case FeeBasisInitial:
		return "initial"
	case FeeBasisEstimate:
		return "estimate"
	case FeeBasisActual:
		return "actual"
	}
	return fmt.Sprintf("FeeBasisKind(%d)", k)
}

// FeeBasis holds the inputs the operation fee is computed from.
type FeeBasis struct {
	Kind         FeeBasisKind
	MutezPerByte uint64
	SizeInBytes  uint64
	GasLimit     uint64
	StorageLimit uint64
	Counter      uint64
	ActualFee    uint64
}

// DefaultFeeBasis returns an initial fee basis with default limits.
func DefaultFeeBasis(mutezPerByte uint64) FeeBasis {
	return FeeBasis{
		Kind:         FeeBasisInitial,
		MutezPerByte: mutezPerByte,
		GasLimit:     DefaultGasLimit,
		StorageLimit: DefaultStorage,
	}
}

// PadLimit adds FeePaddingPct to a simulated gas or storage value.
func PadLimit(v uint64) uint64 {
	if v > math.MaxUint64/(100+FeePaddingPct) {
		return math.MaxUint64
	}
	return v * (100 + FeePaddingPct) / 100
}

// EstimateFeeBasis builds a fee basis from a node simulation: consumed
// gas and storage are padded, and the account's current counter is
// advanced by one to the counter the operation must use.
func EstimateFeeBasis(mutezPerByte, sizeInBytes, consumedGas, storageSize, counter uint64) FeeBasis {
	return FeeBasis{
		Kind:         FeeBasisEstimate,
		MutezPerByte: mutezPerByte,
		SizeInBytes:  sizeInBytes,
		GasLimit:     PadLimit(consumedGas),
		StorageLimit: PadLimit(storageSize),
		Counter:      counter + 1,
	}
}

// ActualFeeBasis records the fee an included operation paid.
func ActualFeeBasis(fee uint64) FeeBasis {
	return FeeBasis{Kind: FeeBasisActual, ActualFee: fee}
}

// Fee returns the fee in mutez: MinimalFee + gas/10 + size*mutezPerByte,
// rounded up, or the actual fee.
func (f FeeBasis) Fee() uint64 {
	if f.Kind == FeeBasisActual {
		return f.ActualFee
	}
	gas := (f.GasLimit + GasPerMutez - 1) / GasPerMutez
	return MinimalFee + gas + f.SizeInBytes*f.MutezPerByte
}
