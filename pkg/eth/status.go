package eth

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/walletkit-core/pkg/rlp"
	"github.com/Klingon-tech/walletkit-core/pkg/types"
)

// Status errors.
var (
	ErrStatusTransition = errors.New("invalid transaction status transition")
	ErrStatusEncoding   = errors.New("malformed transaction status encoding")
)

// StatusKind tags the lifecycle stage of a transaction.
type StatusKind uint8

const (
	StatusUnknown StatusKind = iota
	StatusPending
	StatusIncluded
	StatusErrored
)

func (k StatusKind) String() string {
	switch k {
	case StatusUnknown:
		return "unknown"
	case StatusPending:
		return "pending"
	case StatusIncluded:
		return "included"
	case StatusErrored:
		return "errored"
	}
	return fmt.Sprintf("StatusKind(%d)", k)
}

// Status is a transaction's lifecycle state. It is implemented by
// Unknown, Pending, Included and Errored.
type Status interface {
	Kind() StatusKind
	isStatus()
}

// Unknown is the state of a created or freshly signed transaction.
type Unknown struct{}

// Pending is the state of a transaction submitted to the network.
type Pending struct{}

// Included is the state of a transaction mined into a block.
type Included struct {
	BlockHash        types.Hash
	BlockNumber      uint64
	TransactionIndex uint64
	BlockTimestamp   uint64
	GasUsed          uint64
}

// Errored is the state of a transaction the network rejected.
type Errored struct {
	Reason string
}

func (Unknown) Kind() StatusKind  { return StatusUnknown }
func (Pending) Kind() StatusKind  { return StatusPending }
func (Included) Kind() StatusKind { return StatusIncluded }
func (Errored) Kind() StatusKind  { return StatusErrored }

func (Unknown) isStatus()  {}
func (Pending) isStatus()  {}
func (Included) isStatus() {}
func (Errored) isStatus()  {}

// canTransition reports whether a transaction may move from one status
// to the next.
func canTransition(from, to Status) bool {
	switch from.(type) {
	case Unknown:
		return to.Kind() != StatusUnknown
	case Pending:
		return to.Kind() == StatusIncluded || to.Kind() == StatusErrored
	case Included, Errored:
		return false
	default:
		panic(fmt.Sprintf("eth: unhandled status type %T", from))
	}
}

// EncodeStatus returns the RLP item for s: a list headed by the kind,
// followed by the kind's fields.
func EncodeStatus(s Status) rlp.Item {
	kind := rlp.Uint64(uint64(s.Kind()))
	switch st := s.(type) {
	case Unknown, Pending:
		return rlp.List(kind)
	case Included:
		return rlp.List(kind,
			rlp.Bytes(st.BlockHash[:]),
			rlp.Uint64(st.BlockNumber),
			rlp.Uint64(st.TransactionIndex),
			rlp.Uint64(st.BlockTimestamp),
			rlp.Uint64(st.GasUsed),
		)
	case Errored:
		return rlp.List(kind, rlp.String(st.Reason))
	default:
		panic(fmt.Sprintf("eth: unhandled status type %T", s))
	}
}

// DecodeStatus parses an item produced by EncodeStatus.
func DecodeStatus(item rlp.Item) (Status, error) {
	items, err := item.Items()
	if err != nil || len(items) == 0 {
		return nil, fmt.Errorf("%w: expected non-empty list", ErrStatusEncoding)
	}
	kind, err := items[0].AsUint64()
	if err != nil {
		return nil, fmt.Errorf("%w: kind: %v", ErrStatusEncoding, err)
	}

	want := map[StatusKind]int{StatusUnknown: 1, StatusPending: 1, StatusIncluded: 6, StatusErrored: 2}
	n, ok := want[StatusKind(kind)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %d", ErrStatusEncoding, kind)
	}
	if len(items) != n {
		return nil, fmt.Errorf("%w: kind %s has %d fields, want %d", ErrStatusEncoding, StatusKind(kind), len(items), n)
	}

	switch StatusKind(kind) {
	case StatusUnknown:
		return Unknown{}, nil
	case StatusPending:
		return Pending{}, nil
	case StatusErrored:
		reason, err := items[1].Bytes()
		if err != nil {
			return nil, fmt.Errorf("%w: reason: %v", ErrStatusEncoding, err)
		}
		return Errored{Reason: string(reason)}, nil
	default:
		var inc Included
		hash, err := items[1].Bytes()
		if err != nil || len(hash) != types.HashSize {
			return nil, fmt.Errorf("%w: block hash", ErrStatusEncoding)
		}
		copy(inc.BlockHash[:], hash)
		fields := []*uint64{&inc.BlockNumber, &inc.TransactionIndex, &inc.BlockTimestamp, &inc.GasUsed}
		for i, f := range fields {
			if *f, err = items[2+i].AsUint64(); err != nil {
				return nil, fmt.Errorf("%w: field %d: %v", ErrStatusEncoding, 2+i, err)
			}
		}
		return inc, nil
	}
}
