// Package manager runs the per-currency wallet pipelines: building,
// signing and persisting transfers, and keeping verified header chains.
package manager

import (
	"errors"
	"fmt"
)

// Manager errors.
var (
	ErrUnknownTransfer = errors.New("transfer not in wallet")
	ErrNotSigned       = errors.New("transfer is not signed")
	ErrKeyMismatch     = errors.New("seed does not derive this wallet")
	ErrNotOwnTransfer  = errors.New("transfer does not involve this wallet")
)

// TransferState is the life-cycle stage of a wallet transfer.
type TransferState uint8

const (
	StateCreated TransferState = iota + 1
	StateSigned
	StateSubmitted
	StateIncluded
	StateErrored
	StateDeleted
)

func (s TransferState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateSigned:
		return "signed"
	case StateSubmitted:
		return "submitted"
	case StateIncluded:
		return "included"
	case StateErrored:
		return "errored"
	case StateDeleted:
		return "deleted"
	}
	return fmt.Sprintf("TransferState(%d)", s)
}

// Direction tells how a transfer moves funds relative to the wallet.
type Direction uint8

const (
	DirectionSent Direction = iota + 1
	DirectionReceived
	DirectionRecovered // sent to self
)

func (d Direction) String() string {
	switch d {
	case DirectionSent:
		return "sent"
	case DirectionReceived:
		return "received"
	case DirectionRecovered:
		return "recovered"
	}
	return fmt.Sprintf("Direction(%d)", d)
}
