package consensus

import (
	"errors"
	"fmt"
)

// PoW errors.
var (
	ErrInsufficientWork = errors.New("hash does not meet target")
	ErrBadTarget        = errors.New("compact target is negative, zero or overflows")
	ErrTargetTooEasy    = errors.New("target exceeds proof-of-work limit")
)

// CheckProofOfWork checks that the header's compact target is well formed,
// no easier than limit, and met by the header hash.
func CheckProofOfWork(h *BlockHeader, limit uint32) error {
	target, negative, overflow := CompactToBig(h.Target)
	if negative || overflow || target.Sign() == 0 {
		return fmt.Errorf("%w: 0x%08x", ErrBadTarget, h.Target)
	}
	max, _, _ := CompactToBig(limit)
	if target.Cmp(max) > 0 {
		return fmt.Errorf("%w: 0x%08x", ErrTargetTooEasy, h.Target)
	}
	if HashToBig(h.Hash()).Cmp(target) > 0 {
		return ErrInsufficientWork
	}
	return nil
}
