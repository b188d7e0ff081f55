// Package consensus verifies bitcoin-family block headers: compact targets,
// proof of work and the per-chain difficulty rule.
package consensus

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Klingon-tech/walletkit-core/internal/log"
	"github.com/Klingon-tech/walletkit-core/pkg/types"
)

// ErrTargetMismatch is returned when a header's target differs from the
// one the difficulty rule requires.
var ErrTargetMismatch = errors.New("block target does not match expected")

// HeaderSet gives a verifier point lookup of ancestor headers by hash.
type HeaderSet interface {
	Lookup(hash types.Hash) (*BlockHeader, bool)
}

// Verifier checks a candidate header against its known ancestors. Every
// chain exposes one so callers never special-case the chain.
type Verifier interface {
	Verify(h *BlockHeader, ancestors HeaderSet) error
}

// Valid reports whether v accepts h.
func Valid(v Verifier, h *BlockHeader, ancestors HeaderSet) bool {
	return v.Verify(h, ancestors) == nil
}

// ASERTVerifier enforces the aserti3-2d rule above the anchor height.
// Every header it does not skip must also carry enough work.
type ASERTVerifier struct {
	Params ASERTParams
}

// Verify accepts a header whose parent is not in ancestors without any
// check. Above the anchor the target must match the rule; at or below it
// only the proof of work is checked.
func (v ASERTVerifier) Verify(h *BlockHeader, ancestors HeaderSet) error {
	if h.Height > v.Params.RefHeight {
		prev, ok := ancestors.Lookup(h.PrevBlock)
		if !ok {
			return nil
		}
		want, _ := v.Params.ExpectedTarget(h.Height, prev)
		if h.Target != want {
			log.Consensus.Warn().
				Uint32("height", h.Height).
				Str("expected", fmt.Sprintf("0x%08x", want)).
				Str("claimed", fmt.Sprintf("0x%08x", h.Target)).
				Msg("Rejected header target")
			return fmt.Errorf("%w: height %d has 0x%08x, want 0x%08x",
				ErrTargetMismatch, h.Height, h.Target, want)
		}
	}
	if err := CheckProofOfWork(h, v.Params.MaxBits); err != nil {
		log.Consensus.Warn().
			Uint32("height", h.Height).
			Str("hash", h.Hash().String()).
			Err(err).
			Msg("Rejected header work")
		return err
	}
	return nil
}

// PassThrough accepts every header. It serves chains without a post-fork
// difficulty rule.
type PassThrough struct{}

// Verify always returns nil.
func (PassThrough) Verify(*BlockHeader, HeaderSet) error { return nil }

// HeaderMap is a HeaderSet backed by a map. It is safe for concurrent use.
type HeaderMap struct {
	mu      sync.RWMutex
	headers map[types.Hash]*BlockHeader
}

// NewHeaderMap returns a HeaderMap holding headers.
func NewHeaderMap(headers ...*BlockHeader) *HeaderMap {
	m := &HeaderMap{headers: make(map[types.Hash]*BlockHeader, len(headers))}
	for _, h := range headers {
		m.headers[h.Hash()] = h
	}
	return m
}

// Add inserts h under its hash.
func (m *HeaderMap) Add(h *BlockHeader) {
	hash := h.Hash()
	m.mu.Lock()
	m.headers[hash] = h
	m.mu.Unlock()
}

// Put inserts h under an explicit hash. Checkpoint stubs, which lack the
// fields their real hash covers, are stored this way.
func (m *HeaderMap) Put(hash types.Hash, h *BlockHeader) {
	m.mu.Lock()
	m.headers[hash] = h
	m.mu.Unlock()
}

// Lookup implements HeaderSet.
func (m *HeaderMap) Lookup(hash types.Hash) (*BlockHeader, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.headers[hash]
	return h, ok
}

// Len returns the number of headers held.
func (m *HeaderMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.headers)
}

// Retain removes every header for which keep returns false and returns
// the number removed.
func (m *HeaderMap) Retain(keep func(hash types.Hash, h *BlockHeader) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for hash, h := range m.headers {
		if !keep(hash, h) {
			delete(m.headers, hash)
			removed++
		}
	}
	return removed
}
