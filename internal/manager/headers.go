package manager

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/walletkit-core/internal/chainparams"
	"github.com/Klingon-tech/walletkit-core/internal/consensus"
	"github.com/Klingon-tech/walletkit-core/internal/fileservice"
	"github.com/Klingon-tech/walletkit-core/internal/log"
	"github.com/Klingon-tech/walletkit-core/pkg/types"
)

// HeaderRecord is the file service type of stored block headers.
var HeaderRecord = fileservice.RecordType{Name: "header", Version: 1}

// Header chain errors.
var (
	ErrHeaderKnown        = errors.New("header already known")
	ErrPrevNotFound       = errors.New("previous header not found")
	ErrBadHeight          = errors.New("header height does not follow parent")
	ErrCheckpointMismatch = errors.New("header conflicts with checkpoint")
)

// HeaderChain holds block headers verified against a network's difficulty
// rule, seeded from its checkpoints. It implements consensus.HeaderSet.
type HeaderChain struct {
	mu      sync.RWMutex
	params  *chainparams.Params
	headers *consensus.HeaderMap
	files   fileservice.Service
	tip     *consensus.BlockHeader
	tipHash types.Hash
	logger  zerolog.Logger
}

// NewHeaderChain creates a header chain for params, seeds it with every
// checkpoint and restores headers saved in files.
func NewHeaderChain(params *chainparams.Params, files fileservice.Service) (*HeaderChain, error) {
	if params == nil {
		return nil, fmt.Errorf("chain params are nil")
	}
	if files == nil {
		files = fileservice.NOP{}
	}
	c := &HeaderChain{
		params:  params,
		headers: consensus.NewHeaderMap(),
		files:   files,
		logger:  log.WithNetwork(log.Manager, chainparams.Currency, params.Name),
	}
	for _, cp := range params.Checkpoints {
		c.insert(cp.Hash, cp.Header())
	}

	done := log.Timed(c.logger, "restore headers")
	restored := 0
	err := files.ForEach(HeaderRecord, func(key string, data []byte) error {
		h, err := decodeStoredHeader(data)
		if err != nil {
			c.logger.Warn().Str("key", key).Err(err).Msg("Skipping unreadable header record")
			return nil
		}
		c.insert(h.Hash(), h)
		restored++
		return nil
	})
	done()
	if err != nil {
		return nil, fmt.Errorf("restore headers: %w", err)
	}

	var tipHeight uint32
	if c.tip != nil {
		tipHeight = c.tip.Height
	}
	c.logger.Info().
		Int("checkpoints", len(params.Checkpoints)).
		Int("restored", restored).
		Uint32("tip", tipHeight).
		Msg("Header chain loaded")
	return c, nil
}

func (c *HeaderChain) insert(hash types.Hash, h *consensus.BlockHeader) {
	c.headers.Put(hash, h)
	if c.tip == nil || h.Height > c.tip.Height {
		c.tip = h
		c.tipHash = hash
	}
}

// Lookup implements consensus.HeaderSet.
func (c *HeaderChain) Lookup(hash types.Hash) (*consensus.BlockHeader, bool) {
	return c.headers.Lookup(hash)
}

// Tip returns the highest header and its hash.
func (c *HeaderChain) Tip() (*consensus.BlockHeader, types.Hash) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tip, c.tipHash
}

// Len returns the number of headers held, checkpoints included.
func (c *HeaderChain) Len() int {
	return c.headers.Len()
}

// StartCheckpoint returns the checkpoint header download should begin
// from for a wallet whose keys are no older than earliestKeyTime.
func (c *HeaderChain) StartCheckpoint(earliestKeyTime uint32) chainparams.Checkpoint {
	return c.params.LastCheckpointBefore(earliestKeyTime)
}

// Accept links h to its parent, checks it against any checkpoint at its
// height, runs the network's verifier and stores it.
func (c *HeaderChain) Accept(h *consensus.BlockHeader) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	hash := h.Hash()
	if _, ok := c.headers.Lookup(hash); ok {
		return ErrHeaderKnown
	}
	if cp, ok := c.params.CheckpointAt(h.Height); ok && cp.Hash != hash {
		return fmt.Errorf("%w: height %d has %s, want %s", ErrCheckpointMismatch, h.Height, hash, cp.Hash)
	}

	prev, ok := c.headers.Lookup(h.PrevBlock)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPrevNotFound, h.PrevBlock)
	}
	if h.Height != prev.Height+1 {
		return fmt.Errorf("%w: %d after %d", ErrBadHeight, h.Height, prev.Height)
	}

	verifier := c.params.Verifier
	if verifier == nil {
		verifier = consensus.PassThrough{}
	}
	if err := verifier.Verify(h, c.headers); err != nil {
		return fmt.Errorf("verify header %d: %w", h.Height, err)
	}

	if err := c.files.Put(HeaderRecord, hash.String(), encodeStoredHeader(h)); err != nil {
		c.logger.Error().Err(err).Uint32("height", h.Height).Msg("Failed to save header")
		return fmt.Errorf("save header: %w", err)
	}
	c.insert(hash, h)
	c.logger.Debug().Uint32("height", h.Height).Str("hash", hash.String()).Msg("Header accepted")
	return nil
}

// Prune drops headers more than keep blocks below the tip. Checkpoints
// always stay. The difficulty rule needs only a header's parent, so a
// pruned chain still verifies new headers. It returns the number of
// headers dropped.
func (c *HeaderChain) Prune(keep uint32) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tip == nil || c.tip.Height < keep {
		return 0, nil
	}
	floor := c.tip.Height - keep

	records := make(map[string][]byte)
	err := c.files.ForEach(HeaderRecord, func(key string, data []byte) error {
		if h, err := decodeStoredHeader(data); err == nil && h.Height >= floor {
			records[key] = data
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("prune headers: %w", err)
	}
	if err := c.files.Replace(HeaderRecord, records); err != nil {
		return 0, fmt.Errorf("prune headers: %w", err)
	}

	dropped := c.headers.Retain(func(hash types.Hash, h *consensus.BlockHeader) bool {
		if cp, ok := c.params.CheckpointAt(h.Height); ok && cp.Hash == hash {
			return true
		}
		return h.Height >= floor
	})
	c.logger.Info().Int("dropped", dropped).Uint32("floor", floor).Msg("Headers pruned")
	return dropped, nil
}

// stored header layout: wire header(80) | height(4, little endian)
func encodeStoredHeader(h *consensus.BlockHeader) []byte {
	return binary.LittleEndian.AppendUint32(h.Serialize(), h.Height)
}

func decodeStoredHeader(b []byte) (*consensus.BlockHeader, error) {
	if len(b) != consensus.HeaderSize+4 {
		return nil, fmt.Errorf("%w: stored header is %d bytes", consensus.ErrHeaderSize, len(b))
	}
	return consensus.ParseHeader(b[:consensus.HeaderSize], binary.LittleEndian.Uint32(b[consensus.HeaderSize:]))
}
