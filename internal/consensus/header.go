package consensus

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Klingon-tech/walletkit-core/pkg/crypto"
	"github.com/Klingon-tech/walletkit-core/pkg/types"
)

// HeaderSize is the length of a serialized block header.
const HeaderSize = 80

// ErrHeaderSize is returned when parsing a header of the wrong length.
var ErrHeaderSize = errors.New("block header must be 80 bytes")

// BlockHeader is a bitcoin-family block header plus the height it was
// received at. Hashes are held in display order (most significant byte
// first) and reversed on the wire.
type BlockHeader struct {
	Version    int32
	PrevBlock  types.Hash
	MerkleRoot types.Hash
	Timestamp  uint32
	Target     uint32 // compact "bits"
	Nonce      uint32
	Height     uint32
}

// Serialize returns the 80-byte wire form.
func (h *BlockHeader) Serialize() []byte {
	buf := make([]byte, 0, HeaderSize)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(h.Version))
	prev := h.PrevBlock.Reverse()
	buf = append(buf, prev[:]...)
	root := h.MerkleRoot.Reverse()
	buf = append(buf, root[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, h.Timestamp)
	buf = binary.LittleEndian.AppendUint32(buf, h.Target)
	return binary.LittleEndian.AppendUint32(buf, h.Nonce)
}

// Hash returns the double SHA-256 of the header in display order.
func (h *BlockHeader) Hash() types.Hash {
	return crypto.DoubleSHA256(h.Serialize()).Reverse()
}

// ParseHeader decodes an 80-byte wire header received at height.
func ParseHeader(b []byte, height uint32) (*BlockHeader, error) {
	if len(b) != HeaderSize {
		return nil, fmt.Errorf("%w: got %d", ErrHeaderSize, len(b))
	}
	h := &BlockHeader{
		Version:   int32(binary.LittleEndian.Uint32(b[0:])),
		Timestamp: binary.LittleEndian.Uint32(b[68:]),
		Target:    binary.LittleEndian.Uint32(b[72:]),
		Nonce:     binary.LittleEndian.Uint32(b[76:]),
		Height:    height,
	}
	h.PrevBlock = types.BytesToHash(b[4:36]).Reverse()
	h.MerkleRoot = types.BytesToHash(b[36:68]).Reverse()
	return h, nil
}
