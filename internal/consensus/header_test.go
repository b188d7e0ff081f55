package consensus

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Klingon-tech/walletkit-core/pkg/types"
)

func mustHash(t *testing.T, s string) types.Hash {
	t.Helper()
	h, err := types.HexToHash(s)
	if err != nil {
		t.Fatalf("HexToHash(%q) error: %v", s, err)
	}
	return h
}

func genesisHeader(t *testing.T) *BlockHeader {
	t.Helper()
	return &BlockHeader{
		Version:    1,
		MerkleRoot: mustHash(t, "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"),
		Timestamp:  1231006505,
		Target:     0x1d00ffff,
		Nonce:      2083236893,
	}
}

func TestBlockHeader_Hash(t *testing.T) {
	h := genesisHeader(t)
	want := "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"
	if got := h.Hash().String(); got != want {
		t.Fatalf("genesis Hash() = %s, want %s", got, want)
	}
}

func TestParseHeader_RoundTrip(t *testing.T) {
	h := genesisHeader(t)
	h.PrevBlock = mustHash(t, "00000000000000000000000000000000000000000000000000000000000000ff")
	wire := h.Serialize()
	if len(wire) != HeaderSize {
		t.Fatalf("Serialize() length = %d, want %d", len(wire), HeaderSize)
	}
	// Display-order hashes are reversed on the wire.
	if wire[4] != 0xff {
		t.Fatalf("wire prev block first byte = %#x, want 0xff", wire[4])
	}

	got, err := ParseHeader(wire, 7)
	if err != nil {
		t.Fatalf("ParseHeader() error: %v", err)
	}
	if got.Height != 7 {
		t.Fatalf("Height = %d, want 7", got.Height)
	}
	got.Height = h.Height
	if *got != *h {
		t.Fatalf("ParseHeader() = %+v, want %+v", got, h)
	}
	if !bytes.Equal(got.Serialize(), wire) {
		t.Fatal("re-serialized header differs")
	}
}

func TestParseHeader_Size(t *testing.T) {
	for _, n := range []int{0, 79, 81} {
		if _, err := ParseHeader(make([]byte, n), 0); !errors.Is(err, ErrHeaderSize) {
			t.Fatalf("ParseHeader(%d bytes) err = %v, want ErrHeaderSize", n, err)
		}
	}
}
