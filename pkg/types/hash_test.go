package types

import (
	"encoding/json"
	"strings"
	"testing"
)

// keccak256 of the empty string.
const emptyKeccak = "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"

func TestHash_Text(t *testing.T) {
	h, err := HexToHash(emptyKeccak)
	if err != nil {
		t.Fatalf("HexToHash() error: %v", err)
	}
	if h.IsZero() || !EmptyHash.IsZero() {
		t.Fatal("IsZero() mismatch")
	}
	if h.String() != emptyKeccak {
		t.Errorf("String() = %s", h)
	}
	if h.Hex() != "0x"+emptyKeccak {
		t.Errorf("Hex() = %s", h.Hex())
	}
	if EmptyHash.String() != strings.Repeat("0", 64) {
		t.Errorf("zero String() = %s", EmptyHash)
	}

	b := h.Bytes()
	b[0] = 0xff
	if h[0] != 0xc5 {
		t.Error("Bytes() should return a copy")
	}
}

func TestHexToHash(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", emptyKeccak, false},
		{"0x prefix", "0x" + emptyKeccak, false},
		{"0X prefix", "0X" + emptyKeccak, false},
		{"uppercase", strings.ToUpper(emptyKeccak), false},
		{"too short", "abcd", true},
		{"too long", strings.Repeat("a", 66), true},
		{"bad digit", strings.Repeat("g", 64), true},
		{"empty", "", true},
		{"prefix only", "0x", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := HexToHash(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("HexToHash(%q) should fail", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("HexToHash(%q) error: %v", tt.input, err)
			}
			if h.String() != emptyKeccak {
				t.Errorf("HexToHash(%q) = %s", tt.input, h)
			}
		})
	}
}

func TestHash_Reverse(t *testing.T) {
	// Bitcoin genesis block hash, display order and wire order.
	display, err := HexToHash("000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f")
	if err != nil {
		t.Fatalf("HexToHash() error: %v", err)
	}
	wire := display.Reverse()
	if got := wire.String(); got != "6fe28c0ab6f1b372c1a6a246ae63f74f931e8365e15a089c68d6190000000000" {
		t.Errorf("Reverse() = %s", got)
	}
	if wire.Reverse() != display {
		t.Error("Reverse() twice should be the identity")
	}
}

func TestBytesToHash(t *testing.T) {
	h := BytesToHash([]byte{0xaa, 0xbb})
	if h[30] != 0xaa || h[31] != 0xbb || h[0] != 0 {
		t.Errorf("BytesToHash() short input = %s", h)
	}

	long := make([]byte, 40)
	long[39] = 0x7f
	if got := BytesToHash(long); got[31] != 0x7f {
		t.Errorf("BytesToHash() long input = %s", got)
	}
}

func TestHash_JSON(t *testing.T) {
	h, _ := HexToHash(emptyKeccak)
	data, err := json.Marshal(struct{ H Hash }{h})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(data) != `{"H":"`+emptyKeccak+`"}` {
		t.Errorf("Marshal() = %s", data)
	}

	var out struct{ H Hash }
	if err := json.Unmarshal([]byte(`{"H":"0x`+emptyKeccak+`"}`), &out); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if out.H != h {
		t.Errorf("Unmarshal() = %s", out.H)
	}
	if err := json.Unmarshal([]byte(`{"H":""}`), &out); err != nil || !out.H.IsZero() {
		t.Errorf("Unmarshal(empty) = %s, %v", out.H, err)
	}
	if err := json.Unmarshal([]byte(`{"H":"xyz"}`), &out); err == nil {
		t.Error("Unmarshal(bad hex) should fail")
	}
}
