package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAddress_IsZero(t *testing.T) {
	var zero Address
	if !zero.IsZero() {
		t.Error("zero-value Address should be zero")
	}
	if (Address{0x01}).IsZero() {
		t.Error("non-zero Address should not be zero")
	}
}

func TestAddress_String(t *testing.T) {
	a := Address{0xAB, 0xCD}
	s := a.String()
	if len(s) != 42 {
		t.Fatalf("String() length = %d, want 42", len(s))
	}
	if !strings.HasPrefix(s, "0xabcd") {
		t.Errorf("String() = %s, want lowercase 0xabcd prefix", s)
	}
}

func TestAddress_ChecksumString(t *testing.T) {
	// EIP-55 reference vectors.
	vectors := []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	}
	for _, v := range vectors {
		a, err := ParseAddress(v)
		if err != nil {
			t.Fatalf("ParseAddress(%q) error: %v", v, err)
		}
		if got := a.ChecksumString(); got != v {
			t.Errorf("ChecksumString() = %s, want %s", got, v)
		}
	}
}

func TestParseAddress(t *testing.T) {
	rawHex := "0123456789abcdef0123456789abcdef01234567"

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"raw hex", rawHex, false},
		{"prefixed", "0x" + rawHex, false},
		{"upper prefix", "0X" + rawHex, false},
		{"all upper", "0x" + strings.ToUpper(rawHex), false},
		{"bad checksum", "0x5aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed", true},
		{"wrong length", "0xabcd", true},
		{"not hex", "0x" + strings.Repeat("z", 40), true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseAddress(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseAddress(%q) should have returned error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAddress(%q) error: %v", tt.input, err)
			}
			if a.Hex() != rawHex {
				t.Errorf("ParseAddress(%q) = %s, want %s", tt.input, a.Hex(), rawHex)
			}
		})
	}
}

func TestIsAddressString(t *testing.T) {
	if !IsAddressString("0x" + strings.Repeat("a", 40)) {
		t.Error("IsAddressString() = false for valid address")
	}
	if IsAddressString(strings.Repeat("a", 40)) {
		t.Error("IsAddressString() = true without prefix")
	}
	if IsAddressString("boring head harsh green empty clip fatal typical found crane dinner timber") {
		t.Error("IsAddressString() = true for a phrase")
	}
}

func TestAddress_JSON(t *testing.T) {
	a := Address{0x8f, 0x3a, 0x44, 0xb8, 0x05, 0x6c, 0xaf, 0xec, 0x36, 0x8d,
		0xea, 0x0c, 0xbe, 0x0a, 0xd1, 0xd9, 0xbc, 0x3f, 0x43, 0x05}

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var got Address
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got != a {
		t.Errorf("JSON roundtrip = %x, want %x", got, a)
	}
}

func TestAddress_Bytes(t *testing.T) {
	a := Address{0x01, 0x02, 0x03}
	b := a.Bytes()
	if len(b) != AddressSize {
		t.Errorf("Bytes() length = %d, want %d", len(b), AddressSize)
	}
	b[0] = 0xFF
	if a[0] == 0xFF {
		t.Error("Bytes() should return a copy, not a reference")
	}
}
