package wallet

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

const abandonAbout = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestGenerateMnemonic(t *testing.T) {
	for _, bits := range []int{128, 160, 192, 224, 256} {
		mnemonic, err := GenerateMnemonic(English(), bits)
		if err != nil {
			t.Fatalf("GenerateMnemonic(%d) error: %v", bits, err)
		}
		if got, want := len(strings.Fields(mnemonic)), bits*33/32/11; got != want {
			t.Errorf("GenerateMnemonic(%d) word count = %d, want %d", bits, got, want)
		}
		if err := ValidateMnemonic(English(), mnemonic); err != nil {
			t.Errorf("generated mnemonic should validate: %v", err)
		}
	}
}

func TestGenerateMnemonic_BadEntropySize(t *testing.T) {
	if _, err := GenerateMnemonic(English(), 100); err == nil {
		t.Error("expected error for 100-bit entropy")
	}
}

func TestGenerateMnemonic_Unique(t *testing.T) {
	m1, err := GenerateMnemonic(English(), MnemonicEntropyBits)
	if err != nil {
		t.Fatalf("GenerateMnemonic() error: %v", err)
	}
	m2, err := GenerateMnemonic(English(), MnemonicEntropyBits)
	if err != nil {
		t.Fatalf("GenerateMnemonic() error: %v", err)
	}

	if m1 == m2 {
		t.Error("two generated mnemonics should not be identical")
	}
}

func TestEncodeMnemonic_Vectors(t *testing.T) {
	tests := []struct {
		entropy  string
		mnemonic string
	}{
		{"00000000000000000000000000000000", abandonAbout},
		{"7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f", "legal winner thank year wave sausage worth useful legal winner thank yellow"},
		{"80808080808080808080808080808080", "letter advice cage absurd amount doctor acoustic avoid letter advice cage above"},
		{"ffffffffffffffffffffffffffffffff", "zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo wrong"},
		{"0000000000000000000000000000000000000000000000000000000000000000", strings.Repeat("abandon ", 23) + "art"},
	}

	for _, tt := range tests {
		entropy, _ := hex.DecodeString(tt.entropy)
		if got := EncodeMnemonic(English(), entropy); got != tt.mnemonic {
			t.Errorf("EncodeMnemonic(%s) = %q, want %q", tt.entropy, got, tt.mnemonic)
		}
		back, err := MnemonicToEntropy(English(), tt.mnemonic)
		if err != nil {
			t.Fatalf("MnemonicToEntropy() error: %v", err)
		}
		if !bytes.Equal(back, entropy) {
			t.Errorf("MnemonicToEntropy() = %x, want %s", back, tt.entropy)
		}
	}
}

func TestValidateMnemonic(t *testing.T) {
	tests := []struct {
		name     string
		mnemonic string
		want     error
	}{
		{"valid 24-word BIP-39", strings.Repeat("abandon ", 23) + "art", nil},
		{"valid 12-word BIP-39", abandonAbout, nil},
		{"extra whitespace", "  " + strings.ReplaceAll(abandonAbout, " ", "\t ") + "\n", nil},
		{"empty string", "", ErrWordCount},
		{"random words", "not a valid mnemonic phrase at all", ErrWordCount},
		{"wrong checksum", strings.TrimSpace(strings.Repeat("abandon ", 24)), ErrMnemonicCheck},
		{"single word", "abandon", ErrWordCount},
		{"unknown word", strings.Replace(abandonAbout, "about", "aboot", 1), ErrUnknownWord},
		{"capitalised word", strings.Replace(abandonAbout, "about", "About", 1), ErrUnknownWord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMnemonic(English(), tt.mnemonic)
			if tt.want == nil {
				if err != nil {
					t.Errorf("ValidateMnemonic() error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidMnemonic) || !errors.Is(err, tt.want) {
				t.Errorf("ValidateMnemonic() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateMnemonic_OtherWordList(t *testing.T) {
	words := make([]string, WordListSize)
	for i := range words {
		words[i] = "w" + strings.Repeat("x", i%7) + string(rune('a'+i%26)) + hex.EncodeToString([]byte{byte(i >> 8), byte(i)})
	}
	wl, err := NewWordList(words)
	if err != nil {
		t.Fatalf("NewWordList() error: %v", err)
	}

	entropy := bytes.Repeat([]byte{0x5a}, 16)
	mnemonic := EncodeMnemonic(wl, entropy)
	if err := ValidateMnemonic(wl, mnemonic); err != nil {
		t.Fatalf("ValidateMnemonic() error: %v", err)
	}
	if err := ValidateMnemonic(English(), mnemonic); err == nil {
		t.Error("mnemonic from another list should not validate against English")
	}
}
