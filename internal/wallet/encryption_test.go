package wallet

import (
	"bytes"
	"errors"
	"testing"
)

// fastParams returns low-cost Argon2 params for fast tests.
func fastParams() EncryptionParams {
	return EncryptionParams{
		Memory:      64, // 64 KiB
		Iterations:  1,
		Parallelism: 1,
	}
}

var testContext = []byte("seed/eth/mainnet")

func TestSealOpen_Roundtrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"seed", bytes.Repeat([]byte{0xa5}, SeedSize)},
		{"empty", []byte{}},
		{"large", bytes.Repeat([]byte{1, 2, 3, 4}, 2500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := Seal(tt.data, []byte("strong-password-123"), testContext, fastParams())
			if err != nil {
				t.Fatalf("Seal() error: %v", err)
			}
			opened, err := Open(sealed, []byte("strong-password-123"), testContext)
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			if !bytes.Equal(opened, tt.data) {
				t.Errorf("opened = %x, want %x", opened, tt.data)
			}
		})
	}
}

func TestSeal_RandomSaltAndNonce(t *testing.T) {
	a, _ := Seal([]byte("same"), []byte("pass"), nil, fastParams())
	b, _ := Seal([]byte("same"), []byte("pass"), nil, fastParams())
	if bytes.Equal(a, b) {
		t.Error("two seals of the same data should differ")
	}
}

func TestSeal_WeakParams(t *testing.T) {
	bad := []EncryptionParams{
		{Memory: 0, Iterations: 1, Parallelism: 1},
		{Memory: 64, Iterations: 0, Parallelism: 1},
		{Memory: 64, Iterations: 1, Parallelism: 0},
	}
	for _, p := range bad {
		if _, err := Seal([]byte("x"), []byte("p"), nil, p); !errors.Is(err, ErrWeakParams) {
			t.Errorf("Seal(%+v) = %v, want ErrWeakParams", p, err)
		}
	}
}

func TestOpen_Rejects(t *testing.T) {
	sealed, err := Seal([]byte("secret data"), []byte("correct"), testContext, fastParams())
	if err != nil {
		t.Fatalf("Seal() error: %v", err)
	}

	flip := func(i int) []byte {
		c := bytes.Clone(sealed)
		c[i] ^= 0x01
		return c
	}

	tests := []struct {
		name     string
		sealed   []byte
		password string
		context  []byte
		want     error
	}{
		{"wrong password", sealed, "wrong", testContext, ErrDecrypt},
		{"wrong context", sealed, "correct", []byte("seed/eth/sepolia"), ErrDecrypt},
		{"tampered salt", flip(1), "correct", testContext, ErrDecrypt},
		{"tampered memory", flip(1 + SaltSize), "correct", testContext, ErrDecrypt},
		{"tampered ciphertext", flip(len(sealed) - 1), "correct", testContext, ErrDecrypt},
		{"bad version", flip(0), "correct", testContext, ErrSealedVersion},
		{"truncated", sealed[:headerSize+10], "correct", testContext, ErrSealedTooShort},
		{"empty", nil, "correct", testContext, ErrSealedTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(tt.sealed, []byte(tt.password), tt.context); !errors.Is(err, tt.want) {
				t.Errorf("Open() = %v, want %v", err, tt.want)
			}
		})
	}
}
