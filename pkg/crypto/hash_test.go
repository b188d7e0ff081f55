package crypto

import (
	"encoding/hex"
	"testing"
)

func TestKeccak256(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"empty input", []byte{}, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{"hello", []byte("hello"), "1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Keccak256(tt.input).String(); got != tt.want {
				t.Errorf("Keccak256(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestKeccak256_Concatenates(t *testing.T) {
	if Keccak256([]byte("hel"), []byte("lo")) != Keccak256([]byte("hello")) {
		t.Error("Keccak256 over parts should equal Keccak256 over the whole")
	}
}

func TestSHA256(t *testing.T) {
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := SHA256([]byte("hello")).String(); got != want {
		t.Errorf("SHA256(hello) = %s, want %s", got, want)
	}
}

func TestDoubleSHA256(t *testing.T) {
	want := "5df6e0e2761359d30a8275058e299fcc0381534545f55cf43e41983f5d4c9456"
	if got := DoubleSHA256(nil).String(); got != want {
		t.Errorf("DoubleSHA256(empty) = %s, want %s", got, want)
	}
}

func TestHash160(t *testing.T) {
	// Compressed public key of the private key 1.
	pub, _ := hex.DecodeString("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	got := Hash160(pub)
	if hex.EncodeToString(got[:]) != "751e76e8199196d454941c45d1b3a323f1433bd6" {
		t.Errorf("Hash160() = %x", got)
	}
}

func TestBlake2b256(t *testing.T) {
	want := "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8"
	if got := Blake2b256().String(); got != want {
		t.Errorf("Blake2b256(empty) = %s, want %s", got, want)
	}
}

func TestChecksum(t *testing.T) {
	want := "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"
	if got := Checksum([]byte{}).String(); got != want {
		t.Errorf("Checksum(empty) = %s, want %s", got, want)
	}
}

func TestAddressFromPublicKey(t *testing.T) {
	priv, _ := hex.DecodeString("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	key, err := PrivateKeyFromBytes(priv)
	if err != nil {
		t.Fatalf("PrivateKeyFromBytes() error: %v", err)
	}
	addr := AddressFromPublicKey(key.PublicKey())
	if got := addr.ChecksumString(); got != "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23" {
		t.Errorf("AddressFromPublicKey() = %s", got)
	}
	if AddressFromPublicKey(key.PublicKey()[1:]) != addr {
		t.Error("raw 64-byte key should derive the same address")
	}
}
