package crypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

func TestBase58Check_P2PKH(t *testing.T) {
	h, _ := hex.DecodeString("751e76e8199196d454941c45d1b3a323f1433bd6")
	got := Base58CheckEncode([]byte{0x00}, h)
	if got != "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH" {
		t.Errorf("Base58CheckEncode() = %s", got)
	}

	payload, err := Base58CheckDecodePrefix(got, []byte{0x00})
	if err != nil {
		t.Fatalf("Base58CheckDecodePrefix() error: %v", err)
	}
	if !bytes.Equal(payload, h) {
		t.Errorf("decoded payload = %x, want %x", payload, h)
	}
}

func TestBase58Check_MultiBytePrefix(t *testing.T) {
	prefix := []byte{6, 161, 159}
	payload := bytes.Repeat([]byte{0xab}, 20)
	s := Base58CheckEncode(prefix, payload)

	got, err := Base58CheckDecodePrefix(s, prefix)
	if err != nil {
		t.Fatalf("Base58CheckDecodePrefix() error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload = %x", got)
	}
	if _, err := Base58CheckDecodePrefix(s, []byte{6, 161, 161}); !errors.Is(err, ErrPrefixMismatch) {
		t.Errorf("wrong prefix error = %v, want ErrPrefixMismatch", err)
	}
}

func TestBase58Check_Corrupted(t *testing.T) {
	s := Base58CheckEncode([]byte{0x00}, bytes.Repeat([]byte{1}, 20))
	corrupted := []byte(s)
	if corrupted[5] == '2' {
		corrupted[5] = '3'
	} else {
		corrupted[5] = '2'
	}
	if _, err := Base58CheckDecode(string(corrupted)); err == nil {
		t.Error("Base58CheckDecode() should reject a corrupted string")
	}
	if _, err := Base58CheckDecode("1"); err == nil {
		t.Error("Base58CheckDecode() should reject a too-short string")
	}
}
