package tezos

import (
	"encoding/hex"
	"testing"
)

// FuzzParseOperationList checks that arbitrary bytes never panic the
// decoder and that anything it accepts forges back to the same bytes.
func FuzzParseOperationList(f *testing.F) {
	ops, _ := hex.DecodeString(forgedReveal + forgedTransfer)
	f.Add(append(make([]byte, 32), ops...))
	f.Add(make([]byte, 32))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		l, err := ParseOperationList(data)
		if err != nil {
			return
		}
		if got := l.Forge(); string(got) != string(data) {
			t.Fatalf("Forge(Parse(x)) = %x, want %x", got, data)
		}
	})
}
