package eth

import (
	"encoding/hex"
	"testing"
)

// FuzzDecodeTransaction checks that arbitrary bytes never panic the
// decoder in any form.
func FuzzDecodeTransaction(f *testing.F) {
	signed, _ := hex.DecodeString(eip155Signed)
	unsigned, _ := hex.DecodeString(eip155Unsigned)
	f.Add(signed)
	f.Add(unsigned)
	f.Add([]byte{0xc0})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		for _, form := range []Form{FormUnsigned, FormSigned, FormArchive} {
			tx, err := DecodeTransaction(data, Mainnet, form)
			if err != nil {
				continue
			}
			tx.Encode(Mainnet, form)
			tx.Fee()
		}
	})
}
