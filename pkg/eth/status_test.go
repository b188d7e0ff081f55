package eth

import (
	"errors"
	"testing"

	"github.com/Klingon-tech/walletkit-core/pkg/rlp"
	"github.com/Klingon-tech/walletkit-core/pkg/types"
)

func TestStatusEncoding_RoundTrip(t *testing.T) {
	statuses := []Status{
		Unknown{},
		Pending{},
		Included{BlockHash: types.Hash{1, 2, 3}, BlockNumber: 99, TransactionIndex: 7, BlockTimestamp: 1600000000, GasUsed: 42000},
		Errored{Reason: "replacement transaction underpriced"},
	}
	for _, s := range statuses {
		t.Run(s.Kind().String(), func(t *testing.T) {
			item, err := rlp.Decode(EncodeStatus(s).Encode())
			if err != nil {
				t.Fatalf("rlp.Decode() error: %v", err)
			}
			got, err := DecodeStatus(item)
			if err != nil {
				t.Fatalf("DecodeStatus() error: %v", err)
			}
			if got != s {
				t.Errorf("DecodeStatus() = %+v, want %+v", got, s)
			}
		})
	}
}

func TestDecodeStatus_Rejects(t *testing.T) {
	items := map[string]rlp.Item{
		"string":          rlp.String("x"),
		"empty list":      rlp.List(),
		"unknown kind":    rlp.List(rlp.Uint64(9)),
		"pending fields":  rlp.List(rlp.Uint64(uint64(StatusPending)), rlp.Empty()),
		"short included":  rlp.List(rlp.Uint64(uint64(StatusIncluded)), rlp.Bytes(make([]byte, 32))),
		"bad block hash":  rlp.List(rlp.Uint64(uint64(StatusIncluded)), rlp.Bytes(make([]byte, 31)), rlp.Empty(), rlp.Empty(), rlp.Empty(), rlp.Empty()),
		"errored no text": rlp.List(rlp.Uint64(uint64(StatusErrored))),
	}
	for name, item := range items {
		if _, err := DecodeStatus(item); !errors.Is(err, ErrStatusEncoding) {
			t.Errorf("%s: error = %v, want ErrStatusEncoding", name, err)
		}
	}
}
