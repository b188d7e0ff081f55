package eth

import (
	"bytes"
	"encoding/hex"
	"errors"
	"sync"
	"testing"

	"github.com/Klingon-tech/walletkit-core/pkg/crypto"
	"github.com/Klingon-tech/walletkit-core/pkg/types"
	"github.com/Klingon-tech/walletkit-core/pkg/uint256"
)

func mustAddress(t *testing.T, s string) types.Address {
	t.Helper()
	a, err := types.ParseAddress(s)
	if err != nil {
		t.Fatalf("ParseAddress(%q) error: %v", s, err)
	}
	return a
}

func mustKey(t *testing.T, s string) *crypto.PrivateKey {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad key hex: %v", err)
	}
	k, err := crypto.PrivateKeyFromBytes(b)
	if err != nil {
		t.Fatalf("PrivateKeyFromBytes() error: %v", err)
	}
	return k
}

func oneEther() uint256.UInt256 {
	v, _ := uint256.MulOverflow(uint256.New(1_000_000_000), uint256.New(1_000_000_000))
	return v
}

func TestApplyGasLimitMargin(t *testing.T) {
	tests := []struct {
		in, want uint64
	}{
		{DefaultGasLimit, DefaultGasLimit},
		{21001, 25201},
		{100_000, 120_000},
		{0, 0},
		{1 << 63, 1<<63 + 1<<63/5},
		{^uint64(0), ^uint64(0)},
	}
	for _, tt := range tests {
		if got := ApplyGasLimitMargin(tt.in); got != tt.want {
			t.Errorf("ApplyGasLimitMargin(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNewTransaction_Defaults(t *testing.T) {
	src := mustAddress(t, "0x2c7536e3605d9c16a7a3d7b1898e529396a65c23")
	tx := NewTransaction(src, types.EmptyAddress, oneEther(), uint256.New(1), DefaultGasLimit, nil, 3)

	if tx.IsSigned() {
		t.Error("new transaction should be unsigned")
	}
	if tx.Status().Kind() != StatusUnknown {
		t.Errorf("Status() = %s, want unknown", tx.Status().Kind())
	}
	if !tx.Hash().IsZero() {
		t.Error("new transaction should have no hash")
	}
	if got := tx.ExtractSourceAddress(Mainnet); !got.IsZero() {
		t.Errorf("ExtractSourceAddress() on unsigned = %s, want empty", got)
	}
	if !tx.HasAddress(src) {
		t.Error("HasAddress(source) = false")
	}
}

func TestSign_PanicsOnBadV(t *testing.T) {
	tx := NewTransaction(types.EmptyAddress, types.EmptyAddress, uint256.Zero, uint256.Zero, DefaultGasLimit, nil, 0)
	for _, v := range []byte{0, 1, 26, 29, 37} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Sign(V=%d) did not panic", v)
				}
			}()
			tx.Sign(VRS{V: v})
		}()
	}
}

func TestSign_ResetsStatus(t *testing.T) {
	tx := NewTransaction(types.EmptyAddress, types.EmptyAddress, uint256.Zero, uint256.Zero, DefaultGasLimit, nil, 0)
	if err := tx.SetStatus(Pending{}); err != nil {
		t.Fatalf("SetStatus() error: %v", err)
	}
	tx.Sign(VRS{V: 27, R: [32]byte{1}, S: [32]byte{2}})
	if tx.Status().Kind() != StatusUnknown {
		t.Errorf("status after Sign = %s, want unknown", tx.Status().Kind())
	}
	if !tx.IsSigned() {
		t.Error("IsSigned() = false after Sign")
	}
}

func TestSignWith_RecoversSource(t *testing.T) {
	key := mustKey(t, "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	want := mustAddress(t, "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23")

	tx := NewTransaction(want, mustAddress(t, "0x3535353535353535353535353535353535353535"),
		oneEther(), uint256.New(20_000_000_000), DefaultGasLimit, nil, 0)
	if err := tx.SignWith(Mainnet, key); err != nil {
		t.Fatalf("SignWith() error: %v", err)
	}
	if tx.Source() != want {
		t.Errorf("Source() = %s, want %s", tx.Source(), want)
	}
	if tx.Hash().IsZero() {
		t.Error("hash not set after signing")
	}
	if tx.ChainID() != 1 {
		t.Errorf("ChainID() = %d, want 1", tx.ChainID())
	}
	if got := tx.ExtractSourceAddress(Sepolia); got == want {
		t.Error("signature recovered the signer under a different chain id")
	}
}

func TestSetStatus_Transitions(t *testing.T) {
	included := Included{BlockNumber: 10, TransactionIndex: 2, GasUsed: 21000}

	tests := []struct {
		name    string
		steps   []Status
		wantErr bool
	}{
		{"unknown to pending", []Status{Pending{}}, false},
		{"pending to included", []Status{Pending{}, included}, false},
		{"pending to errored", []Status{Pending{}, Errored{Reason: "nonce too low"}}, false},
		{"unknown to included", []Status{included}, false},
		{"repeat pending", []Status{Pending{}, Pending{}}, false},
		{"included to pending", []Status{included, Pending{}}, true},
		{"errored to included", []Status{Errored{}, included}, true},
		{"pending to unknown", []Status{Pending{}, Unknown{}}, true},
		{"nil", []Status{nil}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := NewTransaction(types.EmptyAddress, types.EmptyAddress, uint256.Zero, uint256.Zero, DefaultGasLimit, nil, 0)
			var err error
			for _, s := range tt.steps {
				if err = tx.SetStatus(s); err != nil {
					break
				}
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetStatus() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrStatusTransition) {
				t.Errorf("error = %v, want ErrStatusTransition", err)
			}
		})
	}
}

func TestFee_PrefersConfirmed(t *testing.T) {
	gwei := uint256.New(1_000_000_000)
	tx := NewTransaction(types.EmptyAddress, types.EmptyAddress, oneEther(), gwei, 100_000, nil, 0)

	fee, overflow := tx.Fee()
	if overflow || fee != uint256.New(100_000*1_000_000_000) {
		t.Errorf("estimated Fee() = %s, %v", fee, overflow)
	}

	if err := tx.SetStatus(Included{BlockNumber: 1, GasUsed: 50_000}); err != nil {
		t.Fatalf("SetStatus() error: %v", err)
	}
	fee, overflow = tx.Fee()
	if overflow || fee != uint256.New(50_000*1_000_000_000) {
		t.Errorf("confirmed Fee() = %s, %v", fee, overflow)
	}
	if fb := tx.FeeBasisEstimated(); fb.GasLimit != 100_000 {
		t.Errorf("FeeBasisEstimated().GasLimit = %d", fb.GasLimit)
	}

	total, overflow := tx.Total()
	want, _ := uint256.AddOverflow(oneEther(), fee)
	if overflow || total != want {
		t.Errorf("Total() = %s, %v; want %s", total, overflow, want)
	}
}

func TestFee_Overflow(t *testing.T) {
	max := uint256.UInt256{^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)}
	tx := NewTransaction(types.EmptyAddress, types.EmptyAddress, uint256.Zero, max, 2, nil, 0)
	if fee, overflow := tx.Fee(); !overflow || !fee.IsZero() {
		t.Errorf("Fee() = %s, %v; want zero with overflow", fee, overflow)
	}
	if _, overflow := tx.Total(); !overflow {
		t.Error("Total() did not report overflow")
	}
}

func TestCompare(t *testing.T) {
	mk := func(nonce uint64, st Status) *Transaction {
		tx := NewTransaction(types.EmptyAddress, types.EmptyAddress, uint256.Zero, uint256.Zero, DefaultGasLimit, nil, nonce)
		if st != nil {
			if err := tx.SetStatus(st); err != nil {
				t.Fatalf("SetStatus() error: %v", err)
			}
		}
		return tx
	}
	a := mk(5, Included{BlockNumber: 10, TransactionIndex: 1})
	b := mk(1, Included{BlockNumber: 10, TransactionIndex: 3})
	c := mk(0, Included{BlockNumber: 11})
	d := mk(2, nil)
	e := mk(3, Pending{})

	tests := []struct {
		name   string
		t1, t2 *Transaction
		want   types.Comparison
	}{
		{"same", a, a, types.EQ},
		{"same block by index", a, b, types.LT},
		{"by block number", c, b, types.GT},
		{"included before pending", a, e, types.LT},
		{"pending after included", e, c, types.GT},
		{"unincluded by nonce", d, e, types.LT},
		{"unincluded by nonce reversed", e, d, types.GT},
		{"nil second", a, nil, types.LT},
		{"nil first", nil, a, types.GT},
	}
	for _, tt := range tests {
		if got := Compare(tt.t1, tt.t2); got != tt.want {
			t.Errorf("%s: Compare() = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestNewTransaction_CopiesData(t *testing.T) {
	data := []byte{1, 2, 3}
	tx := NewTransaction(types.EmptyAddress, types.EmptyAddress, uint256.Zero, uint256.Zero, DefaultGasLimit, data, 0)
	data[0] = 9
	if !bytes.Equal(tx.Data, []byte{1, 2, 3}) {
		t.Errorf("Data aliases the caller's slice: %x", tx.Data)
	}
}

func TestSignWith_Concurrent(t *testing.T) {
	key := mustKey(t, "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	var wg sync.WaitGroup
	hashes := make([]types.Hash, 8)
	for i := range hashes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tx := NewTransaction(types.EmptyAddress, types.EmptyAddress, uint256.New(1), uint256.New(1), DefaultGasLimit, nil, 7)
			if err := tx.SignWith(Mainnet, key); err != nil {
				t.Errorf("SignWith() error: %v", err)
				return
			}
			hashes[i] = tx.Hash()
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(hashes); i++ {
		if hashes[i] != hashes[0] {
			t.Fatal("deterministic signing produced different hashes")
		}
	}
}
