package eth

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/Klingon-tech/walletkit-core/pkg/rlp"
	"github.com/Klingon-tech/walletkit-core/pkg/types"
	"github.com/Klingon-tech/walletkit-core/pkg/uint256"
)

// Example transaction from EIP-155.
const (
	eip155Unsigned    = "ec098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a764000080018080"
	eip155SigningHash = "daf5a779ae972f972197303d7b574746c7ef83eadac0f2791ad23db92e4c8e53"
	eip155Signed      = "f86c098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a76400008025a028ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276a067cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83"
	eip155Sender      = "0x9d8a62f656a8d1615c1294fd71e9cfb3e4855a4f"
	eip155Key         = "4646464646464646464646464646464646464646464646464646464646464646"
)

func eip155Tx(t *testing.T) *Transaction {
	return NewTransaction(types.EmptyAddress, mustAddress(t, "0x3535353535353535353535353535353535353535"),
		oneEther(), uint256.New(20_000_000_000), DefaultGasLimit, nil, 9)
}

func TestEncode_Unsigned(t *testing.T) {
	tx := eip155Tx(t)
	if got := hex.EncodeToString(tx.Encode(Mainnet, FormUnsigned)); got != eip155Unsigned {
		t.Errorf("unsigned encoding = %s, want %s", got, eip155Unsigned)
	}
	if got := hex.EncodeToString(tx.SigningHash(Mainnet).Bytes()); got != eip155SigningHash {
		t.Errorf("SigningHash() = %s, want %s", got, eip155SigningHash)
	}
	if !tx.Hash().IsZero() {
		t.Error("unsigned encoding must not set the hash")
	}
}

func TestDecode_SignedVector(t *testing.T) {
	raw, _ := hex.DecodeString(eip155Signed)
	tx, err := DecodeTransaction(raw, Mainnet, FormSigned)
	if err != nil {
		t.Fatalf("DecodeTransaction() error: %v", err)
	}
	if tx.Nonce != 9 || tx.GasLimit != DefaultGasLimit {
		t.Errorf("nonce/gas = %d/%d", tx.Nonce, tx.GasLimit)
	}
	if tx.GasPrice != uint256.New(20_000_000_000) || tx.Amount != oneEther() {
		t.Errorf("price/amount = %s/%s", tx.GasPrice, tx.Amount)
	}
	if tx.Signature().V != 27 {
		t.Errorf("V = %d, want 27", tx.Signature().V)
	}
	if got := tx.Source(); got != mustAddress(t, eip155Sender) {
		t.Errorf("Source() = %s, want %s", got, eip155Sender)
	}
	if tx.Hash().IsZero() {
		t.Error("signed decode must set the hash")
	}
	if !bytes.Equal(tx.Encode(Mainnet, FormSigned), raw) {
		t.Error("re-encoding the decoded transaction changed the bytes")
	}
}

func TestSignedRoundTrip(t *testing.T) {
	key := mustKey(t, eip155Key)
	tx := eip155Tx(t)
	if err := tx.SignWith(Mainnet, key); err != nil {
		t.Fatalf("SignWith() error: %v", err)
	}
	if tx.Source() != mustAddress(t, eip155Sender) {
		t.Errorf("Source() = %s, want %s", tx.Source(), eip155Sender)
	}

	raw := tx.Encode(Mainnet, FormSigned)
	if raw[0] != 0xf8 || raw[1] != 0x6c {
		t.Errorf("signed encoding header = %x, want f86c", raw[:2])
	}
	got, err := DecodeTransaction(raw, Mainnet, FormSigned)
	if err != nil {
		t.Fatalf("DecodeTransaction() error: %v", err)
	}
	if got.Signature() != tx.Signature() {
		t.Error("signature did not round-trip")
	}
	if got.Hash() != tx.Hash() {
		t.Errorf("Hash() = %s, want %s", got.Hash(), tx.Hash())
	}
	if got.Source() != tx.ExtractSourceAddress(Mainnet) {
		t.Errorf("decoded source %s differs from extracted source", got.Source())
	}
}

func TestUnsignedRoundTrip(t *testing.T) {
	tx := NewTransaction(types.EmptyAddress, mustAddress(t, "0x3535353535353535353535353535353535353535"),
		uint256.New(12345), uint256.New(7), 60_000, []byte{0xde, 0xad, 0xbe, 0xef}, 1<<40)
	got, err := DecodeTransaction(tx.Encode(Sepolia, FormUnsigned), Sepolia, FormUnsigned)
	if err != nil {
		t.Fatalf("DecodeTransaction() error: %v", err)
	}
	if got.Nonce != tx.Nonce || got.GasPrice != tx.GasPrice || got.GasLimit != tx.GasLimit ||
		got.Target != tx.Target || got.Amount != tx.Amount || !bytes.Equal(got.Data, tx.Data) {
		t.Errorf("decoded %+v, want %+v", got, tx)
	}
	if got.IsSigned() {
		t.Error("unsigned decode produced a signature")
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	tx := eip155Tx(t)
	if err := tx.SignWith(Goerli, mustKey(t, eip155Key)); err != nil {
		t.Fatalf("SignWith() error: %v", err)
	}
	inc := Included{
		BlockHash:        types.Hash{0xab},
		BlockNumber:      123,
		TransactionIndex: 4,
		BlockTimestamp:   1700000000,
		GasUsed:          21000,
	}
	if err := tx.SetStatus(inc); err != nil {
		t.Fatalf("SetStatus() error: %v", err)
	}

	got, err := DecodeTransaction(tx.Encode(Goerli, FormArchive), Goerli, FormArchive)
	if err != nil {
		t.Fatalf("DecodeTransaction() error: %v", err)
	}
	if got.Hash() != tx.Hash() || got.Source() != tx.Source() {
		t.Error("archive did not restore hash and source")
	}
	if got.Status() != Status(inc) {
		t.Errorf("Status() = %+v, want %+v", got.Status(), inc)
	}
	if used, ok := got.GasUsed(); !ok || used != 21000 {
		t.Errorf("GasUsed() = %d, %v", used, ok)
	}
}

func TestArchiveRoundTrip_Unsigned(t *testing.T) {
	for _, network := range []Network{Mainnet, Goerli} {
		t.Run(network.Name, func(t *testing.T) {
			tx := eip155Tx(t)
			for _, form := range []Form{FormSigned, FormArchive} {
				data := tx.Encode(network, form)
				got, err := DecodeTransaction(data, network, form)
				if err != nil {
					t.Fatalf("DecodeTransaction(form %d) error: %v", form, err)
				}
				if got.IsSigned() {
					t.Errorf("form %d: unsigned transaction decoded as signed", form)
				}
				if !bytes.Equal(got.Encode(network, form), data) {
					t.Errorf("form %d: re-encoding differs", form)
				}
				if !bytes.Equal(got.Encode(network, FormUnsigned), tx.Encode(network, FormUnsigned)) {
					t.Errorf("form %d: unsigned fields not restored", form)
				}
			}
		})
	}
}

func TestDecode_Rejects(t *testing.T) {
	signed, _ := hex.DecodeString(eip155Signed)
	unsigned, _ := hex.DecodeString(eip155Unsigned)
	eightItems := rlp.List(rlp.Uint64(1), rlp.Uint64(1), rlp.Uint64(1), rlp.Bytes(make([]byte, 20)),
		rlp.Uint64(1), rlp.Empty(), rlp.Uint64(1), rlp.Empty()).Encode()
	vIsChainID := bytes.Clone(signed)
	vIsChainID[bytes.Index(signed, []byte{0x80, 0x25, 0xa0})+1] = 0x01
	shortTarget := rlp.List(rlp.Uint64(1), rlp.Uint64(1), rlp.Uint64(1), rlp.Bytes(make([]byte, 19)),
		rlp.Uint64(1), rlp.Empty(), rlp.Uint64(1), rlp.Empty(), rlp.Empty()).Encode()

	tests := []struct {
		name    string
		data    []byte
		network Network
		form    Form
		want    error
	}{
		{"garbage", []byte{0xff, 0x01}, Mainnet, FormSigned, rlp.ErrMalformed},
		{"not a list", []byte{0x83, 1, 2, 3}, Mainnet, FormSigned, rlp.ErrExpectedList},
		{"eight items", eightItems, Mainnet, FormUnsigned, ErrItemCount},
		{"signed as archive", signed, Mainnet, FormArchive, ErrItemCount},
		{"short target", shortTarget, Mainnet, FormUnsigned, ErrFieldSize},
		{"wrong chain signed", signed, Goerli, FormSigned, ErrWrongChain},
		{"wrong chain unsigned", unsigned, Sepolia, FormUnsigned, ErrWrongChain},
		{"chain id v with signature", vIsChainID, Mainnet, FormSigned, ErrFieldSize},
		{"v below chain offset", signed, Sepolia, FormSigned, ErrWrongChain},
		{"truncated", signed[:len(signed)-1], Mainnet, FormSigned, rlp.ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTransaction(tt.data, tt.network, tt.form)
			if !errors.Is(err, tt.want) {
				t.Errorf("DecodeTransaction() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRecoveryValue(t *testing.T) {
	tests := []struct {
		v, chainID, want uint64
	}{
		{37, 1, 27},
		{38, 1, 28},
		{27, 1, 27},
		{28, 5, 28},
		{45, 5, 27},
		{22310257, 11155111, 27},
		{37, 11155111, 0},
	}
	for _, tt := range tests {
		if got := recoveryValue(tt.v, tt.chainID); got != tt.want {
			t.Errorf("recoveryValue(%d, %d) = %d, want %d", tt.v, tt.chainID, got, tt.want)
		}
	}
}
