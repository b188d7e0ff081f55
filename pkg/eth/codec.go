package eth

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/walletkit-core/pkg/crypto"
	"github.com/Klingon-tech/walletkit-core/pkg/rlp"
	"github.com/Klingon-tech/walletkit-core/pkg/types"
	"github.com/Klingon-tech/walletkit-core/pkg/uint256"
)

// Codec errors. These reject untrusted bytes before field decoding.
var (
	ErrItemCount  = errors.New("unexpected transaction item count")
	ErrFieldType  = errors.New("transaction field has wrong type")
	ErrFieldSize  = errors.New("transaction field has wrong size")
	ErrWrongChain = errors.New("transaction encoded for a different chain")
)

// Form selects an RLP layout for a transaction.
type Form uint8

const (
	// FormUnsigned is the EIP-155 signing payload: the six fields followed
	// by chain id and two empty items.
	FormUnsigned Form = iota
	// FormSigned is the broadcast encoding: the six fields followed by the
	// replay-protected v, r and s.
	FormSigned
	// FormArchive is FormSigned plus source, hash and status, for local
	// persistence.
	FormArchive
)

func (f Form) String() string {
	switch f {
	case FormUnsigned:
		return "unsigned"
	case FormSigned:
		return "signed"
	case FormArchive:
		return "archive"
	}
	return fmt.Sprintf("Form(%d)", f)
}

// itemCount is the number of list items in the form.
func (f Form) itemCount() int {
	if f == FormArchive {
		return 12
	}
	return 9
}

// Encode returns the RLP encoding of tx in the given form. It records the
// network's chain id on tx, and encoding in FormSigned sets tx's hash.
// An unsigned tx keeps the unsigned v, r and s in every form.
func (tx *Transaction) Encode(network Network, form Form) []byte {
	tx.chainID = network.ChainID

	items := make([]rlp.Item, 0, form.itemCount())
	items = append(items,
		rlp.Uint64(tx.Nonce),
		rlp.UInt256(tx.GasPrice),
		rlp.Uint64(tx.GasLimit),
		rlp.Bytes(tx.Target[:]),
		rlp.UInt256(tx.Amount),
		rlp.Bytes(tx.Data),
	)

	switch form {
	case FormUnsigned:
		items = append(items, rlp.Uint64(tx.chainID), rlp.Empty(), rlp.Empty())
	case FormSigned, FormArchive:
		if tx.IsSigned() {
			items = append(items,
				rlp.Uint64(uint64(tx.signature.V)+8+2*tx.chainID),
				rlp.Bytes(trimLeadingZeros(tx.signature.R[:])),
				rlp.Bytes(trimLeadingZeros(tx.signature.S[:])),
			)
		} else {
			items = append(items, rlp.Uint64(tx.chainID), rlp.Empty(), rlp.Empty())
		}
		if form == FormArchive {
			items = append(items,
				rlp.Bytes(tx.source[:]),
				rlp.Bytes(tx.hash[:]),
				EncodeStatus(tx.status),
			)
		}
	default:
		panic(fmt.Sprintf("eth: unknown encoding form %d", form))
	}

	out := rlp.List(items...).Encode()
	if form == FormSigned {
		tx.hash = crypto.Keccak256(out)
	}
	return out
}

// DecodeTransaction parses data as a transaction in the given form.
//
// Structure is validated first so that malformed bytes return an error.
// A FormSigned decode computes the hash and recovers the source address;
// a FormArchive decode restores them verbatim.
func DecodeTransaction(data []byte, network Network, form Form) (*Transaction, error) {
	item, err := rlp.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	items, err := item.Items()
	if err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	if err := checkStructure(items, network, form); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}

	tx := decodeItems(items, network, form)
	if form == FormSigned {
		tx.hash = crypto.Keccak256(data)
		tx.source = tx.ExtractSourceAddress(network)
	}
	return tx, nil
}

// checkStructure validates item count, field types and sizes, and that
// any signature belongs to network.
func checkStructure(items []rlp.Item, network Network, form Form) error {
	if len(items) != form.itemCount() {
		return fmt.Errorf("%w: %s form has %d items, got %d", ErrItemCount, form, form.itemCount(), len(items))
	}
	for i, it := range items[:9] {
		if it.IsList() {
			return fmt.Errorf("%w: item %d is a list", ErrFieldType, i)
		}
	}
	if _, err := items[0].AsUint64(); err != nil {
		return fmt.Errorf("nonce: %w", err)
	}
	if _, err := items[1].AsUInt256(); err != nil {
		return fmt.Errorf("gas price: %w", err)
	}
	if _, err := items[2].AsUint64(); err != nil {
		return fmt.Errorf("gas limit: %w", err)
	}
	if items[3].Len() != types.AddressSize {
		return fmt.Errorf("%w: target is %d bytes", ErrFieldSize, items[3].Len())
	}
	if _, err := items[4].AsUInt256(); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	v, err := items[6].AsUint64()
	if err != nil {
		return fmt.Errorf("v: %w", err)
	}
	if items[7].Len() > 32 || items[8].Len() > 32 {
		return fmt.Errorf("%w: r or s exceeds 32 bytes", ErrFieldSize)
	}

	switch {
	case form == FormUnsigned && v != network.ChainID:
		return fmt.Errorf("%w: chain id %d, want %d", ErrWrongChain, v, network.ChainID)
	case v == network.ChainID:
		if items[7].Len() != 0 || items[8].Len() != 0 {
			return fmt.Errorf("%w: unsigned transaction carries r or s", ErrFieldSize)
		}
	default:
		if rv := recoveryValue(v, network.ChainID); rv != 27 && rv != 28 {
			return fmt.Errorf("%w: v=%d for chain id %d", ErrWrongChain, v, network.ChainID)
		}
	}
	if form == FormUnsigned {
		return nil
	}

	if form == FormArchive {
		if items[9].IsList() || items[9].Len() != types.AddressSize {
			return fmt.Errorf("%w: source address", ErrFieldSize)
		}
		if items[10].IsList() || items[10].Len() != types.HashSize {
			return fmt.Errorf("%w: hash", ErrFieldSize)
		}
		if _, err := DecodeStatus(items[11]); err != nil {
			return err
		}
	}
	return nil
}

// recoveryValue undoes EIP-155 replay protection. Values up to 30 predate
// EIP-155 and are returned unchanged.
func recoveryValue(v, chainID uint64) uint64 {
	if v > 30 {
		if v < 8+2*chainID {
			return 0
		}
		return v - 8 - 2*chainID
	}
	return v
}

// decodeItems builds a transaction from items that passed
// checkStructure. Any failure here means the structure check and the
// decoder disagree, and panics.
func decodeItems(items []rlp.Item, network Network, form Form) *Transaction {
	tx := &Transaction{
		Nonce:    must(items[0].AsUint64()),
		GasPrice: must(items[1].AsUInt256()),
		GasLimit: must(items[2].AsUint64()),
		Amount:   must(items[4].AsUInt256()),
		chainID:  network.ChainID,
		status:   Unknown{},
	}
	copy(tx.Target[:], must(items[3].Bytes()))
	if data := must(items[5].Bytes()); len(data) > 0 {
		tx.Data = append([]byte(nil), data...)
	}

	if v := must(items[6].AsUint64()); v != network.ChainID {
		tx.signature.V = byte(recoveryValue(v, network.ChainID))
		r := must(items[7].Bytes())
		s := must(items[8].Bytes())
		copy(tx.signature.R[32-len(r):], r)
		copy(tx.signature.S[32-len(s):], s)
	}

	if form == FormArchive {
		copy(tx.source[:], must(items[9].Bytes()))
		copy(tx.hash[:], must(items[10].Bytes()))
		tx.status = must(DecodeStatus(items[11]))
	}
	return tx
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("eth: transaction decode invariant violated: %v", err))
	}
	return v
}

func trimLeadingZeros(b []byte) []byte {
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	return b
}

// RawHex returns the 0x-prefixed hex of the signed encoding, as submitted
// through eth_sendRawTransaction.
func (tx *Transaction) RawHex(network Network) string {
	return fmt.Sprintf("0x%x", tx.Encode(network, FormSigned))
}

// feeString renders a fee for display; overflow renders as "overflow".
func feeString(v uint256.UInt256, overflow bool) string {
	if overflow {
		return "overflow"
	}
	return FormatUnits(v, Ether)
}

// Summary returns a one-line description of tx for logs.
func (tx *Transaction) Summary() string {
	fee, overflow := tx.Fee()
	return fmt.Sprintf("hash=%s nonce=%d target=%s amount=%s ETH fee=%s ETH status=%s",
		tx.hash.Hex(), tx.Nonce, tx.Target.ChecksumString(),
		FormatUnits(tx.Amount, Ether), feeString(fee, overflow), tx.status.Kind())
}
