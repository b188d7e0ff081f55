package eth

import (
	"bytes"

	"github.com/Klingon-tech/walletkit-core/pkg/types"
	"github.com/Klingon-tech/walletkit-core/pkg/uint256"
)

// transferSelector is the 4-byte selector of transfer(address,uint256).
var transferSelector = [4]byte{0xa9, 0x05, 0x9c, 0xbb}

const transferCallSize = 4 + 32 + 32

// TokenTransfer is a decoded ERC-20 transfer call.
type TokenTransfer struct {
	To     types.Address
	Amount uint256.UInt256
}

// EncodeTokenTransfer returns the call data for transfer(to, amount).
func EncodeTokenTransfer(to types.Address, amount uint256.UInt256) []byte {
	out := make([]byte, transferCallSize)
	copy(out, transferSelector[:])
	copy(out[4+12:36], to[:])
	word := amount.Bytes32()
	copy(out[36:], word[:])
	return out
}

// ParseTokenTransfer recognizes call data for transfer(address,uint256).
func ParseTokenTransfer(data []byte) (TokenTransfer, bool) {
	if len(data) != transferCallSize || !bytes.Equal(data[:4], transferSelector[:]) {
		return TokenTransfer{}, false
	}
	// The address word must be zero-padded.
	if !bytes.Equal(data[4:16], make([]byte, 12)) {
		return TokenTransfer{}, false
	}
	var tt TokenTransfer
	copy(tt.To[:], data[16:36])
	tt.Amount, _ = uint256.FromBytes(data[36:])
	return tt, true
}

// NewTokenTransfer creates a transaction calling transfer on contract.
// The ether amount is zero; the token amount travels in the call data.
func NewTokenTransfer(source, contract, to types.Address, amount, gasPrice uint256.UInt256, gasLimit, nonce uint64) *Transaction {
	return NewTransaction(source, contract, uint256.Zero, gasPrice, gasLimit, EncodeTokenTransfer(to, amount), nonce)
}

// TokenTransfer returns the ERC-20 transfer encoded in tx's data, if any.
func (tx *Transaction) TokenTransfer() (TokenTransfer, bool) {
	return ParseTokenTransfer(tx.Data)
}
