package eth

import (
	"bytes"
	"fmt"

	"github.com/Klingon-tech/walletkit-core/pkg/crypto"
	"github.com/Klingon-tech/walletkit-core/pkg/types"
	"github.com/Klingon-tech/walletkit-core/pkg/uint256"
)

// Transaction is a legacy (pre-EIP-2718) Ethereum transaction.
//
// The hash and source address are derived artifacts: the hash is set by
// encoding in FormSigned and the source by recovering the signer. Both
// are restored verbatim only when decoding FormArchive.
type Transaction struct {
	Target   types.Address
	Amount   uint256.UInt256 // wei
	GasPrice uint256.UInt256 // wei per gas
	GasLimit uint64
	Data     []byte
	Nonce    uint64

	source    types.Address
	chainID   uint64
	signature VRS
	hash      types.Hash
	status    Status
}

// NewTransaction creates an unsigned transaction with status Unknown.
func NewTransaction(source, target types.Address, amount, gasPrice uint256.UInt256, gasLimit uint64, data []byte, nonce uint64) *Transaction {
	return &Transaction{
		Target:   target,
		Amount:   amount,
		GasPrice: gasPrice,
		GasLimit: gasLimit,
		Data:     bytes.Clone(data),
		Nonce:    nonce,
		source:   source,
		status:   Unknown{},
	}
}

// Source returns the sending address.
func (tx *Transaction) Source() types.Address { return tx.source }

// ChainID returns the chain id of the most recent encoding.
func (tx *Transaction) ChainID() uint64 { return tx.chainID }

// Hash returns the content hash, zero until the transaction has been
// encoded in signed form.
func (tx *Transaction) Hash() types.Hash { return tx.hash }

// Signature returns the installed signature; V is zero when unsigned.
func (tx *Transaction) Signature() VRS { return tx.signature }

// Status returns the lifecycle status.
func (tx *Transaction) Status() Status { return tx.status }

// HasAddress reports whether addr is the source or the target.
func (tx *Transaction) HasAddress(addr types.Address) bool {
	return tx.source == addr || tx.Target == addr
}

// IsSigned reports whether a signature is installed.
func (tx *Transaction) IsSigned() bool {
	return !tx.signature.IsZero()
}

// Sign installs sig and resets the status to Unknown. sig.V must be 27 or
// 28; EIP-155 replay protection is applied at encoding time.
func (tx *Transaction) Sign(sig VRS) {
	if sig.V != 27 && sig.V != 28 {
		panic(fmt.Sprintf("eth: signature recovery value must be 27 or 28, got %d", sig.V))
	}
	tx.signature = sig
	tx.status = Unknown{}
}

// SigningHash returns the Keccak-256 digest of the unsigned EIP-155
// encoding for network.
func (tx *Transaction) SigningHash(network Network) types.Hash {
	return crypto.Keccak256(tx.Encode(network, FormUnsigned))
}

// SignWith signs the transaction for network with key, installs the
// signature and computes the hash and source address.
func (tx *Transaction) SignWith(network Network, key *crypto.PrivateKey) error {
	sig, err := Sign(key, tx.SigningHash(network), SignatureVRS)
	if err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}
	tx.Sign(sig.(VRS))
	tx.Encode(network, FormSigned)
	tx.source = tx.ExtractSourceAddress(network)
	return nil
}

// ExtractSourceAddress recovers the signer's address from the signature
// over the unsigned encoding. It returns the empty address if the
// transaction is unsigned or the signature does not recover.
func (tx *Transaction) ExtractSourceAddress(network Network) types.Address {
	if !tx.IsSigned() {
		return types.EmptyAddress
	}
	addr, err := RecoverAddress(tx.signature, tx.SigningHash(network))
	if err != nil {
		return types.EmptyAddress
	}
	return addr
}

// SetStatus moves the transaction to s. Allowed moves are Unknown to any
// other status, and Pending to Included or Errored. Setting the current
// status again is a no-op.
func (tx *Transaction) SetStatus(s Status) error {
	if s == nil {
		return fmt.Errorf("%w: nil status", ErrStatusTransition)
	}
	if tx.status == s {
		return nil
	}
	if !canTransition(tx.status, s) {
		return fmt.Errorf("%w: %s to %s", ErrStatusTransition, tx.status.Kind(), s.Kind())
	}
	tx.status = s
	return nil
}

// IsIncluded reports whether the transaction is in a block.
func (tx *Transaction) IsIncluded() bool { return tx.status.Kind() == StatusIncluded }

// IsSubmitted reports whether the transaction has left status Unknown.
func (tx *Transaction) IsSubmitted() bool { return tx.status.Kind() != StatusUnknown }

// IsErrored reports whether the network rejected the transaction.
func (tx *Transaction) IsErrored() bool { return tx.status.Kind() == StatusErrored }

// GasUsed returns the confirmed gas consumption, if included.
func (tx *Transaction) GasUsed() (uint64, bool) {
	if inc, ok := tx.status.(Included); ok {
		return inc.GasUsed, true
	}
	return 0, false
}

// FeeBasis is the gas quantity and price a fee is computed from.
type FeeBasis struct {
	GasLimit uint64
	GasPrice uint256.UInt256
}

// Fee returns GasLimit * GasPrice, or zero and true on overflow.
func (f FeeBasis) Fee() (uint256.UInt256, bool) {
	return uint256.MulOverflow(f.GasPrice, uint256.New(f.GasLimit))
}

// FeeBasisEstimated returns the fee basis from the gas limit.
func (tx *Transaction) FeeBasisEstimated() FeeBasis {
	return FeeBasis{GasLimit: tx.GasLimit, GasPrice: tx.GasPrice}
}

// FeeBasisConfirmed returns the fee basis from the consumed gas; ok is
// false unless the transaction is included.
func (tx *Transaction) FeeBasisConfirmed() (FeeBasis, bool) {
	used, ok := tx.GasUsed()
	if !ok {
		return FeeBasis{}, false
	}
	return FeeBasis{GasLimit: used, GasPrice: tx.GasPrice}, true
}

// FeeBasis returns the confirmed fee basis when available, the estimate
// otherwise.
func (tx *Transaction) FeeBasis() FeeBasis {
	if fb, ok := tx.FeeBasisConfirmed(); ok {
		return fb
	}
	return tx.FeeBasisEstimated()
}

// Fee returns the fee in wei with an overflow flag.
func (tx *Transaction) Fee() (uint256.UInt256, bool) {
	return tx.FeeBasis().Fee()
}

// Total returns amount plus fee with an overflow flag.
func (tx *Transaction) Total() (uint256.UInt256, bool) {
	fee, overflow := tx.Fee()
	if overflow {
		return uint256.Zero, true
	}
	return uint256.AddOverflow(tx.Amount, fee)
}

// ApplyGasLimitMargin sets GasLimit to the margined value of limit.
func (tx *Transaction) ApplyGasLimitMargin(limit uint64) uint64 {
	tx.GasLimit = ApplyGasLimitMargin(limit)
	return tx.GasLimit
}

// Compare orders transactions: included ones by block number then index,
// included before not included, and the rest by nonce.
func Compare(t1, t2 *Transaction) types.Comparison {
	switch {
	case t1 == t2:
		return types.EQ
	case t2 == nil:
		return types.LT
	case t1 == nil:
		return types.GT
	}

	i1, ok1 := t1.status.(Included)
	i2, ok2 := t2.status.(Included)
	switch {
	case ok1 && ok2:
		if c := compareUint64(i1.BlockNumber, i2.BlockNumber); c != types.EQ {
			return c
		}
		return compareUint64(i1.TransactionIndex, i2.TransactionIndex)
	case ok1:
		return types.LT
	case ok2:
		return types.GT
	}
	return compareUint64(t1.Nonce, t2.Nonce)
}

func compareUint64(a, b uint64) types.Comparison {
	switch {
	case a < b:
		return types.LT
	case a > b:
		return types.GT
	}
	return types.EQ
}
