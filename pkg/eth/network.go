// Package eth implements the Ethereum transaction model: construction,
// EIP-155 signing, status tracking, fee accounting and the RLP wire forms.
package eth

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strings"
)

// Gas constants.
const (
	// DefaultGasLimit is the fixed gas cost of a plain ether transfer.
	DefaultGasLimit uint64 = 21000

	// GasLimitMarginPercent is added to estimated gas limits of anything
	// other than a plain transfer.
	GasLimitMarginPercent = 20
)

// ErrUnknownNetwork is returned for an unrecognized network name.
var ErrUnknownNetwork = errors.New("unknown ethereum network")

// Network identifies an Ethereum chain by its EIP-155 chain id.
type Network struct {
	Name    string
	ChainID uint64
}

// Known networks.
var (
	Mainnet = Network{Name: "mainnet", ChainID: 1}
	Goerli  = Network{Name: "goerli", ChainID: 5}
	Sepolia = Network{Name: "sepolia", ChainID: 11155111}
)

// NetworkByName returns the network with the given name.
func NetworkByName(name string) (Network, error) {
	switch strings.ToLower(name) {
	case Mainnet.Name:
		return Mainnet, nil
	case Goerli.Name:
		return Goerli, nil
	case Sepolia.Name:
		return Sepolia, nil
	}
	return Network{}, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
}

func (n Network) String() string {
	return n.Name
}

// ApplyGasLimitMargin adds GasLimitMarginPercent to an estimated gas
// limit. A limit equal to DefaultGasLimit is a plain transfer with a
// known cost and is returned unchanged. The result saturates at
// math.MaxUint64.
func ApplyGasLimitMargin(limit uint64) uint64 {
	if limit == DefaultGasLimit {
		return limit
	}
	hi, lo := bits.Mul64(limit, 100+GasLimitMarginPercent)
	if hi >= 100 {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, 100)
	return q
}
