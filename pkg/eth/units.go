package eth

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Klingon-tech/walletkit-core/pkg/uint256"
)

// Amount parsing errors.
var (
	ErrNegativeAmount   = errors.New("amount is negative")
	ErrFractionalAmount = errors.New("amount has more decimals than the unit allows")
	ErrAmountOverflow   = errors.New("amount overflows 256 bits")
)

// Unit is a denomination of ether.
type Unit int32

const (
	Wei   Unit = 0
	Gwei  Unit = 9
	Ether Unit = 18
)

// Decimals returns the power of ten between the unit and wei.
func (u Unit) Decimals() int32 {
	return int32(u)
}

func (u Unit) String() string {
	switch u {
	case Wei:
		return "wei"
	case Gwei:
		return "gwei"
	case Ether:
		return "ether"
	}
	return fmt.Sprintf("Unit(%d)", int32(u))
}

// FormatUnits renders a wei amount in unit without trailing zeros.
func FormatUnits(wei uint256.UInt256, unit Unit) string {
	return decimal.NewFromBigInt(wei.Big(), -unit.Decimals()).String()
}

// ParseUnits parses a decimal amount in unit and returns it in wei.
func ParseUnits(s string, unit Unit) (uint256.UInt256, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return uint256.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return uint256.Zero, fmt.Errorf("%w: %s", ErrNegativeAmount, s)
	}
	wei := d.Shift(unit.Decimals())
	if !wei.Equal(wei.Truncate(0)) {
		return uint256.Zero, fmt.Errorf("%w: %s %s", ErrFractionalAmount, s, unit)
	}
	v, overflow := uint256.FromBig(wei.BigInt())
	if overflow {
		return uint256.Zero, fmt.Errorf("%w: %s", ErrAmountOverflow, s)
	}
	return v, nil
}
