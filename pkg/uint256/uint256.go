// Package uint256 implements exact 256-bit and 512-bit unsigned arithmetic.
//
// Every operation that can exceed its result width reports overflow through
// an explicit flag and returns the zero value in that case. Callers must check
// the flag before using the magnitude.
package uint256

import (
	"math/bits"

	"github.com/Klingon-tech/walletkit-core/pkg/types"
)

// UInt256 is a 256-bit unsigned integer stored as four 64-bit words in
// little-endian word order.
type UInt256 [4]uint64

// UInt512 is the widened result of 256-bit addition and multiplication.
type UInt512 [8]uint64

// Zero is the zero value and the fallback returned on overflow.
var Zero = UInt256{}

// New creates a UInt256 from a uint64.
func New(v uint64) UInt256 {
	return UInt256{v, 0, 0, 0}
}

// IsZero returns true if x is zero.
func (x UInt256) IsZero() bool {
	return x == Zero
}

// Uint64 returns the low 64 bits of x without an overflow check.
func (x UInt256) Uint64() uint64 {
	return x[0]
}

// PowerOfTen returns 10^digits. Values of digits >= 20 overflow the
// 64-bit construction path and are reported as overflow.
func PowerOfTen(digits uint8) (UInt256, bool) {
	if digits >= 20 {
		return Zero, true
	}
	v := uint64(1)
	for ; digits > 0; digits-- {
		v *= 10
	}
	return New(v), false
}

// PowerOfTwo returns 2^power.
func PowerOfTwo(power uint8) UInt256 {
	var z UInt256
	z[power/64] = uint64(1) << (power % 64)
	return z
}

// AddOverflow returns x+y mod 2^256 and whether the sum overflowed.
// On overflow the zero value is returned.
func AddOverflow(x, y UInt256) (UInt256, bool) {
	var z UInt256
	var carry uint64
	for i := 0; i < 4; i++ {
		z[i], carry = bits.Add64(x[i], y[i], carry)
	}
	if carry != 0 {
		return Zero, true
	}
	return z, false
}

// Add returns the exact 512-bit sum of x and y.
func Add(x, y UInt256) UInt512 {
	var z UInt512
	var carry uint64
	for i := 0; i < 4; i++ {
		z[i], carry = bits.Add64(x[i], y[i], carry)
	}
	z[4] = carry
	return z
}

// Sub returns |x-y| and whether the logical result is negative.
func Sub(x, y UInt256) (UInt256, bool) {
	if Compare(x, y) == types.LT {
		return sub(y, x), true
	}
	return sub(x, y), false
}

// sub computes x-y for x >= y.
func sub(x, y UInt256) UInt256 {
	var z UInt256
	var borrow uint64
	for i := 0; i < 4; i++ {
		z[i], borrow = bits.Sub64(x[i], y[i], borrow)
	}
	return z
}

// Mul returns the exact 512-bit product of x and y.
func Mul(x, y UInt256) UInt512 {
	var z UInt512
	for i := 0; i < 4; i++ {
		if x[i] == 0 {
			continue
		}
		var carry uint64
		for j := 0; j < 4; j++ {
			hi, lo := bits.Mul64(x[i], y[j])
			var c uint64
			lo, c = bits.Add64(lo, z[i+j], 0)
			hi += c
			lo, c = bits.Add64(lo, carry, 0)
			hi += c
			z[i+j] = lo
			carry = hi
		}
		z[i+4] = carry
	}
	return z
}

// MulOverflow returns x*y if it fits in 256 bits.
func MulOverflow(x, y UInt256) (UInt256, bool) {
	return Coerce(Mul(x, y))
}

// MulSmall returns x*y for a 32-bit multiplier.
func MulSmall(x UInt256, y uint32) (UInt256, bool) {
	return MulOverflow(x, New(uint64(y)))
}

// DivSmall divides x by a non-zero 32-bit divisor, most-significant word
// first, returning the quotient and remainder. Panics if y is zero.
func DivSmall(x UInt256, y uint32) (UInt256, uint32) {
	if y == 0 {
		panic("uint256: division by zero")
	}
	var q UInt256
	var rem uint64
	for i := 3; i >= 0; i-- {
		q[i], rem = bits.Div64(rem, x[i], uint64(y))
	}
	return q, uint32(rem)
}

// Coerce narrows a 512-bit value to 256 bits, reporting overflow when any
// of the upper four words is set.
func Coerce(x UInt512) (UInt256, bool) {
	if x[4] != 0 || x[5] != 0 || x[6] != 0 || x[7] != 0 {
		return Zero, true
	}
	return UInt256{x[0], x[1], x[2], x[3]}, false
}

// CoerceUint64 narrows x to a uint64.
func CoerceUint64(x UInt256) (uint64, bool) {
	if x[1] != 0 || x[2] != 0 || x[3] != 0 {
		return 0, true
	}
	return x[0], false
}

// Compare returns the three-way ordering of x and y.
func Compare(x, y UInt256) types.Comparison {
	for i := 3; i >= 0; i-- {
		switch {
		case x[i] < y[i]:
			return types.LT
		case x[i] > y[i]:
			return types.GT
		}
	}
	return types.EQ
}

// Eq reports whether x == y.
func (x UInt256) Eq(y UInt256) bool {
	return x == y
}

// Lt reports whether x < y.
func (x UInt256) Lt(y UInt256) bool {
	return Compare(x, y) == types.LT
}

// Gt reports whether x > y.
func (x UInt256) Gt(y UInt256) bool {
	return Compare(x, y) == types.GT
}

// BitLen returns the number of bits required to represent x.
func (x UInt256) BitLen() int {
	for i := 3; i >= 0; i-- {
		if x[i] != 0 {
			return 64*i + bits.Len64(x[i])
		}
	}
	return 0
}

// IsZero returns true if every word of x is zero.
func (x UInt512) IsZero() bool {
	return x == UInt512{}
}
