package uint256

import (
	"math"
	"math/big"
)

// floatPrec is wide enough to hold any 256-bit value scaled by 10^77
// without losing integral digits.
const floatPrec = 1024

const limb16 = 1 << 16

// FromFloat64 scales |value| by 10^decimals, rounds half away from zero
// and returns the integral result. Non-finite input and results that do
// not fit in 256 bits report overflow.
func FromFloat64(value float64, decimals int) (UInt256, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Zero, true
	}
	y := new(big.Float).SetPrec(floatPrec).SetFloat64(math.Abs(value))

	exp := decimals
	if exp < 0 {
		exp = -exp
	}
	scale := new(big.Float).SetPrec(floatPrec).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
	if decimals >= 0 {
		y.Mul(y, scale)
	} else {
		y.Quo(y, scale)
	}

	y.Add(y, new(big.Float).SetPrec(floatPrec).SetFloat64(0.5))
	n, _ := y.Int(nil)
	return FromBig(n)
}

// MulFloat64 multiplies x by y and returns the integral product, whether it
// overflowed 256 bits, whether y was negative (the product is returned as a
// magnitude), and the fractional remainder left below the lowest limb.
//
// The product is formed in 16-bit limbs with two passes: high to low, each
// limb's fractional part underflows into the next lower limb while its
// integral excess is recorded; then low to high, the recorded excess and
// any new carry are folded into the next higher limb.
func MulFloat64(x UInt256, y float64) (z UInt256, overflow, negative bool, rem float64) {
	negative = y < 0
	if negative {
		y = -y
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return Zero, true, negative, 0
	}

	const count = 16
	var overflows [count]float64
	underflow := 0.0

	for i := count - 1; i >= 0; i-- {
		total := y*float64(x.limb16(i)) + underflow
		integer, fractional := math.Modf(total)
		underflow = fractional * limb16
		overflows[i] = math.Floor(integer / limb16)
		z.setLimb16(i, uint16(math.Mod(integer, limb16)))
		if i == 0 {
			rem = fractional
		}
	}

	carry := 0.0
	for i := 1; i < count; i++ {
		total := float64(z.limb16(i)) + overflows[i-1] + carry
		carry = math.Floor(total / limb16)
		z.setLimb16(i, uint16(math.Mod(total, limb16)))
	}

	if overflows[count-1]+carry != 0 {
		return Zero, true, negative, rem
	}
	return z, false, negative, rem
}

// CoerceFloat64 converts x to the nearest float64. Overflow covers a
// non-finite result.
func CoerceFloat64(x UInt256) (float64, bool) {
	result := 0.0
	for i := 3; i >= 0; i-- {
		result = float64(x[i]) + math.Ldexp(result, 64)
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, true
	}
	return result, false
}

// Float returns x as an exact extended-precision float.
func (x UInt256) Float() *big.Float {
	return new(big.Float).SetPrec(256).SetInt(x.Big())
}

// limb16 returns the i-th 16-bit limb, least significant first.
func (x UInt256) limb16(i int) uint16 {
	return uint16(x[i/4] >> (16 * uint(i%4)))
}

// setLimb16 replaces the i-th 16-bit limb.
func (x *UInt256) setLimb16(i int, v uint16) {
	shift := 16 * uint(i%4)
	x[i/4] = x[i/4]&^(uint64(0xffff)<<shift) | uint64(v)<<shift
}
