package uint256

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"
)

// Bytes32 returns the 32-byte big-endian representation of x.
func (x UInt256) Bytes32() [32]byte {
	var b [32]byte
	for i := 0; i < 4; i++ {
		binary.BigEndian.PutUint64(b[24-8*i:], x[i])
	}
	return b
}

// Bytes returns the minimal big-endian representation of x. Zero encodes
// as an empty slice.
func (x UInt256) Bytes() []byte {
	b := x.Bytes32()
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	out := make([]byte, len(b)-i)
	copy(out, b[i:])
	return out
}

// FromBytes interprets b as a big-endian unsigned integer. Input longer
// than 32 bytes with a non-zero excess reports overflow.
func FromBytes(b []byte) (UInt256, bool) {
	for len(b) > 32 {
		if b[0] != 0 {
			return Zero, true
		}
		b = b[1:]
	}
	var buf [32]byte
	copy(buf[32-len(b):], b)
	var z UInt256
	for i := 0; i < 4; i++ {
		z[i] = binary.BigEndian.Uint64(buf[24-8*i:])
	}
	return z, false
}

// Big returns x as a big.Int.
func (x UInt256) Big() *big.Int {
	b := x.Bytes32()
	return new(big.Int).SetBytes(b[:])
}

// FromBig converts a non-negative big.Int, reporting overflow when it is
// negative or wider than 256 bits.
func FromBig(n *big.Int) (UInt256, bool) {
	if n.Sign() < 0 || n.BitLen() > 256 {
		return Zero, true
	}
	z, _ := FromBytes(n.Bytes())
	return z, false
}

// Text returns x in the given base (2..62).
func (x UInt256) Text(base int) string {
	return x.Big().Text(base)
}

// String returns the decimal representation of x.
func (x UInt256) String() string {
	return x.Text(10)
}

// Parse parses a string in the given base. A base of 0 honours the 0x, 0o
// and 0b prefixes.
func Parse(s string, base int) (UInt256, error) {
	s = strings.TrimSpace(s)
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return Zero, fmt.Errorf("invalid integer %q", s)
	}
	z, overflow := FromBig(n)
	if overflow {
		return Zero, fmt.Errorf("integer %q does not fit in 256 bits", s)
	}
	return z, nil
}

// Big returns x as a big.Int.
func (x UInt512) Big() *big.Int {
	var buf [64]byte
	for i := 0; i < 8; i++ {
		binary.BigEndian.PutUint64(buf[56-8*i:], x[i])
	}
	return new(big.Int).SetBytes(buf[:])
}
