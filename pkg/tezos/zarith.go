package tezos

import (
	"errors"
)

// Zarith errors.
var (
	ErrZarithTruncated = errors.New("zarith: truncated integer")
	ErrZarithOverflow  = errors.New("zarith: integer overflows 64 bits")
	ErrZarithTrailing  = errors.New("zarith: non-canonical trailing zero group")
)

// AppendZarith appends the base-128 encoding of v: seven bits per byte,
// least significant group first, high bit set on every byte but the last.
func AppendZarith(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v&0x7f)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// EncodeZarith returns the base-128 encoding of v.
func EncodeZarith(v uint64) []byte {
	return AppendZarith(nil, v)
}

// DecodeZarith reads a base-128 integer from the front of b and returns
// it with the number of bytes consumed.
func DecodeZarith(b []byte) (uint64, int, error) {
	var v uint64
	for i, c := range b {
		if i == 9 && c > 1 {
			return 0, 0, ErrZarithOverflow
		}
		if i > 9 {
			return 0, 0, ErrZarithOverflow
		}
		v |= uint64(c&0x7f) << (7 * i)
		if c&0x80 == 0 {
			if c == 0 && i > 0 {
				return 0, 0, ErrZarithTrailing
			}
			return v, i + 1, nil
		}
	}
	return 0, 0, ErrZarithTruncated
}
