package consensus

import "math/big"

// CompactToBig expands a compact target. negative and overflow report
// encodings that are not valid proof-of-work targets.
func CompactToBig(bits uint32) (target *big.Int, negative, overflow bool) {
	size := bits >> 24
	word := bits & 0x007fffff

	target = new(big.Int)
	if size <= 3 {
		word >>= 8 * (3 - size)
		target.SetUint64(uint64(word))
	} else {
		target.SetUint64(uint64(word))
		target.Lsh(target, uint(8*(size-3)))
	}
	negative = word != 0 && bits&0x00800000 != 0
	overflow = word != 0 && (size > 34 || (word > 0xff && size > 33) || (word > 0xffff && size > 32))
	return target, negative, overflow
}

// BigToCompact encodes a non-negative target in compact form, dropping
// precision beyond the 23-bit mantissa.
func BigToCompact(n *big.Int) uint32 {
	size := uint32(len(n.Bytes()))
	var mantissa uint32
	if size <= 3 {
		mantissa = uint32(n.Uint64()) << (8 * (3 - size))
	} else {
		mantissa = uint32(new(big.Int).Rsh(n, uint(8*(size-3))).Uint64())
	}
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		size++
	}
	return size<<24 | mantissa
}

// HashToBig interprets a display-order hash as a big-endian integer.
func HashToBig(h [32]byte) *big.Int {
	return new(big.Int).SetBytes(h[:])
}
