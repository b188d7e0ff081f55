package consensus

// ASERTParams anchors the aserti3-2d difficulty rule.
type ASERTParams struct {
	RefBits      uint32 // compact target of the anchor block
	RefHeight    uint32 // anchor block height
	RefTime      int64  // timestamp of the anchor block's parent
	HalfLife     int64  // seconds for the target to double
	IdealSpacing int64  // target seconds between blocks
	MaxBits      uint32 // easiest allowed compact target
}

// ASERTTarget returns the compact target required of a block whose parent
// is timeDelta seconds and heightDelta blocks past the anchor.
//
// The factor 2^(exponent/65536) is applied in fixed point: a cubic
// approximation of 2^x over the fractional 16 bits, then shifts of the
// compact mantissa for the integral part.
func (p ASERTParams) ASERTTarget(timeDelta, heightDelta int64) uint32 {
	exponent := ((timeDelta - p.IdealSpacing*(heightDelta+1)) * 65536) / p.HalfLife
	size := int64(p.RefBits >> 24)
	shifts := exponent >> 16
	target := uint64(p.RefBits & 0x007fffff)
	frac := uint64(exponent & 0xffff)

	// Sums wrap modulo 2^64, matching the reference arithmetic.
	factor := 65536 + ((195766423245049*frac + 971821376*frac*frac + 5127*frac*frac*frac + (1 << 47)) >> 48)
	for factor != 0 && target > ^uint64(0)/factor {
		target >>= 8
		size++
	}
	target *= factor
	shifts -= 16
	for size > 3 && shifts < 0 {
		shifts += 8
		size--
	}
	for shifts >= 8 {
		shifts -= 8
		size++
	}

	if shifts > 0 {
		for target > ^uint64(0)>>uint(shifts) {
			target >>= 8
			size++
		}
		target <<= uint(shifts)
	} else {
		target >>= uint(-shifts)
	}

	if target == 0 {
		target = 1
	}
	for size < 1 || target > 0x007fffff {
		target >>= 8
		size++
	}
	for size > 1 && target <= 0x7fff {
		target <<= 8
		size--
	}
	target |= uint64(size) << 24
	if target > uint64(p.MaxBits) {
		target = uint64(p.MaxBits)
	}
	return uint32(target)
}

// ExpectedTarget returns the target required of a block whose parent is
// prev. ok is false for blocks at or below the anchor, where the rule
// does not apply.
func (p ASERTParams) ExpectedTarget(height uint32, prev *BlockHeader) (bits uint32, ok bool) {
	if height <= p.RefHeight {
		return 0, false
	}
	timeDelta := int64(prev.Timestamp) - p.RefTime
	heightDelta := int64(prev.Height) - int64(p.RefHeight)
	return p.ASERTTarget(timeDelta, heightDelta), true
}
