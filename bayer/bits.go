package bayer

// IsPowerOfTwo returns true if x has exactly one bit set.  Zero is not a
// power of two.
func IsPowerOfTwo(x uint32) bool {
	return x != 0 && x&(x-1) == 0
}

// FindMSB returns k for x = 2^k.  The result is assembled from parallel mask
// tests, one per bit of the index, so it only holds for powers of two: for
// other values it is unspecified.
func FindMSB(x uint32) uint32 {
	r := b2u(x&0xAAAAAAAA != 0)

	r |= b2u(x&0xFFFF0000 != 0) << 4
	r |= b2u(x&0xFF00FF00 != 0) << 3
	r |= b2u(x&0xF0F0F0F0 != 0) << 2
	r |= b2u(x&0xCCCCCCCC != 0) << 1

	return r
}

// Dilate spreads the low 16 bits of x into the even bit positions of the
// result, i.e. bit n of x ends up in bit 2n.  Bits above 15 are discarded.
func Dilate(x uint32) uint32 {
	x &= 0x0000FFFF
	x = (x | x<<8) & 0x00FF00FF
	x = (x | x<<4) & 0x0F0F0F0F
	x = (x | x<<2) & 0x33333333
	x = (x | x<<1) & 0x55555555

	return x
}

// BitReverse reverses the order of all 32 bits of x.
func BitReverse(x uint32) uint32 {
	x = (x&0x55555555)<<1 | (x&0xAAAAAAAA)>>1
	x = (x&0x33333333)<<2 | (x&0xCCCCCCCC)>>2
	x = (x&0x0F0F0F0F)<<4 | (x&0xF0F0F0F0)>>4
	x = (x&0x00FF00FF)<<8 | (x&0xFF00FF00)>>8
	x = (x&0x0000FFFF)<<16 | (x&0xFFFF0000)>>16

	return x
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
