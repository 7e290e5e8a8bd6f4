// Package utils implements bit-level helpers shared by the transform kernels.
package utils

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// BitReverse64 returns the bit-reverse value of the input value, within a context of 2^bitLen.
func BitReverse64(index, bitLen uint64) uint64 {
	if bitLen == 0 {
		return 0
	}
	return bits.Reverse64(index) >> (64 - bitLen)
}

// IsPowerOfTwo returns true if x is a non-zero power of two.
func IsPowerOfTwo[T constraints.Unsigned](x T) bool {
	return x != 0 && x&(x-1) == 0
}

// Log2 returns floor(log2(x)), and 0 for x = 0.
func Log2[T constraints.Unsigned](x T) int {
	if x == 0 {
		return 0
	}
	return bits.Len64(uint64(x)) - 1
}

// MaximumValue returns 2^bitLen - 1.
func MaximumValue(bitLen int) uint64 {
	if bitLen >= 64 {
		return 0xFFFFFFFFFFFFFFFF
	}
	return (1 << bitLen) - 1
}
