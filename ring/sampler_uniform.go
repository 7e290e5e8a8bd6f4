package ring

import (
	"encoding/binary"
	"math/bits"

	"github.com/tuneinsight/nttkernel/utils/sampling"
)

const uniformBufferSize = 1024

// UniformSampler wraps a sampling.PRNG and samples residues uniformly in [0, modulus).
// It is not safe for concurrent use.
type UniformSampler struct {
	prng   sampling.PRNG
	buffer []byte
	ptr    int
}

// NewUniformSampler creates a new instance of UniformSampler from a PRNG.
func NewUniformSampler(prng sampling.PRNG) (u *UniformSampler) {
	return &UniformSampler{
		prng:   prng,
		buffer: make([]byte, uniformBufferSize),
		ptr:    uniformBufferSize,
	}
}

// Read fills coeffs with values uniformly distributed in [0, modulus).
// It panics if modulus is zero.
func (u *UniformSampler) Read(modulus uint64, coeffs []uint64) {

	if modulus == 0 {
		panic("cannot Read: modulus must be non-zero")
	}

	// Starts by computing the mask
	mask := uint64(1)<<bits.Len64(modulus-1) - 1

	for i := range coeffs {

		// Samples an integer between [0, modulus-1]
		for {

			// Refills the buff if it runs empty
			if u.ptr == len(u.buffer) {
				if _, err := u.prng.Read(u.buffer); err != nil {
					// Sanity check, this error should not happen.
					panic(err)
				}
				u.ptr = 0
			}

			randomUint := binary.BigEndian.Uint64(u.buffer[u.ptr:u.ptr+8]) & mask
			u.ptr += 8

			// If the integer is between [0, modulus-1], breaks the loop
			if randomUint < modulus {
				coeffs[i] = randomUint
				break
			}
		}
	}
}

// ReadNew returns n values uniformly distributed in [0, modulus).
func (u *UniformSampler) ReadNew(modulus uint64, n int) (coeffs []uint64) {
	coeffs = make([]uint64, n)
	u.Read(modulus, coeffs)
	return
}
