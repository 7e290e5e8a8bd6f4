package ring

import (
	"math/big"
	"math/bits"

	"github.com/tuneinsight/nttkernel/utils"
	"github.com/tuneinsight/nttkernel/utils/factorization"
)

// IsPrime applies the Baillie-PSW, which is 100% accurate for numbers bellow 2^64.
func IsPrime(x uint64) bool {
	return factorization.IsPrime(new(big.Int).SetUint64(x))
}

// GeneratePrimes returns up to numPrimes primes q in [2^bitSize, 2^(bitSize+1)) with
// q = 1 mod 2*nttSize, scanning upward from 2^bitSize if preferSmallPrimes is true and
// downward from 2^(bitSize+1) otherwise.
//
// A result shorter than numPrimes, possibly empty, means the interval is exhausted and is
// not an error: callers must check its length.
// Returns ErrInvalidArgument if bitSize is not in [1, 63] or if nttSize is not a power of two
// smaller or equal to 2^bitSize.
func GeneratePrimes(numPrimes, bitSize int, preferSmallPrimes bool, nttSize uint64) (primes []uint64, err error) {

	if numPrimes < 0 {
		return nil, invalidArgumentf("number of primes %d must be non-negative", numPrimes)
	}

	if bitSize < 1 || bitSize > 63 {
		return nil, invalidArgumentf("bit size %d must be between 1 and 63", bitSize)
	}

	if !utils.IsPowerOfTwo(nttSize) || nttSize > 1<<bitSize {
		return nil, invalidArgumentf("NTT size %d must be a power of two at most 2^%d", nttSize, bitSize)
	}

	primes = []uint64{}

	// 2*nttSize = 2^64, the only candidate is 1
	if nttSize == 1<<63 {
		return
	}

	step := nttSize << 1
	lo := uint64(1) << bitSize
	hi := utils.MaximumValue(bitSize + 1)

	if preferSmallPrimes {

		candidate := lo/step*step + 1
		if candidate < lo {
			candidate += step
		}

		for len(primes) < numPrimes && candidate >= lo && candidate <= hi {

			if IsPrime(candidate) {
				primes = append(primes, candidate)
			}

			next, carry := bits.Add64(candidate, step, 0)
			if carry != 0 {
				break
			}
			candidate = next
		}

	} else {

		candidate := (hi-1)/step*step + 1

		for len(primes) < numPrimes && candidate >= lo {

			if IsPrime(candidate) {
				primes = append(primes, candidate)
			}

			if candidate < step {
				break
			}
			candidate -= step
		}
	}

	return
}

// NextNTTPrime returns the next NthRoot NTT prime after q.
// The input q must be itself an NTT prime for the given NthRoot.
func NextNTTPrime(q, NthRoot uint64) (qNext uint64, err error) {

	var carry uint64

	if qNext, carry = bits.Add64(q, NthRoot, 0); carry != 0 {
		return 0, domainf("next NTT prime exceeds the maximum bit-size of 64 bits")
	}

	for !IsPrime(qNext) {

		if qNext, carry = bits.Add64(qNext, NthRoot, 0); carry != 0 {
			return 0, domainf("next NTT prime exceeds the maximum bit-size of 64 bits")
		}
	}

	return qNext, nil
}

// PreviousNTTPrime returns the previous NthRoot NTT prime before q.
// The input q must be itself an NTT prime for the given NthRoot.
func PreviousNTTPrime(q, NthRoot uint64) (qPrev uint64, err error) {

	if q <= NthRoot+1 {
		return 0, domainf("previous NTT prime is smaller than NthRoot")
	}

	qPrev = q - NthRoot

	for !IsPrime(qPrev) {

		if qPrev <= NthRoot+1 {
			return 0, domainf("previous NTT prime is smaller than NthRoot")
		}

		qPrev -= NthRoot
	}

	return qPrev, nil
}
