package ring

import (
	"fmt"
	"math/bits"

	"github.com/tuneinsight/nttkernel/utils"
)

// BitShift is the precision of a Barrett factor, i.e. the power of two
// by which the operand is scaled before the division by the modulus.
type BitShift uint

const (
	BitShift32 = BitShift(32)
	BitShift52 = BitShift(52)
	BitShift64 = BitShift(64)
)

// Valid returns true if the bit shift is one of 32, 52 or 64.
func (b BitShift) Valid() bool {
	return b == BitShift32 || b == BitShift52 || b == BitShift64
}

// MaxValue returns 2^b - 1, the largest operand and modulus accepted at this precision.
func (b BitShift) MaxValue() uint64 {
	return utils.MaximumValue(int(b))
}

// MaxTransformModulus returns the exclusive bound on the modulus of a transform
// running at this precision: intermediate values up to 4q must fit in b bits.
func (b BitShift) MaxTransformModulus() uint64 {
	return 1 << (uint(b) - 2)
}

func (b BitShift) String() string {
	return fmt.Sprintf("%d-bit", uint(b))
}

// MultiplyFactor stores an operand together with its Barrett factor
// floor(operand * 2^bitShift / modulus). It is computed once and reused
// when multiplying many values by the same operand under the same modulus.
type MultiplyFactor struct {
	operand       uint64
	barrettFactor uint64
}

// NewMultiplyFactor computes the Barrett factor of operand for the given precision and modulus.
// Passing operand = 1 yields a factor for reductions where only the modulus is reused.
// Returns ErrInvalidArgument if operand > modulus, modulus = 0 or bitShift is not 32, 52 or 64.
func NewMultiplyFactor(operand uint64, bitShift BitShift, modulus uint64) (MultiplyFactor, error) {

	if modulus == 0 {
		return MultiplyFactor{}, invalidArgumentf("modulus must be non-zero")
	}

	if operand > modulus {
		return MultiplyFactor{}, invalidArgumentf("operand %d must be at most modulus %d", operand, modulus)
	}

	if !bitShift.Valid() {
		return MultiplyFactor{}, invalidArgumentf("unsupported bit shift %d", uint(bitShift))
	}

	return MultiplyFactor{operand: operand, barrettFactor: barrettFactor(operand, uint(bitShift), modulus)}, nil
}

// Operand returns the operand corresponding to the Barrett factor.
func (mf MultiplyFactor) Operand() uint64 {
	return mf.operand
}

// BarrettFactor returns the precomputed Barrett factor.
func (mf MultiplyFactor) BarrettFactor() uint64 {
	return mf.barrettFactor
}

// barrettFactor returns the low word of floor((operand << shift) / modulus).
// The quotient only exceeds 64 bits when shift = 64 and operand = modulus.
func barrettFactor(operand uint64, shift uint, modulus uint64) uint64 {
	var hi, lo uint64
	if shift == 64 {
		hi = operand
	} else {
		hi, lo = operand>>(64-shift), operand<<shift
	}
	quo, _ := bits.Div64(hi%modulus, lo, modulus)
	return quo
}

// barrettFactors returns the Barrett factor of each operand.
func barrettFactors(operands []uint64, shift uint, modulus uint64) (factors []uint64) {
	factors = make([]uint64, len(operands))
	for i, op := range operands {
		factors[i] = barrettFactor(op, shift, modulus)
	}
	return
}
