package ring

import (
	"fmt"
	"math/bits"
)

// testParameters is a (degree, modulus) pair used by the transform tests.
type testParameters struct {
	logN    int
	modulus uint64
}

// Qi60 are 61-bit NTT-friendly primes close to 2^{61} for N up to 2^{17}
var Qi60 = []uint64{0x1fffffffffe00001, 0x1fffffffffc80001, 0x1fffffffffb40001, 0x1fffffffff500001,
	0x1fffffffff380001, 0x1fffffffff000001, 0x1ffffffffef00001, 0x1ffffffffee80001}

// Qi30 are 30-bit NTT-friendly primes for N up to 2^{14}
var Qi30 = []uint64{0x3ee0001, 0x3ffc0001, 0x3ff28001}

var testParams = []testParameters{
	{1, 17},
	{3, 17},
	{4, 97},
	{5, Qi30[0]},
	{10, Qi30[1]},
	{10, Qi60[0]},
	{12, Qi60[1]},
	{13, Qi60[2]},
}

func testString(opname string, degree, modulus uint64) string {
	return fmt.Sprintf("%s/N=%d/logQ=%d", opname, degree, bits.Len64(modulus))
}
