package ring

import (
	"math/bits"
)

//==========================
//=== LAZY MULTIPLICATION ===
//==========================

// mulHi returns floor(x * y / 2^shift) for shift in {32, 52, 64}.
func mulHi(x, y uint64, shift uint) uint64 {
	hi, lo := bits.Mul64(x, y)
	return hi<<(64-shift) | lo>>shift
}

// mulModLazy returns x * w mod q in [0, 2q), where f is the Barrett factor of w at the given shift.
// Requires x and q to fit in shift bits and w < q.
func mulModLazy(x, w, f, q uint64, shift uint) uint64 {
	return w*x - mulHi(x, f, shift)*q
}

// MultiplyModLazy returns x * yOperand mod modulus in the relaxed range [0, 2*modulus),
// where yBarrettFactor is the Barrett factor of yOperand at the given precision.
// Returns ErrInvalidArgument if yOperand >= modulus, or if x or modulus exceed 2^bitShift - 1.
// At 64-bit precision the modulus must also be below 2^63 so that the result fits in 64 bits.
func MultiplyModLazy(x, yOperand, yBarrettFactor, modulus uint64, bitShift BitShift) (uint64, error) {

	if !bitShift.Valid() {
		return 0, invalidArgumentf("unsupported bit shift %d", uint(bitShift))
	}

	if yOperand >= modulus {
		return 0, invalidArgumentf("operand %d must be less than modulus %d", yOperand, modulus)
	}

	if max := bitShift.MaxValue(); modulus > max || x > max {
		return 0, invalidArgumentf("operand %d or modulus %d exceeds bound %d", x, modulus, max)
	}

	if bitShift == BitShift64 && modulus >= 1<<63 {
		return 0, invalidArgumentf("modulus %d exceeds bound %d", modulus, uint64(1)<<63-1)
	}

	return mulModLazy(x, yOperand, yBarrettFactor, modulus, uint(bitShift)), nil
}

//=============================
//=== CONDITIONAL REDUCTION ===
//=============================

// ReduceMod reduces x, known to lie in [0, inputModFactor * modulus), to [0, modulus).
// inputModFactor must be 1, 2, 4 or 8. Factor 4 requires aux[0] = 2*modulus and factor 8
// additionally requires aux[1] = 4*modulus; otherwise ErrInvalidArgument is returned.
func ReduceMod(x, modulus uint64, inputModFactor int, aux ...uint64) (uint64, error) {

	switch inputModFactor {
	case 1:
		return x, nil
	case 2:
		return CRed(x, modulus), nil
	case 4:
		if len(aux) < 1 || aux[0] != modulus<<1 {
			return 0, invalidArgumentf("input mod factor 4 requires twice the modulus")
		}
		return reduce4(x, modulus, aux[0]), nil
	case 8:
		if len(aux) < 2 || aux[0] != modulus<<1 || aux[1] != modulus<<2 {
			return 0, invalidArgumentf("input mod factor 8 requires twice and four times the modulus")
		}
		if x >= aux[1] {
			x -= aux[1]
		}
		return reduce4(x, modulus, aux[0]), nil
	default:
		return 0, invalidArgumentf("input mod factor must be 1, 2, 4 or 8, got %d", inputModFactor)
	}
}

// CRed reduce returns a mod q, where,
// a is required to be in the range [0, 2q-1].
func CRed(a, q uint64) uint64 {
	if a >= q {
		return a - q
	}
	return a
}

// reduce4 returns a mod q for a in [0, 4q).
func reduce4(a, q, twoQ uint64) uint64 {
	if a >= twoQ {
		a -= twoQ
	}
	if a >= q {
		a -= q
	}
	return a
}

//==========================
//=== BARRETT REDUCTION  ===
//==========================

// BarrettFactor64 returns floor(2^64 / modulus), for modulus > 1.
func BarrettFactor64(modulus uint64) (uint64, error) {
	if modulus < 2 {
		return 0, invalidArgumentf("modulus %d must be at least 2", modulus)
	}
	quo, _ := bits.Div64(1, 0, modulus)
	return quo, nil
}

// BarrettReduce64 returns input mod modulus for any 64-bit input,
// where qBarrett = floor(2^64 / modulus).
func BarrettReduce64(input, modulus, qBarrett uint64) uint64 {
	q, _ := bits.Mul64(input, qBarrett)
	r := input - q*modulus
	if r >= modulus {
		r -= modulus
	}
	return r
}

//==========================
//=== CANONICAL OPERATIONS ===
//==========================

// AddUIntMod returns x + y mod modulus, for x, y in [0, modulus).
func AddUIntMod(x, y, modulus uint64) uint64 {
	s, carry := bits.Add64(x, y, 0)
	if carry != 0 || s >= modulus {
		s -= modulus
	}
	return s
}

// SubUIntMod returns x - y mod modulus, for x, y in [0, modulus).
func SubUIntMod(x, y, modulus uint64) uint64 {
	if x >= y {
		return x - y
	}
	return x + modulus - y
}

// MultiplyMod returns x * y mod modulus. It has no precondition on x and y.
func MultiplyMod(x, y, modulus uint64) uint64 {
	hi, lo := bits.Mul64(x, y)
	_, r := bits.Div64(hi%modulus, lo, modulus)
	return r
}

// MultiplyModPrecon returns x * y mod modulus, where yPrecon is the 64-bit
// Barrett factor of y. Requires y < modulus < 2^63.
func MultiplyModPrecon(x, y, yPrecon, modulus uint64) uint64 {
	return CRed(mulModLazy(x, y, yPrecon, modulus, 64), modulus)
}

// PowMod returns base^exp mod modulus by binary exponentiation.
// base may be any 64-bit value.
func PowMod(base, exp, modulus uint64) (result uint64) {

	if modulus == 1 {
		return 0
	}

	result = 1
	base %= modulus

	for exp > 0 {
		if exp&1 == 1 {
			result = MultiplyMod(result, base, modulus)
		}
		base = MultiplyMod(base, base, modulus)
		exp >>= 1
	}

	return
}

// InverseMod returns x^-1 mod modulus using the extended Euclidean algorithm.
// x may be any 64-bit value. Returns ErrDomain if x is not invertible.
func InverseMod(x, modulus uint64) (uint64, error) {

	if modulus < 2 {
		return 0, invalidArgumentf("modulus %d must be at least 2", modulus)
	}

	if x %= modulus; x == 0 {
		return 0, domainf("0 has no inverse modulo %d", modulus)
	}

	r0, r1 := modulus, x
	t0, t1 := uint64(0), uint64(1)

	for r1 != 0 {
		quo := r0 / r1
		r0, r1 = r1, r0-quo*r1
		t0, t1 = t1, SubUIntMod(t0, MultiplyMod(quo, t1, modulus), modulus)
	}

	if r0 != 1 {
		return 0, domainf("%d is not invertible modulo %d", x, modulus)
	}

	return t0, nil
}
