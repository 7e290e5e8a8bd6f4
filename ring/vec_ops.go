package ring

import (
	"unsafe"
)

// CmpInt is the comparison applied by EltwiseCmpSubMod.
type CmpInt int

const (
	CmpEQ    = CmpInt(iota) // a == b
	CmpLT                   // a < b
	CmpLE                   // a <= b
	CmpFalse                // never
	CmpNE                   // a != b
	CmpNLT                  // a >= b
	CmpNLE                  // a > b
	CmpTrue                 // always
)

// Compare returns the result of the comparison of a with b.
func (c CmpInt) Compare(a, b uint64) bool {
	switch c {
	case CmpEQ:
		return a == b
	case CmpLT:
		return a < b
	case CmpLE:
		return a <= b
	case CmpNE:
		return a != b
	case CmpNLT:
		return a >= b
	case CmpNLE:
		return a > b
	case CmpTrue:
		return true
	default:
		return false
	}
}

// EltwiseCmpSubMod sets out[i] = in[i] mod modulus, minus diff mod modulus when
// cmp.Compare(in[i] mod modulus, bound) holds. out may alias in.
// Returns ErrInvalidArgument if modulus is zero, diff >= modulus, cmp is unknown
// or out is shorter than in.
func EltwiseCmpSubMod(out, in []uint64, modulus uint64, cmp CmpInt, bound, diff uint64) error {

	if err := checkCmpSubModArguments(out, in, modulus, cmp, diff); err != nil {
		return err
	}

	for i, v := range in {
		v %= modulus
		if cmp.Compare(v, bound) {
			v = SubUIntMod(v, diff, modulus)
		}
		out[i] = v
	}

	return nil
}

func checkCmpSubModArguments(out, in []uint64, modulus uint64, cmp CmpInt, diff uint64) error {

	if modulus == 0 {
		return invalidArgumentf("modulus must be non-zero")
	}

	if diff >= modulus {
		return invalidArgumentf("diff %d must be less than modulus %d", diff, modulus)
	}

	if cmp < CmpEQ || cmp > CmpTrue {
		return invalidArgumentf("unknown comparison %d", int(cmp))
	}

	if len(out) < len(in) {
		return invalidArgumentf("output length %d smaller than input length %d", len(out), len(in))
	}

	return nil
}

// cmpSubModLanes is the 8-lane counterpart of EltwiseCmpSubMod, where qBarrett = floor(2^64/q).
// Inputs are arbitrary 64-bit values, so the reduction always uses the 64-bit Barrett factor.
// Requires q > 1.
func cmpSubModLanes(out, in []uint64, q, qBarrett uint64, cmp CmpInt, bound, diff uint64) {

	N := len(in)
	N8 := N &^ 7

	// op reduces v and subtracts diff when the comparison holds.
	op := func(v uint64) uint64 {
		v = BarrettReduce64(v, q, qBarrett)
		if cmp.Compare(v, bound) {
			v = SubUIntMod(v, diff, q)
		}
		return v
	}

	for j := 0; j < N8; j = j + 8 {

		/* #nosec G103 -- behavior and consequences well understood, j+8 <= len(in) */
		x := (*[8]uint64)(unsafe.Pointer(&in[j]))
		/* #nosec G103 -- behavior and consequences well understood, j+8 <= len(out) */
		z := (*[8]uint64)(unsafe.Pointer(&out[j]))

		z[0] = op(x[0])
		z[1] = op(x[1])
		z[2] = op(x[2])
		z[3] = op(x[3])
		z[4] = op(x[4])
		z[5] = op(x[5])
		z[6] = op(x[6])
		z[7] = op(x[7])
	}

	for j := N8; j < N; j++ {
		out[j] = op(in[j])
	}
}

func checkFMAArguments(out, arg1 []uint64, arg2 uint64, arg3 []uint64, modulus uint64) error {

	if modulus < 2 || modulus >= 1<<63 {
		return invalidArgumentf("modulus %d must be in [2, 2^63)", modulus)
	}

	if arg2 >= modulus {
		return invalidArgumentf("scalar %d must be less than modulus %d", arg2, modulus)
	}

	if len(out) < len(arg1) {
		return invalidArgumentf("output length %d smaller than input length %d", len(out), len(arg1))
	}

	if arg3 != nil && len(arg3) < len(arg1) {
		return invalidArgumentf("addend length %d smaller than input length %d", len(arg3), len(arg1))
	}

	return nil
}

// EltwiseFMAMod sets out[i] = arg1[i] * arg2 + arg3[i] mod modulus, or out[i] = arg1[i] * arg2 mod modulus
// if arg3 is nil, with the scalar kernel. Inputs must be in [0, modulus); outputs are in [0, modulus).
// out may alias arg1 or arg3.
// Returns ErrInvalidArgument if modulus is not in [2, 2^63), arg2 >= modulus or the lengths mismatch.
func EltwiseFMAMod(out, arg1 []uint64, arg2 uint64, arg3 []uint64, modulus uint64) error {

	if err := checkFMAArguments(out, arg1, arg2, arg3, modulus); err != nil {
		return err
	}

	f := barrettFactor(arg2, 64, modulus)

	if arg3 == nil {
		for i := range arg1 {
			out[i] = MultiplyModPrecon(arg1[i], arg2, f, modulus)
		}
		return nil
	}

	for i := range arg1 {
		out[i] = AddUIntMod(MultiplyModPrecon(arg1[i], arg2, f, modulus), arg3[i], modulus)
	}

	return nil
}

// fmaLanes is the 8-lane counterpart of EltwiseFMAMod, where f is the Barrett factor of arg2 at the given shift.
// Requires modulus to fit in shift bits.
func fmaLanes(out, arg1 []uint64, arg2, f uint64, arg3 []uint64, q uint64, shift uint) {

	N := len(arg1)
	N8 := N &^ 7

	if arg3 == nil {
		for j := 0; j < N8; j = j + 8 {

			/* #nosec G103 -- behavior and consequences well understood, j+8 <= len(arg1) */
			x := (*[8]uint64)(unsafe.Pointer(&arg1[j]))
			/* #nosec G103 -- behavior and consequences well understood, j+8 <= len(out) */
			z := (*[8]uint64)(unsafe.Pointer(&out[j]))

			z[0] = CRed(mulModLazy(x[0], arg2, f, q, shift), q)
			z[1] = CRed(mulModLazy(x[1], arg2, f, q, shift), q)
			z[2] = CRed(mulModLazy(x[2], arg2, f, q, shift), q)
			z[3] = CRed(mulModLazy(x[3], arg2, f, q, shift), q)
			z[4] = CRed(mulModLazy(x[4], arg2, f, q, shift), q)
			z[5] = CRed(mulModLazy(x[5], arg2, f, q, shift), q)
			z[6] = CRed(mulModLazy(x[6], arg2, f, q, shift), q)
			z[7] = CRed(mulModLazy(x[7], arg2, f, q, shift), q)
		}

		for j := N8; j < N; j++ {
			out[j] = CRed(mulModLazy(arg1[j], arg2, f, q, shift), q)
		}

		return
	}

	for j := 0; j < N8; j = j + 8 {

		/* #nosec G103 -- behavior and consequences well understood, j+8 <= len(arg1) */
		x := (*[8]uint64)(unsafe.Pointer(&arg1[j]))
		/* #nosec G103 -- behavior and consequences well understood, j+8 <= len(arg3) */
		y := (*[8]uint64)(unsafe.Pointer(&arg3[j]))
		/* #nosec G103 -- behavior and consequences well understood, j+8 <= len(out) */
		z := (*[8]uint64)(unsafe.Pointer(&out[j]))

		z[0] = AddUIntMod(CRed(mulModLazy(x[0], arg2, f, q, shift), q), y[0], q)
		z[1] = AddUIntMod(CRed(mulModLazy(x[1], arg2, f, q, shift), q), y[1], q)
		z[2] = AddUIntMod(CRed(mulModLazy(x[2], arg2, f, q, shift), q), y[2], q)
		z[3] = AddUIntMod(CRed(mulModLazy(x[3], arg2, f, q, shift), q), y[3], q)
		z[4] = AddUIntMod(CRed(mulModLazy(x[4], arg2, f, q, shift), q), y[4], q)
		z[5] = AddUIntMod(CRed(mulModLazy(x[5], arg2, f, q, shift), q), y[5], q)
		z[6] = AddUIntMod(CRed(mulModLazy(x[6], arg2, f, q, shift), q), y[6], q)
		z[7] = AddUIntMod(CRed(mulModLazy(x[7], arg2, f, q, shift), q), y[7], q)
	}

	for j := N8; j < N; j++ {
		out[j] = AddUIntMod(CRed(mulModLazy(arg1[j], arg2, f, q, shift), q), arg3[j], q)
	}
}
