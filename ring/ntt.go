package ring

import (
	"fmt"

	"github.com/tuneinsight/nttkernel/utils"
)

// checkTransformArguments validates the arguments of a transform running at the given
// precision. Nothing is written to elements before it returns nil.
func checkTransformArguments(degree, modulus uint64, bitShift BitShift, roots, precon, elements []uint64) error {

	if degree < 2 || !utils.IsPowerOfTwo(degree) {
		return invalidArgumentf("degree %d must be a power of two greater than one", degree)
	}

	if modulus < 3 || modulus >= bitShift.MaxTransformModulus() {
		return invalidArgumentf("modulus %d out of range for %v transform, must be in [3, %d)", modulus, bitShift, bitShift.MaxTransformModulus())
	}

	if modulus%(degree<<1) != 1 {
		return invalidArgumentf("modulus %d must be 1 mod %d", modulus, degree<<1)
	}

	if uint64(len(roots)) < degree {
		return invalidArgumentf("root table length %d smaller than degree %d", len(roots), degree)
	}

	if precon != nil && uint64(len(precon)) < degree {
		return invalidArgumentf("precon table length %d smaller than degree %d", len(precon), degree)
	}

	if uint64(len(elements)) < degree {
		return invalidArgumentf("buffer length %d smaller than degree %d", len(elements), degree)
	}

	return nil
}

// checkElementRange returns ErrInvalidArgument if an element of elements[:degree] is not in
// [0, inputModFactor*modulus). Called after checkTransformArguments, so the bound fits in 64 bits.
func checkElementRange(degree, modulus, inputModFactor uint64, elements []uint64) error {
	bound := inputModFactor * modulus
	for i, v := range elements[:degree] {
		if v >= bound {
			return invalidArgumentf("element %d = %d out of range [0, %d)", i, v, bound)
		}
	}
	return nil
}

// ForwardTransformToBitReverse64 evaluates in place the negacyclic NTT of the first degree
// elements, from natural order to bit-reversed order, with the scalar 64-bit kernel.
// roots and precon are the forward powers and their 64-bit companion factors.
// Inputs must be in [0, 4*modulus); outputs are in [0, modulus).
func ForwardTransformToBitReverse64(degree, modulus uint64, roots, precon, elements []uint64) error {
	if err := checkTransformArguments(degree, modulus, BitShift64, roots, precon, elements); err != nil {
		return err
	}
	if err := checkElementRange(degree, modulus, 4, elements); err != nil {
		return err
	}
	nttScalar(elements[:degree], modulus, roots, precon, 64)
	return nil
}

// InverseTransformFromBitReverse64 evaluates in place the inverse negacyclic NTT of the first
// degree elements, from bit-reversed order to natural order, with the scalar 64-bit kernel.
// invRoots and invPrecon are the inverse powers and their 64-bit companion factors.
// Inputs must be in [0, 2*modulus); outputs are in [0, modulus).
func InverseTransformFromBitReverse64(degree, modulus uint64, invRoots, invPrecon, elements []uint64) error {
	if err := checkTransformArguments(degree, modulus, BitShift64, invRoots, invPrecon, elements); err != nil {
		return err
	}
	if err := checkElementRange(degree, modulus, 2, elements); err != nil {
		return err
	}
	inttScalar(elements[:degree], modulus, invRoots, invPrecon, 64)
	return nil
}

// ReferenceForwardTransformToBitReverse is the fully reduced counterpart of
// ForwardTransformToBitReverse64, kept as a correctness oracle. Inputs must be in [0, modulus).
func ReferenceForwardTransformToBitReverse(degree, modulus uint64, roots, elements []uint64) error {

	if err := checkTransformArguments(degree, modulus, BitShift64, roots, nil, elements); err != nil {
		return err
	}

	if err := checkElementRange(degree, modulus, 1, elements); err != nil {
		return err
	}

	p := elements[:degree]
	n := int(degree)

	for m, t := 1, n>>1; m < n; m, t = m<<1, t>>1 {
		for i, j1 := 0, 0; i < m; i, j1 = i+1, j1+2*t {
			W := roots[m+i]
			for jx, jy := j1, j1+t; jx < j1+t; jx, jy = jx+1, jy+1 {
				WY := MultiplyMod(p[jy], W, modulus)
				p[jx], p[jy] = AddUIntMod(p[jx], WY, modulus), SubUIntMod(p[jx], WY, modulus)
			}
		}
	}

	return nil
}

// ReferenceInverseTransformFromBitReverse is the fully reduced counterpart of
// InverseTransformFromBitReverse64, kept as a correctness oracle. Inputs must be in [0, modulus).
func ReferenceInverseTransformFromBitReverse(degree, modulus uint64, invRoots, elements []uint64) error {

	if err := checkTransformArguments(degree, modulus, BitShift64, invRoots, nil, elements); err != nil {
		return err
	}

	if err := checkElementRange(degree, modulus, 1, elements); err != nil {
		return err
	}

	p := elements[:degree]
	n := int(degree)

	for m, t := n>>1, 1; m > 1; m, t = m>>1, t<<1 {
		for i, j1 := 0, 0; i < m; i, j1 = i+1, j1+2*t {
			W := invRoots[n-2*m+1+i]
			for jx, jy := j1, j1+t; jx < j1+t; jx, jy = jx+1, jy+1 {
				X, Y := p[jx], p[jy]
				p[jx] = AddUIntMod(X, Y, modulus)
				p[jy] = MultiplyMod(SubUIntMod(X, Y, modulus), W, modulus)
			}
		}
	}

	nInv, invNW := inverseScaling(degree, modulus, invRoots)

	for jx, jy := 0, n>>1; jx < n>>1; jx, jy = jx+1, jy+1 {
		X, Y := p[jx], p[jy]
		p[jx] = MultiplyMod(AddUIntMod(X, Y, modulus), nInv, modulus)
		p[jy] = MultiplyMod(SubUIntMod(X, Y, modulus), invNW, modulus)
	}

	return nil
}

// inverseScaling returns n^-1 mod q and n^-1 times the last inverse root.
func inverseScaling(degree, modulus uint64, invRoots []uint64) (nInv, nInvW uint64) {
	nInv, err := InverseMod(degree, modulus)
	if err != nil {
		// Sanity check, modulus is an odd prime larger than degree.
		panic(err)
	}
	return nInv, MultiplyMod(nInv, invRoots[degree-1], modulus)
}

// nttScalar evaluates the forward transform on p with one Harvey butterfly per
// element pair, then reduces the result to [0, q).
func nttScalar(p []uint64, q uint64, roots, precon []uint64, shift uint) {
	n := len(p)
	for m, t := 1, n>>1; m < n; m, t = m<<1, t>>1 {
		nttStage(p, m, t, q, roots, precon, shift)
	}
	reduceFinal(p, q)
}

// nttStage applies the butterflies of the stage with m groups of size 2t.
// Inputs and outputs are in [0, 4q).
func nttStage(p []uint64, m, t int, q uint64, roots, precon []uint64, shift uint) {
	twoQ := q << 1
	for i, j1 := 0, 0; i < m; i, j1 = i+1, j1+2*t {
		W, F := roots[m+i], precon[m+i]
		for jx, jy := j1, j1+t; jx < j1+t; jx, jy = jx+1, jy+1 {
			p[jx], p[jy] = butterfly(p[jx], p[jy], W, F, twoQ, q, shift)
		}
	}
}

// inttScalar evaluates the inverse transform on p, folding the scaling by n^-1 in the
// last stage, then reduces the result to [0, q).
func inttScalar(p []uint64, q uint64, invRoots, invPrecon []uint64, shift uint) {
	n := len(p)
	for m, t := n>>1, 1; m > 1; m, t = m>>1, t<<1 {
		inttStage(p, m, t, q, invRoots, invPrecon, shift)
	}
	inttLastStage(p, q, invRoots, shift)
	reduceFinal(p, q)
}

// inttStage applies the inverse butterflies of the stage with m groups of size 2t.
// The roots of the stage are stored contiguously from index n - 2m + 1.
// Inputs and outputs are in [0, 2q).
func inttStage(p []uint64, m, t int, q uint64, invRoots, invPrecon []uint64, shift uint) {
	twoQ := q << 1
	base := len(p) - 2*m + 1
	for i, j1 := 0, 0; i < m; i, j1 = i+1, j1+2*t {
		W, F := invRoots[base+i], invPrecon[base+i]
		for jx, jy := j1, j1+t; jx < j1+t; jx, jy = jx+1, jy+1 {
			p[jx], p[jy] = invbutterfly(p[jx], p[jy], W, F, twoQ, q, shift)
		}
	}
}

// inttLastStage applies the last inverse stage, scaled by n^-1.
// Inputs and outputs are in [0, 2q).
func inttLastStage(p []uint64, q uint64, invRoots []uint64, shift uint) {

	n := len(p)
	twoQ := q << 1

	nInv, nInvW := inverseScaling(uint64(n), q, invRoots)
	nInvF := barrettFactor(nInv, shift, q)
	nInvWF := barrettFactor(nInvW, shift, q)

	for jx, jy := 0, n>>1; jx < n>>1; jx, jy = jx+1, jy+1 {
		tx := p[jx] + p[jy]
		if tx >= twoQ {
			tx -= twoQ
		}
		ty := p[jx] + twoQ - p[jy]
		p[jx] = mulModLazy(tx, nInv, nInvF, q, shift)
		p[jy] = mulModLazy(ty, nInvW, nInvWF, q, shift)
	}
}

// butterfly computes X, Y = U + V*W, U - V*W mod q.
// Inputs and outputs are in [0, 4q).
func butterfly(U, V, W, F, twoQ, q uint64, shift uint) (uint64, uint64) {
	if U >= twoQ {
		U -= twoQ
	}
	V = mulModLazy(V, W, F, q, shift)
	return U + V, U + twoQ - V
}

// invbutterfly computes X, Y = U + V, (U - V) * W mod q.
// Inputs and outputs are in [0, 2q).
func invbutterfly(U, V, W, F, twoQ, q uint64, shift uint) (X, Y uint64) {
	X = U + V
	if X >= twoQ {
		X -= twoQ
	}
	Y = mulModLazy(U+twoQ-V, W, F, q, shift)
	return
}

// reduceFinal reduces every element of p from [0, 4q) to [0, q).
// An element left outside [0, q) is an internal error and panics.
func reduceFinal(p []uint64, q uint64) {
	twoQ := q << 1
	for i := range p {
		p[i] = reduce4(p[i], q, twoQ)
		if p[i] >= q {
			panic(fmt.Sprintf("invalid reduction: element %d = %d >= %d", i, p[i], q))
		}
	}
}
