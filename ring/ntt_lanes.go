package ring

import (
	"unsafe"
)

// MinimumRingDegreeForLoopUnrolledNTT is the minimum degree accepted by the 8-lane kernels.
// Smaller degrees are transformed with the scalar kernel.
const MinimumRingDegreeForLoopUnrolledNTT = 16

// nttLanes evaluates the forward transform on p processing 8 butterflies per step,
// which is the shape of one 512-bit vector of 64-bit lanes. It performs exactly the
// same butterflies as nttScalar and returns the same result.
func nttLanes(p []uint64, q uint64, roots, precon []uint64, shift uint) {

	n := len(p)

	if n < MinimumRingDegreeForLoopUnrolledNTT {
		nttScalar(p, q, roots, precon, shift)
		return
	}

	for m, t := 1, n>>1; m < n; m, t = m<<1, t>>1 {
		nttStageLanes(p, m, t, q, roots, precon, shift)
	}

	reduceFinal(p, q)
}

// nttStageLanes applies the butterflies of the stage with m groups of size 2t.
// Inputs and outputs are in [0, 4q). Requires len(p) >= 16.
func nttStageLanes(p []uint64, m, t int, q uint64, roots, precon []uint64, shift uint) {

	twoQ := q << 1

	switch {
	case t >= 8:

		for i, j1 := 0, 0; i < m; i, j1 = i+1, j1+2*t {

			W, F := roots[m+i], precon[m+i]

			for jx, jy := j1, j1+t; jx < j1+t; jx, jy = jx+8, jy+8 {

				/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(p)%8 != 0 */
				x := (*[8]uint64)(unsafe.Pointer(&p[jx]))
				/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(p)%8 != 0 */
				y := (*[8]uint64)(unsafe.Pointer(&p[jy]))

				x[0], y[0] = butterfly(x[0], y[0], W, F, twoQ, q, shift)
				x[1], y[1] = butterfly(x[1], y[1], W, F, twoQ, q, shift)
				x[2], y[2] = butterfly(x[2], y[2], W, F, twoQ, q, shift)
				x[3], y[3] = butterfly(x[3], y[3], W, F, twoQ, q, shift)
				x[4], y[4] = butterfly(x[4], y[4], W, F, twoQ, q, shift)
				x[5], y[5] = butterfly(x[5], y[5], W, F, twoQ, q, shift)
				x[6], y[6] = butterfly(x[6], y[6], W, F, twoQ, q, shift)
				x[7], y[7] = butterfly(x[7], y[7], W, F, twoQ, q, shift)
			}
		}

	case t == 4:

		for i, j1 := m, 0; i < 2*m; i, j1 = i+2, j1+4*t {

			/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(roots)%2 != 0 */
			psi := (*[2]uint64)(unsafe.Pointer(&roots[i]))
			/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(precon)%2 != 0 */
			psiF := (*[2]uint64)(unsafe.Pointer(&precon[i]))
			/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(p)%16 != 0 */
			x := (*[16]uint64)(unsafe.Pointer(&p[j1]))

			x[0], x[4] = butterfly(x[0], x[4], psi[0], psiF[0], twoQ, q, shift)
			x[1], x[5] = butterfly(x[1], x[5], psi[0], psiF[0], twoQ, q, shift)
			x[2], x[6] = butterfly(x[2], x[6], psi[0], psiF[0], twoQ, q, shift)
			x[3], x[7] = butterfly(x[3], x[7], psi[0], psiF[0], twoQ, q, shift)
			x[8], x[12] = butterfly(x[8], x[12], psi[1], psiF[1], twoQ, q, shift)
			x[9], x[13] = butterfly(x[9], x[13], psi[1], psiF[1], twoQ, q, shift)
			x[10], x[14] = butterfly(x[10], x[14], psi[1], psiF[1], twoQ, q, shift)
			x[11], x[15] = butterfly(x[11], x[15], psi[1], psiF[1], twoQ, q, shift)
		}

	case t == 2:

		for i, j1 := m, 0; i < 2*m; i, j1 = i+4, j1+8*t {

			/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(roots)%4 != 0 */
			psi := (*[4]uint64)(unsafe.Pointer(&roots[i]))
			/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(precon)%4 != 0 */
			psiF := (*[4]uint64)(unsafe.Pointer(&precon[i]))
			/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(p)%16 != 0 */
			x := (*[16]uint64)(unsafe.Pointer(&p[j1]))

			x[0], x[2] = butterfly(x[0], x[2], psi[0], psiF[0], twoQ, q, shift)
			x[1], x[3] = butterfly(x[1], x[3], psi[0], psiF[0], twoQ, q, shift)
			x[4], x[6] = butterfly(x[4], x[6], psi[1], psiF[1], twoQ, q, shift)
			x[5], x[7] = butterfly(x[5], x[7], psi[1], psiF[1], twoQ, q, shift)
			x[8], x[10] = butterfly(x[8], x[10], psi[2], psiF[2], twoQ, q, shift)
			x[9], x[11] = butterfly(x[9], x[11], psi[2], psiF[2], twoQ, q, shift)
			x[12], x[14] = butterfly(x[12], x[14], psi[3], psiF[3], twoQ, q, shift)
			x[13], x[15] = butterfly(x[13], x[15], psi[3], psiF[3], twoQ, q, shift)
		}

	default:

		for i, j1 := m, 0; i < 2*m; i, j1 = i+8, j1+16 {

			/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(roots)%8 != 0 */
			psi := (*[8]uint64)(unsafe.Pointer(&roots[i]))
			/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(precon)%8 != 0 */
			psiF := (*[8]uint64)(unsafe.Pointer(&precon[i]))
			/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(p)%16 != 0 */
			x := (*[16]uint64)(unsafe.Pointer(&p[j1]))

			x[0], x[1] = butterfly(x[0], x[1], psi[0], psiF[0], twoQ, q, shift)
			x[2], x[3] = butterfly(x[2], x[3], psi[1], psiF[1], twoQ, q, shift)
			x[4], x[5] = butterfly(x[4], x[5], psi[2], psiF[2], twoQ, q, shift)
			x[6], x[7] = butterfly(x[6], x[7], psi[3], psiF[3], twoQ, q, shift)
			x[8], x[9] = butterfly(x[8], x[9], psi[4], psiF[4], twoQ, q, shift)
			x[10], x[11] = butterfly(x[10], x[11], psi[5], psiF[5], twoQ, q, shift)
			x[12], x[13] = butterfly(x[12], x[13], psi[6], psiF[6], twoQ, q, shift)
			x[14], x[15] = butterfly(x[14], x[15], psi[7], psiF[7], twoQ, q, shift)
		}
	}
}

// inttLanes evaluates the inverse transform on p processing 8 butterflies per step.
// It performs exactly the same butterflies as inttScalar and returns the same result.
func inttLanes(p []uint64, q uint64, invRoots, invPrecon []uint64, shift uint) {

	n := len(p)

	if n < MinimumRingDegreeForLoopUnrolledNTT {
		inttScalar(p, q, invRoots, invPrecon, shift)
		return
	}

	for m, t := n>>1, 1; m > 1; m, t = m>>1, t<<1 {
		inttStageLanes(p, m, t, q, invRoots, invPrecon, shift)
	}

	inttLastStage(p, q, invRoots, shift)
	reduceFinal(p, q)
}

// inttStageLanes applies the inverse butterflies of the stage with m groups of size 2t,
// whose roots are stored contiguously from index n - 2m + 1.
// Inputs and outputs are in [0, 2q). Requires len(p) >= 16.
func inttStageLanes(p []uint64, m, t int, q uint64, invRoots, invPrecon []uint64, shift uint) {

	twoQ := q << 1
	base := len(p) - 2*m + 1

	switch {
	case t >= 8:

		for i, j1 := base, 0; i < base+m; i, j1 = i+1, j1+2*t {

			W, F := invRoots[i], invPrecon[i]

			for jx, jy := j1, j1+t; jx < j1+t; jx, jy = jx+8, jy+8 {

				/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(p)%8 != 0 */
				x := (*[8]uint64)(unsafe.Pointer(&p[jx]))
				/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(p)%8 != 0 */
				y := (*[8]uint64)(unsafe.Pointer(&p[jy]))

				x[0], y[0] = invbutterfly(x[0], y[0], W, F, twoQ, q, shift)
				x[1], y[1] = invbutterfly(x[1], y[1], W, F, twoQ, q, shift)
				x[2], y[2] = invbutterfly(x[2], y[2], W, F, twoQ, q, shift)
				x[3], y[3] = invbutterfly(x[3], y[3], W, F, twoQ, q, shift)
				x[4], y[4] = invbutterfly(x[4], y[4], W, F, twoQ, q, shift)
				x[5], y[5] = invbutterfly(x[5], y[5], W, F, twoQ, q, shift)
				x[6], y[6] = invbutterfly(x[6], y[6], W, F, twoQ, q, shift)
				x[7], y[7] = invbutterfly(x[7], y[7], W, F, twoQ, q, shift)
			}
		}

	case t == 4:

		for i, j1 := base, 0; i < base+m; i, j1 = i+2, j1+4*t {

			/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(invRoots)%2 != 0 */
			psi := (*[2]uint64)(unsafe.Pointer(&invRoots[i]))
			/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(invPrecon)%2 != 0 */
			psiF := (*[2]uint64)(unsafe.Pointer(&invPrecon[i]))
			/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(p)%16 != 0 */
			x := (*[16]uint64)(unsafe.Pointer(&p[j1]))

			x[0], x[4] = invbutterfly(x[0], x[4], psi[0], psiF[0], twoQ, q, shift)
			x[1], x[5] = invbutterfly(x[1], x[5], psi[0], psiF[0], twoQ, q, shift)
			x[2], x[6] = invbutterfly(x[2], x[6], psi[0], psiF[0], twoQ, q, shift)
			x[3], x[7] = invbutterfly(x[3], x[7], psi[0], psiF[0], twoQ, q, shift)
			x[8], x[12] = invbutterfly(x[8], x[12], psi[1], psiF[1], twoQ, q, shift)
			x[9], x[13] = invbutterfly(x[9], x[13], psi[1], psiF[1], twoQ, q, shift)
			x[10], x[14] = invbutterfly(x[10], x[14], psi[1], psiF[1], twoQ, q, shift)
			x[11], x[15] = invbutterfly(x[11], x[15], psi[1], psiF[1], twoQ, q, shift)
		}

	case t == 2:

		for i, j1 := base, 0; i < base+m; i, j1 = i+4, j1+8*t {

			/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(invRoots)%4 != 0 */
			psi := (*[4]uint64)(unsafe.Pointer(&invRoots[i]))
			/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(invPrecon)%4 != 0 */
			psiF := (*[4]uint64)(unsafe.Pointer(&invPrecon[i]))
			/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(p)%16 != 0 */
			x := (*[16]uint64)(unsafe.Pointer(&p[j1]))

			x[0], x[2] = invbutterfly(x[0], x[2], psi[0], psiF[0], twoQ, q, shift)
			x[1], x[3] = invbutterfly(x[1], x[3], psi[0], psiF[0], twoQ, q, shift)
			x[4], x[6] = invbutterfly(x[4], x[6], psi[1], psiF[1], twoQ, q, shift)
			x[5], x[7] = invbutterfly(x[5], x[7], psi[1], psiF[1], twoQ, q, shift)
			x[8], x[10] = invbutterfly(x[8], x[10], psi[2], psiF[2], twoQ, q, shift)
			x[9], x[11] = invbutterfly(x[9], x[11], psi[2], psiF[2], twoQ, q, shift)
			x[12], x[14] = invbutterfly(x[12], x[14], psi[3], psiF[3], twoQ, q, shift)
			x[13], x[15] = invbutterfly(x[13], x[15], psi[3], psiF[3], twoQ, q, shift)
		}

	default:

		for i, j1 := base, 0; i < base+m; i, j1 = i+8, j1+16 {

			/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(invRoots)%8 != 0 */
			psi := (*[8]uint64)(unsafe.Pointer(&invRoots[i]))
			/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(invPrecon)%8 != 0 */
			psiF := (*[8]uint64)(unsafe.Pointer(&invPrecon[i]))
			/* #nosec G103 -- behavior and consequences well understood, possible buffer overflow if len(p)%16 != 0 */
			x := (*[16]uint64)(unsafe.Pointer(&p[j1]))

			x[0], x[1] = invbutterfly(x[0], x[1], psi[0], psiF[0], twoQ, q, shift)
			x[2], x[3] = invbutterfly(x[2], x[3], psi[1], psiF[1], twoQ, q, shift)
			x[4], x[5] = invbutterfly(x[4], x[5], psi[2], psiF[2], twoQ, q, shift)
			x[6], x[7] = invbutterfly(x[6], x[7], psi[3], psiF[3], twoQ, q, shift)
			x[8], x[9] = invbutterfly(x[8], x[9], psi[4], psiF[4], twoQ, q, shift)
			x[10], x[11] = invbutterfly(x[10], x[11], psi[5], psiF[5], twoQ, q, shift)
			x[12], x[13] = invbutterfly(x[12], x[13], psi[6], psiF[6], twoQ, q, shift)
			x[14], x[15] = invbutterfly(x[14], x[15], psi[7], psiF[7], twoQ, q, shift)
		}
	}
}
