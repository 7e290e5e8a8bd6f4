package ring

import (
	"math/big"
	"slices"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/tuneinsight/nttkernel/utils"
	"github.com/tuneinsight/nttkernel/utils/cpufeatures"
	"github.com/tuneinsight/nttkernel/utils/sampling"
)

// newTestSampler returns a deterministic uniform sampler.
func newTestSampler(t testing.TB) *UniformSampler {
	prng, err := sampling.NewKeyedPRNG([]byte{'n', 't', 't'})
	require.NoError(t, err)
	return NewUniformSampler(prng)
}

func TestNTT(t *testing.T) {
	testNTTSmallScenario(t)
	testNTTRoundTrip(t)
	testNTTReference(t)
	testNTTStageBounds(t)
	testNTTEvaluation(t)
	testNTTConvolution(t)
	testNTTInvalidArguments(t)
}

func testNTTSmallScenario(t *testing.T) {

	t.Run("Delta/N=8/Q=17", func(t *testing.T) {

		table, err := NewTable(8, 17)
		require.NoError(t, err)
		require.Equal(t, uint64(3), table.Psi())

		delta := []uint64{1, 0, 0, 0, 0, 0, 0, 0}
		ones := []uint64{1, 1, 1, 1, 1, 1, 1, 1}

		for _, e := range []TransformEngine{NewScalarEngine(), NewWideEngine(), NewNarrowEngine()} {

			p := slices.Clone(delta)
			require.NoError(t, e.Forward(8, 17, table.ForwardPowers(), table.ForwardPrecon(e.BitShift()), p))
			require.Equal(t, ones, p, e.Kind().String())

			if e.Kind() == EngineNarrow52 {
				continue
			}

			require.NoError(t, e.Inverse(8, 17, table.InversePowers(), table.InversePrecon(e.BitShift()), p))
			require.Equal(t, delta, p, e.Kind().String())
		}

		p := slices.Clone(delta)
		require.NoError(t, ReferenceForwardTransformToBitReverse(8, 17, table.ForwardPowers(), p))
		require.Equal(t, ones, p)
		require.NoError(t, ReferenceInverseTransformFromBitReverse(8, 17, table.InversePowers(), p))
		require.Equal(t, delta, p)
	})
}

func testNTTRoundTrip(t *testing.T) {

	engines := []TransformEngine{NewScalarEngine(), NewWideEngine(), NewNarrowEngine()}

	for _, tp := range testParams {

		degree, q := uint64(1)<<tp.logN, tp.modulus

		table, err := NewTable(degree, q)
		require.NoError(t, err)

		sampler := newTestSampler(t)

		for _, e := range engines {

			if q >= e.BitShift().MaxTransformModulus() {
				continue
			}

			t.Run(testString("RoundTrip/"+e.Kind().String(), degree, q), func(t *testing.T) {

				want := sampler.ReadNew(q, int(degree))
				have := slices.Clone(want)

				require.NoError(t, e.Forward(degree, q, table.ForwardPowers(), table.ForwardPrecon(e.BitShift()), have))

				for i := range have {
					require.Less(t, have[i], q)
				}

				// The narrow engine has no inverse, the 64-bit inverse is bit-exact on its output.
				inv := e
				if e.Kind() == EngineNarrow52 {
					inv = NewScalarEngine()
				}

				require.NoError(t, inv.Inverse(degree, q, table.InversePowers(), table.InversePrecon(inv.BitShift()), have))
				require.Equal(t, want, have)
			})
		}

		t.Run(testString("RoundTrip/exported", degree, q), func(t *testing.T) {

			want := sampler.ReadNew(q, int(degree))
			have := slices.Clone(want)

			require.NoError(t, ForwardTransformToBitReverse64(degree, q, table.ForwardPowers(), table.ForwardPrecon(BitShift64), have))
			require.NoError(t, InverseTransformFromBitReverse64(degree, q, table.InversePowers(), table.InversePrecon(BitShift64), have))
			require.Equal(t, want, have)
		})
	}
}

func testNTTReference(t *testing.T) {

	for _, tp := range testParams {

		degree, q := uint64(1)<<tp.logN, tp.modulus

		t.Run(testString("Reference", degree, q), func(t *testing.T) {

			table, err := NewTable(degree, q)
			require.NoError(t, err)

			sampler := newTestSampler(t)
			coeffs := sampler.ReadNew(q, int(degree))

			want := slices.Clone(coeffs)
			require.NoError(t, ReferenceForwardTransformToBitReverse(degree, q, table.ForwardPowers(), want))

			have := slices.Clone(coeffs)
			require.NoError(t, ForwardTransformToBitReverse64(degree, q, table.ForwardPowers(), table.ForwardPrecon(BitShift64), have))
			require.Equal(t, want, have)

			have = slices.Clone(coeffs)
			require.NoError(t, NewWideEngine().Forward(degree, q, table.ForwardPowers(), table.ForwardPrecon(BitShift64), have))
			require.Equal(t, want, have)

			if precon := table.ForwardPrecon(BitShift52); precon != nil {
				have = slices.Clone(coeffs)
				require.NoError(t, NewNarrowEngine().Forward(degree, q, table.ForwardPowers(), precon, have))
				require.Equal(t, want, have)
			}

			// Inverse of the reference output, against both implementations.
			invWant := slices.Clone(want)
			require.NoError(t, ReferenceInverseTransformFromBitReverse(degree, q, table.InversePowers(), invWant))
			require.Equal(t, coeffs, invWant)

			invHave := slices.Clone(want)
			require.NoError(t, InverseTransformFromBitReverse64(degree, q, table.InversePowers(), table.InversePrecon(BitShift64), invHave))
			require.Equal(t, invWant, invHave)
		})
	}
}

func testNTTStageBounds(t *testing.T) {

	for _, tp := range testParams {

		degree, q := uint64(1)<<tp.logN, tp.modulus

		table, err := NewTable(degree, q)
		require.NoError(t, err)

		for _, bs := range []BitShift{BitShift52, BitShift64} {

			precon := table.ForwardPrecon(bs)
			invPrecon := table.InversePrecon(bs)

			if precon == nil {
				continue
			}

			shift := uint(bs)

			t.Run(testString("StageBounds/"+bs.String(), degree, q), func(t *testing.T) {

				sampler := newTestSampler(t)
				n := int(degree)

				// Worst case inputs and random inputs.
				inputs := [][]uint64{sampler.ReadNew(q, n), make([]uint64, n)}
				for i := range inputs[1] {
					inputs[1][i] = q - 1
				}

				for _, in := range inputs {

					scalar := slices.Clone(in)
					lanes := slices.Clone(in)

					for m, tt := 1, n>>1; m < n; m, tt = m<<1, tt>>1 {

						nttStage(scalar, m, tt, q, table.forward, precon, shift)

						if n >= MinimumRingDegreeForLoopUnrolledNTT {
							nttStageLanes(lanes, m, tt, q, table.forward, precon, shift)
							require.Equal(t, scalar, lanes)
						}

						for i := range scalar {
							require.Less(t, scalar[i], 4*q)
						}
					}

					reduceFinal(scalar, q)

					// Inverse stages, on inputs in [0, 2q).
					for i := range scalar {
						scalar[i] += q * (uint64(i) & 1)
					}

					lanes = slices.Clone(scalar)

					for m, tt := n>>1, 1; m > 1; m, tt = m>>1, tt<<1 {

						inttStage(scalar, m, tt, q, table.inverse, invPrecon, shift)

						if n >= MinimumRingDegreeForLoopUnrolledNTT {
							inttStageLanes(lanes, m, tt, q, table.inverse, invPrecon, shift)
							require.Equal(t, scalar, lanes)
						}

						for i := range scalar {
							require.Less(t, scalar[i], 2*q)
						}
					}

					inttLastStage(scalar, q, table.inverse, shift)

					for i := range scalar {
						require.Less(t, scalar[i], 2*q)
					}

					reduceFinal(scalar, q)
					require.Equal(t, in, scalar)
				}
			})
		}
	}

	t.Run("ReduceFinal/Panics", func(t *testing.T) {
		require.Panics(t, func() { reduceFinal([]uint64{0, 4 * 17}, 17) })
	})
}

// testNTTEvaluation checks that the output at position j is the polynomial evaluated
// at psi^(2*bitrev(j)+1).
func testNTTEvaluation(t *testing.T) {

	for _, tp := range testParams[:5] {

		degree, q := uint64(1)<<tp.logN, tp.modulus

		t.Run(testString("Evaluation", degree, q), func(t *testing.T) {

			table, err := NewTable(degree, q)
			require.NoError(t, err)

			sampler := newTestSampler(t)
			coeffs := sampler.ReadNew(q, int(degree))

			have := slices.Clone(coeffs)
			require.NoError(t, ForwardTransformToBitReverse64(degree, q, table.ForwardPowers(), table.ForwardPrecon(BitShift64), have))

			// Natural order of the evaluation points psi^(2i+1).
			natural := slices.Clone(have)
			utils.BitReverseInPlaceSlice(natural, int(degree))

			logN := uint64(tp.logN)

			for i := uint64(0); i < degree; i++ {

				x := PowMod(table.Psi(), 2*i+1, q)

				// Horner
				var eval uint64
				for k := int(degree) - 1; k >= 0; k-- {
					eval = AddUIntMod(MultiplyMod(eval, x, q), coeffs[k], q)
				}

				require.Equal(t, eval, natural[i])
				require.Equal(t, eval, have[utils.BitReverse64(i, logN)])
			}
		})
	}
}

// testNTTConvolution checks that the pointwise product in the transformed domain is the
// negacyclic convolution in the coefficient domain.
func testNTTConvolution(t *testing.T) {

	for _, tp := range testParams[:6] {

		degree, q := uint64(1)<<tp.logN, tp.modulus

		t.Run(testString("Convolution", degree, q), func(t *testing.T) {

			table, err := NewTable(degree, q)
			require.NoError(t, err)

			sampler := newTestSampler(t)
			a := sampler.ReadNew(q, int(degree))
			b := sampler.ReadNew(q, int(degree))

			want := negacyclicConvolution(a, b, q)

			d := NewDispatcher(cpufeatures.Capabilities{WideVector: true, NarrowFMA: true})

			aNTT := slices.Clone(a)
			bNTT := slices.Clone(b)
			require.NoError(t, d.Forward(table, aNTT, BitShift64))
			require.NoError(t, d.Forward(table, bNTT, BitShift64))

			have := make([]uint64, degree)
			for i := range have {
				have[i] = MultiplyMod(aNTT[i], bNTT[i], q)
			}

			require.NoError(t, d.Inverse(table, have))
			require.Equal(t, want, have)
		})
	}
}

// negacyclicConvolution returns a * b mod (X^n + 1, q) by schoolbook multiplication.
func negacyclicConvolution(a, b []uint64, q uint64) []uint64 {

	n := len(a)
	Q := new(big.Int).SetUint64(q)

	acc := make([]*big.Int, n)
	for i := range acc {
		acc[i] = new(big.Int)
	}

	tmp := new(big.Int)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			tmp.Mul(new(big.Int).SetUint64(a[i]), new(big.Int).SetUint64(b[j]))
			if k := i + j; k < n {
				acc[k].Add(acc[k], tmp)
			} else {
				acc[k-n].Sub(acc[k-n], tmp)
			}
		}
	}

	res := make([]uint64, n)
	for i := range res {
		res[i] = acc[i].Mod(acc[i], Q).Uint64()
	}

	return res
}

func testNTTInvalidArguments(t *testing.T) {

	table, err := NewTable(16, 97)
	require.NoError(t, err)

	roots, precon := table.ForwardPowers(), table.ForwardPrecon(BitShift64)

	type invalidCase struct {
		name     string
		degree   uint64
		modulus  uint64
		roots    []uint64
		precon   []uint64
		elements int
	}

	cases := []invalidCase{
		{"Degree=0", 0, 97, roots, precon, 16},
		{"Degree=1", 1, 97, roots, precon, 16},
		{"Degree=12", 12, 97, roots, precon, 16},
		{"Modulus=2", 16, 2, roots, precon, 16},
		{"Modulus=89", 16, 89, roots, precon, 16},
		{"Modulus=2^62+1", 16, 1<<62 + 1, roots, precon, 16},
		{"ShortRoots", 16, 97, roots[:8], precon, 16},
		{"ShortPrecon", 16, 97, roots, precon[:8], 16},
		{"ShortElements", 16, 97, roots, precon, 8},
	}

	for _, c := range cases {

		t.Run("InvalidArgument/"+c.name, func(t *testing.T) {

			sampler := newTestSampler(t)
			in := sampler.ReadNew(97, c.elements)

			checks := map[string]func(p []uint64) error{
				"Forward64": func(p []uint64) error {
					return ForwardTransformToBitReverse64(c.degree, c.modulus, c.roots, c.precon, p)
				},
				"Inverse64": func(p []uint64) error {
					return InverseTransformFromBitReverse64(c.degree, c.modulus, c.roots, c.precon, p)
				},
				"Wide": func(p []uint64) error {
					return NewWideEngine().Forward(c.degree, c.modulus, c.roots, c.precon, p)
				},
			}

			// The reference transform takes no companion factors.
			if len(c.precon) == len(c.roots) {
				checks["Reference"] = func(p []uint64) error {
					return ReferenceForwardTransformToBitReverse(c.degree, c.modulus, c.roots, p)
				}
			}

			for name, f := range checks {
				p := slices.Clone(in)
				err := f(p)
				require.True(t, errors.Is(err, ErrInvalidArgument), "%s: %v", name, err)
				require.Equal(t, in, p, name)
			}
		})
	}

	t.Run("InvalidArgument/ElementRange", func(t *testing.T) {

		const q = 97

		invRoots := table.InversePowers()
		precon52, invPrecon := table.ForwardPrecon(BitShift52), table.InversePrecon(BitShift64)

		// Each check accepts bound-1 and rejects bound as the last element.
		checks := []struct {
			name  string
			bound uint64
			f     func(p []uint64) error
		}{
			{"Forward64", 4 * q, func(p []uint64) error { return ForwardTransformToBitReverse64(16, q, roots, precon, p) }},
			{"Inverse64", 2 * q, func(p []uint64) error { return InverseTransformFromBitReverse64(16, q, invRoots, invPrecon, p) }},
			{"ScalarForward", 4 * q, func(p []uint64) error { return NewScalarEngine().Forward(16, q, roots, precon, p) }},
			{"WideForward", 4 * q, func(p []uint64) error { return NewWideEngine().Forward(16, q, roots, precon, p) }},
			{"NarrowForward", 4 * q, func(p []uint64) error { return NewNarrowEngine().Forward(16, q, roots, precon52, p) }},
			{"ScalarInverse", 2 * q, func(p []uint64) error { return NewScalarEngine().Inverse(16, q, invRoots, invPrecon, p) }},
			{"WideInverse", 2 * q, func(p []uint64) error { return NewWideEngine().Inverse(16, q, invRoots, invPrecon, p) }},
			{"ReferenceForward", q, func(p []uint64) error { return ReferenceForwardTransformToBitReverse(16, q, roots, p) }},
			{"ReferenceInverse", q, func(p []uint64) error { return ReferenceInverseTransformFromBitReverse(16, q, invRoots, p) }},
		}

		sampler := newTestSampler(t)

		for _, c := range checks {

			in := sampler.ReadNew(q, 16)

			in[15] = c.bound - 1
			require.NoError(t, c.f(slices.Clone(in)), c.name)

			in[15] = c.bound
			p := slices.Clone(in)
			err := c.f(p)
			require.True(t, errors.Is(err, ErrInvalidArgument), "%s: %v", c.name, err)
			require.Equal(t, in, p, c.name)
		}

		// Far out of range: an error, not a failed final reduction.
		small, err := NewTable(8, 17)
		require.NoError(t, err)

		in := []uint64{1 << 63, 0, 0, 0, 0, 0, 0, 0}
		p := slices.Clone(in)
		require.NotPanics(t, func() {
			err = ForwardTransformToBitReverse64(8, 17, small.ForwardPowers(), small.ForwardPrecon(BitShift64), p)
		})
		require.True(t, errors.Is(err, ErrInvalidArgument), err)
		require.Equal(t, in, p)
	})

	t.Run("InvalidArgument/MissingPrecon", func(t *testing.T) {
		p := make([]uint64, 16)
		for _, e := range []TransformEngine{NewScalarEngine(), NewWideEngine(), NewNarrowEngine()} {
			require.True(t, errors.Is(e.Forward(16, 97, roots, nil, p), ErrInvalidArgument))
		}
	})

	t.Run("Unsupported/NarrowInverse", func(t *testing.T) {
		p := make([]uint64, 16)
		err := NewNarrowEngine().Inverse(16, 97, table.InversePowers(), table.InversePrecon(BitShift52), p)
		require.True(t, errors.Is(err, ErrUnsupported))
	})
}
