package ring

import (
	"math"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/require"

	"github.com/tuneinsight/nttkernel/utils/sampling"
)

func TestUniformSampler(t *testing.T) {

	for _, q := range []uint64{2, 17, Qi30[0], qAbove50, Qi60[0]} {

		t.Run(testString("Uniform", 1<<14, q), func(t *testing.T) {

			prng, err := sampling.NewKeyedPRNG([]byte{0x42})
			require.NoError(t, err)

			sampler := NewUniformSampler(prng)
			coeffs := sampler.ReadNew(q, 1<<14)

			data := make(stats.Float64Data, len(coeffs))
			for i, c := range coeffs {
				require.Less(t, c, q)
				data[i] = float64(c) / float64(q)
			}

			// Uniform on [0, 1) has mean 1/2 and standard deviation 1/sqrt(12),
			// the sample mean is within 6 standard errors.
			mean, err := data.Mean()
			require.NoError(t, err)

			expected := 0.5 - 0.5/float64(q)
			require.InDelta(t, expected, mean, 6/math.Sqrt(12*float64(len(coeffs))))

			// Same key, same stream.
			prng.Reset()
			require.Equal(t, coeffs, NewUniformSampler(prng).ReadNew(q, 1<<14))
		})
	}

	t.Run("Uniform/Modulus=1", func(t *testing.T) {
		require.Equal(t, []uint64{0, 0, 0, 0}, newTestSampler(t).ReadNew(1, 4))
	})

	t.Run("Uniform/Modulus=0", func(t *testing.T) {
		sampler := newTestSampler(t)
		require.Panics(t, func() { sampler.ReadNew(0, 4) })
	})
}
