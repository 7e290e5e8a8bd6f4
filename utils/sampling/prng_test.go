package sampling_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/nttkernel/utils/sampling"
)

func Test_PRNG(t *testing.T) {

	key := []byte{0x49, 0x0a, 0x42, 0x3d, 0x97, 0x9d, 0xc1, 0x07, 0xa1, 0xd7, 0xe9, 0x7b, 0x3b, 0xce, 0xa1, 0xdb,
		0x42, 0xf3, 0xa6, 0xd5, 0x75, 0xd2, 0x0c, 0x92, 0xb7, 0x35, 0xce, 0x0c, 0xee, 0x09, 0x7c, 0x98}

	t.Run("Reset", func(t *testing.T) {

		Ha, err := sampling.NewKeyedPRNG(key)
		require.NoError(t, err)
		Hb, err := sampling.NewKeyedPRNG(key)
		require.NoError(t, err)

		sum0 := make([]byte, 512)
		sum1 := make([]byte, 512)

		for i := 0; i < 128; i++ {
			_, err = Hb.Read(sum1)
			require.NoError(t, err)
		}

		require.Equal(t, uint64(128*512), Hb.Offset())

		Hb.Reset()
		require.Zero(t, Hb.Offset())

		_, err = Ha.Read(sum0)
		require.NoError(t, err)
		_, err = Hb.Read(sum1)
		require.NoError(t, err)

		require.Equal(t, sum0, sum1)
	})

	t.Run("Key", func(t *testing.T) {
		H, err := sampling.NewKeyedPRNG(key)
		require.NoError(t, err)
		k := H.Key()
		require.Equal(t, key, k)
		k[0] ^= 0xff
		require.Equal(t, key, H.Key())
	})

	t.Run("KeyTooLong", func(t *testing.T) {
		_, err := sampling.NewKeyedPRNG(make([]byte, 65))
		require.Error(t, err)
	})

	t.Run("RandInt", func(t *testing.T) {
		max := big.NewInt(17)
		for i := 0; i < 64; i++ {
			n := sampling.RandInt(max)
			require.True(t, n.Sign() >= 0)
			require.True(t, n.Cmp(max) < 0)
		}
	})
}
