package factorization_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/nttkernel/utils/factorization"
)

const (
	prime uint64 = 0x1fffffffffe00001
)

func TestIsPrime(t *testing.T) {
	// 2^64 - 59 is prime
	require.True(t, factorization.IsPrime(new(big.Int).SetUint64(0xffffffffffffffc5)))
	// 2^64 + 13 is prime
	bigPrime, _ := new(big.Int).SetString("18446744073709551629", 10)
	require.True(t, factorization.IsPrime(bigPrime))
	// 2^64 - 1 is not prime
	require.False(t, factorization.IsPrime(new(big.Int).SetUint64(0xffffffffffffffff)))
}

func TestGetFactors(t *testing.T) {

	t.Run("GetFactors", func(t *testing.T) {
		m := new(big.Int).SetUint64(prime - 1)
		factors := factorization.GetFactors(m)
		require.True(t, checkFactorization(new(big.Int).Set(m), factors))
		for i := range factors {
			require.True(t, factorization.IsPrime(factors[i]))
			if i > 0 {
				require.Equal(t, -1, factors[i-1].Cmp(factors[i]))
			}
		}
	})

	t.Run("Small", func(t *testing.T) {
		factors := factorization.GetFactors(big.NewInt(16))
		require.Len(t, factors, 1)
		require.Equal(t, int64(2), factors[0].Int64())

		factors = factorization.GetFactors(big.NewInt(17 - 1))
		require.Len(t, factors, 1)

		require.Nil(t, factorization.GetFactors(big.NewInt(1)))
	})

	t.Run("SemiPrime", func(t *testing.T) {
		// 1000003 * 998244353
		m := new(big.Int).Mul(big.NewInt(1000003), big.NewInt(998244353))
		factors := factorization.GetFactors(m)
		require.Len(t, factors, 2)
		require.Equal(t, int64(1000003), factors[0].Int64())
		require.Equal(t, int64(998244353), factors[1].Int64())
	})

	t.Run("PollardRho", func(t *testing.T) {
		m := new(big.Int).SetUint64(prime - 1)
		d := factorization.GetFactorPollardRho(m)
		require.Equal(t, 0, new(big.Int).Mod(m, d).Sign())

		m = new(big.Int).Mul(big.NewInt(1000003), big.NewInt(998244353))
		d = factorization.GetFactorPollardRho(m)
		require.Equal(t, 0, new(big.Int).Mod(m, d).Sign())
		require.NotEqual(t, 0, d.Cmp(m))
		require.NotEqual(t, 0, d.Cmp(big.NewInt(1)))
	})
}

func checkFactorization(p *big.Int, factors []*big.Int) bool {
	zero := new(big.Int)
	for _, factor := range factors {
		for new(big.Int).Mod(p, factor).Cmp(zero) == 0 {
			p.Quo(p, factor)
		}
	}

	return p.Cmp(new(big.Int).SetUint64(1)) == 0
}
