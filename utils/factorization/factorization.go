// Package factorization implements integer factorization for the search of
// multiplicative generators modulo NTT-friendly primes.
package factorization

import (
	"math/big"
	"sort"

	"github.com/tuneinsight/nttkernel/utils/sampling"
)

var smallPrimes = []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67, 71, 73, 79, 83, 89, 97}

// IsPrime applies the Baillie-PSW test, which is 100% accurate for numbers bellow 2^64.
func IsPrime(m *big.Int) bool {
	return m.ProbablyPrime(0)
}

// GetFactors returns all the distinct prime factors of m, in increasing order.
func GetFactors(m *big.Int) (factors []*big.Int) {

	m = new(big.Int).Set(m)

	if m.Cmp(big.NewInt(1)) <= 0 {
		return nil
	}

	set := map[string]*big.Int{}

	tmp := new(big.Int)
	for _, p := range smallPrimes {
		bp := new(big.Int).SetUint64(p)
		if tmp.Mod(m, bp).Sign() == 0 {
			set[bp.String()] = bp
			for tmp.Mod(m, bp).Sign() == 0 {
				m.Quo(m, bp)
			}
		}
	}

	collect(m, set)

	for _, f := range set {
		factors = append(factors, f)
	}

	sort.Slice(factors, func(i, j int) bool {
		return factors[i].Cmp(factors[j]) < 0
	})

	return
}

func collect(m *big.Int, set map[string]*big.Int) {

	if m.Cmp(big.NewInt(1)) == 0 {
		return
	}

	if IsPrime(m) {
		set[m.String()] = new(big.Int).Set(m)
		return
	}

	d := GetFactorPollardRho(m)

	collect(d, set)
	collect(new(big.Int).Quo(m, d), set)
}

// GetFactorPollardRho returns a non-trivial factor of the composite m
// using Pollard's rho algorithm with Floyd cycle detection.
// The function does not terminate if m is prime.
func GetFactorPollardRho(m *big.Int) (d *big.Int) {

	if m.Bit(0) == 0 {
		return big.NewInt(2)
	}

	one := big.NewInt(1)
	x := new(big.Int)
	y := new(big.Int)
	diff := new(big.Int)
	d = new(big.Int)

	f := func(v, c *big.Int) {
		v.Mul(v, v)
		v.Add(v, c)
		v.Mod(v, m)
	}

	for {

		x.Set(sampling.RandInt(m))
		y.Set(x)
		c := sampling.RandInt(m)

		d.SetUint64(1)

		for d.Cmp(one) == 0 {
			f(x, c)
			f(y, c)
			f(y, c)
			diff.Sub(x, y)
			diff.Abs(diff)
			d.GCD(nil, nil, diff, m)
		}

		if d.Cmp(m) != 0 {
			return
		}
	}
}
