package ring

import (
	"math/big"

	"github.com/tuneinsight/nttkernel/utils"
	"github.com/tuneinsight/nttkernel/utils/factorization"
)

// PrimitiveRoot computes the smallest generator of the multiplicative group of the prime q.
// The unique prime factors of q-1 can be given to speed up the search, otherwise q-1 is factored.
func PrimitiveRoot(q uint64, factors []uint64) (uint64, []uint64, error) {

	if q < 3 || !IsPrime(q) {
		return 0, factors, domainf("modulus %d is not an odd prime", q)
	}

	if factors != nil {
		if err := CheckFactors(q-1, factors); err != nil {
			return 0, factors, err
		}
	} else {

		factorsBig := factorization.GetFactors(new(big.Int).SetUint64(q - 1)) //Factor q-1, might be slow

		factors = make([]uint64, len(factorsBig))
		for i := range factors {
			factors[i] = factorsBig[i].Uint64()
		}
	}

	for g := uint64(2); g < q; g++ {
		if isGenerator(g, q, factors) {
			return g, factors, nil
		}
	}

	return 0, factors, domainf("no generator found modulo %d", q)
}

func isGenerator(g, q uint64, factors []uint64) bool {
	// if for any factor of q-1, g^(q-1)/factor = 1 mod q, g is not a primitive root
	for _, factor := range factors {
		if PowMod(g, (q-1)/factor, q) == 1 {
			return false
		}
	}
	return true
}

// CheckFactors checks that the given list of factors contains
// all the unique primes of m.
func CheckFactors(m uint64, factors []uint64) (err error) {

	for _, factor := range factors {

		if !IsPrime(factor) {
			return invalidArgumentf("composite factor %d", factor)
		}

		for m%factor == 0 {
			m /= factor
		}
	}

	if m != 1 {
		return invalidArgumentf("incomplete factor list")
	}

	return
}

// CheckPrimitiveRoot checks that g is a generator of the multiplicative group
// of the prime q, given the factors of q-1.
func CheckPrimitiveRoot(g, q uint64, factors []uint64) (err error) {

	if err = CheckFactors(q-1, factors); err != nil {
		return
	}

	if !isGenerator(g, q, factors) {
		return domainf("%d is not a generator modulo %d", g, q)
	}

	return
}

// IsPrimitiveRoot returns true if root is a primitive degree-th root of unity modulo modulus,
// i.e. root^degree = 1 and root^(degree/2) != 1. The degree must be a power of two
// greater than one, otherwise the function returns false.
func IsPrimitiveRoot(root, degree, modulus uint64) bool {

	if degree < 2 || !utils.IsPowerOfTwo(degree) || modulus < 2 || root%modulus == 0 {
		return false
	}

	return PowMod(root, degree, modulus) == 1 && PowMod(root, degree>>1, modulus) != 1
}

// GeneratePrimitiveRoot returns a primitive degree-th root of unity modulo the prime modulus,
// derived from the smallest generator of the multiplicative group.
// Returns ErrInvalidArgument if degree is not a power of two greater than one, and ErrDomain if
// modulus is not prime or if degree does not divide modulus - 1.
func GeneratePrimitiveRoot(degree, modulus uint64) (uint64, error) {

	if degree < 2 || !utils.IsPowerOfTwo(degree) {
		return 0, invalidArgumentf("degree %d must be a power of two greater than one", degree)
	}

	if modulus < 3 || (modulus-1)%degree != 0 {
		return 0, domainf("no primitive %d-th root of unity modulo %d", degree, modulus)
	}

	g, _, err := PrimitiveRoot(modulus, nil)
	if err != nil {
		return 0, err
	}

	root := PowMod(g, (modulus-1)/degree, modulus)

	if !IsPrimitiveRoot(root, degree, modulus) {
		return 0, domainf("no primitive %d-th root of unity modulo %d", degree, modulus)
	}

	return root, nil
}

// MinimalPrimitiveRoot returns the smallest primitive degree-th root of unity modulo the prime
// modulus. The primitive roots are the odd powers of any one of them, which are all visited.
// Errors are those of GeneratePrimitiveRoot.
func MinimalPrimitiveRoot(degree, modulus uint64) (uint64, error) {

	root, err := GeneratePrimitiveRoot(degree, modulus)
	if err != nil {
		return 0, err
	}

	rootSquare := MultiplyMod(root, root, modulus)

	minRoot, current := root, root
	for i := uint64(0); i < degree>>1; i++ {
		if current < minRoot {
			minRoot = current
		}
		current = MultiplyMod(current, rootSquare, modulus)
	}

	return minRoot, nil
}
