// Package sampling provides the byte sources used to draw random residues:
// the system entropy source and a keyed, replayable stream.
package sampling

import (
	"crypto/rand"
	"math/big"
)

// RandInt returns a uniform integer in [0, max) from crypto/rand. It panics if max <= 0
// or if the entropy source fails.
func RandInt(max *big.Int) (n *big.Int) {
	var err error
	if n, err = rand.Int(rand.Reader, max); err != nil {
		panic(err)
	}
	return
}
