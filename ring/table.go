package ring

import (
	"encoding/binary"

	"github.com/zeebo/blake3"

	"github.com/tuneinsight/nttkernel/utils"
)

// Table stores the root-of-unity powers of the negacyclic NTT for a given
// degree n and modulus q, together with their Barrett companion factors.
//
// The forward table holds psi^i at index bitrev(i), where psi is a primitive
// 2n-th root of unity, the minimal one for tables built by NewTable. The inverse table holds, in the order in which
// the inverse transform consumes them (stage by stage, from the last forward
// stage to the first), the inverses of the forward powers. Index 0 of both
// tables is never read by the transforms.
//
// A Table is immutable once built and can be shared by concurrent transforms.
type Table struct {
	degree  uint64
	modulus uint64
	psi     uint64
	psiInv  uint64

	forward         []uint64
	forwardPrecon64 []uint64
	forwardPrecon52 []uint64

	inverse         []uint64
	inversePrecon64 []uint64
	inversePrecon52 []uint64
}

// NewTable builds the tables for the given degree and modulus.
// Returns ErrInvalidArgument if degree is not a power of two greater than one or if
// modulus does not fit the widest transform path (q < 2^62), and ErrDomain if the modulus
// admits no primitive 2n-th root of unity.
// The 52-bit companion factors are only computed when modulus < 2^50.
func NewTable(degree, modulus uint64) (t *Table, err error) {

	if err = checkTableArguments(degree, modulus); err != nil {
		return nil, err
	}

	psi, err := MinimalPrimitiveRoot(degree<<1, modulus)
	if err != nil {
		return nil, err
	}

	return newTableFromRoot(degree, modulus, psi)
}

// newTableFromRoot builds the tables from psi, a primitive 2n-th root of unity modulo q.
func newTableFromRoot(degree, modulus, psi uint64) (t *Table, err error) {

	t = &Table{degree: degree, modulus: modulus, psi: psi}

	if t.psiInv, err = InverseMod(psi, modulus); err != nil {
		return nil, err
	}

	logN := uint64(utils.Log2(degree))

	t.forward = make([]uint64, degree)
	rootsInv := make([]uint64, degree)

	var pow, powInv uint64 = 1, 1
	for i := uint64(0); i < degree; i++ {
		j := utils.BitReverse64(i, logN)
		t.forward[j] = pow
		rootsInv[j] = powInv
		pow = MultiplyMod(pow, t.psi, modulus)
		powInv = MultiplyMod(powInv, t.psiInv, modulus)
	}

	t.inverse = make([]uint64, degree)
	t.inverse[0] = 1

	idx := 1
	for m := int(degree >> 1); m > 0; m >>= 1 {
		for i := 0; i < m; i++ {
			t.inverse[idx] = rootsInv[m+i]
			idx++
		}
	}

	t.forwardPrecon64 = barrettFactors(t.forward, 64, modulus)
	t.inversePrecon64 = barrettFactors(t.inverse, 64, modulus)

	if modulus < BitShift52.MaxTransformModulus() {
		t.forwardPrecon52 = barrettFactors(t.forward, 52, modulus)
		t.inversePrecon52 = barrettFactors(t.inverse, 52, modulus)
	}

	return
}

func checkTableArguments(degree, modulus uint64) error {

	if degree < 2 || !utils.IsPowerOfTwo(degree) {
		return invalidArgumentf("degree %d must be a power of two greater than one", degree)
	}

	if modulus >= BitShift64.MaxTransformModulus() {
		return invalidArgumentf("modulus %d exceeds bound %d", modulus, BitShift64.MaxTransformModulus())
	}

	return nil
}

// Degree returns the transform degree n.
func (t *Table) Degree() uint64 {
	return t.degree
}

// Modulus returns the modulus q.
func (t *Table) Modulus() uint64 {
	return t.modulus
}

// Psi returns the primitive 2n-th root of unity the table was built from.
func (t *Table) Psi() uint64 {
	return t.psi
}

// ForwardPowers returns a copy of the forward powers, in bit-reversed order.
func (t *Table) ForwardPowers() []uint64 {
	return cloneSlice(t.forward)
}

// ForwardPrecon returns a copy of the companion factors of the forward powers
// at the given precision, or nil if they are not available.
func (t *Table) ForwardPrecon(bitShift BitShift) []uint64 {
	return cloneSlice(t.forwardPrecon(bitShift))
}

// InversePowers returns a copy of the inverse powers, in the order consumed by the inverse transform.
func (t *Table) InversePowers() []uint64 {
	return cloneSlice(t.inverse)
}

// InversePrecon returns a copy of the companion factors of the inverse powers
// at the given precision, or nil if they are not available.
func (t *Table) InversePrecon(bitShift BitShift) []uint64 {
	return cloneSlice(t.inversePrecon(bitShift))
}

func (t *Table) forwardPrecon(bitShift BitShift) []uint64 {
	switch bitShift {
	case BitShift64:
		return t.forwardPrecon64
	case BitShift52:
		return t.forwardPrecon52
	}
	return nil
}

func (t *Table) inversePrecon(bitShift BitShift) []uint64 {
	switch bitShift {
	case BitShift64:
		return t.inversePrecon64
	case BitShift52:
		return t.inversePrecon52
	}
	return nil
}

// Digest returns the BLAKE3 hash of the degree, the modulus and the forward and inverse powers.
// Two tables built independently for the same parameters have the same digest.
func (t *Table) Digest() (digest [32]byte) {

	h := blake3.New()

	buf := make([]byte, 8)
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf, v)
		// #nosec G104 -- blake3.Hasher.Write never returns an error
		h.Write(buf)
	}

	write(t.degree)
	write(t.modulus)

	for _, v := range t.forward {
		write(v)
	}

	for _, v := range t.inverse {
		write(v)
	}

	copy(digest[:], h.Sum(nil))

	return
}

func cloneSlice(s []uint64) []uint64 {
	if s == nil {
		return nil
	}
	c := make([]uint64, len(s))
	copy(c, s)
	return c
}
