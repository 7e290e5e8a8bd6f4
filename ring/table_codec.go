package ring

import (
	"bufio"
	"io"
	"slices"

	"github.com/pkg/errors"

	"github.com/tuneinsight/nttkernel/utils/buffer"
)

const (
	// "NTTKTBL1" in little-endian
	tableMagic uint64 = 0x314c42544b54544e

	// MaxEncodedDegree is the largest degree accepted by Table.ReadFrom.
	MaxEncodedDegree = 1 << 24
)

// BinarySize returns the size in bytes of the encoding of t.
func (t *Table) BinarySize() int {
	return 8 * (4 + int(t.degree))
}

// WriteTo writes t on w: a magic number, the degree, the modulus and the root psi,
// followed by the forward powers, all as little-endian uint64.
// The companion factors and the inverse powers are not written, ReadFrom recomputes them.
func (t *Table) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		for _, v := range []uint64{tableMagic, t.degree, t.modulus, t.psi} {
			if inc, err = buffer.WriteUint64(w, v); err != nil {
				return n + inc, errors.Wrap(err, "cannot WriteTo: header")
			}
			n += inc
		}

		if inc, err = buffer.WriteUint64Slice(w, t.forward); err != nil {
			return n + inc, errors.Wrap(err, "cannot WriteTo: forward powers")
		}

		n += inc

		return n, w.Flush()

	default:
		return t.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on t a table written by WriteTo. The table is rebuilt from the
// encoded root, which must be a primitive 2n-th root of unity, and the encoded
// forward powers must match the rebuilt ones.
// Returns ErrInvalidArgument on a malformed encoding and ErrDomain on an invalid root.
func (t *Table) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var header [4]uint64
		var inc int64

		for i := range header {
			if inc, err = buffer.ReadUint64(r, &header[i]); err != nil {
				return n + inc, errors.Wrap(err, "cannot ReadFrom: header")
			}
			n += inc
		}

		magic, degree, modulus, psi := header[0], header[1], header[2], header[3]

		if magic != tableMagic {
			return n, invalidArgumentf("cannot ReadFrom: invalid magic number %#x", magic)
		}

		if degree > MaxEncodedDegree {
			return n, invalidArgumentf("cannot ReadFrom: degree %d exceeds %d", degree, MaxEncodedDegree)
		}

		if err = checkTableArguments(degree, modulus); err != nil {
			return n, errors.Wrap(err, "cannot ReadFrom")
		}

		if !IsPrime(modulus) {
			return n, domainf("cannot ReadFrom: modulus %d is not prime", modulus)
		}

		if psi >= modulus || !IsPrimitiveRoot(psi, degree<<1, modulus) {
			return n, domainf("cannot ReadFrom: %d is not a primitive %d-th root of unity modulo %d", psi, degree<<1, modulus)
		}

		forward := make([]uint64, degree)
		if inc, err = buffer.ReadUint64Slice(r, forward); err != nil {
			return n + inc, errors.Wrap(err, "cannot ReadFrom: forward powers")
		}

		n += inc

		var decoded *Table
		if decoded, err = newTableFromRoot(degree, modulus, psi); err != nil {
			return n, errors.Wrap(err, "cannot ReadFrom")
		}

		if !slices.Equal(forward, decoded.forward) {
			return n, invalidArgumentf("cannot ReadFrom: forward powers do not match root %d", psi)
		}

		*t = *decoded

		return n, nil

	default:
		return t.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes t on a slice of bytes, see WriteTo.
func (t *Table) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(t.BinarySize())
	_, err = t.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary on t.
func (t *Table) UnmarshalBinary(p []byte) (err error) {
	_, err = t.ReadFrom(buffer.NewBuffer(p))
	return
}
