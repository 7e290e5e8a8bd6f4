package buffer

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// ReadUint64 reads a uint64 from r into c.
func ReadUint64(r Reader, c *uint64) (n int64, err error) {

	if c == nil {
		return 0, errors.New("cannot ReadUint64: c is nil")
	}

	var bb [8]byte

	inc, err := io.ReadFull(r, bb[:])
	if err != nil {
		return int64(inc), errors.Wrap(err, "cannot ReadUint64")
	}

	*c = binary.LittleEndian.Uint64(bb[:])

	return int64(inc), nil
}

// ReadUint64Slice reads len(c) uint64 from r into c.
func ReadUint64Slice(r Reader, c []uint64) (n int64, err error) {

	for len(c) > 0 {

		// At least one element, at most what is buffered.
		size := min(max(r.Size()>>3, 1), len(c)) << 3

		var slice []byte
		if slice, err = r.Peek(size); err != nil && len(slice) < 8 {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return n, errors.Wrap(err, "cannot ReadUint64Slice")
		}

		read := len(slice) >> 3
		for i := 0; i < read; i++ {
			c[i] = binary.LittleEndian.Uint64(slice[i<<3:])
		}

		var inc int
		inc, err = r.Discard(read << 3)
		n += int64(inc)

		if err != nil {
			return
		}

		c = c[read:]
	}

	return n, nil
}
