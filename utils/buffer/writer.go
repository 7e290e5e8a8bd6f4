package buffer

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// WriteUint64 writes c to w.
func WriteUint64(w Writer, c uint64) (n int64, err error) {

	if w.Available() < 8 {
		if err = w.Flush(); err != nil {
			return
		}

		if w.Available() < 8 {
			return 0, errors.New("cannot WriteUint64: less than 8 bytes available after flush")
		}
	}

	buf := binary.LittleEndian.AppendUint64(w.AvailableBuffer(), c)

	inc, err := w.Write(buf)

	return int64(inc), err
}

// WriteUint64Slice writes the elements of c to w, flushing as often as needed.
func WriteUint64Slice(w Writer, c []uint64) (n int64, err error) {

	for len(c) > 0 {

		available := w.Available() >> 3

		if available == 0 {

			if err = w.Flush(); err != nil {
				return
			}

			if available = w.Available() >> 3; available == 0 {
				return n, errors.New("cannot WriteUint64Slice: less than 8 bytes available after flush")
			}
		}

		chunk := c[:min(available, len(c))]

		buf := w.AvailableBuffer()
		for _, v := range chunk {
			buf = binary.LittleEndian.AppendUint64(buf, v)
		}

		var inc int
		inc, err = w.Write(buf)
		n += int64(inc)

		if err != nil {
			return
		}

		c = c[len(chunk):]
	}

	return
}
