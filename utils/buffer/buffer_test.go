package buffer

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestBuffer(t *testing.T) {

	values := make([]uint64, 1000)
	for i := range values {
		values[i] = uint64(i) * 0x9e3779b97f4a7c15
	}

	t.Run("Buffer", func(t *testing.T) {

		buf := NewBufferSize(8 * (len(values) + 1))

		n, err := WriteUint64(buf, 0xdeadbeef)
		require.NoError(t, err)
		require.Equal(t, int64(8), n)

		n, err = WriteUint64Slice(buf, values)
		require.NoError(t, err)
		require.Equal(t, int64(8*len(values)), n)
		require.Equal(t, 0, buf.Available())

		_, err = WriteUint64(buf, 1)
		require.Error(t, err)

		r := NewBuffer(buf.Bytes())

		var head uint64
		_, err = ReadUint64(r, &head)
		require.NoError(t, err)
		require.Equal(t, uint64(0xdeadbeef), head)

		have := make([]uint64, len(values))
		n, err = ReadUint64Slice(r, have)
		require.NoError(t, err)
		require.Equal(t, int64(8*len(values)), n)
		require.Equal(t, values, have)

		_, err = ReadUint64(r, &head)
		require.Error(t, err)
	})

	t.Run("Bufio", func(t *testing.T) {

		// Buffers smaller than the payload force flushes and refills.
		var stream bytes.Buffer
		w := bufio.NewWriterSize(&stream, 64)

		_, err := WriteUint64Slice(w, values)
		require.NoError(t, err)
		require.NoError(t, w.Flush())
		require.Equal(t, 8*len(values), stream.Len())

		r := bufio.NewReaderSize(&stream, 64)
		have := make([]uint64, len(values))
		_, err = ReadUint64Slice(r, have)
		require.NoError(t, err)
		require.Equal(t, values, have)
	})

	t.Run("Truncated", func(t *testing.T) {
		r := NewBuffer(make([]byte, 8*3+4))
		have := make([]uint64, 4)
		n, err := ReadUint64Slice(r, have)
		require.True(t, errors.Is(err, io.ErrUnexpectedEOF))
		require.Equal(t, int64(24), n)
	})
}
