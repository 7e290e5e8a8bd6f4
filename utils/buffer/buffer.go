// Package buffer reads and writes little-endian uint64 values and slices on
// io.Writer and io.Reader implementations that expose their internal buffers.
package buffer

import (
	"io"

	"github.com/pkg/errors"
)

// Writer is implemented by bufio.Writer and by Buffer.
type Writer interface {
	io.Writer
	Flush() (err error)
	AvailableBuffer() []byte
	Available() int
}

// Reader is implemented by bufio.Reader and by Buffer.
type Reader interface {
	io.Reader
	Size() int
	Peek(n int) ([]byte, error)
	Discard(n int) (discarded int, err error)
}

// ErrBufferFull is returned by Buffer.Write past the capacity of the buffer.
var ErrBufferFull = errors.New("buffer full")

// Buffer is a fixed-size []byte-based Writer and Reader.
// Writes beyond its capacity fail with ErrBufferFull.
type Buffer struct {
	buf []byte
	n   int
	off int
}

// NewBuffer returns a Buffer backed by buf, with the read and write offsets at buf[0].
func NewBuffer(buf []byte) *Buffer {
	return &Buffer{buf: buf}
}

// NewBufferSize returns an empty Buffer of the given capacity.
func NewBufferSize(size int) *Buffer {
	return &Buffer{buf: make([]byte, size)}
}

func (b *Buffer) Write(p []byte) (n int, err error) {
	if len(p)+b.n > len(b.buf) {
		return 0, errors.Wrapf(ErrBufferFull, "writing %d bytes with %d available", len(p), b.Available())
	}
	n = copy(b.buf[b.n:], p)
	b.n += n
	return
}

// Flush is a no-op.
func (b *Buffer) Flush() (err error) {
	return nil
}

// AvailableBuffer returns an empty slice with b.Available() capacity, valid
// until the next write on b.
func (b *Buffer) AvailableBuffer() []byte {
	return b.buf[b.n:][:0]
}

// Available returns the number of bytes that can still be written.
func (b *Buffer) Available() int {
	return len(b.buf) - b.n
}

// Bytes returns the backing slice.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

func (b *Buffer) Read(p []byte) (n int, err error) {
	n = copy(p, b.buf[b.off:])
	b.off += n
	if n < len(p) {
		return n, io.EOF
	}
	return
}

// Size returns the number of bytes left to read.
func (b *Buffer) Size() int {
	return len(b.buf) - b.off
}

// Peek returns the next n bytes without advancing the read offset.
func (b *Buffer) Peek(n int) ([]byte, error) {
	if b.off+n > len(b.buf) {
		return b.buf[b.off:], io.EOF
	}
	return b.buf[b.off : b.off+n], nil
}

// Discard advances the read offset by n bytes.
func (b *Buffer) Discard(n int) (discarded int, err error) {
	if remain := len(b.buf) - b.off; n > remain {
		b.off = len(b.buf)
		return remain, io.EOF
	}
	b.off += n
	return n, nil
}
