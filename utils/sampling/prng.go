package sampling

import (
	"crypto/rand"
	"io"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// PRNG is a source of random bytes.
type PRNG interface {
	io.Reader
}

// SystemPRNG reads from crypto/rand. It is safe for concurrent use.
type SystemPRNG struct{}

// NewPRNG returns a PRNG backed by the system entropy source.
func NewPRNG() (*SystemPRNG, error) {
	return &SystemPRNG{}, nil
}

func (SystemPRNG) Read(p []byte) (n int, err error) {
	return rand.Read(p)
}

// KeyedPRNG expands a key into an unbounded byte stream with the BLAKE2b XOF.
// Equal keys give equal streams, so a selftest or a randomized test can be replayed
// from its key alone.
//
// Reads are serialized, but concurrent readers observe an interleaving that depends on
// scheduling. Use one KeyedPRNG per goroutine when the stream must be reproducible.
type KeyedPRNG struct {
	mu   sync.Mutex
	key  []byte
	xof  blake2b.XOF
	read uint64
}

// NewKeyedPRNG returns a KeyedPRNG seeded with a copy of key. A nil key is the empty key.
// Keys longer than 64 bytes are rejected by blake2b.
func NewKeyedPRNG(key []byte) (*KeyedPRNG, error) {

	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, key)
	if err != nil {
		return nil, err
	}

	return &KeyedPRNG{key: append([]byte{}, key...), xof: xof}, nil
}

// Key returns a copy of the seed.
func (prng *KeyedPRNG) Key() []byte {
	return append([]byte{}, prng.key...)
}

// Offset returns the number of bytes read since creation or since the last Reset.
func (prng *KeyedPRNG) Offset() uint64 {
	prng.mu.Lock()
	defer prng.mu.Unlock()
	return prng.read
}

func (prng *KeyedPRNG) Read(p []byte) (n int, err error) {
	prng.mu.Lock()
	defer prng.mu.Unlock()
	n, err = prng.xof.Read(p)
	prng.read += uint64(n)
	return
}

// Reset rewinds the stream to its first byte.
func (prng *KeyedPRNG) Reset() {
	prng.mu.Lock()
	defer prng.mu.Unlock()
	prng.xof.Reset()
	prng.read = 0
}
