package ring

import (
	"github.com/pkg/errors"
)

// EngineKind identifies an implementation of the transform engine.
type EngineKind int

const (
	// EngineScalar is the portable 64-bit kernel, always available.
	EngineScalar = EngineKind(iota)
	// EngineWide64 is the 8-lane kernel at 64-bit precision.
	EngineWide64
	// EngineNarrow52 is the 8-lane kernel at 52-bit precision, matching fused multiply-add units.
	EngineNarrow52
)

func (k EngineKind) String() string {
	switch k {
	case EngineScalar:
		return "scalar"
	case EngineWide64:
		return "wide-64"
	case EngineNarrow52:
		return "narrow-52"
	default:
		return "unknown"
	}
}

// TransformEngine is the interface implemented by the NTT kernels.
// All implementations produce identical outputs for identical inputs.
type TransformEngine interface {
	// Kind returns the kind of the engine.
	Kind() EngineKind

	// BitShift returns the precision of the companion factors expected by the engine.
	BitShift() BitShift

	// Forward evaluates in place the negacyclic NTT of elements[:degree], from natural
	// to bit-reversed order. Inputs must be in [0, 4*modulus); outputs are in [0, modulus).
	Forward(degree, modulus uint64, roots, precon, elements []uint64) error

	// Inverse evaluates in place the inverse negacyclic NTT of elements[:degree], from
	// bit-reversed to natural order. Inputs must be in [0, 2*modulus); outputs are in [0, modulus).
	Inverse(degree, modulus uint64, invRoots, invPrecon, elements []uint64) error
}

// checkEngineArguments validates the arguments of an engine transform whose inputs must be
// in [0, inputModFactor*modulus).
func checkEngineArguments(e TransformEngine, degree, modulus, inputModFactor uint64, roots, precon, elements []uint64) error {
	if precon == nil {
		return invalidArgumentf("%v engine requires %v companion factors", e.Kind(), e.BitShift())
	}
	if err := checkTransformArguments(degree, modulus, e.BitShift(), roots, precon, elements); err != nil {
		return err
	}
	return checkElementRange(degree, modulus, inputModFactor, elements)
}

// NewScalarEngine returns the portable engine.
func NewScalarEngine() TransformEngine {
	return scalarEngine{}
}

// NewWideEngine returns the 8-lane 64-bit engine.
func NewWideEngine() TransformEngine {
	return wideEngine{}
}

// NewNarrowEngine returns the 8-lane 52-bit engine. It only implements the forward transform.
func NewNarrowEngine() TransformEngine {
	return narrowEngine{}
}

type scalarEngine struct{}

func (scalarEngine) Kind() EngineKind    { return EngineScalar }
func (scalarEngine) BitShift() BitShift { return BitShift64 }

func (e scalarEngine) Forward(degree, modulus uint64, roots, precon, elements []uint64) error {
	if err := checkEngineArguments(e, degree, modulus, 4, roots, precon, elements); err != nil {
		return err
	}
	nttScalar(elements[:degree], modulus, roots, precon, 64)
	return nil
}

func (e scalarEngine) Inverse(degree, modulus uint64, invRoots, invPrecon, elements []uint64) error {
	if err := checkEngineArguments(e, degree, modulus, 2, invRoots, invPrecon, elements); err != nil {
		return err
	}
	inttScalar(elements[:degree], modulus, invRoots, invPrecon, 64)
	return nil
}

type wideEngine struct{}

func (wideEngine) Kind() EngineKind    { return EngineWide64 }
func (wideEngine) BitShift() BitShift { return BitShift64 }

func (e wideEngine) Forward(degree, modulus uint64, roots, precon, elements []uint64) error {
	if err := checkEngineArguments(e, degree, modulus, 4, roots, precon, elements); err != nil {
		return err
	}
	nttLanes(elements[:degree], modulus, roots, precon, 64)
	return nil
}

func (e wideEngine) Inverse(degree, modulus uint64, invRoots, invPrecon, elements []uint64) error {
	if err := checkEngineArguments(e, degree, modulus, 2, invRoots, invPrecon, elements); err != nil {
		return err
	}
	inttLanes(elements[:degree], modulus, invRoots, invPrecon, 64)
	return nil
}

type narrowEngine struct{}

func (narrowEngine) Kind() EngineKind    { return EngineNarrow52 }
func (narrowEngine) BitShift() BitShift { return BitShift52 }

func (e narrowEngine) Forward(degree, modulus uint64, roots, precon, elements []uint64) error {
	if err := checkEngineArguments(e, degree, modulus, 4, roots, precon, elements); err != nil {
		return err
	}
	nttLanes(elements[:degree], modulus, roots, precon, 52)
	return nil
}

// Inverse is not implemented at 52-bit precision: the scaled inverse roots are
// not guaranteed to keep the intermediate values below 2^52.
func (e narrowEngine) Inverse(degree, modulus uint64, invRoots, invPrecon, elements []uint64) error {
	return errors.Wrapf(ErrUnsupported, "inverse transform on %v engine", e.Kind())
}
