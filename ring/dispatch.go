package ring

import (
	"github.com/rs/zerolog"

	"github.com/tuneinsight/nttkernel/utils/cpufeatures"
)

// Dispatcher selects, for each call, the transform engine among the narrow 52-bit,
// the wide 64-bit and the scalar implementations.
//
// The forward transform resolves, in priority order, to:
//   - the narrow engine, if it is compiled in, the CPU supports it, 52-bit precision is
//     requested and the modulus is below 2^50;
//   - the wide engine, if it is compiled in and the CPU supports it;
//   - the scalar engine.
//
// The inverse transform resolves to the wide engine if available, else to the scalar engine.
// A Dispatcher holds no mutable state and can be used concurrently.
type Dispatcher struct {
	caps    cpufeatures.Capabilities
	scalar  TransformEngine
	wide    TransformEngine
	narrow  TransformEngine
	logger  zerolog.Logger
	metrics *Metrics
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(d *Dispatcher)

// WithLogger sets the logger on which dispatch decisions are written at debug level.
func WithLogger(logger zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics sets the metrics updated by the dispatcher.
func WithMetrics(metrics *Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = metrics
	}
}

// NewDispatcher returns a dispatcher for the given capabilities, typically the
// result of cpufeatures.Detect.
func NewDispatcher(caps cpufeatures.Capabilities, opts ...DispatcherOption) *Dispatcher {

	d := &Dispatcher{
		caps:   caps,
		scalar: NewScalarEngine(),
		logger: zerolog.Nop(),
	}

	if vectorEnginesCompiled && caps.WideVector {
		d.wide = NewWideEngine()
	}

	if vectorEnginesCompiled && caps.NarrowFMA {
		d.narrow = NewNarrowEngine()
	}

	for _, opt := range opts {
		opt(d)
	}

	d.logger.Debug().
		Stringer("capabilities", caps).
		Bool("compiled", vectorEnginesCompiled).
		Msg("transform dispatcher ready")

	return d
}

// Capabilities returns the capabilities the dispatcher was built with.
func (d *Dispatcher) Capabilities() cpufeatures.Capabilities {
	return d.caps
}

// ForwardEngine returns the engine selected for a forward transform with the given
// modulus and requested precision.
func (d *Dispatcher) ForwardEngine(modulus uint64, bitShift BitShift) TransformEngine {

	if d.narrow != nil && bitShift == BitShift52 && modulus < BitShift52.MaxTransformModulus() {
		return d.narrow
	}

	if d.wide != nil {
		return d.wide
	}

	return d.scalar
}

// InverseEngine returns the engine selected for an inverse transform.
func (d *Dispatcher) InverseEngine() TransformEngine {

	if d.wide != nil {
		return d.wide
	}

	return d.scalar
}

// ForwardTransformToBitReverse evaluates in place the negacyclic NTT of elements[:degree]
// on the selected engine. precon holds the companion factors of roots at the requested
// precision, which must be 52 or 64. When the selected engine runs at a different
// precision, the companion factors are recomputed for it.
func (d *Dispatcher) ForwardTransformToBitReverse(degree, modulus uint64, roots, precon, elements []uint64, bitShift BitShift) error {

	if bitShift != BitShift52 && bitShift != BitShift64 {
		return invalidArgumentf("transform bit shift must be 52 or 64, got %d", uint(bitShift))
	}

	e := d.ForwardEngine(modulus, bitShift)

	if e.BitShift() != bitShift {

		if err := checkTransformArguments(degree, modulus, e.BitShift(), roots, precon, elements); err != nil {
			return err
		}

		d.logger.Debug().
			Stringer("engine", e.Kind()).
			Stringer("requested", bitShift).
			Msg("recomputing companion factors")

		precon = barrettFactors(roots[:degree], uint(e.BitShift()), modulus)
	}

	return d.forward(e, degree, modulus, roots, precon, elements)
}

// InverseTransformFromBitReverse evaluates in place the inverse negacyclic NTT of elements[:degree]
// on the selected engine. invPrecon holds the 64-bit companion factors of invRoots.
func (d *Dispatcher) InverseTransformFromBitReverse(degree, modulus uint64, invRoots, invPrecon, elements []uint64) error {
	return d.inverse(d.InverseEngine(), degree, modulus, invRoots, invPrecon, elements)
}

// Forward evaluates in place the negacyclic NTT of elements[:t.Degree()] using the table t.
func (d *Dispatcher) Forward(t *Table, elements []uint64, bitShift BitShift) error {

	if bitShift != BitShift52 && bitShift != BitShift64 {
		return invalidArgumentf("transform bit shift must be 52 or 64, got %d", uint(bitShift))
	}

	e := d.ForwardEngine(t.modulus, bitShift)

	return d.forward(e, t.degree, t.modulus, t.forward, t.forwardPrecon(e.BitShift()), elements)
}

// Inverse evaluates in place the inverse negacyclic NTT of elements[:t.Degree()] using the table t.
func (d *Dispatcher) Inverse(t *Table, elements []uint64) error {
	e := d.InverseEngine()
	return d.inverse(e, t.degree, t.modulus, t.inverse, t.inversePrecon(e.BitShift()), elements)
}

func (d *Dispatcher) forward(e TransformEngine, degree, modulus uint64, roots, precon, elements []uint64) (err error) {

	d.logger.Debug().
		Stringer("engine", e.Kind()).
		Uint64("degree", degree).
		Uint64("modulus", modulus).
		Stringer("bit_shift", e.BitShift()).
		Msg("forward transform")

	if err = e.Forward(degree, modulus, roots, precon, elements); err != nil {
		return
	}

	d.metrics.transform("forward", e.Kind())

	return
}

func (d *Dispatcher) inverse(e TransformEngine, degree, modulus uint64, invRoots, invPrecon, elements []uint64) (err error) {

	d.logger.Debug().
		Stringer("engine", e.Kind()).
		Uint64("degree", degree).
		Uint64("modulus", modulus).
		Stringer("bit_shift", e.BitShift()).
		Msg("inverse transform")

	if err = e.Inverse(degree, modulus, invRoots, invPrecon, elements); err != nil {
		return
	}

	d.metrics.transform("inverse", e.Kind())

	return
}

// EltwiseFMAMod is the dispatched counterpart of EltwiseFMAMod: it runs at 52-bit precision
// if the narrow unit is available and modulus < 2^52, on the wide lanes if available,
// and on the scalar kernel otherwise. All paths return the same result.
func (d *Dispatcher) EltwiseFMAMod(out, arg1 []uint64, arg2 uint64, arg3 []uint64, modulus uint64) error {

	if err := checkFMAArguments(out, arg1, arg2, arg3, modulus); err != nil {
		return err
	}

	switch d.EltwiseEngine(modulus) {
	case EngineNarrow52:
		fmaLanes(out, arg1, arg2, barrettFactor(arg2, 52, modulus), arg3, modulus, 52)
	case EngineWide64:
		fmaLanes(out, arg1, arg2, barrettFactor(arg2, 64, modulus), arg3, modulus, 64)
	default:
		return EltwiseFMAMod(out, arg1, arg2, arg3, modulus)
	}

	return nil
}

// EltwiseCmpSubMod is the dispatched counterpart of EltwiseCmpSubMod, with the selection of
// EltwiseFMAMod. The narrow and wide paths share the 8-lane kernel, which reduces with the
// 64-bit Barrett factor. All paths return the same result.
func (d *Dispatcher) EltwiseCmpSubMod(out, in []uint64, modulus uint64, cmp CmpInt, bound, diff uint64) error {

	if err := checkCmpSubModArguments(out, in, modulus, cmp, diff); err != nil {
		return err
	}

	// Every residue modulo 1 is zero.
	if modulus == 1 {
		clear(out[:len(in)])
		return nil
	}

	switch d.EltwiseEngine(modulus) {
	case EngineNarrow52, EngineWide64:
		qBarrett, err := BarrettFactor64(modulus)
		if err != nil {
			return err
		}
		cmpSubModLanes(out, in, modulus, qBarrett, cmp, bound, diff)
	default:
		return EltwiseCmpSubMod(out, in, modulus, cmp, bound, diff)
	}

	return nil
}

// EltwiseEngine returns the engine on which the elementwise operations modulo modulus run:
// the narrow unit if available and modulus < 2^52, else the wide lanes if available,
// else the scalar kernel.
func (d *Dispatcher) EltwiseEngine(modulus uint64) EngineKind {
	switch {
	case d.narrow != nil && modulus < 1<<52:
		return EngineNarrow52
	case d.wide != nil:
		return EngineWide64
	default:
		return EngineScalar
	}
}
