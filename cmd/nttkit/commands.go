package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tuneinsight/nttkernel/ring"
	"github.com/tuneinsight/nttkernel/utils/cpufeatures"
	"github.com/tuneinsight/nttkernel/utils/sampling"
)

const (
	degreeFlag  = "degree"
	modulusFlag = "modulus"

	// largest prime below 2^50 congruent to 1 mod 2^12
	defaultNarrowModulus = 0x3ffffffffc001
)

func degreeFlagWithDefault(value uint64) *cli.Uint64Flag {
	return &cli.Uint64Flag{
		Name:    degreeFlag,
		Aliases: []string{"n"},
		Usage:   "Transform degree, a power of two",
		Value:   value,
	}
}

func modulusFlagRequired() *cli.Uint64Flag {
	return &cli.Uint64Flag{
		Name:     modulusFlag,
		Aliases:  []string{"q"},
		Usage:    "Prime modulus, decimal or 0x-prefixed hexadecimal",
		Required: true,
	}
}

//==============
//=== PRIMES ===
//==============

type primesResult struct {
	Bits   int      `yaml:"bits"`
	Degree uint64   `yaml:"degree"`
	Primes []uint64 `yaml:"primes"`
}

func (r primesResult) writeText(w io.Writer) error {
	for _, q := range r.Primes {
		if _, err := fmt.Fprintf(w, "%d\t%#x\n", q, q); err != nil {
			return err
		}
	}
	return nil
}

func primesCommand() *cli.Command {
	return &cli.Command{
		Name:      "primes",
		Usage:     "Search primes q in [2^bits, 2^(bits+1)) with q = 1 mod 2*degree",
		UsageText: "nttkit primes --bits 60 [--count 4] [--degree 4096] [--prefer-small]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "bits",
				Aliases:  []string{"b"},
				Usage:    "The primes are searched in [2^bits, 2^(bits+1))",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"k"},
				Usage:   "Maximum number of primes",
				Value:   1,
			},
			degreeFlagWithDefault(1024),
			&cli.BoolFlag{
				Name:  "prefer-small",
				Usage: "Scan from the low end of the interval",
			},
		},
		Action: primes,
	}
}

func primes(c *cli.Context) error {

	log := createLogger(c)

	bits, count, degree := c.Int("bits"), c.Int("count"), c.Uint64(degreeFlag)

	found, err := ring.GeneratePrimes(count, bits, c.Bool("prefer-small"), degree)
	if err != nil {
		return errors.Wrap(err, "generating primes")
	}

	if len(found) < count {
		log.Warn().Int("requested", count).Int("found", len(found)).Msg("interval exhausted")
	}

	return render(c, primesResult{Bits: bits, Degree: degree, Primes: found})
}

//============
//=== ROOT ===
//============

type rootResult struct {
	Degree  uint64 `yaml:"degree"`
	Modulus uint64 `yaml:"modulus"`
	// Minimal primitive 2n-th root
	Psi        uint64 `yaml:"psi"`
	PsiInverse uint64 `yaml:"psi_inverse"`
	// psi^2, a primitive n-th root
	Omega uint64 `yaml:"omega"`
}

func (r rootResult) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "degree\t%d\n", r.Degree)
	fmt.Fprintf(tw, "modulus\t%d\n", r.Modulus)
	fmt.Fprintf(tw, "psi\t%d\n", r.Psi)
	fmt.Fprintf(tw, "psi_inverse\t%d\n", r.PsiInverse)
	fmt.Fprintf(tw, "omega\t%d\n", r.Omega)
	return tw.Flush()
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:      "root",
		Usage:     "Find the minimal primitive 2n-th root of unity modulo q",
		UsageText: "nttkit root --degree 1024 --modulus 0x3ffffffffc001",
		Flags: []cli.Flag{
			degreeFlagWithDefault(1024),
			modulusFlagRequired(),
		},
		Action: root,
	}
}

func root(c *cli.Context) error {

	degree, q := c.Uint64(degreeFlag), c.Uint64(modulusFlag)

	psi, err := ring.MinimalPrimitiveRoot(2*degree, q)
	if err != nil {
		return errors.Wrapf(err, "primitive %d-th root modulo %d", 2*degree, q)
	}

	psiInv, err := ring.InverseMod(psi, q)
	if err != nil {
		return errors.Wrap(err, "inverting root")
	}

	omega := ring.MultiplyMod(psi, psi, q)

	if degree > 1 && !ring.IsPrimitiveRoot(omega, degree, q) {
		panic(fmt.Sprintf("%d is not a primitive %d-th root modulo %d", omega, degree, q))
	}

	return render(c, rootResult{Degree: degree, Modulus: q, Psi: psi, PsiInverse: psiInv, Omega: omega})
}

//=============
//=== TABLE ===
//=============

type tableResult struct {
	Degree  uint64   `yaml:"degree"`
	Modulus uint64   `yaml:"modulus"`
	Psi     uint64   `yaml:"psi"`
	Digest  string   `yaml:"digest"`
	Forward []uint64 `yaml:"forward"`
	Inverse []uint64 `yaml:"inverse"`
	// Nil when the modulus is not below 2^50
	ForwardPrecon52 []uint64 `yaml:"forward_precon_52,omitempty"`
	ForwardPrecon64 []uint64 `yaml:"forward_precon_64"`
}

func (r tableResult) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "degree\t%d\n", r.Degree)
	fmt.Fprintf(tw, "modulus\t%d\n", r.Modulus)
	fmt.Fprintf(tw, "psi\t%d\n", r.Psi)
	fmt.Fprintf(tw, "digest\t%s\n", r.Digest)
	fmt.Fprintf(tw, "\nindex\tforward\tinverse\tprecon64\tprecon52\n")
	for i := range r.Forward {
		precon52 := "-"
		if r.ForwardPrecon52 != nil {
			precon52 = fmt.Sprintf("%d", r.ForwardPrecon52[i])
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\n", i, r.Forward[i], r.Inverse[i], r.ForwardPrecon64[i], precon52)
	}
	return tw.Flush()
}

func tableCommand() *cli.Command {
	return &cli.Command{
		Name:      "table",
		Usage:     "Build the root of unity table of (degree, modulus) and print its digest and first entries",
		UsageText: "nttkit table --degree 1024 --modulus 0x3ffffffffc001 [--entries 8] [--save table.bin]",
		Flags: []cli.Flag{
			degreeFlagWithDefault(1024),
			modulusFlagRequired(),
			&cli.IntFlag{
				Name:  "entries",
				Usage: "Number of leading table entries to print",
				Value: 8,
			},
			&cli.PathFlag{
				Name:  "save",
				Usage: "Write the binary encoding of the table to this file",
			},
		},
		Action: table,
	}
}

func table(c *cli.Context) error {

	degree, q := c.Uint64(degreeFlag), c.Uint64(modulusFlag)

	t, err := ring.NewTable(degree, q)
	if err != nil {
		return errors.Wrap(err, "building table")
	}

	entries := min(max(c.Int("entries"), 0), int(degree))

	digest := t.Digest()

	res := tableResult{
		Degree:          degree,
		Modulus:         q,
		Psi:             t.Psi(),
		Digest:          hex.EncodeToString(digest[:]),
		Forward:         t.ForwardPowers()[:entries],
		Inverse:         t.InversePowers()[:entries],
		ForwardPrecon64: t.ForwardPrecon(ring.BitShift64)[:entries],
	}

	if precon := t.ForwardPrecon(ring.BitShift52); precon != nil {
		res.ForwardPrecon52 = precon[:entries]
	}

	if path := c.Path("save"); path != "" {
		if err = saveTable(t, path); err != nil {
			return err
		}
		log := createLogger(c)
		log.Info().Str("path", path).Int("bytes", t.BinarySize()).Msg("table saved")
	}

	return render(c, res)
}

func saveTable(t *ring.Table, path string) (err error) {

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating table file")
	}

	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "closing table file")
		}
	}()

	if _, err = t.WriteTo(f); err != nil {
		return errors.Wrap(err, "writing table file")
	}

	return nil
}

//===========
//=== CPU ===
//===========

type cpuResult struct {
	Brand      string `yaml:"brand"`
	WideVector bool   `yaml:"wide_vector"`
	NarrowFMA  bool   `yaml:"narrow_fma"`
	Disabled   string `yaml:"disabled,omitempty"`
	Modulus    uint64 `yaml:"modulus"`
	Forward52  string `yaml:"forward_52"`
	Forward64  string `yaml:"forward_64"`
	Inverse    string `yaml:"inverse"`
}

func (r cpuResult) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "brand\t%s\n", r.Brand)
	fmt.Fprintf(tw, "wide vector\t%t\n", r.WideVector)
	fmt.Fprintf(tw, "narrow fma\t%t\n", r.NarrowFMA)
	if r.Disabled != "" {
		fmt.Fprintf(tw, "disabled\t%s\n", r.Disabled)
	}
	fmt.Fprintf(tw, "forward 52-bit (q=%#x)\t%s\n", r.Modulus, r.Forward52)
	fmt.Fprintf(tw, "forward 64-bit (q=%#x)\t%s\n", r.Modulus, r.Forward64)
	fmt.Fprintf(tw, "inverse\t%s\n", r.Inverse)
	return tw.Flush()
}

func cpuCommand() *cli.Command {
	return &cli.Command{
		Name:  "cpu",
		Usage: "Print the detected capabilities and the engine selected for each transform path",
		Description: fmt.Sprintf(`Capabilities can be masked with the %s environment variable,
a comma-separated list among wide, narrow and all.`, cpufeatures.DisableEnv),
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:    modulusFlag,
				Aliases: []string{"q"},
				Usage:   "Modulus used for the engine selection",
				Value:   defaultNarrowModulus,
			},
		},
		Action: cpu,
	}
}

func cpu(c *cli.Context) error {

	caps := cpufeatures.Detect()
	d := ring.NewDispatcher(caps, ring.WithLogger(createLogger(c)))
	q := c.Uint64(modulusFlag)

	return render(c, cpuResult{
		Brand:      caps.Brand,
		WideVector: caps.WideVector,
		NarrowFMA:  caps.NarrowFMA,
		Disabled:   os.Getenv(cpufeatures.DisableEnv),
		Modulus:    q,
		Forward52:  d.ForwardEngine(q, ring.BitShift52).Kind().String(),
		Forward64:  d.ForwardEngine(q, ring.BitShift64).Kind().String(),
		Inverse:    d.InverseEngine().Kind().String(),
	})
}

//================
//=== SELFTEST ===
//================

type selftestResult struct {
	Degree      uint64             `yaml:"degree"`
	Modulus     uint64             `yaml:"modulus"`
	Trials      int                `yaml:"trials"`
	Engines     []string           `yaml:"engines"`
	Mismatches  int64              `yaml:"mismatches"`
	TableBuilds float64            `yaml:"table_builds"`
	Transforms  map[string]float64 `yaml:"transforms"`
}

func (r selftestResult) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "degree\t%d\n", r.Degree)
	fmt.Fprintf(tw, "modulus\t%d\n", r.Modulus)
	fmt.Fprintf(tw, "trials\t%d\n", r.Trials)
	fmt.Fprintf(tw, "engines\t%s\n", strings.Join(r.Engines, ","))
	fmt.Fprintf(tw, "mismatches\t%d\n", r.Mismatches)
	fmt.Fprintf(tw, "table builds\t%.0f\n", r.TableBuilds)
	keys := make([]string, 0, len(r.Transforms))
	for k := range r.Transforms {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(tw, "transforms %s\t%.0f\n", k, r.Transforms[k])
	}
	return tw.Flush()
}

func selftestCommand() *cli.Command {
	return &cli.Command{
		Name:  "selftest",
		Usage: "Cross-check every transform engine against the reference transform",
		Description: `Runs the forward transform of random inputs on the scalar, wide and narrow
engines and on the dispatcher, compares the outputs with the reference transform
and checks that the inverse transform recovers the inputs.
Without --modulus, a prime below 2^50 is generated so that every engine is exercised.`,
		Flags: []cli.Flag{
			degreeFlagWithDefault(1024),
			&cli.Uint64Flag{
				Name:    modulusFlag,
				Aliases: []string{"q"},
				Usage:   "Prime modulus, generated if zero",
			},
			&cli.IntFlag{
				Name:  "trials",
				Usage: "Number of random inputs",
				Value: 16,
			},
			&cli.StringFlag{
				Name:  "seed",
				Usage: "Key of the pseudo-random input generator",
				Value: "nttkit",
			},
		},
		Action: selftest,
	}
}

// trialContext holds the read-only state shared by concurrent trials.
type trialContext struct {
	dispatcher *ring.Dispatcher
	table      *ring.Table
	roots      []uint64
	engines    []ring.TransformEngine
	precon     map[ring.BitShift][]uint64
}

// run returns the number of outputs that differ from the reference.
func (tc *trialContext) run(in []uint64) (mismatches int, err error) {

	degree, q := tc.table.Degree(), tc.table.Modulus()

	want := slices.Clone(in)
	if err = ring.ReferenceForwardTransformToBitReverse(degree, q, tc.roots, want); err != nil {
		return
	}

	for _, e := range tc.engines {
		have := slices.Clone(in)
		if err = e.Forward(degree, q, tc.roots, tc.precon[e.BitShift()], have); err != nil {
			return 0, errors.Wrapf(err, "%v engine", e.Kind())
		}
		if !slices.Equal(want, have) {
			mismatches++
		}
	}

	for _, bs := range []ring.BitShift{ring.BitShift52, ring.BitShift64} {

		have := slices.Clone(in)

		if err = tc.dispatcher.Forward(tc.table, have, bs); err != nil {
			return 0, errors.Wrapf(err, "dispatched %v forward", bs)
		}
		if !slices.Equal(want, have) {
			mismatches++
		}

		if err = tc.dispatcher.Inverse(tc.table, have); err != nil {
			return 0, errors.Wrap(err, "dispatched inverse")
		}
		if !slices.Equal(in, have) {
			mismatches++
		}
	}

	return
}

func selftest(c *cli.Context) error {

	log := createLogger(c)

	degree, q, trials := c.Uint64(degreeFlag), c.Uint64(modulusFlag), c.Int("trials")

	if q == 0 {
		found, err := ring.GeneratePrimes(1, 49, false, degree)
		if err != nil {
			return errors.Wrap(err, "generating modulus")
		}
		if len(found) == 0 {
			return errors.Errorf("no prime below 2^50 congruent to 1 mod %d", 2*degree)
		}
		q = found[0]
	}

	reg := prometheus.NewRegistry()
	metrics := ring.NewMetrics(reg)

	t, err := ring.NewTableCache(metrics).Get(degree, q)
	if err != nil {
		return errors.Wrap(err, "building table")
	}

	tc := &trialContext{
		dispatcher: ring.NewDispatcher(cpufeatures.Detect(), ring.WithLogger(log), ring.WithMetrics(metrics)),
		table:      t,
		roots:      t.ForwardPowers(),
		engines:    []ring.TransformEngine{ring.NewScalarEngine(), ring.NewWideEngine()},
		precon: map[ring.BitShift][]uint64{
			ring.BitShift52: t.ForwardPrecon(ring.BitShift52),
			ring.BitShift64: t.ForwardPrecon(ring.BitShift64),
		},
	}

	if tc.precon[ring.BitShift52] != nil {
		tc.engines = append(tc.engines, ring.NewNarrowEngine())
	}

	prng, err := sampling.NewKeyedPRNG([]byte(c.String("seed")))
	if err != nil {
		return errors.Wrap(err, "seeding input generator")
	}

	sampler := ring.NewUniformSampler(prng)
	inputs := make([][]uint64, max(trials, 0))
	for i := range inputs {
		inputs[i] = sampler.ReadNew(q, int(degree))
	}

	log.Info().
		Uint64("degree", degree).
		Uint64("modulus", q).
		Int("trials", len(inputs)).
		Uint64("input_bytes", prng.Offset()).
		Stringer("capabilities", tc.dispatcher.Capabilities()).
		Msg("running selftest")

	var mismatches atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			n, err := tc.run(in)
			if err != nil {
				return errors.Wrapf(err, "trial %d", i)
			}
			if n != 0 {
				log.Error().Int("trial", i).Int("mismatches", n).Msg("engine outputs differ")
			}
			mismatches.Add(int64(n))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	transforms, builds, err := gatherCounts(reg)
	if err != nil {
		return err
	}

	res := selftestResult{
		Degree:      degree,
		Modulus:     q,
		Trials:      len(inputs),
		Mismatches:  mismatches.Load(),
		TableBuilds: builds,
		Transforms:  transforms,
	}

	for _, e := range tc.engines {
		res.Engines = append(res.Engines, e.Kind().String())
	}

	if err := render(c, res); err != nil {
		return err
	}

	if res.Mismatches != 0 {
		return errors.Errorf("selftest failed: %d mismatches", res.Mismatches)
	}

	return nil
}

// gatherCounts reads the dispatched transform counters, keyed by "direction/engine",
// and the table build counter.
func gatherCounts(g prometheus.Gatherer) (transforms map[string]float64, builds float64, err error) {

	families, err := g.Gather()
	if err != nil {
		return nil, 0, errors.Wrap(err, "gathering metrics")
	}

	transforms = map[string]float64{}

	for _, mf := range families {
		switch mf.GetName() {
		case "nttkernel_ring_transforms_total":
			for _, m := range mf.GetMetric() {
				labels := make([]string, 0, len(m.GetLabel()))
				for _, lp := range m.GetLabel() {
					labels = append(labels, lp.GetValue())
				}
				transforms[strings.Join(labels, "/")] = m.GetCounter().GetValue()
			}
		case "nttkernel_ring_table_builds_total":
			for _, m := range mf.GetMetric() {
				builds += m.GetCounter().GetValue()
			}
		}
	}

	return transforms, builds, nil
}
