// Package cpufeatures probes the running CPU for the vector extensions used by
// the transform engines and exposes the result as an immutable descriptor.
package cpufeatures

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/cpuid/v2"
	"golang.org/x/sys/cpu"
)

// DisableEnv is the environment variable read by Detect to mask capabilities.
// It holds a comma-separated list among "wide" and "narrow".
const DisableEnv = "NTTKERNEL_DISABLE"

// Capabilities is the capability oracle consumed by the dispatch layer.
// The zero value describes a CPU without vector extensions.
type Capabilities struct {
	// WideVector reports 512-bit integer vectors with 64-bit lanes (AVX512F and AVX512DQ).
	WideVector bool
	// NarrowFMA reports 52-bit integer fused multiply-add (AVX512IFMA).
	NarrowFMA bool
	// Brand is the CPU brand string, informative only.
	Brand string
}

var (
	detected     Capabilities
	detectedOnce sync.Once
)

// Detect probes the CPU once per process and returns the result, with the
// capabilities listed in DisableEnv masked out.
func Detect() Capabilities {
	detectedOnce.Do(func() {
		detected = Capabilities{
			WideVector: cpu.X86.HasAVX512F && cpu.X86.HasAVX512DQ,
			NarrowFMA:  cpu.X86.HasAVX512F && cpu.X86.HasAVX512IFMA && cpuid.CPU.Has(cpuid.AVX512IFMA),
			Brand:      strings.TrimSpace(cpuid.CPU.BrandName),
		}
		detected = detected.Mask(os.Getenv(DisableEnv))
	})
	return detected
}

// Mask returns a copy of c with the capabilities named in the comma-separated
// list disabled. Unknown names are ignored.
func (c Capabilities) Mask(list string) Capabilities {
	for _, name := range strings.Split(list, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "wide":
			c.WideVector = false
		case "narrow":
			c.NarrowFMA = false
		case "all":
			c.WideVector = false
			c.NarrowFMA = false
		}
	}
	return c
}

// String returns a human-readable summary of the capabilities.
func (c Capabilities) String() string {
	features := []string{}
	if c.WideVector {
		features = append(features, "wide-64")
	}
	if c.NarrowFMA {
		features = append(features, "narrow-fma-52")
	}
	if len(features) == 0 {
		features = append(features, "scalar")
	}
	if c.Brand == "" {
		return strings.Join(features, ",")
	}
	return fmt.Sprintf("%s (%s)", strings.Join(features, ","), c.Brand)
}
