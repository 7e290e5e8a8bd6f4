package cpufeatures

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	c0 := Detect()
	c1 := Detect()
	require.Equal(t, c0, c1)

	if c0.NarrowFMA {
		require.True(t, detected.NarrowFMA)
	}
}

func TestMask(t *testing.T) {

	full := Capabilities{WideVector: true, NarrowFMA: true}

	require.Equal(t, full, full.Mask(""))
	require.Equal(t, Capabilities{NarrowFMA: true}, full.Mask("wide"))
	require.Equal(t, Capabilities{WideVector: true}, full.Mask(" Narrow "))
	require.Equal(t, Capabilities{}, full.Mask("wide,narrow"))
	require.Equal(t, Capabilities{}, full.Mask("all"))
	require.Equal(t, full, full.Mask("avx2,unknown"))

	// Mask returns a copy
	require.True(t, full.WideVector)
}

func TestString(t *testing.T) {
	require.Equal(t, "scalar", Capabilities{}.String())
	require.Equal(t, "wide-64,narrow-fma-52", Capabilities{WideVector: true, NarrowFMA: true}.String())
	require.Equal(t, "wide-64 (Xeon)", Capabilities{WideVector: true, Brand: "Xeon"}.String())
}
