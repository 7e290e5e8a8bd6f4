//go:build !amd64 || purego

package ring

// vectorEnginesCompiled reports whether the lane engines are built for this target.
const vectorEnginesCompiled = false
