package utils

// BitReverseInPlaceSlice permutes slice[:n] in place, moving the element at index i
// to index bitrev(i). n must be a power of two.
func BitReverseInPlaceSlice[V any](slice []V, n int) {

	// j tracks bitrev(i) by a reversed increment.
	for i, j := 1, 0; i < n; i++ {

		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit

		if i < j {
			slice[i], slice[j] = slice[j], slice[i]
		}
	}
}
