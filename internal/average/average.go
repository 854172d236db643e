// Package average computes simple moving averages over finite sequences.
package average

// Compute returns the moving averages of values over a sliding window of
// the given length. result[i] is the mean of values[i : i+window].
//
// The second return is false when there are fewer values than the window
// holds. That case means "not enough data yet" and is distinct from a
// present but empty result. window must be positive; callers validate it
// when the stream request is built.
//
// Every window is summed left to right and then divided, with no running
// total, so results are bit-for-bit identical to a naive reference.
func Compute(values []float64, window int) ([]float64, bool) {
	if window <= 0 || len(values) < window {
		return nil, false
	}

	n := len(values) - window + 1
	out := make([]float64, n)
	w := float64(window)
	for i := 0; i < n; i++ {
		sum := 0.0
		for _, v := range values[i : i+window] {
			sum += v
		}
		out[i] = sum / w
	}
	return out, true
}
