package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}

	if cap(buf) >= n {
		return buf[:n]
	}

	return make([]float64, n)
}

// Interleave writes planar src channels into frame-interleaved dst and returns
// the number of frames written.
func Interleave(dst []float64, src [][]float64) int {
	channels := len(src)
	if channels == 0 {
		return 0
	}

	frames := len(dst) / channels
	for ch := range src {
		if len(src[ch]) < frames {
			frames = len(src[ch])
		}
	}

	for i := 0; i < frames; i++ {
		for ch := range src {
			dst[i*channels+ch] = src[ch][i]
		}
	}

	return frames
}
