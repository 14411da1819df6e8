package effects

import "github.com/pulusound/grit/dsp/core"

// HardClip applies (drive + 1) gain to x and clamps the result to [-1, 1].
func HardClip(x, drive float64) float64 {
	return core.Clamp(x*(drive+1), -1, 1)
}

// ClipInPlace applies HardClip to every sample in buf.
func ClipInPlace(buf []float64, drive float64) {
	gain := drive + 1
	for i, x := range buf {
		buf[i] = core.Clamp(x*gain, -1, 1)
	}
}
