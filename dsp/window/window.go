// Package window generates cosine-sum analysis windows and applies them to
// sample blocks.
package window

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

var (
	errEmptyCoeffs      = errors.New("window coefficients must not be empty")
	errMismatchedLength = errors.New("samples and coefficients must have same length")
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeBlackmanHarris4Term
	TypeFlatTop
)

var (
	hannCoeffs            = []float64{0.5, -0.5}
	hammingCoeffs         = []float64{0.54, -0.46}
	blackmanCoeffs        = []float64{0.42, -0.5, 0.08}
	blackmanHarris4Coeffs = []float64{0.35875, -0.48829, 0.14128, -0.01168}
	flatTopCoeffs         = []float64{0.21557895, -0.41663158, 0.277263158, -0.083578947, 0.006947368}
)

type typeInfo struct {
	name   string
	coeffs []float64
	// firstMinimum is the main-lobe half width in bins.
	firstMinimum int
}

var types = map[Type]typeInfo{
	TypeRectangular:         {"rectangular", nil, 1},
	TypeHann:                {"hann", hannCoeffs, 2},
	TypeHamming:             {"hamming", hammingCoeffs, 2},
	TypeBlackman:            {"blackman", blackmanCoeffs, 3},
	TypeBlackmanHarris4Term: {"blackman-harris", blackmanHarris4Coeffs, 4},
	TypeFlatTop:             {"flattop", flatTopCoeffs, 5},
}

func (t Type) String() string {
	if info, ok := types[t]; ok {
		return info.name
	}

	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType looks a window up by its String name.
func ParseType(name string) (Type, error) {
	for t, info := range types {
		if strings.EqualFold(strings.TrimSpace(name), info.name) {
			return t, nil
		}
	}

	return 0, fmt.Errorf("unknown window type: %q", name)
}

// FirstMinimumBins returns the distance from the main-lobe peak to its first
// null in FFT bins, or 0 for unknown types.
func FirstMinimumBins(t Type) int {
	return types[t].firstMinimum
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic configures periodic form (FFT framing) instead of symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length. Unknown types
// yield a rectangular window.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	coeffs := types[t].coeffs

	out := make([]float64, length)
	for i := range out {
		if len(coeffs) == 0 {
			out[i] = 1

			continue
		}

		out[i] = cosineSum(samplePosition(i, length, cfg.periodic), coeffs)
	}

	return out
}

// ApplyCoefficients multiplies samples with coefficients and returns a new slice.
func ApplyCoefficients(samples, coeffs []float64) ([]float64, error) {
	if len(samples) != len(coeffs) {
		return nil, errMismatchedLength
	}

	out := make([]float64, len(samples))
	vecmath.MulBlock(out, samples, coeffs)

	return out, nil
}

// CoherentGain returns the mean coefficient, the amplitude a windowed
// bin-centred sinusoid keeps.
func CoherentGain(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}

	return sum / float64(len(coeffs)), nil
}

func cosineSum(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}

func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0
	}

	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}

	return float64(n) / den
}
