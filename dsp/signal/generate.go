// Package signal generates the test signals used to measure the grit
// algorithms.
package signal

import (
	"errors"
	"fmt"
	"math"

	"github.com/pulusound/grit/dsp/core"
)

// ErrEmpty is returned when a generator is asked for no samples.
var ErrEmpty = errors.New("signal: no samples requested")

// Generator creates deterministic signals at a configured sample rate.
type Generator struct {
	cfg core.ProcessorConfig
}

// NewGenerator creates a generator. The processor options set the sample rate.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return &Generator{cfg: core.ApplyProcessorOptions(opts...)}
}

// SampleRate returns the generator sample rate in Hz.
func (g *Generator) SampleRate() float64 { return g.cfg.SampleRate }

// Sine generates a sine wave starting at phase zero.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("%w: sine %d", ErrEmpty, samples)
	}

	if !(freqHz >= 0) || freqHz >= g.cfg.SampleRate/2 {
		return nil, fmt.Errorf("sine frequency must be in [0, %g): %g", g.cfg.SampleRate/2, freqHz)
	}

	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate

	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out, nil
}

// BinFrequency returns the frequency of the FFT bin nearest freqHz for an
// fftSize-point transform, never below bin 1. A tone at that frequency
// completes a whole number of periods per FFT frame.
func (g *Generator) BinFrequency(freqHz float64, fftSize int) float64 {
	if fftSize <= 0 {
		return freqHz
	}

	binHz := g.cfg.SampleRate / float64(fftSize)

	return math.Max(1, math.Round(freqHz/binHz)) * binHz
}
