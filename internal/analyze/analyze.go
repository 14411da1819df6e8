// Package analyze measures what each grit algorithm does to a test tone.
package analyze

import (
	"context"
	"fmt"

	"github.com/pulusound/grit/dsp/core"
	"github.com/pulusound/grit/dsp/grit"
	"github.com/pulusound/grit/dsp/signal"
	"github.com/pulusound/grit/dsp/window"
	"github.com/pulusound/grit/measure/level"
	"github.com/pulusound/grit/measure/thd"
)

const (
	defaultFrequency = 1000.0
	defaultAmplitude = 0.5
	defaultFFTSize   = 8192

	// settleSeconds of tone run through the processor before the analysed
	// block, so the maximizer envelope is in steady state.
	settleSeconds = 0.1
)

// Config selects the tone and the parameters. Zero values select a 1 kHz
// tone at -6 dBFS and 48 kHz, an 8192-point Hann-windowed FFT and every
// algorithm.
type Config struct {
	SampleRate float64
	Frequency  float64
	Amplitude  float64
	FFTSize    int
	Window     window.Type
	Params     grit.Params
	Algorithms []grit.Algorithm
}

// Row is the measurement for one algorithm.
type Row struct {
	Algorithm grit.Algorithm
	Params    grit.Params
	// Frequency is the tone frequency after snapping to an FFT bin.
	Frequency float64
	Latency   int
	Input     level.Stats
	Output    level.Stats
	THD       thd.Result
}

// Run renders the tone through a fresh processor per algorithm and measures
// the trailing FFT block of the output. Params.Algorithm is ignored.
func Run(ctx context.Context, cfg Config) ([]Row, error) {
	cfg = withDefaults(cfg)

	if !(cfg.Frequency > 0) || cfg.Frequency >= cfg.SampleRate/2 {
		return nil, fmt.Errorf("analyze: frequency must be in (0, %g): %g", cfg.SampleRate/2, cfg.Frequency)
	}

	analyzer, err := thd.NewAnalyzer(thd.Config{
		SampleRate: cfg.SampleRate,
		FFTSize:    cfg.FFTSize,
		WindowType: cfg.Window,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	n := analyzer.FFTSize()
	gen := signal.NewGenerator(core.WithSampleRate(cfg.SampleRate))
	freq := gen.BinFrequency(cfg.Frequency, n)

	tone, err := gen.Sine(freq, cfg.Amplitude, n+int(settleSeconds*cfg.SampleRate))
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	input := level.Measure(tone[len(tone)-n:])

	rows := make([]Row, 0, len(cfg.Algorithms))
	work := make([]float64, len(tone))

	for _, alg := range cfg.Algorithms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		proc, err := grit.NewProcessor(cfg.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("analyze: %w", err)
		}

		params := cfg.Params
		params.Algorithm = alg
		params = params.Sanitized()

		copy(work, tone)
		processBlocks(proc, work, params)

		res, err := analyzer.Analyze(work)
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", alg, err)
		}

		rows = append(rows, Row{
			Algorithm: alg,
			Params:    params,
			Frequency: freq,
			Latency:   proc.Latency(params, 1),
			Input:     input,
			Output:    level.Measure(work[len(work)-n:]),
			THD:       res,
		})
	}

	return rows, nil
}

func withDefaults(cfg Config) Config {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = core.DefaultProcessorConfig().SampleRate
	}

	if cfg.Frequency == 0 {
		cfg.Frequency = defaultFrequency
	}

	if cfg.Amplitude == 0 {
		cfg.Amplitude = defaultAmplitude
	}

	if cfg.FFTSize == 0 {
		cfg.FFTSize = defaultFFTSize
	}

	if cfg.Params == (grit.Params{}) {
		cfg.Params = grit.DefaultParams()
	}

	if len(cfg.Algorithms) == 0 {
		cfg.Algorithms = grit.Algorithms
	}

	return cfg
}

// processBlocks feeds buf through proc in host-sized mono blocks.
func processBlocks(proc *grit.Processor, buf []float64, params grit.Params) {
	block := make([][]float64, 1)
	size := proc.BlockSize()

	for pos := 0; pos < len(buf); pos += size {
		block[0] = buf[pos:min(pos+size, len(buf))]
		proc.Process(block, params)
	}
}
