package grit

import (
	"fmt"
	"math"

	"github.com/pulusound/grit/dsp/core"
	"github.com/pulusound/grit/dsp/delay"
	"github.com/pulusound/grit/dsp/effects"
)

// Status is the outcome of a Process call.
type Status int

// StatusNormal is the only status Process reports.
const StatusNormal Status = 0

func (s Status) String() string {
	if s == StatusNormal {
		return "normal"
	}

	return fmt.Sprintf("Status(%d)", int(s))
}

// ProcessorOption mutates construction-time processor settings.
type ProcessorOption func(*processorConfig) error

type processorConfig struct {
	blockSize  int
	maxEnvTime float64
	capacity   int
}

func defaultProcessorConfig() processorConfig {
	return processorConfig{
		blockSize:  core.DefaultProcessorConfig().BlockSize,
		maxEnvTime: MaxEnvTime,
	}
}

// WithBlockSize sets the preferred host block size in frames. Process accepts
// any block length; the value is advisory for hosts that chunk their input.
func WithBlockSize(frames int) ProcessorOption {
	return func(cfg *processorConfig) error {
		if frames <= 0 {
			return fmt.Errorf("grit block size must be > 0: %d", frames)
		}

		cfg.blockSize = frames

		return nil
	}
}

// WithMaxEnvTime sizes the maximizer ring for env times up to seconds. The
// default is MaxEnvTime. Longer env times at run time still work but report
// DelayWraps.
func WithMaxEnvTime(seconds float64) ProcessorOption {
	return func(cfg *processorConfig) error {
		if !(seconds > 0) || math.IsInf(seconds, 0) {
			return fmt.Errorf("grit max env time must be > 0 and finite: %f", seconds)
		}

		cfg.maxEnvTime = seconds

		return nil
	}
}

// WithCapacity fixes the maximizer ring to size samples (a power of two) and
// disables sizing from the max env time. WithCapacity(16) reproduces the
// original fixed ring, delays included.
func WithCapacity(size int) ProcessorOption {
	return func(cfg *processorConfig) error {
		if !delay.IsPow2(size) {
			return fmt.Errorf("grit %w: %d", delay.ErrCapacity, size)
		}

		cfg.capacity = size

		return nil
	}
}

// Processor routes whole blocks through the selected transform.
type Processor struct {
	sampleRate float64
	blockSize  int
	maximizer  *effects.Maximizer
}

// NewProcessor creates a processor with zeroed maximizer state.
func NewProcessor(sampleRate float64, opts ...ProcessorOption) (*Processor, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("grit sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultProcessorConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&cfg)
		if err != nil {
			return nil, err
		}
	}

	mopts := []effects.MaximizerOption{
		effects.WithMaximizerEnvTime(DefaultEnvTime),
		effects.WithMaximizerKnee(DefaultKnee),
	}
	if cfg.capacity > 0 {
		mopts = append(mopts, effects.WithMaximizerCapacity(cfg.capacity))
	} else {
		mopts = append(mopts, effects.WithMaximizerMaxEnvTime(cfg.maxEnvTime))
	}

	m, err := effects.NewMaximizer(sampleRate, mopts...)
	if err != nil {
		return nil, fmt.Errorf("grit: %w", err)
	}

	return &Processor{
		sampleRate: sampleRate,
		blockSize:  cfg.blockSize,
		maximizer:  m,
	}, nil
}

// SetSampleRate re-derives the maximizer constants for a new rate. Call it
// between processing calls only.
func (p *Processor) SetSampleRate(sampleRate float64) error {
	err := p.maximizer.SetSampleRate(sampleRate)
	if err != nil {
		return fmt.Errorf("grit: %w", err)
	}

	p.sampleRate = sampleRate

	return nil
}

// SampleRate returns the sample rate in Hz.
func (p *Processor) SampleRate() float64 { return p.sampleRate }

// BlockSize returns the preferred host block size in frames.
func (p *Processor) BlockSize() int { return p.blockSize }

// Maximizer exposes the owned maximizer for inspection.
func (p *Processor) Maximizer() *effects.Maximizer { return p.maximizer }

// Reset zeroes the maximizer envelope, ring and write position.
func (p *Processor) Reset() {
	p.maximizer.Reset()
}

// Latency returns the delay in frames that params introduce on a block of
// channels. The maximizer ring runs frame-major across channels, so its
// sample delay spreads over channels frames.
func (p *Processor) Latency(params Params, channels int) int {
	params = params.Sanitized()
	if params.Algorithm != AlgorithmMaximizer || channels < 1 {
		return 0
	}

	return effects.MaximizerDelay(params.EnvTime, p.sampleRate) / channels
}

// DelayWraps reports whether params would make the maximizer delay alias
// around its ring. It does not touch the maximizer state.
func (p *Processor) DelayWraps(params Params) bool {
	params = params.Sanitized()
	if params.Algorithm != AlgorithmMaximizer {
		return false
	}

	return effects.MaximizerDelay(params.EnvTime, p.sampleRate) >= p.maximizer.Capacity()
}

// Process transforms the planar block in place. Clip and shape run over every
// sample of every channel. The maximizer is fed frame by frame across channels
// through its single shared state, up to the shortest channel. Out-of-range
// algorithms leave the block untouched.
func (p *Processor) Process(block [][]float64, params Params) Status {
	params = params.Sanitized()

	switch params.Algorithm {
	case AlgorithmClip:
		for _, ch := range block {
			effects.ClipInPlace(ch, params.ClipDrive)
		}
	case AlgorithmShape:
		for _, ch := range block {
			effects.ShapeInPlace(ch, params.ShapeAmount)
		}
	case AlgorithmMaximizer:
		p.configureMaximizer(params)

		frames := minLen(block)
		for i := 0; i < frames; i++ {
			for _, ch := range block {
				ch[i] = p.maximizer.ProcessSample(ch[i])
			}
		}
	}

	return StatusNormal
}

// ProcessInterleaved transforms a frame-interleaved buffer in place. Trailing
// samples that do not make up a whole frame are left untouched, as is the whole
// buffer when channels < 1.
func (p *Processor) ProcessInterleaved(buf []float64, channels int, params Params) Status {
	if channels < 1 {
		return StatusNormal
	}

	params = params.Sanitized()
	buf = buf[:len(buf)/channels*channels]

	switch params.Algorithm {
	case AlgorithmClip:
		effects.ClipInPlace(buf, params.ClipDrive)
	case AlgorithmShape:
		effects.ShapeInPlace(buf, params.ShapeAmount)
	case AlgorithmMaximizer:
		p.configureMaximizer(params)
		p.maximizer.ProcessInPlace(buf)
	}

	return StatusNormal
}

func (p *Processor) configureMaximizer(params Params) {
	p.maximizer.SetEnvTime(params.EnvTime)
	p.maximizer.SetKnee(params.Knee)
}

func minLen(block [][]float64) int {
	if len(block) == 0 {
		return 0
	}

	n := len(block[0])
	for _, ch := range block[1:] {
		if len(ch) < n {
			n = len(ch)
		}
	}

	return n
}
