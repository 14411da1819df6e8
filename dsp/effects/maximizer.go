package effects

import (
	"fmt"
	"math"

	"github.com/pulusound/grit/dsp/core"
	"github.com/pulusound/grit/dsp/delay"
)

const (
	defaultMaximizerEnvTime  = 1e-3
	defaultMaximizerKnee     = 1.0
	defaultMaximizerCapacity = 16

	minMaximizerEnvTimeSamples = 2.0
	maxMaximizerEnvTimeSamples = 1 << 24

	// MaxMaximizerKnee is the 0 dB knee ceiling.
	MaxMaximizerKnee = 1.0
)

// MinMaximizerKnee is the -90 dB knee floor.
var MinMaximizerKnee = core.DBToLinear(-90)

// MaximizerOption mutates construction-time parameters.
type MaximizerOption func(*maximizerConfig) error

type maximizerConfig struct {
	envTime    float64
	knee       float64
	capacity   int
	maxEnvTime float64
}

func defaultMaximizerConfig() maximizerConfig {
	return maximizerConfig{
		envTime:  defaultMaximizerEnvTime,
		knee:     defaultMaximizerKnee,
		capacity: defaultMaximizerCapacity,
	}
}

// WithMaximizerEnvTime sets the envelope time constant in seconds (> 0).
func WithMaximizerEnvTime(seconds float64) MaximizerOption {
	return func(cfg *maximizerConfig) error {
		if !(seconds > 0) || math.IsInf(seconds, 0) {
			return fmt.Errorf("maximizer env time must be > 0 and finite: %f", seconds)
		}

		cfg.envTime = seconds

		return nil
	}
}

// WithMaximizerKnee sets the linear knee gain in [-90 dB, 0 dB].
func WithMaximizerKnee(knee float64) MaximizerOption {
	return func(cfg *maximizerConfig) error {
		if knee < MinMaximizerKnee || knee > MaxMaximizerKnee || math.IsNaN(knee) {
			return fmt.Errorf("maximizer knee must be in [%g, %g]: %f", MinMaximizerKnee, MaxMaximizerKnee, knee)
		}

		cfg.knee = knee

		return nil
	}
}

// WithMaximizerCapacity sets the delay ring capacity (a power of two).
// Delays of capacity or more alias, see Maximizer.DelayWraps.
func WithMaximizerCapacity(size int) MaximizerOption {
	return func(cfg *maximizerConfig) error {
		if !delay.IsPow2(size) {
			return fmt.Errorf("maximizer %w: %d", delay.ErrCapacity, size)
		}

		cfg.capacity = size

		return nil
	}
}

// WithMaximizerMaxEnvTime grows the ring so that any env time up to seconds
// produces a delay inside the capacity at the current sample rate. The ring is
// re-sized by SetSampleRate when needed.
func WithMaximizerMaxEnvTime(seconds float64) MaximizerOption {
	return func(cfg *maximizerConfig) error {
		if !(seconds > 0) || math.IsInf(seconds, 0) {
			return fmt.Errorf("maximizer max env time must be > 0 and finite: %f", seconds)
		}

		cfg.maxEnvTime = seconds

		return nil
	}
}

// Maximizer tracks a peak envelope with instant attack and one-pole decay and
// applies 1/envelope gain (floored at 1/knee) to the input delayed by half the
// envelope time. The delay lets the gain react to peaks slightly before they
// reach the output.
type Maximizer struct {
	sampleRate float64
	envTime    float64
	knee       float64
	maxEnvTime float64

	envTimeSamples float64
	delay          int
	decay          float64

	env  float64
	gain float64
	ring *delay.Ring
}

// NewMaximizer creates a maximizer with zeroed state and validated options.
func NewMaximizer(sampleRate float64, opts ...MaximizerOption) (*Maximizer, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("maximizer sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultMaximizerConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&cfg)
		if err != nil {
			return nil, err
		}
	}

	ring, err := delay.New(max(cfg.capacity, requiredCapacity(sampleRate, cfg.maxEnvTime)))
	if err != nil {
		return nil, fmt.Errorf("maximizer delay ring: %w", err)
	}

	m := &Maximizer{
		sampleRate: sampleRate,
		envTime:    cfg.envTime,
		knee:       cfg.knee,
		maxEnvTime: cfg.maxEnvTime,
		ring:       ring,
	}
	m.gain = 1 / m.knee
	m.updateCoefficients()

	return m, nil
}

// SetSampleRate updates the sample rate and re-derives the envelope constants.
// With WithMaximizerMaxEnvTime the ring is grown (and cleared) if the new rate
// needs more room; call it between processing calls only.
func (m *Maximizer) SetSampleRate(sampleRate float64) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("maximizer sample rate must be > 0 and finite: %f", sampleRate)
	}

	if need := requiredCapacity(sampleRate, m.maxEnvTime); need > m.ring.Len() {
		ring, err := delay.New(need)
		if err != nil {
			return fmt.Errorf("maximizer delay ring: %w", err)
		}

		m.ring = ring
		m.env = 0
		m.gain = 1 / m.knee
	}

	m.sampleRate = sampleRate
	m.updateCoefficients()

	return nil
}

// SetEnvTime sets the envelope time in seconds. Values that would give fewer
// than two samples (including NaN and negatives) use the two-sample floor.
// It never fails and never allocates.
func (m *Maximizer) SetEnvTime(seconds float64) {
	if seconds == m.envTime {
		return
	}

	m.envTime = seconds
	m.updateCoefficients()
}

// SetKnee sets the linear knee, clamped to [MinMaximizerKnee, MaxMaximizerKnee].
// NaN selects the floor.
func (m *Maximizer) SetKnee(knee float64) {
	m.knee = clampKnee(knee)
}

// SampleRate returns the sample rate in Hz.
func (m *Maximizer) SampleRate() float64 { return m.sampleRate }

// EnvTime returns the configured envelope time in seconds.
func (m *Maximizer) EnvTime() float64 { return m.envTime }

// Knee returns the effective linear knee.
func (m *Maximizer) Knee() float64 { return m.knee }

// EnvTimeSamples returns the envelope time in samples, floored at 2.
func (m *Maximizer) EnvTimeSamples() float64 { return m.envTimeSamples }

// Delay returns the program-path delay in samples, which is also the latency.
func (m *Maximizer) Delay() int { return m.delay }

// DecayRate returns the one-pole decay coefficient 1/EnvTimeSamples.
func (m *Maximizer) DecayRate() float64 { return m.decay }

// Capacity returns the delay ring capacity.
func (m *Maximizer) Capacity() int { return m.ring.Len() }

// Pos returns the ring write position.
func (m *Maximizer) Pos() int { return m.ring.Pos() }

// Envelope returns the current tracked peak magnitude.
func (m *Maximizer) Envelope() float64 { return m.env }

// Gain returns the gain applied to the most recent output sample.
func (m *Maximizer) Gain() float64 { return m.gain }

// DelayWraps reports whether the derived delay does not fit in the ring. The
// read position then aliases modulo the capacity and the output reads a newer
// sample than intended.
func (m *Maximizer) DelayWraps() bool {
	return m.delay >= m.ring.Len()
}

// Reset zeroes the envelope, the delay ring and the write position.
func (m *Maximizer) Reset() {
	m.env = 0
	m.gain = 1 / m.knee
	m.ring.Reset()
}

// ProcessSample processes one sample.
func (m *Maximizer) ProcessSample(input float64) float64 {
	if !core.IsFinite(input) {
		input = 0
	}

	a := math.Abs(input)
	if a > m.env {
		m.env = a
	} else {
		m.env = core.FlushDenormals(a*m.decay + m.env*(1-m.decay))
	}

	if m.env <= m.knee {
		m.gain = 1 / m.knee
	} else {
		m.gain = 1 / m.env
	}

	m.ring.Write(input)

	return m.ring.Read(m.delay) * m.gain
}

// ProcessInPlace processes buf in place.
func (m *Maximizer) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = m.ProcessSample(buf[i])
	}
}

func (m *Maximizer) updateCoefficients() {
	m.envTimeSamples = maximizerEnvTimeSamples(m.envTime, m.sampleRate)
	m.delay = int(math.Round(m.envTimeSamples * 0.5))
	m.decay = 1 / m.envTimeSamples
}

// MaximizerDelay returns the ring delay in samples that envTime derives at
// sampleRate, using the same two-sample floor as the maximizer.
func MaximizerDelay(envTime, sampleRate float64) int {
	return int(math.Round(maximizerEnvTimeSamples(envTime, sampleRate) * 0.5))
}

func maximizerEnvTimeSamples(envTime, sampleRate float64) float64 {
	samples := envTime * sampleRate
	if !(samples >= minMaximizerEnvTimeSamples) {
		return minMaximizerEnvTimeSamples
	}

	return math.Min(samples, maxMaximizerEnvTimeSamples)
}

func clampKnee(knee float64) float64 {
	if !(knee >= MinMaximizerKnee) {
		return MinMaximizerKnee
	}

	if knee > MaxMaximizerKnee {
		return MaxMaximizerKnee
	}

	return knee
}

// requiredCapacity returns the ring size that holds the delay derived from
// maxEnvTime at sampleRate, or 0 when maxEnvTime is unset.
func requiredCapacity(sampleRate, maxEnvTime float64) int {
	if maxEnvTime <= 0 {
		return 0
	}

	return delay.NextPow2(MaximizerDelay(maxEnvTime, sampleRate) + 1)
}
