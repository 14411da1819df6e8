package param

import (
	"fmt"
	"math"
)

// Style selects the smoothing curve.
type Style int

const (
	// StyleNone jumps to the target immediately.
	StyleNone Style = iota
	// StyleLinear ramps by a constant step.
	StyleLinear
	// StyleExponential approaches the target with a one-pole curve that lands
	// within -80 dB of the distance after the ramp time.
	StyleExponential
	// StyleLogarithmic ramps by a constant ratio. Start and target must be
	// positive; otherwise the ramp is linear.
	StyleLogarithmic
)

func (s Style) String() string {
	switch s {
	case StyleNone:
		return "none"
	case StyleLinear:
		return "linear"
	case StyleExponential:
		return "exponential"
	case StyleLogarithmic:
		return "logarithmic"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// exponentialFloor is the residual distance after a full exponential ramp.
const exponentialFloor = 1e-4

// Smoother ramps a value toward a target over a fixed time. Once the ramp
// length has elapsed the value equals the target exactly.
type Smoother struct {
	style      Style
	timeMs     float64
	sampleRate float64

	current float64
	target  float64
	steps   int
	// step is the linear increment, the log-domain increment or the log of the
	// exponential coefficient, depending on the active curve.
	step   float64
	linear bool
}

// NewSmoother creates a smoother that ramps over timeMs milliseconds.
func NewSmoother(style Style, timeMs, sampleRate float64) (*Smoother, error) {
	if timeMs < 0 || math.IsNaN(timeMs) || math.IsInf(timeMs, 0) {
		return nil, fmt.Errorf("smoother time must be >= 0 and finite: %f", timeMs)
	}

	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("smoother sample rate must be > 0 and finite: %f", sampleRate)
	}

	return &Smoother{style: style, timeMs: timeMs, sampleRate: sampleRate}, nil
}

// SetSampleRate changes the rate used for new ramps.
func (s *Smoother) SetSampleRate(sampleRate float64) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("smoother sample rate must be > 0 and finite: %f", sampleRate)
	}

	s.sampleRate = sampleRate

	return nil
}

// Reset jumps to value and stops any ramp.
func (s *Smoother) Reset(value float64) {
	s.current = value
	s.target = value
	s.steps = 0
}

// SetTarget starts a ramp from the current value toward target.
func (s *Smoother) SetTarget(target float64) {
	s.target = target

	n := int(math.Round(s.timeMs * s.sampleRate / 1000))
	if s.style == StyleNone || n <= 0 || target == s.current {
		s.current = target
		s.steps = 0

		return
	}

	s.steps = n
	s.linear = false

	switch s.style {
	case StyleLogarithmic:
		if s.current > 0 && target > 0 {
			s.step = (mathLog(target) - mathLog(s.current)) / float64(n)
		} else {
			s.linear = true
			s.step = (target - s.current) / float64(n)
		}
	case StyleExponential:
		s.step = mathLog(exponentialFloor) / float64(n)
	default:
		s.linear = true
		s.step = (target - s.current) / float64(n)
	}
}

// Next advances one sample and returns the new value.
func (s *Smoother) Next() float64 {
	return s.Skip(1)
}

// Skip advances n samples and returns the value reached.
func (s *Smoother) Skip(n int) float64 {
	if s.steps == 0 || n <= 0 {
		return s.current
	}

	if n >= s.steps {
		s.current = s.target
		s.steps = 0

		return s.current
	}

	k := float64(n)

	switch {
	case s.linear:
		s.current += s.step * k
	case s.style == StyleLogarithmic:
		s.current *= mathExp(s.step * k)
	default:
		s.current = s.target + (s.current-s.target)*mathExp(s.step*k)
	}

	s.steps -= n

	return s.current
}

// Current returns the value without advancing.
func (s *Smoother) Current() float64 { return s.current }

// Target returns the ramp destination.
func (s *Smoother) Target() float64 { return s.target }

// IsSmoothing reports whether a ramp is in progress.
func (s *Smoother) IsSmoothing() bool { return s.steps > 0 }

// Remaining returns the number of samples left in the ramp.
func (s *Smoother) Remaining() int { return s.steps }
