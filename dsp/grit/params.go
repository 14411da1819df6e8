package grit

import (
	"math"

	"github.com/pulusound/grit/dsp/core"
	"github.com/pulusound/grit/dsp/effects"
)

// Parameter defaults and nominal ranges.
const (
	DefaultClipDrive   = 0.0
	DefaultShapeAmount = 0.0
	DefaultEnvTime     = 1e-3
	DefaultKnee        = 1.0

	MinEnvTime = 0.1e-3
	MaxEnvTime = 1e-3
)

// Params holds the resolved parameter values for one Process call.
type Params struct {
	Algorithm   Algorithm
	ClipDrive   float64
	ShapeAmount float64
	// EnvTime is the maximizer envelope time in seconds.
	EnvTime float64
	// Knee is the maximizer knee as a linear gain.
	Knee float64
}

// DefaultParams returns the power-on parameter set.
func DefaultParams() Params {
	return Params{
		Algorithm:   AlgorithmClip,
		ClipDrive:   DefaultClipDrive,
		ShapeAmount: DefaultShapeAmount,
		EnvTime:     DefaultEnvTime,
		Knee:        DefaultKnee,
	}
}

// Sanitized returns a copy of p that every transform accepts. Non-finite
// values fall back to their defaults; drive is clamped to [0, 1], shape to
// [0, 1-4e-8] and the knee to [-90 dB, 0 dB]. EnvTime keeps any positive
// value, the maximizer floors it at two samples.
func (p Params) Sanitized() Params {
	p.ClipDrive = core.Clamp(core.FiniteOr(p.ClipDrive, DefaultClipDrive), 0, 1)
	p.ShapeAmount = core.Clamp(core.FiniteOr(p.ShapeAmount, DefaultShapeAmount), 0, effects.MaxShapeAmount)

	if !(p.EnvTime > 0) || math.IsInf(p.EnvTime, 0) {
		p.EnvTime = DefaultEnvTime
	}

	p.Knee = core.Clamp(core.FiniteOr(p.Knee, DefaultKnee), effects.MinMaximizerKnee, effects.MaxMaximizerKnee)

	return p
}
