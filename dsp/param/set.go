package param

import (
	"fmt"

	"github.com/pulusound/grit/dsp/grit"
)

// Set tracks the target of every parameter and resolves grit.Params for each
// processing span. The algorithm switches immediately; the continuous
// parameters follow their definition's smoothing.
type Set struct {
	algorithm grit.Algorithm

	drive   *Smoother
	shape   *Smoother
	envTime *Smoother
	knee    *Smoother
}

// NewSet creates a set at the default values.
func NewSet(sampleRate float64) (*Set, error) {
	s := &Set{algorithm: grit.AlgorithmClip}

	for _, slot := range []struct {
		id  ID
		dst **Smoother
	}{
		{IDClipDrive, &s.drive},
		{IDShape, &s.shape},
		{IDEnvTime, &s.envTime},
		{IDKnee, &s.knee},
	} {
		d, err := Lookup(slot.id)
		if err != nil {
			return nil, err
		}

		sm, err := NewSmoother(d.Smoothing, d.SmoothingMs, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.ID, err)
		}

		sm.Reset(d.Default)
		*slot.dst = sm
	}

	return s, nil
}

// SetSampleRate updates every smoother.
func (s *Set) SetSampleRate(sampleRate float64) error {
	for _, sm := range s.smoothers() {
		err := sm.SetSampleRate(sampleRate)
		if err != nil {
			return err
		}
	}

	return nil
}

// SetValue sets the target for id, clamped to its range.
func (s *Set) SetValue(id ID, value float64) error {
	d, err := Lookup(id)
	if err != nil {
		return err
	}

	value = d.Clamp(value)

	if id == IDAlgorithm {
		s.algorithm = grit.Algorithm(int(value))

		return nil
	}

	s.smoother(id).SetTarget(value)

	return nil
}

// SetText parses text with the parameter's parser and sets the target.
func (s *Set) SetText(id ID, text string) error {
	d, err := Lookup(id)
	if err != nil {
		return err
	}

	v, err := d.Parse(text)
	if err != nil {
		return err
	}

	return s.SetValue(id, v)
}

// Reset snaps every parameter to p without smoothing. An unknown algorithm is
// kept as is so the processor passes the audio through.
func (s *Set) Reset(p grit.Params) {
	p = p.Sanitized()
	s.algorithm = p.Algorithm

	s.drive.Reset(p.ClipDrive)
	s.shape.Reset(p.ShapeAmount)
	s.envTime.Reset(p.EnvTime)
	s.knee.Reset(p.Knee)
}

// Params returns the current values without advancing.
func (s *Set) Params() grit.Params {
	return grit.Params{
		Algorithm:   s.algorithm,
		ClipDrive:   s.drive.Current(),
		ShapeAmount: s.shape.Current(),
		EnvTime:     s.envTime.Current(),
		Knee:        s.knee.Current(),
	}
}

// Next returns the values to use for the next n samples and advances every
// smoother by n.
func (s *Set) Next(n int) grit.Params {
	p := s.Params()

	s.drive.Skip(n)
	s.shape.Skip(n)
	s.envTime.Skip(n)
	s.knee.Skip(n)

	return p
}

// IsSmoothing reports whether any parameter is still ramping.
func (s *Set) IsSmoothing() bool {
	for _, sm := range s.smoothers() {
		if sm.IsSmoothing() {
			return true
		}
	}

	return false
}

func (s *Set) smoothers() [4]*Smoother {
	return [4]*Smoother{s.drive, s.shape, s.envTime, s.knee}
}

func (s *Set) smoother(id ID) *Smoother {
	switch id {
	case IDClipDrive:
		return s.drive
	case IDShape:
		return s.shape
	case IDEnvTime:
		return s.envTime
	default:
		return s.knee
	}
}
