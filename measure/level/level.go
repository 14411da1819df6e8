// Package level meters peak and RMS level over streamed sample blocks.
package level

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/pulusound/grit/dsp/core"
)

// Stats is a level summary.
type Stats struct {
	Peak    float64
	RMS     float64
	Samples int
}

// PeakDB returns the peak in dBFS.
func (s Stats) PeakDB() float64 { return core.LinearToDB(s.Peak) }

// RMSDB returns the RMS level in dBFS.
func (s Stats) RMSDB() float64 { return core.LinearToDB(s.RMS) }

// CrestDB returns the peak-to-RMS ratio in dB, or 0 for silence.
func (s Stats) CrestDB() float64 {
	if s.RMS == 0 {
		return 0
	}

	return core.LinearToDB(s.Peak / s.RMS)
}

// Meter accumulates level statistics across blocks. The zero value is ready
// to use.
type Meter struct {
	peak       float64
	sumSquares float64
	n          int
	scratch    []float64
}

// Add meters one block. Non-finite samples are ignored.
func (m *Meter) Add(block []float64) {
	if len(block) == 0 {
		return
	}

	m.scratch = core.EnsureLen(m.scratch, len(block))
	vecmath.MulBlock(m.scratch, block, block)

	for i, sq := range m.scratch {
		if !core.IsFinite(sq) {
			continue
		}

		m.sumSquares += sq
		m.n++

		if a := math.Abs(block[i]); a > m.peak {
			m.peak = a
		}
	}
}

// AddPlanar meters every channel of a planar block into the same totals.
func (m *Meter) AddPlanar(block [][]float64) {
	for _, ch := range block {
		m.Add(ch)
	}
}

// Stats returns the summary so far.
func (m *Meter) Stats() Stats {
	s := Stats{Peak: m.peak, Samples: m.n}
	if m.n > 0 {
		s.RMS = math.Sqrt(m.sumSquares / float64(m.n))
	}

	return s
}

// Reset clears the totals.
func (m *Meter) Reset() {
	m.peak = 0
	m.sumSquares = 0
	m.n = 0
}

// Measure returns the level of a single buffer.
func Measure(samples []float64) Stats {
	var m Meter
	m.Add(samples)

	return m.Stats()
}
