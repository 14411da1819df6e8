package level

import (
	"math"
	"testing"

	"github.com/pulusound/grit/internal/testutil"
)

func TestMeasureSine(t *testing.T) {
	// 1 kHz at 48 kHz: 48 samples per period, whole periods only.
	s := Measure(testutil.DeterministicSine(1000, 48000, 0.5, 4800))

	if math.Abs(s.Peak-0.5) > 1e-3 {
		t.Fatalf("Peak = %v, want 0.5", s.Peak)
	}

	if want := 0.5 / math.Sqrt2; math.Abs(s.RMS-want) > 1e-9 {
		t.Fatalf("RMS = %v, want %v", s.RMS, want)
	}

	if math.Abs(s.CrestDB()-20*math.Log10(math.Sqrt2)) > 0.01 {
		t.Fatalf("CrestDB = %v, want ~3.01", s.CrestDB())
	}

	if s.Samples != 4800 {
		t.Fatalf("Samples = %d, want 4800", s.Samples)
	}
}

func TestMeterAccumulatesBlocks(t *testing.T) {
	var m Meter

	m.Add(testutil.DC(0.5, 10))
	m.AddPlanar([][]float64{testutil.DC(-1, 10), nil})

	s := m.Stats()
	if s.Peak != 1 || s.Samples != 20 {
		t.Fatalf("Stats = %+v, want peak 1 over 20 samples", s)
	}

	if want := math.Sqrt((10*0.25 + 10) / 20); math.Abs(s.RMS-want) > 1e-12 {
		t.Fatalf("RMS = %v, want %v", s.RMS, want)
	}

	if s.PeakDB() != 0 {
		t.Fatalf("PeakDB = %v, want 0", s.PeakDB())
	}

	m.Reset()

	if s := m.Stats(); s.Peak != 0 || s.RMS != 0 || s.Samples != 0 {
		t.Fatalf("after Reset = %+v", s)
	}
}

func TestMeterSkipsNonFinite(t *testing.T) {
	s := Measure([]float64{math.NaN(), 0.25, math.Inf(-1)})

	if s.Samples != 1 || s.Peak != 0.25 {
		t.Fatalf("Stats = %+v, want one sample at 0.25", s)
	}

	if !math.IsInf(Measure(nil).RMSDB(), -1) {
		t.Fatal("RMSDB of silence should be -Inf")
	}

	if Measure(nil).CrestDB() != 0 {
		t.Fatal("CrestDB of silence should be 0")
	}
}
