package signal

import (
	"errors"
	"math"
	"testing"

	"github.com/pulusound/grit/dsp/core"
)

func TestSine(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(48000))

	s, err := g.Sine(1000, 0.5, 64)
	if err != nil {
		t.Fatalf("Sine() error = %v", err)
	}

	if len(s) != 64 || s[0] != 0 {
		t.Fatalf("len/first = %d/%v, want 64/0", len(s), s[0])
	}

	if math.Abs(s[12]-0.5) > 1e-12 {
		t.Fatalf("quarter period = %v, want 0.5", s[12])
	}

	if _, err := g.Sine(1000, 1, 0); !errors.Is(err, ErrEmpty) {
		t.Fatalf("empty error = %v, want ErrEmpty", err)
	}

	if _, err := g.Sine(24000, 1, 8); err == nil {
		t.Fatal("expected error at Nyquist")
	}
}

func TestBinFrequency(t *testing.T) {
	g := NewGenerator()
	if g.SampleRate() != 48000 {
		t.Fatalf("default sample rate = %v, want 48000", g.SampleRate())
	}

	tests := []struct {
		freq float64
		n    int
		want float64
	}{
		{1000, 4096, 85 * 48000.0 / 4096},
		{3, 4096, 48000.0 / 4096},
		{750, 64, 750},
		{440, 0, 440},
	}

	for _, tt := range tests {
		if got := g.BinFrequency(tt.freq, tt.n); math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("BinFrequency(%v, %d) = %v, want %v", tt.freq, tt.n, got, tt.want)
		}
	}
}
