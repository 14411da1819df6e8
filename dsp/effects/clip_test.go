package effects

import (
	"math"
	"testing"

	"github.com/pulusound/grit/internal/testutil"
)

func TestHardClipTransferCurve(t *testing.T) {
	cases := []struct {
		name  string
		in    float64
		drive float64
		want  float64
	}{
		{name: "unity inside", in: 0.5, drive: 0, want: 0.5},
		{name: "unity negative", in: -0.3, drive: 0, want: -0.3},
		{name: "unity clamps", in: 1.2, drive: 0, want: 1},
		{name: "full drive doubles", in: 0.25, drive: 1, want: 0.5},
		{name: "full drive clamps", in: 0.5, drive: 1, want: 1},
		{name: "negative clamps", in: -0.9, drive: 0.5, want: -1},
		{name: "zero", in: 0, drive: 1, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := HardClip(tc.in, tc.drive)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Fatalf("HardClip(%g, %g) = %g, want %g", tc.in, tc.drive, got, tc.want)
			}
		})
	}
}

func TestHardClipBoundedAndLinearInside(t *testing.T) {
	for d := 0.0; d <= 1.0; d += 0.05 {
		for x := -1.0; x <= 1.0; x += 0.01 {
			got := HardClip(x, d)
			if got < -1 || got > 1 {
				t.Fatalf("HardClip(%g, %g) = %g out of [-1, 1]", x, d, got)
			}

			if lin := x * (d + 1); math.Abs(lin) <= 1 && got != lin {
				t.Fatalf("HardClip(%g, %g) = %g, want linear %g", x, d, got, lin)
			}
		}
	}
}

func TestClipInPlaceMatchesSample(t *testing.T) {
	in := testutil.DeterministicNoise(7, 1.5, 256)
	buf := append([]float64(nil), in...)

	ClipInPlace(buf, 0.7)

	for i, x := range in {
		if want := HardClip(x, 0.7); buf[i] != want {
			t.Fatalf("index %d: got %v want %v", i, buf[i], want)
		}
	}
}

func BenchmarkClipInPlace(b *testing.B) {
	buf := testutil.DeterministicNoise(1, 1, 512)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		ClipInPlace(buf, 0.5)
	}
}
