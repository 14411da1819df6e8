package param

import (
	"errors"
	"math"
	"testing"

	"github.com/pulusound/grit/dsp/core"
	"github.com/pulusound/grit/dsp/effects"
)

func mustLookup(t *testing.T, id ID) Definition {
	t.Helper()

	d, err := Lookup(id)
	if err != nil {
		t.Fatalf("Lookup(%q) error = %v", id, err)
	}

	return d
}

func TestDefinitionsTable(t *testing.T) {
	want := []struct {
		id   ID
		name string
		def  float64
	}{
		{IDAlgorithm, "Algorithm", 0},
		{IDClipDrive, "Clip: Drive", 0},
		{IDShape, "SDS: Shape", 0},
		{IDEnvTime, "BSM: Env Time", 1e-3},
		{IDKnee, "BSM: Knee", 1},
	}

	defs := Definitions()
	if len(defs) != len(want) {
		t.Fatalf("len(Definitions) = %d, want %d", len(defs), len(want))
	}

	for i, w := range want {
		if defs[i].ID != w.id || defs[i].Name != w.name || defs[i].Default != w.def {
			t.Fatalf("Definitions[%d] = %s/%q/%v, want %s/%q/%v",
				i, defs[i].ID, defs[i].Name, defs[i].Default, w.id, w.name, w.def)
		}
	}

	defs[0].Name = "mutated"
	if mustLookup(t, IDAlgorithm).Name != "Algorithm" {
		t.Fatal("Definitions exposes the shared table")
	}

	if _, err := Lookup("gain"); !errors.Is(err, ErrUnknownParam) {
		t.Fatalf("Lookup(gain) error = %v, want ErrUnknownParam", err)
	}
}

func TestDefinitionFormat(t *testing.T) {
	tests := []struct {
		id   ID
		v    float64
		want string
	}{
		{IDAlgorithm, 0, "Clip"},
		{IDAlgorithm, 1, "SuperDirt Shape"},
		{IDAlgorithm, 2, "Barry's Satan Maximizer"},
		{IDAlgorithm, 5, "???"},
		{IDClipDrive, 0.25, "0.25"},
		{IDEnvTime, 1e-3, "1.00 ms"},
		{IDEnvTime, 1e-4, "100.0 µs"},
		{IDKnee, 1, "0.00 dB"},
		{IDKnee, core.DBToLinear(-6), "-6.00 dB"},
		{IDKnee, effects.MinMaximizerKnee, "-90.00 dB"},
		{IDKnee, 0, "-inf dB"},
	}

	for _, tc := range tests {
		if got := mustLookup(t, tc.id).Format(tc.v); got != tc.want {
			t.Fatalf("%s.Format(%v) = %q, want %q", tc.id, tc.v, got, tc.want)
		}
	}
}

func TestDefinitionParse(t *testing.T) {
	tests := []struct {
		id   ID
		text string
		want float64
	}{
		{IDAlgorithm, "superdirt shape", 1},
		{IDAlgorithm, "2", 2},
		{IDClipDrive, "0.3", 0.3},
		{IDClipDrive, "4", 1},
		{IDShape, "-1", 0},
		{IDEnvTime, "0.5 ms", 0.5e-3},
		{IDEnvTime, "200us", 0.2e-3},
		{IDEnvTime, "2 s", 1e-3},
		{IDKnee, "-6 dB", core.DBToLinear(-6)},
		{IDKnee, "-6", core.DBToLinear(-6)},
		{IDKnee, "+3 dB", 1},
		{IDKnee, "-inf", effects.MinMaximizerKnee},
	}

	for _, tc := range tests {
		got, err := mustLookup(t, tc.id).Parse(tc.text)
		if err != nil {
			t.Fatalf("%s.Parse(%q) error = %v", tc.id, tc.text, err)
		}

		if math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("%s.Parse(%q) = %v, want %v", tc.id, tc.text, got, tc.want)
		}
	}

	for _, tc := range []struct {
		id   ID
		text string
	}{
		{IDClipDrive, "loud"},
		{IDKnee, "dB"},
		{IDEnvTime, "ms"},
		{IDAlgorithm, "fuzz"},
	} {
		if _, err := mustLookup(t, tc.id).Parse(tc.text); !errors.Is(err, ErrParse) {
			t.Fatalf("%s.Parse(%q) error = %v, want ErrParse", tc.id, tc.text, err)
		}
	}
}

func TestDefinitionClamp(t *testing.T) {
	algo := mustLookup(t, IDAlgorithm)
	if got := algo.Clamp(1.6); got != 2 {
		t.Fatalf("algorithm Clamp(1.6) = %v, want 2", got)
	}

	if got := algo.Clamp(-3); got != 0 {
		t.Fatalf("algorithm Clamp(-3) = %v, want 0", got)
	}

	knee := mustLookup(t, IDKnee)
	if got := knee.Clamp(math.NaN()); got != 1 {
		t.Fatalf("knee Clamp(NaN) = %v, want default 1", got)
	}
}

func TestKneeNormalizationSkew(t *testing.T) {
	knee := mustLookup(t, IDKnee)

	if got := knee.Normalize(core.DBToLinear(-45)); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("Normalize(-45 dB) = %v, want 0.5", got)
	}

	if got := knee.Normalize(knee.Min); got != 0 {
		t.Fatalf("Normalize(min) = %v, want 0", got)
	}

	if got := knee.Normalize(knee.Max); got != 1 {
		t.Fatalf("Normalize(max) = %v, want 1", got)
	}

	for _, db := range []float64{-80, -30, -12, -1} {
		v := core.DBToLinear(db)
		if got := knee.Denormalize(knee.Normalize(v)); math.Abs(got-v) > 1e-12 {
			t.Fatalf("round trip %v dB = %v, want %v", db, got, v)
		}
	}

	drive := mustLookup(t, IDClipDrive)
	if got := drive.Normalize(0.3); math.Abs(got-0.3) > 1e-15 {
		t.Fatalf("drive Normalize(0.3) = %v, want 0.3", got)
	}
}
