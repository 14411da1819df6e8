package render

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/pulusound/grit/dsp/core"
	"github.com/pulusound/grit/dsp/grit"
	"github.com/pulusound/grit/dsp/param"
	"github.com/pulusound/grit/internal/audiofile"
	"github.com/pulusound/grit/internal/testutil"
)

func quietLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()

	return logger
}

func stereo(left, right []float64) *audiofile.Audio {
	return &audiofile.Audio{SampleRate: 48000, BitDepth: 16, Format: "wav", Channels: [][]float64{left, right}}
}

func TestRenderClipLeavesInputUntouched(t *testing.T) {
	in := stereo(testutil.DC(0.5, 1000), testutil.DC(-0.75, 1000))

	params := grit.DefaultParams()
	params.ClipDrive = 1

	out, res, err := Render(context.Background(), in, Options{Params: params, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, out.Channels[0], testutil.DC(1, 1000), 0)
	testutil.RequireSliceNearlyEqual(t, out.Channels[1], testutil.DC(-1, 1000), 0)
	testutil.RequireSliceNearlyEqual(t, in.Channels[0], testutil.DC(0.5, 1000), 0)

	if res.Frames != 1000 || res.Latency != 0 || res.DelayWrapped {
		t.Fatalf("Result = %+v", res)
	}

	if res.Input.Peak != 0.75 || res.Output.Peak != 1 {
		t.Fatalf("peaks = %v -> %v, want 0.75 -> 1", res.Input.Peak, res.Output.Peak)
	}

	if out.SampleRate != 48000 || out.BitDepth != 16 || out.Format != "wav" {
		t.Fatalf("output header = %+v", out)
	}
}

func TestRenderUnknownAlgorithmPassesThrough(t *testing.T) {
	left := testutil.DeterministicSine(997, 48000, 1.5, 600)
	right := testutil.DeterministicNoise(4, 2, 600)

	params := grit.DefaultParams()
	params.Algorithm = grit.Algorithm(5)

	out, res, err := Render(context.Background(), stereo(left, right), Options{Params: params, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, out.Channels[0], left, 0)
	testutil.RequireSliceNearlyEqual(t, out.Channels[1], right, 0)

	if res.Latency != 0 || res.DelayWrapped {
		t.Fatalf("Result = %+v, want no latency", res)
	}
}

func TestRenderMatchesSingleBlockProcessing(t *testing.T) {
	left := testutil.DeterministicSine(997, 48000, 0.8, 5000)
	right := testutil.DeterministicNoise(3, 0.6, 5000)

	params := grit.DefaultParams()
	params.Algorithm = grit.AlgorithmMaximizer
	params.EnvTime = 0.5e-3
	params.Knee = 0.25

	proc, err := grit.NewProcessor(48000)
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}

	want := testutil.Clone([][]float64{left, right})
	proc.Process(want, params)

	for _, block := range []int{1, 7, 64, 512, 8192} {
		out, _, err := Render(context.Background(), stereo(left, right), Options{
			Params:    params,
			BlockSize: block,
			Logger:    quietLogger(),
		})
		if err != nil {
			t.Fatalf("block %d: Render() error = %v", block, err)
		}

		for ch := range want {
			testutil.RequireSliceNearlyEqual(t, out.Channels[ch], want[ch], 0)
		}
	}
}

func TestRenderKneeEventRamps(t *testing.T) {
	const (
		frames  = 4000
		eventAt = 100
		input   = 0.001
	)

	knee, err := param.Lookup(param.IDKnee)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	target, err := knee.Parse("-45 dB")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	params := grit.DefaultParams()
	params.Algorithm = grit.AlgorithmMaximizer

	var reports []Progress

	out, res, err := Render(context.Background(), stereo(testutil.DC(input, frames), testutil.DC(input, frames)), Options{
		Params:     params,
		Events:     []Event{{Frame: eventAt, ID: param.IDKnee, Value: target}},
		Logger:     quietLogger(),
		OnProgress: func(p Progress) { reports = append(reports, p) },
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	// 24 ring samples shared by two channels.
	if res.Latency != 12 {
		t.Fatalf("Latency = %d frames, want 12", res.Latency)
	}

	got := out.Channels[0]
	for i := 0; i < res.Latency; i++ {
		if got[i] != 0 {
			t.Fatalf("out[%d] = %v during latency, want 0", i, got[i])
		}
	}

	for i := res.Latency; i <= eventAt; i++ {
		if math.Abs(got[i]-input) > 1e-15 {
			t.Fatalf("out[%d] = %v before the event, want %v", i, got[i], input)
		}
	}

	for i := res.Latency + 1; i < frames; i++ {
		if got[i] < got[i-1] {
			t.Fatalf("out[%d] = %v < out[%d] = %v while the knee falls", i, got[i], i-1, got[i-1])
		}
	}

	// 50 ms at 48 kHz is 2400 samples of ramp.
	if want := input / target; math.Abs(got[frames-1]-want) > 1e-9*want {
		t.Fatalf("final output = %v, want %v", got[frames-1], want)
	}

	if got[eventAt+1200] >= input/target*0.99 {
		t.Fatalf("knee reached its target too early: %v", got[eventAt+1200])
	}

	if len(reports) == 0 || reports[len(reports)-1].Fraction != 1 || reports[len(reports)-1].Frames != frames {
		t.Fatalf("last progress report = %+v", reports)
	}

	for i := 1; i < len(reports); i++ {
		if reports[i].Frames <= reports[i-1].Frames {
			t.Fatalf("progress went backwards: %+v then %+v", reports[i-1], reports[i])
		}
	}
}

func TestRenderWarnsWhenDelayWraps(t *testing.T) {
	logger, hook := test.NewNullLogger()

	params := grit.DefaultParams()
	params.Algorithm = grit.AlgorithmMaximizer

	_, res, err := Render(context.Background(), stereo(testutil.Ones(256), testutil.Ones(256)), Options{
		Params:   params,
		Capacity: 16,
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !res.DelayWrapped || res.Latency != 12 {
		t.Fatalf("Result = %+v, want wrapped delay of 12 frames", res)
	}

	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}

	if warnings != 1 {
		t.Fatalf("warnings = %d, want 1", warnings)
	}
}

func TestRenderErrors(t *testing.T) {
	if _, _, err := Render(context.Background(), &audiofile.Audio{SampleRate: 48000}, Options{}); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("empty input error = %v, want ErrEmptyInput", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := Render(ctx, stereo(testutil.Ones(10), testutil.Ones(10)), Options{Logger: quietLogger()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled error = %v, want context.Canceled", err)
	}

	_, _, err := Render(context.Background(), stereo(testutil.Ones(10), testutil.Ones(10)), Options{
		Events: []Event{{Frame: -1, ID: param.IDKnee, Value: 1}},
		Logger: quietLogger(),
	})
	if !errors.Is(err, ErrBadEvent) {
		t.Fatalf("negative event error = %v, want ErrBadEvent", err)
	}

	_, _, err = Render(context.Background(), stereo(testutil.Ones(10), testutil.Ones(10)), Options{
		Capacity: 12,
		Logger:   quietLogger(),
	})
	if err == nil {
		t.Fatal("expected error for a non power of two capacity")
	}
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		in   string
		want Event
	}{
		{"1.5s:bsm_knee=-12 dB", Event{Frame: 72000, ID: param.IDKnee, Value: core.DBToLinear(-12)}},
		{"100:algorithm=Barry's Satan Maximizer", Event{Frame: 100, ID: param.IDAlgorithm, Value: 2}},
		{"250ms: clip_drive = 0.5", Event{Frame: 12000, ID: param.IDClipDrive, Value: 0.5}},
		{"0:clip_drive=7", Event{Frame: 0, ID: param.IDClipDrive, Value: 1}},
	}

	for _, tt := range tests {
		got, err := ParseEvent(tt.in, 48000)
		if err != nil {
			t.Fatalf("ParseEvent(%q) error = %v", tt.in, err)
		}

		if got.Frame != tt.want.Frame || got.ID != tt.want.ID || math.Abs(got.Value-tt.want.Value) > 1e-12 {
			t.Fatalf("ParseEvent(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"nope", "1s:clip_drive", "1s:unknown=1", "-5:clip_drive=1", "-1s:clip_drive=1", "1s:clip_drive=abc", "soon:clip_drive=1"} {
		if _, err := ParseEvent(bad, 48000); !errors.Is(err, ErrBadEvent) {
			t.Fatalf("ParseEvent(%q) error = %v, want ErrBadEvent", bad, err)
		}
	}
}
