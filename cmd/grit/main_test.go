package main

import (
	"math"
	"os"
	"path/filepath"
	"slices"
	"syscall"
	"testing"

	"github.com/pulusound/grit/dsp/core"
	"github.com/pulusound/grit/dsp/dither"
	"github.com/pulusound/grit/dsp/grit"
	"github.com/pulusound/grit/internal/audiofile"
	"github.com/pulusound/grit/internal/testutil"
)

func defaultFlags() ParamFlags {
	return ParamFlags{Algorithm: "clip", Drive: "0", Shape: "0", EnvTime: "1 ms", Knee: "0 dB"}
}

func TestParamFlags(t *testing.T) {
	f := defaultFlags()
	f.Algorithm = "maximizer"
	f.Drive = "2"
	f.EnvTime = "500us"
	f.Knee = "-6 dB"

	p, err := f.params()
	if err != nil {
		t.Fatalf("params() error = %v", err)
	}

	if p.Algorithm != grit.AlgorithmMaximizer || p.ClipDrive != 1 || math.Abs(p.EnvTime-0.5e-3) > 1e-15 {
		t.Fatalf("params = %+v", p)
	}

	if math.Abs(p.Knee-core.DBToLinear(-6)) > 1e-12 {
		t.Fatalf("knee = %v, want -6 dB", p.Knee)
	}

	for _, bad := range []ParamFlags{
		{Algorithm: "fuzz", Drive: "0", Shape: "0", EnvTime: "1 ms", Knee: "0 dB"},
		{Algorithm: "clip", Drive: "lots", Shape: "0", EnvTime: "1 ms", Knee: "0 dB"},
		{Algorithm: "clip", Drive: "0", Shape: "0", EnvTime: "soon", Knee: "0 dB"},
	} {
		if _, err := bad.params(); err == nil {
			t.Fatalf("params(%+v) expected error", bad)
		}
	}
}

func TestRenderCancelsOnInterruptAndTerm(t *testing.T) {
	for _, sig := range []os.Signal{os.Interrupt, syscall.SIGTERM} {
		if !slices.Contains(cancelSignals, sig) {
			t.Fatalf("cancelSignals = %v, missing %v", cancelSignals, sig)
		}
	}
}

func TestRenderQuantizerDepth(t *testing.T) {
	tests := []struct {
		flag, source, want int
	}{
		{0, 24, 24},
		{0, 0, 16},
		{20, 16, 20},
	}

	for _, tt := range tests {
		c := RenderCmd{BitDepth: tt.flag, Dither: "none"}

		q, err := c.quantizer(&audiofile.Audio{BitDepth: tt.source})
		if err != nil {
			t.Fatalf("quantizer() error = %v", err)
		}

		if q.BitDepth() != tt.want || q.Type() != dither.TypeNone {
			t.Fatalf("quantizer(%d, %d) = %d/%v, want %d/none", tt.flag, tt.source, q.BitDepth(), q.Type(), tt.want)
		}
	}
}

func TestRenderCommandWritesFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.wav")

	q, err := dither.NewQuantizer(dither.WithType(dither.TypeNone))
	if err != nil {
		t.Fatalf("NewQuantizer() error = %v", err)
	}

	src := &audiofile.Audio{SampleRate: 44100, Channels: [][]float64{testutil.DC(0.5, 2000)}}
	if err := audiofile.WriteFile(in, src, q); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	flags := defaultFlags()
	flags.Drive = "1"

	cmd := RenderCmd{
		ParamFlags: flags,
		Input:      in,
		Output:     out,
		At:         []string{"1000:clip_drive=0"},
		Dither:     "none",
		BlockSize:  512,
		NoTUI:      true,
	}
	g := &Globals{LogLevel: "error", LogFile: filepath.Join(dir, "grit.log")}

	if err := cmd.Run(g); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got, err := audiofile.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if got.Frames() != 2000 || got.BitDepth != 16 {
		t.Fatalf("output = %d frames at %d bits", got.Frames(), got.BitDepth)
	}

	if got.Channels[0][999] < 0.999 || math.Abs(got.Channels[0][1000]-0.5) > 1e-4 {
		t.Fatalf("samples around the event = %v, %v", got.Channels[0][999], got.Channels[0][1000])
	}

	if err := cmd.Run(g); err == nil {
		t.Fatal("expected error when the output exists without --force")
	}
}
