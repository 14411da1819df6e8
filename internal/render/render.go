// Package render runs decoded audio through the grit processor offline,
// resolving smoothed parameters per sub-block.
package render

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pulusound/grit/dsp/core"
	"github.com/pulusound/grit/dsp/grit"
	"github.com/pulusound/grit/dsp/param"
	"github.com/pulusound/grit/internal/audiofile"
	"github.com/pulusound/grit/measure/level"
)

const (
	// DefaultBlockSize is the host block length in frames.
	DefaultBlockSize = 512
	// DefaultSubBlockSize is the block length used while a parameter ramps.
	DefaultSubBlockSize = 32

	progressStep = 0.01
)

// ErrEmptyInput is returned when there is no audio to render.
var ErrEmptyInput = errors.New("render: empty input")

// Progress reports how far a render has advanced.
type Progress struct {
	Frames   int
	Total    int
	Fraction float64
	// PeakDB is the output peak of the most recent block.
	PeakDB float64
}

// Options configures a render. Zero values select defaults.
type Options struct {
	Params       grit.Params
	Events       []Event
	BlockSize    int
	SubBlockSize int
	// Capacity fixes the maximizer ring size (a power of two). Zero sizes
	// the ring so the longest env time in the render fits.
	Capacity   int
	Logger     logrus.FieldLogger
	OnProgress func(Progress)
}

// Result summarizes a finished render.
type Result struct {
	Frames int
	// Latency is the program delay in frames at the start of the render.
	Latency int
	// DelayWrapped is set when the maximizer delay did not fit its ring at
	// some point during the render.
	DelayWrapped bool
	Input        level.Stats
	Output       level.Stats
	Elapsed      time.Duration
}

// Render processes in and returns the transformed copy. The input is not
// modified. The processor is reset once before the first block.
func Render(ctx context.Context, in *audiofile.Audio, opts Options) (*audiofile.Audio, Result, error) {
	if in == nil || len(in.Channels) == 0 || in.Frames() == 0 {
		return nil, Result{}, ErrEmptyInput
	}

	opts = withDefaults(opts)
	log := opts.Logger.WithFields(logrus.Fields{
		"function":    "Render",
		"sample_rate": in.SampleRate,
		"channels":    len(in.Channels),
		"frames":      in.Frames(),
	})

	events, err := sortEvents(opts.Events, in.Frames())
	if err != nil {
		return nil, Result{}, err
	}

	ringOpt := grit.WithMaxEnvTime(maxEnvTime(opts.Params, events))
	if opts.Capacity > 0 {
		ringOpt = grit.WithCapacity(opts.Capacity)
	}

	proc, err := grit.NewProcessor(float64(in.SampleRate), grit.WithBlockSize(opts.BlockSize), ringOpt)
	if err != nil {
		return nil, Result{}, fmt.Errorf("render: %w", err)
	}

	set, err := param.NewSet(float64(in.SampleRate))
	if err != nil {
		return nil, Result{}, fmt.Errorf("render: %w", err)
	}

	set.Reset(opts.Params)
	proc.Reset()

	out := &audiofile.Audio{
		SampleRate: in.SampleRate,
		BitDepth:   in.BitDepth,
		Format:     in.Format,
		Channels:   make([][]float64, len(in.Channels)),
	}

	var inMeter, outMeter, blockMeter level.Meter

	frames := in.Frames()
	for ch, src := range in.Channels {
		out.Channels[ch] = make([]float64, frames)
		copy(out.Channels[ch], src)
		inMeter.Add(src[:min(len(src), frames)])
	}

	start := time.Now()
	initial := set.Params()
	log.WithFields(logrus.Fields{
		"algorithm": initial.Algorithm.DisplayName(),
		"latency":   proc.Latency(initial, len(out.Channels)),
		"events":    len(events),
	}).Info("Rendering")

	res := Result{Frames: frames, Latency: proc.Latency(initial, len(out.Channels))}
	view := make([][]float64, len(out.Channels))
	lastReported := -1.0
	next := 0

	for pos := 0; pos < frames; {
		if err := ctx.Err(); err != nil {
			return nil, Result{}, err
		}

		for next < len(events) && events[next].Frame <= pos {
			ev := events[next]
			if err := set.SetValue(ev.ID, ev.Value); err != nil {
				return nil, Result{}, fmt.Errorf("render: event %d: %w", next, err)
			}

			log.WithFields(logrus.Fields{
				"frame": ev.Frame,
				"param": ev.ID,
				"value": ev.Value,
			}).Debug("Parameter change")

			next++
		}

		n := min(opts.BlockSize, frames-pos)
		if next < len(events) {
			n = min(n, events[next].Frame-pos)
		}

		if set.IsSmoothing() {
			n = min(n, opts.SubBlockSize)
		}

		p := set.Next(n)
		if p.Algorithm == grit.AlgorithmMaximizer && proc.DelayWraps(p) && !res.DelayWrapped {
			res.DelayWrapped = true
			log.WithFields(logrus.Fields{
				"frame":    pos,
				"env_time": p.EnvTime,
				"delay":    proc.Latency(p, 1),
				"capacity": proc.Maximizer().Capacity(),
			}).Warn("Maximizer delay exceeds ring capacity, output aliases")
		}

		for ch := range out.Channels {
			view[ch] = out.Channels[ch][pos : pos+n]
		}

		proc.Process(view, p)

		blockMeter.Reset()
		blockMeter.AddPlanar(view)
		outMeter.AddPlanar(view)

		pos += n

		fraction := float64(pos) / float64(frames)
		if opts.OnProgress != nil && (fraction-lastReported >= progressStep || pos == frames) {
			lastReported = fraction
			opts.OnProgress(Progress{
				Frames:   pos,
				Total:    frames,
				Fraction: fraction,
				PeakDB:   blockMeter.Stats().PeakDB(),
			})
		}
	}

	res.Input = inMeter.Stats()
	res.Output = outMeter.Stats()
	res.Elapsed = time.Since(start)

	log.WithFields(logrus.Fields{
		"input_peak_db":  round2(res.Input.PeakDB()),
		"output_peak_db": round2(res.Output.PeakDB()),
		"output_rms_db":  round2(res.Output.RMSDB()),
		"elapsed":        res.Elapsed,
	}).Info("Render complete")

	return out, res, nil
}

func withDefaults(opts Options) Options {
	if opts.BlockSize <= 0 {
		opts.BlockSize = DefaultBlockSize
	}

	if opts.SubBlockSize <= 0 {
		opts.SubBlockSize = DefaultSubBlockSize
	}

	opts.SubBlockSize = min(opts.SubBlockSize, opts.BlockSize)

	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	return opts
}

// maxEnvTime sizes the delay ring for the longest env time the render uses.
func maxEnvTime(p grit.Params, events []Event) float64 {
	longest := math.Max(grit.MaxEnvTime, p.Sanitized().EnvTime)

	for _, ev := range events {
		if ev.ID == param.IDEnvTime && core.IsFinite(ev.Value) {
			longest = math.Max(longest, ev.Value)
		}
	}

	return longest
}

func round2(v float64) float64 {
	if !core.IsFinite(v) {
		return v
	}

	return math.Round(v*100) / 100
}
