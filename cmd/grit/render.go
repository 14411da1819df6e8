package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/pulusound/grit/dsp/dither"
	"github.com/pulusound/grit/internal/audiofile"
	"github.com/pulusound/grit/internal/cli"
	"github.com/pulusound/grit/internal/render"
	"github.com/pulusound/grit/internal/ui"
)

// cancelSignals stop a render cleanly.
var cancelSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// RenderCmd processes one file.
type RenderCmd struct {
	ParamFlags `embed:""`

	Input  string `arg:"" type:"existingfile" help:"Input file (WAV, AIFF, MP3 or Ogg Vorbis)."`
	Output string `arg:"" type:"path" help:"Output WAV file."`

	At        []string `placeholder:"at:param=value" help:"Change a parameter mid-file, e.g. 1.5s:bsm_knee=-12dB. Repeatable."`
	BitDepth  int      `default:"0" placeholder:"bits" help:"Output bit depth, 8 to 32. 0 keeps the source depth (16 for lossy input)."`
	Dither    string   `default:"tpdf" enum:"none,rpdf,tpdf" help:"Dither applied when writing (${enum})."`
	Seed      uint64   `placeholder:"n" help:"Dither seed. 0 picks a random seed."`
	BlockSize int      `default:"512" placeholder:"frames" help:"Processing block size in frames."`
	Capacity  int      `placeholder:"samples" help:"Fix the maximizer delay ring size (a power of two). 0 sizes it from the env time."`
	Force     bool     `short:"f" help:"Overwrite the output file."`
	NoTUI     bool     `name:"no-tui" help:"Log progress instead of showing the progress display."`
}

// Run renders Input to Output.
func (c *RenderCmd) Run(g *Globals) error {
	if _, err := os.Stat(c.Output); err == nil && !c.Force {
		return fmt.Errorf("%s exists, use --force to overwrite", c.Output)
	}

	params, err := c.params()
	if err != nil {
		return err
	}

	logger, closeLog, err := g.newLogger(!c.NoTUI)
	if err != nil {
		return err
	}
	defer closeLog()

	in, err := audiofile.ReadFile(c.Input)
	if err != nil {
		return err
	}

	events := make([]render.Event, 0, len(c.At))
	for _, text := range c.At {
		ev, err := render.ParseEvent(text, in.SampleRate)
		if err != nil {
			return err
		}

		events = append(events, ev)
	}

	q, err := c.quantizer(in)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"input":       c.Input,
		"format":      in.Format,
		"sample_rate": in.SampleRate,
		"channels":    len(in.Channels),
		"duration":    in.Duration(),
		"bit_depth":   q.BitDepth(),
		"dither":      q.Type(),
	}).Info("Loaded input")

	ctx, stop := signal.NotifyContext(context.Background(), cancelSignals...)
	defer stop()

	opts := render.Options{
		Params:    params,
		Events:    events,
		BlockSize: c.BlockSize,
		Capacity:  c.Capacity,
		Logger:    logger,
	}

	if c.NoTUI {
		return c.runPlain(ctx, in, q, opts, logger)
	}

	return c.runTUI(ctx, in, q, opts)
}

func (c *RenderCmd) quantizer(in *audiofile.Audio) (*dither.Quantizer, error) {
	bits := c.BitDepth
	if bits == 0 {
		bits = in.BitDepth
		if bits < 8 || bits > 32 {
			bits = 16
		}
	}

	typ, err := dither.ParseType(c.Dither)
	if err != nil {
		return nil, err
	}

	opts := []dither.Option{dither.WithBitDepth(bits), dither.WithType(typ)}
	if c.Seed != 0 {
		opts = append(opts, dither.WithSeed(c.Seed))
	}

	return dither.NewQuantizer(opts...)
}

func (c *RenderCmd) process(ctx context.Context, in *audiofile.Audio, q *dither.Quantizer, opts render.Options) (render.Result, error) {
	out, res, err := render.Render(ctx, in, opts)
	if err != nil {
		return res, err
	}

	err = audiofile.WriteFile(c.Output, out, q)
	if err != nil {
		return res, err
	}

	return res, nil
}

func (c *RenderCmd) runPlain(ctx context.Context, in *audiofile.Audio, q *dither.Quantizer, opts render.Options, logger logrus.FieldLogger) error {
	next := 0.25
	opts.OnProgress = func(p render.Progress) {
		if p.Fraction >= next {
			logger.WithFields(logrus.Fields{
				"frames":  p.Frames,
				"peak_db": p.PeakDB,
			}).Infof("%.0f%% rendered", p.Fraction*100)

			for next <= p.Fraction {
				next += 0.25
			}
		}
	}

	res, err := c.process(ctx, in, q, opts)
	if err != nil {
		return err
	}

	printSummary(c.Output, res)

	return nil
}

func (c *RenderCmd) runTUI(ctx context.Context, in *audiofile.Audio, q *dither.Quantizer, opts render.Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(ui.NewModel(), tea.WithAltScreen(), tea.WithContext(ctx))

	opts.OnProgress = func(pr render.Progress) {
		p.Send(ui.ProgressMsg(pr))
	}

	done := make(chan error, 1)

	go func() {
		p.Send(ui.StartMsg{
			InputPath:  c.Input,
			OutputPath: c.Output,
			Algorithm:  opts.Params.Algorithm.DisplayName(),
		})

		res, err := c.process(ctx, in, q, opts)
		done <- err

		p.Send(ui.CompleteMsg{Result: res, Error: err})
	}()

	final, err := p.Run()
	stopped := errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)
	if err != nil && !stopped {
		cancel()
		<-done

		return fmt.Errorf("ui: %w", err)
	}

	if m, ok := final.(ui.Model); stopped || (ok && m.Cancelled) {
		cancel()
		<-done

		return errors.New("render cancelled")
	}

	err = <-done
	if err != nil {
		return err
	}

	printSummary(c.Output, finalResult(final))

	return nil
}

func finalResult(m tea.Model) render.Result {
	if model, ok := m.(ui.Model); ok {
		return model.Result
	}

	return render.Result{}
}

func printSummary(output string, res render.Result) {
	fmt.Println(cli.TitleStyle.Render("Render complete"))
	cli.PrintKeyValue(os.Stdout, "Output", output)
	cli.PrintKeyValue(os.Stdout, "Frames", fmt.Sprintf("%d (%s)", res.Frames, res.Elapsed.Round(time.Millisecond)))
	cli.PrintKeyValue(os.Stdout, "Latency", fmt.Sprintf("%d frames", res.Latency))
	cli.PrintKeyValue(os.Stdout, "Input", levelText(res.Input.PeakDB(), res.Input.RMSDB()))
	cli.PrintKeyValue(os.Stdout, "Output level", levelText(res.Output.PeakDB(), res.Output.RMSDB()))

	if res.DelayWrapped {
		cli.PrintWarning("maximizer delay exceeded the ring capacity; output aliases")
	}
}

func levelText(peakDB, rmsDB float64) string {
	return strings.Join([]string{
		fmt.Sprintf("peak %.1f dB", peakDB),
		fmt.Sprintf("RMS %.1f dB", rmsDB),
	}, ", ")
}
