package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pulusound/grit/dsp/core"
	"github.com/pulusound/grit/dsp/grit"
	"github.com/pulusound/grit/dsp/window"
	"github.com/pulusound/grit/internal/analyze"
	"github.com/pulusound/grit/internal/cli"
)

// AnalyzeCmd measures each algorithm on a sine tone.
type AnalyzeCmd struct {
	ParamFlags `embed:""`

	All        bool    `help:"Analyze every algorithm instead of only --algorithm."`
	Frequency  float64 `default:"1000" placeholder:"hz" help:"Tone frequency in Hz."`
	Level      float64 `default:"-6" placeholder:"dbfs" help:"Tone level in dBFS."`
	SampleRate float64 `default:"48000" placeholder:"hz" help:"Sample rate in Hz."`
	FFTSize    int     `name:"fft-size" default:"8192" placeholder:"n" help:"FFT length."`
	Window     string  `default:"hann" enum:"hann,hamming,blackman,blackman-harris,flattop" help:"Analysis window (${enum})."`
}

// Run prints one table row per algorithm.
func (c *AnalyzeCmd) Run(g *Globals) error {
	params, err := c.params()
	if err != nil {
		return err
	}

	logger, closeLog, err := g.newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	win, err := window.ParseType(c.Window)
	if err != nil {
		return err
	}

	algorithms := []grit.Algorithm{params.Algorithm}
	if c.All {
		algorithms = grit.Algorithms
	}

	rows, err := analyze.Run(context.Background(), analyze.Config{
		SampleRate: c.SampleRate,
		Frequency:  c.Frequency,
		Amplitude:  core.DBToLinear(c.Level),
		FFTSize:    c.FFTSize,
		Window:     win,
		Params:     params,
		Algorithms: algorithms,
	})
	if err != nil {
		return err
	}

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		logger.WithField("algorithm", row.Algorithm.String()).Debugf("%+v", row.THD)

		table = append(table, []string{
			row.Algorithm.DisplayName(),
			fmt.Sprintf("%.2f", core.LinearToDB(row.THD.FundamentalAmplitude)),
			fmt.Sprintf("%.4f", row.THD.THD*100),
			fmt.Sprintf("%.1f", row.THD.THDNdB),
			fmt.Sprintf("%.4f", row.THD.OddHD*100),
			fmt.Sprintf("%.4f", row.THD.EvenHD*100),
			fmt.Sprintf("%.1f", row.Output.PeakDB()),
			fmt.Sprintf("%.1f", row.Output.RMSDB()),
			fmt.Sprintf("%d", row.Latency),
		})
	}

	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Harmonic analysis, %.1f Hz at %.1f dBFS", rows[0].Frequency, c.Level)))
	fmt.Fprint(os.Stdout, cli.Table(
		[]string{"Algorithm", "Fund dBFS", "THD %", "THD+N dB", "Odd %", "Even %", "Peak dB", "RMS dB", "Latency"},
		table,
	))

	return nil
}
