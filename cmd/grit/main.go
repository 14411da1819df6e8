package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/pulusound/grit/internal/cli"
)

var version = "0.1.0"

// Globals are flags shared by every command.
type Globals struct {
	LogLevel string `default:"info" enum:"debug,info,warn,error" placeholder:"level" help:"Log level (${enum})."`
	LogFile  string `type:"path" placeholder:"path" help:"Write logs to this file instead of stderr."`
}

// CLI defines the command-line interface.
type CLI struct {
	Globals

	Render  RenderCmd  `cmd:"" help:"Process an audio file into a WAV file."`
	Analyze AnalyzeCmd `cmd:"" help:"Measure harmonic distortion of a test tone per algorithm."`
	Params  ParamsCmd  `cmd:"" help:"List parameters with ranges and defaults."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// VersionCmd prints the version.
type VersionCmd struct{}

// Run prints the version.
func (c *VersionCmd) Run(_ *Globals) error {
	cli.PrintVersion(os.Stdout, version)

	return nil
}

func main() {
	var args CLI

	ctx := kong.Parse(&args,
		kong.Name("grit"),
		kong.Description("Clip, shape and maximize audio files."),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	err := ctx.Run(&args.Globals)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

// newLogger builds the command logger. quiet discards output unless a log
// file was requested, so logs do not tear the TUI.
func (g *Globals) newLogger(quiet bool) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(g.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	logger.SetLevel(level)

	if g.LogFile == "" {
		if quiet {
			logger.SetOutput(io.Discard)
		}

		return logger, func() {}, nil
	}

	file, err := os.OpenFile(g.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger.SetOutput(file)
	logger.SetFormatter(&logrus.JSONFormatter{})

	return logger, func() { file.Close() }, nil
}
