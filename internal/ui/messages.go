package ui

import (
	"github.com/pulusound/grit/internal/render"
)

// StartMsg announces the render about to run.
type StartMsg struct {
	InputPath  string
	OutputPath string
	Algorithm  string
}

// ProgressMsg carries a render progress report.
type ProgressMsg render.Progress

// CompleteMsg ends the render, successfully or not.
type CompleteMsg struct {
	Result render.Result
	Error  error
}
