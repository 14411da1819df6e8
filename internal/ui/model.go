// Package ui provides the Bubbletea progress display for grit renders.
package ui

import (
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pulusound/grit/internal/render"
)

const silenceDB = -90.0

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type tickMsg time.Time

// Model is the Bubbletea model for a single file render.
type Model struct {
	InputPath  string
	OutputPath string
	Algorithm  string

	Progress  float64
	Frames    int
	Total     int
	LevelDB   float64
	PeakDB    float64
	StartTime time.Time

	Result render.Result
	Error  error
	Done   bool
	// Cancelled is set when the user quits before the render finishes.
	Cancelled bool

	spinnerIndex int

	Width  int
	Height int
}

// NewModel creates a model waiting for a StartMsg.
func NewModel() Model {
	return Model{
		StartTime: time.Now(),
		LevelDB:   silenceDB,
		PeakDB:    silenceDB,
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Cancelled = !m.Done

			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tickMsg:
		if !m.Done {
			m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)

			return m, tickCmd()
		}

	case StartMsg:
		m.InputPath = msg.InputPath
		m.OutputPath = msg.OutputPath
		m.Algorithm = msg.Algorithm
		m.StartTime = time.Now()

	case ProgressMsg:
		m.Progress = msg.Fraction
		m.Frames = msg.Frames
		m.Total = msg.Total
		m.LevelDB = max(msg.PeakDB, silenceDB)
		m.PeakDB = max(m.PeakDB, m.LevelDB)

	case CompleteMsg:
		m.Result = msg.Result
		m.Error = msg.Error
		m.Done = true
		if msg.Error == nil {
			m.Progress = 1
		}

		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.Width == 0 {
		return "Initializing..."
	}

	if m.Done {
		return renderSummary(m)
	}

	return renderProgressView(m)
}

func (m Model) fileName() string {
	if m.InputPath == "" {
		return "(waiting)"
	}

	return filepath.Base(m.InputPath)
}
