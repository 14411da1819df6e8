package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor = lipgloss.Color("#C2410C")
	mutedColor   = lipgloss.Color("#888888")
	okColor      = lipgloss.Color("#00AA00")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	subtitleStyle = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1).
			Width(60)

	filledStyle = lipgloss.NewStyle().Foreground(primaryColor)
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

func renderHeader(m Model) string {
	title := titleStyle.Render("grit - clip, shape, maximize")
	subtitle := subtitleStyle.Render(m.Algorithm)

	return title + "\n" + subtitle
}

func renderProgressView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	spinner := lipgloss.NewStyle().Foreground(primaryColor).Render(spinnerFrames[m.spinnerIndex])
	b.WriteString(fmt.Sprintf(" %s %s → %s\n", spinner, m.fileName(), filepath.Base(m.OutputPath)))

	var content strings.Builder
	content.WriteString(renderProgressBar(m.Progress, 40))
	content.WriteString("\n\n")

	elapsed := time.Since(m.StartTime)
	var remaining time.Duration
	if m.Progress > 0 {
		remaining = time.Duration(float64(elapsed)/m.Progress) - elapsed
	}

	content.WriteString(fmt.Sprintf("Frames: %d/%d | Elapsed: %s | Remaining: ~%s\n",
		m.Frames, m.Total, formatElapsed(elapsed), formatElapsed(remaining)))
	content.WriteString(fmt.Sprintf("Block peak: %.1f dB | Max: %.1f dB", m.LevelDB, m.PeakDB))

	b.WriteString(boxStyle.Render(content.String()))

	return b.String()
}

func renderSummary(m Model) string {
	var b strings.Builder

	if m.Error != nil {
		icon := lipgloss.NewStyle().Foreground(primaryColor).Render("✗")
		b.WriteString(fmt.Sprintf(" %s %s\n   Error: %v\n", icon, m.fileName(), m.Error))

		return b.String()
	}

	icon := lipgloss.NewStyle().Foreground(okColor).Render("✓")
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(okColor).Render("Render complete"))
	b.WriteString("\n\n")

	r := m.Result
	b.WriteString(fmt.Sprintf(" %s %s → %s\n", icon, m.fileName(), filepath.Base(m.OutputPath)))
	b.WriteString(fmt.Sprintf("   Before: peak %.1f dB, RMS %.1f dB\n", r.Input.PeakDB(), r.Input.RMSDB()))
	b.WriteString(fmt.Sprintf("   After:  peak %.1f dB, RMS %.1f dB\n", r.Output.PeakDB(), r.Output.RMSDB()))
	b.WriteString(fmt.Sprintf("   %d frames in %s, latency %d frames", r.Frames, formatElapsed(r.Elapsed), r.Latency))

	if r.DelayWrapped {
		b.WriteString("\n   ")
		b.WriteString(lipgloss.NewStyle().Foreground(primaryColor).Render("warning: maximizer delay wrapped its ring"))
	}

	b.WriteString("\n")

	return b.String()
}

func renderProgressBar(progress float64, width int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(width))

	bar := filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled))

	return fmt.Sprintf("%s %d%%", bar, int(progress*100))
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	return fmt.Sprintf("%.1fs", d.Seconds())
}
