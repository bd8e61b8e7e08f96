package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/linuxmatters/retune/internal/chart"
	"github.com/linuxmatters/retune/internal/session"
)

// Spinner frames for the in-flight request
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A40000"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#888888")).
			Padding(0, 1)

	activeBoxStyle = boxStyle.BorderForeground(lipgloss.Color("#A40000"))
)

// renderSessionView renders the whole screen
func renderSessionView(m Model) string {
	inner := max(m.Width-4, 20)

	var b strings.Builder
	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")
	b.WriteString(boxStyle.Width(inner).Render(renderParameters(m, inner)))
	b.WriteString("\n")
	b.WriteString(renderStatus(m))
	b.WriteString("\n")
	b.WriteString(boxStyle.Width(inner).Render(m.input.Render(inner - 2)))
	b.WriteString("\n")
	b.WriteString(activeBoxStyle.Width(inner).Render(m.output.Render(inner - 2)))
	b.WriteString("\n")
	b.WriteString(boxStyle.Width(inner).Render(renderChart(m.snap, inner-2, chartHeight(m.Height))))
	b.WriteString("\n")
	if m.prompt {
		b.WriteString(warnStyle.Render("Open file: "))
		b.WriteString(m.promptText)
		b.WriteString("█\n")
	}
	b.WriteString(renderHelp())
	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := titleStyle.Render("Retune 🎚 - Pitch Correction")

	source := "no file open"
	if m.snap.Parameters.Source != nil {
		source = m.snap.Parameters.Source.Name
	}
	subtitle := subtitleStyle.Render(fmt.Sprintf("%s | %s", source, m.service))
	return title + "\n" + subtitle
}

// renderParameters shows the key selector, auto toggle and correction slider
func renderParameters(m Model, width int) string {
	p := m.snap.Parameters

	var b strings.Builder
	b.WriteString(labelStyle.Render("Key: "))
	if p.Key.IsAuto() {
		b.WriteString(valueStyle.Render("auto"))
		b.WriteString(labelStyle.Render(fmt.Sprintf(" (manual: %s)", m.manualKey)))
		if m.snap.DetectedKey != "" {
			b.WriteString(labelStyle.Render("  Detected: "))
			b.WriteString(okStyle.Render(m.snap.DetectedKey))
		}
	} else {
		b.WriteString(valueStyle.Render(p.Key.String()))
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Correction: "))
	b.WriteString(renderSlider(p.Correction, min(40, max(width-20, 10))))
	return b.String()
}

// renderSlider renders a 0..1 value as a bar with percentage
func renderSlider(value float64, width int) string {
	filled := int(value * float64(width))
	filled = max(0, min(width, filled))

	filledStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000"))
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))

	bar := filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("━", width-filled))
	return fmt.Sprintf("%s %3d%%", bar, int(value*100+0.5))
}

// renderStatus renders the request phase and the last message
func renderStatus(m Model) string {
	var line string
	switch m.snap.Phase {
	case session.PhaseRequesting:
		spinner := titleStyle.Render(spinnerFrames[m.spinnerIndex])
		line = fmt.Sprintf("%s Tuning... [%s]", spinner, formatElapsed(time.Since(m.requestStart)))
	case session.PhaseFailed:
		line = errStyle.Render("✗ Tuning failed: ") + m.snap.Message
		if m.snap.Result != nil {
			line += labelStyle.Render(" (showing previous result)")
		}
	case session.PhaseReady:
		line = okStyle.Render("✓ Ready")
	default:
		line = labelStyle.Render("○ Idle")
	}

	if m.status != "" {
		style := labelStyle
		if m.statusErr {
			style = errStyle
		}
		line += "  " + style.Render(m.status)
	}
	return line
}

// renderChart draws the pitch contours of the current result
func renderChart(s session.Snapshot, width, height int) string {
	title := titleStyle.Render("Pitch")
	if s.Result == nil {
		return title + "\n" + subtitleStyle.Render("Tune a clip to compare original and corrected pitch")
	}
	c := chart.Build(s.Result.Time, s.Result.Original, s.Result.Tuned)
	return title + "\n" + c.Render(width, height)
}

// chartHeight gives the chart what is left after the fixed panels
func chartHeight(termHeight int) int {
	return max(termHeight-26, 6)
}

func renderHelp() string {
	keys := []string{
		"o open", "k/K key", "a auto", "←/→ correction", "enter tune",
		"space play tuned", "i play input", "z/Z zoom", "d download", "q quit",
	}
	return labelStyle.Render(strings.Join(keys, " • "))
}

// formatElapsed formats elapsed time as MM:SS or HH:MM:SS
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
