// Package waveform renders and plays one audio track in the terminal
package waveform

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/linuxmatters/retune/internal/audio"
)

// envelopeBuckets is the resolution of the stored envelope; rendering
// resamples it to the view width
const envelopeBuckets = 1024

// Block characters from quietest to loudest
var levelGlyphs = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

var (
	waveStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#93C5FD"))
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563EB"))
)

// Waveform is the decoded, display-ready form of one clip
type Waveform struct {
	Metadata audio.Metadata
	Levels   audio.Levels
	Envelope []float64 // per-bucket peak magnitude, normalised to the clip peak
}

// Build computes the peak envelope of a clip, normalised so the loudest
// bucket fills the display height
func Build(clip *audio.Clip) *Waveform {
	w := &Waveform{
		Metadata: clip.Metadata,
		Levels:   audio.Measure(clip),
	}

	n := len(clip.Samples)
	buckets := envelopeBuckets
	if n < buckets {
		buckets = n
	}
	w.Envelope = make([]float64, buckets)

	maxPeak := 0.0
	for b := 0; b < buckets; b++ {
		start := b * n / buckets
		end := (b + 1) * n / buckets
		peak := 0.0
		for _, s := range clip.Samples[start:end] {
			if a := math.Abs(s); a > peak {
				peak = a
			}
		}
		w.Envelope[b] = peak
		if peak > maxPeak {
			maxPeak = peak
		}
	}

	if maxPeak > 0 {
		for i := range w.Envelope {
			w.Envelope[i] /= maxPeak
		}
	}
	return w
}

// Columns resamples the envelope to width columns by taking the max of each span
func (w *Waveform) Columns(width int) []float64 {
	cols := make([]float64, width)
	n := len(w.Envelope)
	if n == 0 || width <= 0 {
		return cols
	}
	for c := 0; c < width; c++ {
		start := c * n / width
		end := (c + 1) * n / width
		if end <= start {
			end = start + 1
		}
		if end > n {
			end = n
		}
		for _, v := range w.Envelope[start:end] {
			if v > cols[c] {
				cols[c] = v
			}
		}
	}
	return cols
}

// Render draws the envelope as one line of block characters. progress in
// [0,1] highlights the played portion.
func (w *Waveform) Render(width int, progress float64) string {
	return w.RenderWindow(width, 1, progress)
}

// RenderWindow draws a width-column window into the envelope stretched to
// width*zoom columns, scrolled so the playhead stays in view
func (w *Waveform) RenderWindow(width, zoom int, progress float64) string {
	if width <= 0 {
		return ""
	}
	zoom = max(1, zoom)
	total := width * zoom
	cols := w.Columns(total)
	playhead := int(math.Round(clamp01(progress) * float64(total)))

	start := playhead - width/2
	start = max(0, min(start, total-width))
	played := playhead - start

	var head, tail strings.Builder
	for i, v := range cols[start : start+width] {
		glyph := levelGlyphs[int(math.Round(v*float64(len(levelGlyphs)-1)))]
		if i < played {
			head.WriteRune(glyph)
		} else {
			tail.WriteRune(glyph)
		}
	}
	return progressStyle.Render(head.String()) + waveStyle.Render(tail.String())
}

// Summary describes the clip for the player header
func (w *Waveform) Summary() string {
	return fmt.Sprintf("%s | %d Hz | %s | %s LUFS | peak %s dBFS",
		formatSeconds(w.Metadata.Duration),
		w.Metadata.SampleRate,
		channelName(w.Metadata.Channels),
		formatLevel(w.Levels.IntegratedLUFS),
		formatLevel(w.Levels.PeakDBFS))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func formatLevel(v float64) string {
	if math.IsInf(v, -1) || v < -120 {
		return "-inf"
	}
	return fmt.Sprintf("%.1f", v)
}

// formatSeconds formats seconds as M:SS.s
func formatSeconds(s float64) string {
	if s < 0 || math.IsNaN(s) {
		s = 0
	}
	m := int(s) / 60
	return fmt.Sprintf("%d:%04.1f", m, s-float64(m*60))
}

func channelName(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return fmt.Sprintf("%d ch", channels)
	}
}
