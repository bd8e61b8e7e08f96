package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	axisStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	originalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	tunedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Bold(true)
	emptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
)

type series int

const (
	seriesNone series = iota
	seriesTuned
	seriesOriginal
)

// glyphs per series: point, horizontal, vertical
var glyphs = map[series][3]rune{
	seriesOriginal: {'○', '┄', '┆'},
	seriesTuned:    {'●', '─', '│'},
}

type cell struct {
	r      rune
	s      series
	isMark bool
}

// Render draws the chart as a character grid of roughly width x height.
// Time runs left to right; note labels sit on the left.
func (c Chart) Render(width, height int) string {
	labelW := 0
	for _, t := range c.Axis.Ticks {
		labelW = max(labelW, len(t.Label))
	}
	cols := max(width-labelW-2, 2)
	rows := max(height, 2)

	grid := make([][]cell, rows)
	for r := range grid {
		grid[r] = make([]cell, cols)
	}

	labels := make([]string, rows)
	for _, t := range c.Axis.Ticks {
		if r := c.row(float64(t.Value), rows); labels[r] == "" {
			labels[r] = t.Label
		}
	}

	// Original last so its points stay visible where the series coincide
	c.plot(grid, c.Tuned, seriesTuned)
	c.plot(grid, c.Original, seriesOriginal)

	var b strings.Builder
	for r := 0; r < rows; r++ {
		tick := "│"
		if labels[r] != "" {
			tick = "┤"
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s %s", labelW, labels[r], tick)))
		writeRow(&b, grid[r])
		b.WriteByte('\n')
	}

	indent := strings.Repeat(" ", labelW+1)
	b.WriteString(axisStyle.Render(indent + "└" + strings.Repeat("─", cols)))
	b.WriteByte('\n')

	start := fmt.Sprintf("%.1fs", c.TimeStart)
	end := fmt.Sprintf("%.1fs", c.TimeEnd)
	gap := max(cols-len(start)-len(end), 1)
	b.WriteString(axisStyle.Render(indent + " " + start + strings.Repeat(" ", gap) + end))
	b.WriteByte('\n')

	b.WriteString(indent + " ")
	b.WriteString(originalStyle.Render("○ original"))
	b.WriteString("  ")
	b.WriteString(tunedStyle.Render("● tuned"))
	if c.Empty() {
		b.WriteString("  ")
		b.WriteString(emptyStyle.Render("no voiced frames"))
	}
	return b.String()
}

// writeRow styles runs of cells belonging to the same series together
func writeRow(b *strings.Builder, row []cell) {
	var run strings.Builder
	cur := seriesNone
	flush := func() {
		switch cur {
		case seriesOriginal:
			b.WriteString(originalStyle.Render(run.String()))
		case seriesTuned:
			b.WriteString(tunedStyle.Render(run.String()))
		default:
			b.WriteString(run.String())
		}
		run.Reset()
	}

	for _, cl := range row {
		if cl.s != cur {
			flush()
			cur = cl.s
		}
		if cl.s == seriesNone {
			run.WriteRune(' ')
		} else {
			run.WriteRune(cl.r)
		}
	}
	flush()
}

// plot draws each segment as points joined by step connectors. Connectors
// never cross from one segment to the next.
func (c Chart) plot(grid [][]cell, segs []Segment, s series) {
	rows, cols := len(grid), len(grid[0])
	g := glyphs[s]

	set := func(r, col int, ch rune, isMark bool) {
		cur := grid[r][col]
		if cur.isMark && !isMark {
			return
		}
		grid[r][col] = cell{r: ch, s: s, isMark: isMark}
	}

	for _, seg := range segs {
		prevC, prevR := -1, -1
		for _, pt := range seg {
			col := c.col(pt.Time, cols)
			r := c.row(pt.Pitch, rows)
			if prevC >= 0 {
				for x := prevC + 1; x < col; x++ {
					set(prevR, x, g[1], false)
				}
				step := 1
				if r < prevR {
					step = -1
				}
				for y := prevR; y != r; y += step {
					if y != prevR || col != prevC {
						set(y, col, g[2], false)
					}
				}
			}
			set(r, col, g[0], true)
			prevC, prevR = col, r
		}
	}
}

func (c Chart) row(pitch float64, rows int) int {
	span := float64(c.Axis.Max - c.Axis.Min)
	r := int(math.Round((float64(c.Axis.Max) - pitch) / span * float64(rows-1)))
	return max(0, min(rows-1, r))
}

func (c Chart) col(t float64, cols int) int {
	span := c.TimeEnd - c.TimeStart
	if span <= 0 {
		return 0
	}
	x := int(math.Round((t - c.TimeStart) / span * float64(cols-1)))
	return max(0, min(cols-1, x))
}
