// Package chart draws original and corrected pitch contours on a
// note-labelled axis
package chart

import (
	"math"
	"strconv"
)

// ReferenceOctave is the octave of pitch 0 (MIDI convention: 60 is C4)
const ReferenceOctave = -1

// Default bounds for a chart with no voiced frames (C4..C5)
const (
	DefaultMin = 60
	DefaultMax = 72
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName maps an integer pitch to a note name with octave, e.g. 69 -> "A4"
func NoteName(p int) string {
	idx := p % 12
	oct := p / 12
	if idx < 0 {
		idx += 12
		oct--
	}
	return noteNames[idx] + strconv.Itoa(oct+ReferenceOctave)
}

// Tick is one labelled pitch on the vertical axis
type Tick struct {
	Value int
	Label string
}

// Axis is the vertical pitch axis
type Axis struct {
	Min, Max int
	Ticks    []Tick
}

// Point is one voiced frame
type Point struct {
	Time  float64
	Pitch float64
}

// Segment is a run of consecutive voiced frames; segments never span an
// unvoiced frame
type Segment []Point

// Chart is a render-ready pair of pitch series
type Chart struct {
	Axis      Axis
	TimeStart float64
	TimeEnd   float64
	Original  []Segment
	Tuned     []Segment
}

// Empty reports whether neither series has a voiced frame
func (c Chart) Empty() bool {
	return len(c.Original) == 0 && len(c.Tuned) == 0
}

// Build computes the axis and gap-aware segments. NaN marks an unvoiced frame.
func Build(time, original, tuned []float64) Chart {
	c := Chart{
		Original: Segments(time, original),
		Tuned:    Segments(time, tuned),
	}
	if len(time) > 0 {
		c.TimeStart = time[0]
		c.TimeEnd = time[len(time)-1]
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, series := range [][]Segment{c.Original, c.Tuned} {
		for _, seg := range series {
			for _, pt := range seg {
				lo = math.Min(lo, pt.Pitch)
				hi = math.Max(hi, pt.Pitch)
			}
		}
	}

	if math.IsInf(lo, 1) {
		c.Axis = NewAxis(DefaultMin, DefaultMax)
	} else {
		c.Axis = NewAxis(int(math.Floor(lo)), int(math.Ceil(hi)))
	}
	return c
}

// NewAxis creates an axis with one tick per integer pitch. A zero-height
// range is widened by one so it still has a top and bottom.
func NewAxis(lo, hi int) Axis {
	if hi <= lo {
		hi = lo + 1
	}
	a := Axis{Min: lo, Max: hi}
	for p := lo; p <= hi; p++ {
		a.Ticks = append(a.Ticks, Tick{Value: p, Label: NoteName(p)})
	}
	return a
}

// Segments splits a series into runs of voiced frames
func Segments(time, series []float64) []Segment {
	n := min(len(time), len(series))

	var out []Segment
	var cur Segment
	for i := 0; i < n; i++ {
		p := series[i]
		if math.IsNaN(p) || math.IsInf(p, 0) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, Point{Time: time[i], Pitch: p})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
