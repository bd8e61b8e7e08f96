package tuning

import (
	"math"
)

// Result is the decoded response of a successful tuning request.
// Pitch values are in MIDI note units; NaN marks an unvoiced frame.
type Result struct {
	Audio       []byte // WAV bytes of the tuned clip
	Time        []float64
	Original    []float64
	Tuned       []float64
	DetectedKey string // verbatim from the service, empty unless auto was requested
}

// Frames returns the number of aligned samples
func (r *Result) Frames() int {
	if r == nil {
		return 0
	}
	return len(r.Time)
}

// Clone returns a deep copy so renderers never share slices with the session
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	return &Result{
		Audio:       append([]byte(nil), r.Audio...),
		Time:        append([]float64(nil), r.Time...),
		Original:    append([]float64(nil), r.Original...),
		Tuned:       append([]float64(nil), r.Tuned...),
		DetectedKey: r.DetectedKey,
	}
}

// PitchStats summarises one pitch series
type PitchStats struct {
	Voiced int     // frames with a pitch value
	Min    float64 // NaN when no frame is voiced
	Max    float64
	Mean   float64
}

// Stats computes voiced-frame statistics for a series
func Stats(series []float64) PitchStats {
	s := PitchStats{Min: math.NaN(), Max: math.NaN(), Mean: math.NaN()}
	sum := 0.0
	for _, v := range series {
		if math.IsNaN(v) {
			continue
		}
		if s.Voiced == 0 || v < s.Min {
			s.Min = v
		}
		if s.Voiced == 0 || v > s.Max {
			s.Max = v
		}
		sum += v
		s.Voiced++
	}
	if s.Voiced > 0 {
		s.Mean = sum / float64(s.Voiced)
	}
	return s
}

// MeanCorrectionCents is the mean absolute shift between the two series over
// frames voiced in both, in cents. NaN when no frame overlaps.
func (r *Result) MeanCorrectionCents() float64 {
	if r == nil {
		return math.NaN()
	}
	total := 0.0
	n := 0
	for i := range r.Original {
		if i >= len(r.Tuned) || math.IsNaN(r.Original[i]) || math.IsNaN(r.Tuned[i]) {
			continue
		}
		total += math.Abs(r.Tuned[i]-r.Original[i]) * 100
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return total / float64(n)
}
