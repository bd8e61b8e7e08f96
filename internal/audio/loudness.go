package audio

import (
	"math"

	"github.com/cwbudde/algo-dsp/measure/loudness"
)

// Levels holds the loudness measurements shown for a track
type Levels struct {
	IntegratedLUFS float64 // -Inf when the gate rejects everything
	PeakDBFS       float64 // -Inf for digital silence
}

// Measure runs an EBU R128 meter over the whole clip
func Measure(c *Clip) Levels {
	if c == nil || len(c.Samples) == 0 || c.SampleRate <= 0 {
		return Levels{IntegratedLUFS: math.Inf(-1), PeakDBFS: math.Inf(-1)}
	}

	m := loudness.NewMeter(
		loudness.WithSampleRate(float64(c.SampleRate)),
		loudness.WithChannels(1),
	)
	m.StartIntegration()
	m.ProcessBlock(c.Samples)

	peak := m.Peaks()[0]
	peakDB := math.Inf(-1)
	if peak > 0 {
		peakDB = 20 * math.Log10(peak)
	}

	return Levels{
		IntegratedLUFS: m.Integrated(),
		PeakDBFS:       peakDB,
	}
}
