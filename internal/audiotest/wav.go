// Package audiotest builds encoded audio fixtures for tests
package audiotest

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ToneOptions configures a generated WAV clip
type ToneOptions struct {
	SampleRate   int     // default 16000
	Channels     int     // default 1
	DurationSecs float64 // default 1.0
	Frequency    float64 // Hz, 0 = silence
	Amplitude    float64 // linear, default 0.5
}

// ToneWAV encodes a 16-bit PCM sine tone with go-audio's WAV encoder.
// The encoder needs an io.WriteSeeker, so the clip is staged in t.TempDir().
func ToneWAV(t testing.TB, opts ToneOptions) []byte {
	t.Helper()

	if opts.SampleRate == 0 {
		opts.SampleRate = 16000
	}
	if opts.Channels == 0 {
		opts.Channels = 1
	}
	if opts.DurationSecs == 0 {
		opts.DurationSecs = 1.0
	}
	if opts.Amplitude == 0 {
		opts.Amplitude = 0.5
	}

	frames := int(opts.DurationSecs * float64(opts.SampleRate))
	data := make([]int, frames*opts.Channels)
	for i := 0; i < frames; i++ {
		v := 0.0
		if opts.Frequency > 0 {
			v = opts.Amplitude * math.Sin(2*math.Pi*opts.Frequency*float64(i)/float64(opts.SampleRate))
		}
		for ch := 0; ch < opts.Channels; ch++ {
			data[i*opts.Channels+ch] = int(v * math.MaxInt16)
		}
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}

	enc := wav.NewEncoder(f, opts.SampleRate, 16, opts.Channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: opts.Channels, SampleRate: opts.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		t.Fatalf("encode fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		t.Fatalf("finalise fixture: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return out
}
