package audio

import (
	"errors"
	"math"
	"testing"

	"github.com/linuxmatters/retune/internal/audiotest"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"wav", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), FormatWAV},
		{"aiff", []byte("FORM\x00\x00\x00\x00AIFFCOMM"), FormatAIFF},
		{"aifc", []byte("FORM\x00\x00\x00\x00AIFCCOMM"), FormatAIFF},
		{"ogg", []byte("OggS\x00\x02"), FormatVorbis},
		{"mp3_id3", []byte("ID3\x04\x00"), FormatMP3},
		{"mp3_sync", []byte{0xFF, 0xFB, 0x90, 0x64}, FormatMP3},
		{"riff_not_wave", []byte("RIFF\x00\x00\x00\x00AVI LIST"), FormatUnknown},
		{"short", []byte("RI"), FormatUnknown},
		{"empty", nil, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.data); got != tt.want {
				t.Errorf("Sniff() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeWAV(t *testing.T) {
	data := audiotest.ToneWAV(t, audiotest.ToneOptions{
		SampleRate:   8000,
		Channels:     2,
		DurationSecs: 0.5,
		Frequency:    440,
	})

	clip, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if clip.Format != FormatWAV {
		t.Errorf("Format = %q, want wav", clip.Format)
	}
	if clip.SampleRate != 8000 || clip.Channels != 2 || clip.BitDepth != 16 {
		t.Errorf("Metadata = %+v, want 8000 Hz, 2 ch, 16 bit", clip.Metadata)
	}
	if len(clip.Samples) != 4000 {
		t.Errorf("len(Samples) = %d, want 4000 mono frames", len(clip.Samples))
	}
	if math.Abs(clip.Duration-0.5) > 1e-9 {
		t.Errorf("Duration = %v, want 0.5", clip.Duration)
	}

	peak := 0.0
	for _, s := range clip.Samples {
		peak = math.Max(peak, math.Abs(s))
	}
	if peak < 0.45 || peak > 0.55 {
		t.Errorf("peak = %.3f, want ~0.5", peak)
	}
}

func TestDecodeRejectsUnknown(t *testing.T) {
	if _, err := Decode([]byte("definitely not audio")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Decode(garbage) error = %v, want ErrUnknownFormat", err)
	}
}

func TestDecodeTruncatedWAV(t *testing.T) {
	data := audiotest.ToneWAV(t, audiotest.ToneOptions{DurationSecs: 0.1, Frequency: 220})
	if _, err := Decode(data[:20]); err == nil {
		t.Error("Decode(truncated header) succeeded")
	}
}

func TestMeasure(t *testing.T) {
	data := audiotest.ToneWAV(t, audiotest.ToneOptions{
		SampleRate:   48000,
		DurationSecs: 2,
		Frequency:    1000,
		Amplitude:    0.5,
	})
	clip, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	levels := Measure(clip)
	if math.Abs(levels.PeakDBFS-(-6.02)) > 0.1 {
		t.Errorf("PeakDBFS = %.2f, want ~-6.02", levels.PeakDBFS)
	}
	if math.IsInf(levels.IntegratedLUFS, 0) || levels.IntegratedLUFS > -5 || levels.IntegratedLUFS < -15 {
		t.Errorf("IntegratedLUFS = %.2f, want around -9", levels.IntegratedLUFS)
	}
}

func TestMeasureSilence(t *testing.T) {
	data := audiotest.ToneWAV(t, audiotest.ToneOptions{DurationSecs: 1})
	clip, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	levels := Measure(clip)
	if !math.IsInf(levels.PeakDBFS, -1) {
		t.Errorf("PeakDBFS = %v, want -Inf for silence", levels.PeakDBFS)
	}
}

func TestMeasureNil(t *testing.T) {
	levels := Measure(nil)
	if !math.IsInf(levels.IntegratedLUFS, -1) || !math.IsInf(levels.PeakDBFS, -1) {
		t.Errorf("Measure(nil) = %+v, want -Inf levels", levels)
	}
}
