// Package audio decodes encoded audio clips to mono PCM for display and metering
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// Format names a container recognised by Sniff
type Format string

const (
	FormatWAV     Format = "wav"
	FormatAIFF    Format = "aiff"
	FormatMP3     Format = "mp3"
	FormatVorbis  Format = "ogg vorbis"
	FormatUnknown Format = ""
)

var (
	ErrUnknownFormat = errors.New("unrecognised audio format")
	ErrEmptyAudio    = errors.New("audio contains no samples")
)

// Metadata contains audio clip metadata
type Metadata struct {
	Format     Format
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	BitDepth   int // 0 for lossy formats
}

// Clip is a decoded clip mixed down to mono
type Clip struct {
	Metadata
	Samples []float64 // mono, [-1, 1]
}

// DurationTime returns the clip length as a time.Duration
func (c *Clip) DurationTime() time.Duration {
	return time.Duration(c.Duration * float64(time.Second))
}

// Sniff identifies the container from its leading bytes
func Sniff(data []byte) Format {
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV
	case len(data) >= 12 && string(data[0:4]) == "FORM" && (string(data[8:12]) == "AIFF" || string(data[8:12]) == "AIFC"):
		return FormatAIFF
	case len(data) >= 4 && string(data[0:4]) == "OggS":
		return FormatVorbis
	case len(data) >= 3 && string(data[0:3]) == "ID3":
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	default:
		return FormatUnknown
	}
}

// Decode decodes an encoded clip and mixes it down to mono
func Decode(data []byte) (*Clip, error) {
	var (
		clip *Clip
		err  error
	)

	format := Sniff(data)
	switch format {
	case FormatWAV:
		clip, err = decodeWAV(data)
	case FormatAIFF:
		clip, err = decodeAIFF(data)
	case FormatMP3:
		clip, err = decodeMP3(data)
	case FormatVorbis:
		clip, err = decodeVorbis(data)
	default:
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", format, err)
	}
	if len(clip.Samples) == 0 {
		return nil, ErrEmptyAudio
	}

	clip.Format = format
	clip.Duration = float64(len(clip.Samples)) / float64(clip.SampleRate)
	return clip, nil
}

func decodeWAV(data []byte) (*Clip, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV header")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	return clipFromIntBuffer(buf, int(dec.BitDepth))
}

func decodeAIFF(data []byte) (*Clip, error) {
	dec := aiff.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, errors.New("invalid AIFF header")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	return clipFromIntBuffer(buf, int(dec.BitDepth))
}

// clipFromIntBuffer normalises go-audio integer PCM by bit depth and mixes
// interleaved channels down to mono
func clipFromIntBuffer(buf *goaudio.IntBuffer, bitDepth int) (*Clip, error) {
	if buf == nil || buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, errors.New("missing PCM format")
	}

	var fullScale float64
	switch bitDepth {
	case 8:
		fullScale = 128.0
	case 24:
		fullScale = 8388608.0
	case 32:
		fullScale = 2147483648.0
	default:
		fullScale = 32768.0
	}

	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf.Data[i*channels+ch]) / fullScale
		}
		samples[i] = sum / float64(channels)
	}

	return &Clip{
		Metadata: Metadata{
			SampleRate: buf.Format.SampleRate,
			Channels:   channels,
			BitDepth:   bitDepth,
		},
		Samples: samples,
	}, nil
}

func decodeMP3(data []byte) (*Clip, error) {
	dec, err := gomp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	// go-mp3 always yields 16-bit little-endian stereo
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, err
	}

	frames := len(pcm) / 4
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		l := int16(uint16(pcm[4*i]) | uint16(pcm[4*i+1])<<8)
		r := int16(uint16(pcm[4*i+2]) | uint16(pcm[4*i+3])<<8)
		samples[i] = (float64(l) + float64(r)) / 2 / 32768.0
	}

	return &Clip{
		Metadata: Metadata{SampleRate: dec.SampleRate(), Channels: 2},
		Samples:  samples,
	}, nil
}

func decodeVorbis(data []byte) (*Clip, error) {
	pcm, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if format.Channels <= 0 {
		return nil, errors.New("no channels in stream")
	}

	channels := format.Channels
	frames := len(pcm) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += float64(pcm[i*channels+ch])
		}
		samples[i] = sum / float64(channels)
	}

	return &Clip{
		Metadata: Metadata{SampleRate: format.SampleRate, Channels: channels},
		Samples:  samples,
	}, nil
}
