package logging

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/linuxmatters/retune/internal/audio"
	"github.com/linuxmatters/retune/internal/tuning"
)

func TestReportPath(t *testing.T) {
	if got := ReportPath("/out/tuned_audio.wav"); got != "/out/tuned_audio.log" {
		t.Errorf("ReportPath() = %q", got)
	}
}

func TestGenerateReport(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	params := tuning.DefaultParameters()
	params.Key = tuning.AutoKey
	params.Correction = 0.8

	data := ReportData{
		InputPath:   "/music/vocal.wav",
		OutputPath:  filepath.Join(dir, "tuned_audio.wav"),
		ServiceURL:  "http://127.0.0.1:8000/tune",
		StartTime:   start,
		EndTime:     start.Add(4 * time.Second),
		RequestTime: 3 * time.Second,
		Parameters:  params,
		Result: &tuning.Result{
			Time:        []float64{0, 1, 2},
			Original:    []float64{60.2, math.NaN(), 61.8},
			Tuned:       []float64{60, 61, 62},
			DetectedKey: "G:minor",
		},
		Input: &TrackInfo{
			Metadata: audio.Metadata{Format: audio.FormatWAV, Duration: 3, SampleRate: 44100, Channels: 2},
			Levels:   audio.Levels{IntegratedLUFS: -20, PeakDBFS: -3},
		},
		Tuned: &TrackInfo{
			Metadata: audio.Metadata{Format: audio.FormatWAV, Duration: 3, SampleRate: 44100, Channels: 1},
			Levels:   audio.Levels{IntegratedLUFS: -18, PeakDBFS: -2.5},
		},
	}

	path, err := GenerateReport(data)
	if err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}
	if path != filepath.Join(dir, "tuned_audio.log") {
		t.Errorf("path = %q", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	report := string(raw)

	for _, want := range []string{
		"Retune Tuning Report",
		"Input: vocal.wav",
		"Key:        auto",
		"Correction: 0.80",
		"Detected:   G:minor",
		"Integrated Loudness",
		"+2.0 LU",
		"Voiced Frames",
		"60.20 (C4)",
		"62.00 (D4)",
		"Mean correction: 20.0 cents",
		"Request:  3.0s",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestGenerateReportWithoutTracks(t *testing.T) {
	data := ReportData{
		OutputPath: filepath.Join(t.TempDir(), "tuned_audio.wav"),
		Parameters: tuning.DefaultParameters(),
	}
	path, err := GenerateReport(data)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "No tuning result") {
		t.Errorf("report should note the missing result:\n%s", raw)
	}
	if strings.Contains(string(raw), "Detected:") {
		t.Error("detected key shown for a manual key")
	}
}
