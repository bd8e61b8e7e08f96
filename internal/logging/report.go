package logging

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/retune/internal/audio"
	"github.com/linuxmatters/retune/internal/chart"
	"github.com/linuxmatters/retune/internal/tuning"
)

// TrackInfo is what the player measured for one track
type TrackInfo struct {
	Metadata audio.Metadata
	Levels   audio.Levels
}

// ReportData contains everything needed to write a tuning report
type ReportData struct {
	InputPath   string
	OutputPath  string // downloaded tuned file; the report sits next to it
	ServiceURL  string
	StartTime   time.Time
	EndTime     time.Time
	RequestTime time.Duration
	Parameters  tuning.Parameters
	Result      *tuning.Result
	Input       *TrackInfo // nil when the track could not be decoded
	Tuned       *TrackInfo
}

// ReportPath returns where GenerateReport writes: tuned_audio.wav → tuned_audio.log
func ReportPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".log"
}

// GenerateReport writes the tuning report alongside the output file.
//
// Report structure:
// 1. Header - file names and timestamp
// 2. Request Summary - service and timings
// 3. Parameters - key, correction, detected key
// 4. Track Measurements - two-column table (Input/Tuned)
// 5. Pitch Analysis - two-column table plus mean correction
func GenerateReport(data ReportData) (string, error) {
	logPath := ReportPath(data.OutputPath)

	f, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create log file: %w", err)
	}
	defer f.Close()

	writeReportHeader(f, data)
	writeRequestSummary(f, data)
	writeParameters(f, data)
	writeTrackTable(f, data.Input, data.Tuned)
	writePitchTable(f, data.Result)

	return logPath, nil
}

// writeSection writes a title with a dashed underline of the same length
func writeSection(f *os.File, title string) {
	fmt.Fprintln(f, title)
	fmt.Fprintln(f, strings.Repeat("-", len(title)))
}

func writeReportHeader(f *os.File, data ReportData) {
	fmt.Fprintln(f, "Retune Tuning Report")
	fmt.Fprintln(f, "====================")
	fmt.Fprintf(f, "Input: %s\n", filepath.Base(data.InputPath))
	fmt.Fprintf(f, "Output: %s\n", filepath.Base(data.OutputPath))
	fmt.Fprintf(f, "Tuned: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintln(f, "")
}

func writeRequestSummary(f *os.File, data ReportData) {
	writeSection(f, "Request Summary")
	fmt.Fprintf(f, "Service:  %s\n", data.ServiceURL)
	fmt.Fprintf(f, "Request:  %s\n", formatDuration(data.RequestTime))
	fmt.Fprintf(f, "Total:    %s\n", formatDuration(data.EndTime.Sub(data.StartTime)))
	fmt.Fprintln(f, "")
}

func writeParameters(f *os.File, data ReportData) {
	writeSection(f, "Parameters")
	fmt.Fprintf(f, "Key:        %s\n", data.Parameters.Key)
	fmt.Fprintf(f, "Correction: %.2f\n", data.Parameters.Correction)
	if data.Parameters.Key.IsAuto() {
		detected := "not reported"
		if data.Result != nil && data.Result.DetectedKey != "" {
			detected = data.Result.DetectedKey
		}
		fmt.Fprintf(f, "Detected:   %s\n", detected)
	}
	fmt.Fprintln(f, "")
}

// writeTrackTable compares what the players measured on each track
func writeTrackTable(f *os.File, input, tuned *TrackInfo) {
	writeSection(f, "Track Measurements")

	table := NewMetricTable()
	pick := func(t *TrackInfo, fn func(*TrackInfo) float64) float64 {
		if t == nil {
			return math.NaN()
		}
		return fn(t)
	}

	table.AddMetricRow("Duration",
		pick(input, func(t *TrackInfo) float64 { return t.Metadata.Duration }),
		pick(tuned, func(t *TrackInfo) float64 { return t.Metadata.Duration }),
		2, "s", "")
	table.AddMetricRow("Sample Rate",
		pick(input, func(t *TrackInfo) float64 { return float64(t.Metadata.SampleRate) }),
		pick(tuned, func(t *TrackInfo) float64 { return float64(t.Metadata.SampleRate) }),
		0, "Hz", "")
	table.AddRow("Channels", []string{trackChannels(input), trackChannels(tuned)}, "", "")

	inI := pick(input, func(t *TrackInfo) float64 { return t.Levels.IntegratedLUFS })
	outI := pick(tuned, func(t *TrackInfo) float64 { return t.Levels.IntegratedLUFS })
	table.AddRow("Integrated Loudness",
		[]string{formatMetricLUFS(inI, 1), formatMetricLUFS(outI, 1)},
		"LUFS", loudnessChange(inI, outI))

	table.AddRow("Sample Peak",
		[]string{
			formatMetricDB(pick(input, func(t *TrackInfo) float64 { return t.Levels.PeakDBFS }), 1),
			formatMetricDB(pick(tuned, func(t *TrackInfo) float64 { return t.Levels.PeakDBFS }), 1),
		},
		"dBFS", "")

	fmt.Fprint(f, table.String())
	fmt.Fprintln(f, "")
}

// writePitchTable summarises the original and tuned pitch contours
func writePitchTable(f *os.File, r *tuning.Result) {
	writeSection(f, "Pitch Analysis")
	if r == nil {
		fmt.Fprintln(f, "No tuning result")
		return
	}

	orig := tuning.Stats(r.Original)
	tuned := tuning.Stats(r.Tuned)

	table := NewMetricTable()
	table.AddRow("Frames", []string{fmt.Sprint(r.Frames()), fmt.Sprint(r.Frames())}, "", "")
	table.AddRow("Voiced Frames", []string{fmt.Sprint(orig.Voiced), fmt.Sprint(tuned.Voiced)}, "", "")
	table.AddRow("Lowest Pitch", []string{formatPitch(orig.Min), formatPitch(tuned.Min)}, "", "")
	table.AddRow("Highest Pitch", []string{formatPitch(orig.Max), formatPitch(tuned.Max)}, "", "")
	table.AddRow("Mean Pitch", []string{formatPitch(orig.Mean), formatPitch(tuned.Mean)}, "", "")
	fmt.Fprint(f, table.String())
	fmt.Fprintln(f, "")

	fmt.Fprintf(f, "Mean correction: %s cents\n", formatMetric(r.MeanCorrectionCents(), 1))
}

// formatPitch shows a MIDI pitch with its nearest note, e.g. "60.25 (C4)"
func formatPitch(p float64) string {
	if math.IsNaN(p) {
		return MissingValue
	}
	return fmt.Sprintf("%.2f (%s)", p, chart.NoteName(int(math.Round(p))))
}

func loudnessChange(in, out float64) string {
	d := out - in
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return ""
	}
	return formatMetricSigned(d, 1) + " LU"
}

func trackChannels(t *TrackInfo) string {
	if t == nil {
		return MissingValue
	}
	return channelName(t.Metadata.Channels)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

func channelName(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return fmt.Sprintf("%d channels", channels)
	}
}
