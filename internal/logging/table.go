// Package logging writes the debug log and the per-run tuning report.
// This file holds the column-aligned metric table used by the report
// (Input → Tuned).

package logging

import (
	"fmt"
	"math"
	"strings"
)

// MetricRow is one row of a comparison table.
// Values are pre-formatted so rows can mix precisions and notations.
type MetricRow struct {
	Label  string   // e.g. "Integrated Loudness"
	Values []string // one per column
	Unit   string   // "LUFS", "Hz", "" for unitless
	Note   string   // optional trailing remark
}

// MetricTable aligns label, value, unit and remark columns
type MetricTable struct {
	Headers []string
	Rows    []MetricRow
}

// String renders the table. Labels are left-aligned, values right-aligned,
// units follow the last value column and the remark column only appears
// when a row has one.
func (t *MetricTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	hasNote := false
	labelWidth := 0
	unitWidth := 0
	valueWidths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		valueWidths[i] = len(h)
	}
	for _, row := range t.Rows {
		hasNote = hasNote || row.Note != ""
		labelWidth = max(labelWidth, len(row.Label))
		unitWidth = max(unitWidth, len(row.Unit))
		for i, v := range row.Values {
			if i < len(valueWidths) {
				valueWidths[i] = max(valueWidths[i], len(v))
			}
		}
	}

	var sb strings.Builder

	sb.WriteString(strings.Repeat(" ", labelWidth+2))
	for i, h := range t.Headers {
		fmt.Fprintf(&sb, "%*s  ", valueWidths[i], h)
	}
	if hasNote {
		if unitWidth > 0 {
			sb.WriteString(strings.Repeat(" ", unitWidth+1))
		}
		sb.WriteString("Note")
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		fmt.Fprintf(&sb, "%-*s  ", labelWidth, row.Label)
		for i := range t.Headers {
			v := MissingValue
			if i < len(row.Values) && row.Values[i] != "" {
				v = row.Values[i]
			}
			fmt.Fprintf(&sb, "%*s  ", valueWidths[i], v)
		}
		if unitWidth > 0 {
			fmt.Fprintf(&sb, "%-*s ", unitWidth, row.Unit)
		}
		if hasNote {
			sb.WriteString(row.Note)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// NewMetricTable creates a table with the Input and Tuned columns
func NewMetricTable() *MetricTable {
	return &MetricTable{Headers: []string{"Input", "Tuned"}}
}

// AddRow appends a row of pre-formatted values
func (t *MetricTable) AddRow(label string, values []string, unit, note string) {
	t.Rows = append(t.Rows, MetricRow{Label: label, Values: values, Unit: unit, Note: note})
}

// AddMetricRow appends a row of numbers. NaN renders as MissingValue.
func (t *MetricTable) AddMetricRow(label string, input, tuned float64, decimals int, unit, note string) {
	t.AddRow(label, []string{formatMetric(input, decimals), formatMetric(tuned, decimals)}, unit, note)
}

// =============================================================================
// Metric Formatting Helpers
// =============================================================================

// MissingValue is the placeholder for unavailable measurements
const MissingValue = "-"

// DigitalSilenceThreshold is the dBFS level treated as digital silence
const DigitalSilenceThreshold = -120.0

// LUFSMeasurementFloor is the lowest loudness reported as a number
const LUFSMeasurementFloor = -70.0

// formatMetric formats a value to fixed decimals; tiny non-zero values use
// scientific notation and NaN/Inf become MissingValue
func formatMetric(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	if value != 0 && math.Abs(value) < 0.0001 {
		return fmt.Sprintf("%.2e", value)
	}
	return fmt.Sprintf("%.*f", decimals, value)
}

// formatMetricDB shows "< -120" at or below the silence floor
func formatMetricDB(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 1) {
		return MissingValue
	}
	if math.IsInf(value, -1) || value <= DigitalSilenceThreshold {
		return "< -120"
	}
	return fmt.Sprintf("%.*f", decimals, value)
}

// formatMetricLUFS shows "< -70" below the gating floor
func formatMetricLUFS(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 1) {
		return MissingValue
	}
	if value < LUFSMeasurementFloor {
		return "< -70"
	}
	return fmt.Sprintf("%.*f", decimals, value)
}

// formatMetricSigned always shows the sign, e.g. "+12.5"
func formatMetricSigned(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	return fmt.Sprintf("%+.*f", decimals, value)
}
