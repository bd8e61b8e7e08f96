package ui

import (
	"time"

	"github.com/linuxmatters/retune/internal/session"
	"github.com/linuxmatters/retune/internal/waveform"
)

// SnapshotMsg carries session state published by the controller listener
type SnapshotMsg struct {
	Snapshot session.Snapshot
}

// PlayerMsg reports a player state change
type PlayerMsg struct {
	Event waveform.Event
}

// TuneDoneMsg is returned when a Submit call finishes
type TuneDoneMsg struct {
	Err error
}

// DownloadMsg is returned when the tuned track has been saved
type DownloadMsg struct {
	Path   string
	Report string // empty unless reports are enabled
	Err    error
}

// OpenMsg is returned when a source file has been selected
type OpenMsg struct {
	Path string
	Err  error
}

// tickMsg drives the spinner and playhead
type tickMsg time.Time
