package ui

import (
	"time"

	"github.com/linuxmatters/retune/internal/logging"
	"github.com/linuxmatters/retune/internal/session"
	"github.com/linuxmatters/retune/internal/waveform"
)

// ReportInput gathers what a tuning report needs from a finished session
type ReportInput struct {
	SourcePath string
	OutputPath string
	ServiceURL string
	StartTime  time.Time
	Snapshot   session.Snapshot
	Stats      session.Stats
	Input      *waveform.Player
	Output     *waveform.Player
}

// WriteReport writes the tuning report next to the downloaded file
func WriteReport(in ReportInput) (string, error) {
	return logging.GenerateReport(logging.ReportData{
		InputPath:   in.SourcePath,
		OutputPath:  in.OutputPath,
		ServiceURL:  in.ServiceURL,
		StartTime:   in.StartTime,
		EndTime:     time.Now(),
		RequestTime: in.Stats.LastDuration,
		Parameters:  in.Snapshot.Parameters,
		Result:      in.Snapshot.Result,
		Input:       trackInfo(in.Input),
		Tuned:       trackInfo(in.Output),
	})
}

func trackInfo(p *waveform.Player) *logging.TrackInfo {
	if p == nil {
		return nil
	}
	w := p.Waveform()
	if w == nil {
		return nil
	}
	return &logging.TrackInfo{Metadata: w.Metadata, Levels: w.Levels}
}
