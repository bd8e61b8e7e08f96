// Package ui provides the Bubbletea terminal user interface for retune
package ui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/retune/internal/logging"
	"github.com/linuxmatters/retune/internal/session"
	"github.com/linuxmatters/retune/internal/tuning"
	"github.com/linuxmatters/retune/internal/waveform"
)

// Correction slider steps
const (
	correctionStep     = 0.05
	correctionFineStep = 0.01
)

// Options wires the model to its collaborators
type Options struct {
	Controller *session.Controller
	Input      *waveform.Player
	Output     *waveform.Player
	Events     chan tea.Msg
	Log        logging.Debugf

	ServiceURL string
	OutputDir  string
	Reports    bool // write a report next to each download
}

// Model is the Bubbletea model for the tuning session
type Model struct {
	ctrl    *session.Controller
	input   *waveform.Player
	output  *waveform.Player
	events  chan tea.Msg
	log     logging.Debugf
	service string
	outDir  string
	reports bool

	// Session state as last published by the controller
	snap session.Snapshot

	SourcePath string
	manualKey  tuning.Key // restored when auto-detect is switched off

	status    string
	statusErr bool

	prompt     bool
	promptText string

	spinnerIndex int
	requestStart time.Time

	// Terminal dimensions
	Width  int
	Height int
}

// NewModel creates the UI model
func NewModel(opts Options) Model {
	m := Model{
		ctrl:    opts.Controller,
		input:   opts.Input,
		output:  opts.Output,
		events:  opts.Events,
		log:     logging.OrDiscard(opts.Log),
		service: opts.ServiceURL,
		outDir:  opts.OutputDir,
		reports: opts.Reports,
		snap:    opts.Controller.Snapshot(),
	}
	m.manualKey = m.snap.Parameters.Key
	if m.manualKey.IsAuto() {
		m.manualKey = tuning.Chromatic
	}
	return m
}

// Init starts listening for background events and the animation tick
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tickCmd())
}

// tickCmd returns a command that sends a tick message every 100ms
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.prompt {
			return m.updatePrompt(msg)
		}
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.log("[UI] window size: %dx%d", m.Width, m.Height)

	case tickMsg:
		m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
		return m, tickCmd()

	case SnapshotMsg:
		// Listener calls may interleave; the controller holds the latest state
		m.snap = m.ctrl.Snapshot()
		return m, waitForEvent(m.events)

	case PlayerMsg:
		if msg.Event.State == waveform.StateError {
			m.setError(fmt.Sprintf("%s: %v", msg.Event.Player, msg.Event.Err))
		}
		return m, waitForEvent(m.events)

	case TuneDoneMsg:
		m.snap = m.ctrl.Snapshot()
		switch {
		case msg.Err == nil:
			m.setStatus(fmt.Sprintf("Tuned in %s", formatElapsed(time.Since(m.requestStart))))
		case errors.Is(msg.Err, session.ErrInFlight):
			m.setStatus("Already tuning")
		default:
			m.setError(msg.Err.Error())
		}

	case DownloadMsg:
		switch {
		case msg.Err != nil:
			m.setError(msg.Err.Error())
		case msg.Report != "":
			m.setStatus(fmt.Sprintf("Saved %s and %s", msg.Path, filepath.Base(msg.Report)))
		default:
			m.setStatus("Saved " + msg.Path)
		}

	case OpenMsg:
		if msg.Err != nil {
			m.setError(msg.Err.Error())
		} else {
			m.SourcePath = msg.Path
			m.snap = m.ctrl.Snapshot()
			m.setStatus("Opened " + filepath.Base(msg.Path))
		}
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "k":
		m.cycleKey(1)
	case "K":
		m.cycleKey(-1)
	case "a":
		m.toggleAuto()

	case "right", "+", "=", "l":
		m.nudgeCorrection(correctionStep)
	case "left", "-", "h":
		m.nudgeCorrection(-correctionStep)
	case "shift+right", "L":
		m.nudgeCorrection(correctionFineStep)
	case "shift+left", "H":
		m.nudgeCorrection(-correctionFineStep)

	case "enter", "t":
		return m.submit()

	case " ":
		m.playPause(m.output)
	case "i":
		m.playPause(m.input)

	case "z":
		m.input.Zoom(1)
		m.output.Zoom(1)
	case "Z":
		m.input.Zoom(-1)
		m.output.Zoom(-1)

	case "d":
		return m, m.download()

	case "o":
		m.prompt = true
		m.promptText = ""
	}
	return m, nil
}

// updatePrompt edits the "open file" line
func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.prompt = false
	case tea.KeyEnter:
		m.prompt = false
		path := strings.TrimSpace(m.promptText)
		if path == "" {
			return m, nil
		}
		return m, m.openCmd(path)
	case tea.KeyBackspace:
		if r := []rune(m.promptText); len(r) > 0 {
			m.promptText = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.promptText += " "
	case tea.KeyRunes:
		m.promptText += string(msg.Runes)
	}
	return m, nil
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(s string) {
	m.status, m.statusErr = s, true
	m.log("[UI] %s", s)
}

// apply sends a parameter change through the controller and refreshes the
// local snapshot
func (m *Model) apply(u tuning.Update) bool {
	if err := m.ctrl.SetParameters(u); err != nil {
		m.setError(err.Error())
		return false
	}
	m.snap = m.ctrl.Snapshot()
	return true
}

// cycleKey steps through chromatic and the 24 tonal keys. Choosing a key
// switches auto-detect off.
func (m *Model) cycleKey(dir int) {
	keys := tuning.AllKeys()
	cur := 0
	for i, k := range keys {
		if k == m.manualKey {
			cur = i
			break
		}
	}
	next := keys[(cur+dir+len(keys))%len(keys)]
	if m.apply(tuning.Update{Key: tuning.KeyPtr(next.String())}) {
		m.manualKey = next
		m.setStatus("Key " + next.String())
	}
}

func (m *Model) toggleAuto() {
	if m.snap.Parameters.Key.IsAuto() {
		if m.apply(tuning.Update{Key: tuning.KeyPtr(m.manualKey.String())}) {
			m.setStatus("Auto-detect off")
		}
		return
	}
	m.manualKey = m.snap.Parameters.Key
	if m.apply(tuning.Update{Key: tuning.KeyPtr("auto")}) {
		m.setStatus("Auto-detect on")
	}
}

func (m *Model) nudgeCorrection(delta float64) {
	c := m.snap.Parameters.Correction + delta
	c = math.Round(math.Max(0, math.Min(1, c))*100) / 100
	m.apply(tuning.Update{Correction: tuning.CorrectionPtr(c)})
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.snap.Parameters.Source == nil {
		m.setError("Open a file first (o)")
		return m, nil
	}
	if m.snap.InFlight {
		m.setStatus("Already tuning")
		return m, nil
	}
	m.requestStart = time.Now()
	m.setStatus("")
	ctrl := m.ctrl
	return m, func() tea.Msg {
		return TuneDoneMsg{Err: ctrl.Submit(context.Background())}
	}
}

func (m *Model) playPause(p *waveform.Player) {
	if err := p.PlayPause(); err != nil {
		m.setError(err.Error())
	}
}

func (m Model) download() tea.Cmd {
	ctrl, dir := m.ctrl, m.outDir
	reports := m.reports
	in := ReportInput{
		SourcePath: m.SourcePath,
		ServiceURL: m.service,
		StartTime:  m.requestStart,
		Input:      m.input,
		Output:     m.output,
	}
	return func() tea.Msg {
		path, err := ctrl.Download(dir)
		if err != nil {
			return DownloadMsg{Err: err}
		}
		msg := DownloadMsg{Path: path}
		if reports {
			in.OutputPath = path
			in.Snapshot = ctrl.Snapshot()
			in.Stats = ctrl.Stats()
			msg.Report, msg.Err = WriteReport(in)
		}
		return msg
	}
}

func (m Model) openCmd(path string) tea.Cmd {
	ctrl, input := m.ctrl, m.input
	return func() tea.Msg {
		return OpenMsg{Path: path, Err: Open(ctrl, input, path)}
	}
}

// Open selects a source file: it becomes the tuning source and is shown in
// the input player until the first tune replaces it
func Open(ctrl *session.Controller, input *waveform.Player, path string) error {
	src, err := tuning.OpenSource(path)
	if err != nil {
		return err
	}
	if err := ctrl.SetParameters(tuning.Update{Source: src}); err != nil {
		return err
	}
	return input.LoadBytes(src.Data)
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return "Initializing..."
	}
	return renderSessionView(m)
}
