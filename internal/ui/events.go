package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/retune/internal/logging"
	"github.com/linuxmatters/retune/internal/session"
	"github.com/linuxmatters/retune/internal/waveform"
)

// NewEvents creates the buffered channel background goroutines use to
// reach the Bubbletea loop
func NewEvents() chan tea.Msg {
	return make(chan tea.Msg, 100)
}

// send never blocks: every view re-reads state, so a dropped message only
// delays a redraw
func send(events chan<- tea.Msg, msg tea.Msg, log logging.Debugf) {
	select {
	case events <- msg:
	default:
		log("[UI] event channel full, dropped %T", msg)
	}
}

// PlayerEvents forwards player state changes into the event channel
func PlayerEvents(events chan<- tea.Msg, log logging.Debugf) func(waveform.Event) {
	log = logging.OrDiscard(log)
	return func(ev waveform.Event) {
		send(events, PlayerMsg{Event: ev}, log)
	}
}

// SessionListener switches the players when the controller publishes new
// references, then forwards the snapshot. The controller releases retired
// references only after this returns, and Load has read the new bytes by
// then, so players never touch a released reference. A reference is loaded
// once when it first appears; a preview opened afterwards stays until the
// next tune.
func SessionListener(input, output *waveform.Player, events chan<- tea.Msg, log logging.Debugf) func(session.Snapshot) {
	log = logging.OrDiscard(log)
	var mu sync.Mutex
	var lastInput, lastOutput string
	return func(s session.Snapshot) {
		mu.Lock()
		defer mu.Unlock()

		if s.Disposed {
			_ = input.Load("")
			_ = output.Load("")
			lastInput, lastOutput = "", ""
			send(events, SnapshotMsg{Snapshot: s}, log)
			return
		}
		if s.InputRef != "" && s.InputRef != lastInput {
			if err := input.Load(s.InputRef); err != nil {
				log("[UI] input load failed: %v", err)
			}
		}
		if s.OutputRef != lastOutput {
			if err := output.Load(s.OutputRef); err != nil {
				log("[UI] output load failed: %v", err)
			}
		}
		lastInput, lastOutput = s.InputRef, s.OutputRef
		send(events, SnapshotMsg{Snapshot: s}, log)
	}
}

// waitForEvent creates a command that waits for the next background message
func waitForEvent(events chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}
