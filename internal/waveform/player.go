package waveform

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/linuxmatters/retune/internal/audio"
	"github.com/linuxmatters/retune/internal/logging"
	"github.com/linuxmatters/retune/internal/resource"
)

// MaxZoom bounds the horizontal zoom factor
const MaxZoom = 8

// State is the transport state of a Player
type State int

const (
	StateEmpty State = iota
	StateDecoding
	StateReady
	StatePlaying
	StatePaused
	StateFinished
	StateError
)

func (s State) String() string {
	switch s {
	case StateDecoding:
		return "decoding"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	case StateError:
		return "error"
	default:
		return "empty"
	}
}

// Event reports a state change of a named player
type Event struct {
	Player string
	State  State
	Err    error
}

// Player shows and plays one track. A source is either a playable
// reference owned by someone else (Load) or raw bytes the player wraps in
// its own resource (LoadBytes).
type Player struct {
	name      string
	resources *resource.Manager
	launcher  Launcher
	onEvent   func(Event)
	log       logging.Debugf
	now       func() time.Time

	mu        sync.Mutex
	gen       uint64
	state     State
	ref       string
	own       resource.Handle
	wave      *Waveform
	err       error
	done      chan struct{}
	proc      Process
	procID    uint64
	startedAt time.Time
	offset    time.Duration
	zoom      int
}

// Option configures a Player
type Option func(*Player)

// WithEvents registers the state change callback. It is called without the
// player's lock held, possibly from a background goroutine.
func WithEvents(fn func(Event)) Option {
	return func(p *Player) { p.onEvent = fn }
}

// WithLogger sets the debug log
func WithLogger(log logging.Debugf) Option {
	return func(p *Player) { p.log = logging.OrDiscard(log) }
}

// WithClock overrides time.Now for position tracking
func WithClock(now func() time.Time) Option {
	return func(p *Player) { p.now = now }
}

// New creates an empty player
func New(name string, resources *resource.Manager, launcher Launcher, opts ...Option) *Player {
	done := make(chan struct{})
	close(done)

	p := &Player{
		name:      name,
		resources: resources,
		launcher:  launcher,
		log:       logging.Discard,
		now:       time.Now,
		done:      done,
		zoom:      1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the track name
func (p *Player) Name() string { return p.name }

// Load replaces the current source with a playable reference owned by the
// caller. The bytes are read before Load returns, so the caller may release
// the previous reference as soon as Load returns. Load("") clears the player.
func (p *Player) Load(ref string) error {
	p.mu.Lock()
	same := ref != "" && ref == p.ref && p.own.IsZero() && p.state != StateError
	p.mu.Unlock()
	if same {
		return nil
	}

	if err := p.release(p.clear()); err != nil {
		return err
	}
	if ref == "" {
		return nil
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		p.fail(fmt.Errorf("read %s: %w", ref, err))
		return err
	}
	p.start(ref, data, resource.Handle{})
	return nil
}

// LoadBytes replaces the current source with encoded audio bytes. The player
// acquires its own reference and releases it on the next load or Close.
func (p *Player) LoadBytes(data []byte) error {
	retired := p.clear()

	h, err := p.resources.Acquire(data, extension(audio.Sniff(data)))
	if err != nil {
		p.fail(err)
		return errors.Join(err, p.release(retired))
	}
	p.start(h.Ref(), data, h)
	return p.release(retired)
}

// clear stops playback, drops the waveform and returns the player's own
// handle (if any) for the caller to release
func (p *Player) clear() resource.Handle {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.gen++
	retired := p.own
	p.own = resource.Handle{}
	p.ref = ""
	p.wave = nil
	p.err = nil
	p.offset = 0
	p.state = StateEmpty
	return retired
}

func (p *Player) release(h resource.Handle) error {
	if h.IsZero() {
		return nil
	}
	if err := p.resources.Release(h); err != nil {
		p.log("[PLAYER %s] release failed: %v", p.name, err)
		return err
	}
	return nil
}

func (p *Player) fail(err error) {
	p.mu.Lock()
	p.state = StateError
	p.err = err
	p.mu.Unlock()

	p.log("[PLAYER %s] %v", p.name, err)
	p.emit(Event{Player: p.name, State: StateError, Err: err})
}

// start begins decoding data in the background
func (p *Player) start(ref string, data []byte, own resource.Handle) {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	done := make(chan struct{})
	p.ref = ref
	p.own = own
	p.done = done
	p.state = StateDecoding
	p.mu.Unlock()

	p.log("[PLAYER %s] decoding %d bytes from %s", p.name, len(data), ref)
	p.emit(Event{Player: p.name, State: StateDecoding})

	go func() {
		defer close(done)

		var w *Waveform
		clip, err := audio.Decode(data)
		if err == nil {
			w = Build(clip)
		}

		p.mu.Lock()
		if gen != p.gen {
			// A newer load replaced this one
			p.mu.Unlock()
			return
		}
		ev := Event{Player: p.name, State: StateReady}
		if err != nil {
			p.state = StateError
			p.err = err
			ev = Event{Player: p.name, State: StateError, Err: err}
		} else {
			p.wave = w
			p.state = StateReady
		}
		p.mu.Unlock()

		p.log("[PLAYER %s] decode finished: state=%s err=%v", p.name, ev.State, err)
		p.emit(ev)
	}()
}

// Wait blocks until the current decode (if any) has finished
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	<-done
}

// PlayPause toggles playback. It is ignored while there is nothing decoded.
func (p *Player) PlayPause() error {
	p.mu.Lock()

	var ev Event
	switch p.state {
	case StatePlaying:
		p.offset = p.positionLocked()
		p.stopLocked()
		p.state = StatePaused
		ev = Event{Player: p.name, State: StatePaused}

	case StateReady, StatePaused, StateFinished:
		if p.state == StateFinished || p.offset >= p.durationLocked() {
			p.offset = 0
		}
		proc, err := p.launcher.Launch(p.ref, p.offset)
		if err != nil {
			p.mu.Unlock()
			p.log("[PLAYER %s] launch failed: %v", p.name, err)
			return err
		}
		p.procID++
		p.proc = proc
		p.startedAt = p.now()
		p.state = StatePlaying
		go p.watch(proc, p.procID)
		ev = Event{Player: p.name, State: StatePlaying}

	default:
		p.mu.Unlock()
		return nil
	}

	p.mu.Unlock()
	p.emit(ev)
	return nil
}

// watch marks the track finished when its process exits on its own
func (p *Player) watch(proc Process, id uint64) {
	err := proc.Wait()

	p.mu.Lock()
	if id != p.procID || p.proc == nil {
		// Stopped by pause, load or close
		p.mu.Unlock()
		return
	}
	p.proc = nil
	p.offset = 0
	p.state = StateFinished
	p.mu.Unlock()

	if err != nil {
		p.log("[PLAYER %s] player exited: %v", p.name, err)
	}
	p.emit(Event{Player: p.name, State: StateFinished})
}

func (p *Player) stopLocked() {
	if p.proc == nil {
		return
	}
	p.procID++
	if err := p.proc.Stop(); err != nil {
		p.log("[PLAYER %s] stop failed: %v", p.name, err)
	}
	p.proc = nil
}

// Close stops playback and releases the player's own reference
func (p *Player) Close() error {
	return p.release(p.clear())
}

func (p *Player) emit(ev Event) {
	if p.onEvent != nil {
		p.onEvent(ev)
	}
}

// State returns the transport state
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Ref returns the reference currently loaded
func (p *Player) Ref() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ref
}

// Err returns the last decode or read error
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Waveform returns the decoded waveform, nil until decoding completes
func (p *Player) Waveform() *Waveform {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wave
}

// Position returns the playhead offset
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *Player) positionLocked() time.Duration {
	pos := p.offset
	if p.state == StatePlaying {
		pos += p.now().Sub(p.startedAt)
	}
	if d := p.durationLocked(); d > 0 && pos > d {
		pos = d
	}
	return pos
}

func (p *Player) durationLocked() time.Duration {
	if p.wave == nil {
		return 0
	}
	return time.Duration(p.wave.Metadata.Duration * float64(time.Second))
}

// Zoom changes the horizontal zoom by delta, clamped to 1..MaxZoom
func (p *Player) Zoom(delta int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.zoom = max(1, min(MaxZoom, p.zoom+delta))
	return p.zoom
}

var (
	playerTitleStyle = lipgloss.NewStyle().Bold(true)
	playerMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
	playerErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000"))
)

// Render draws a header and the waveform line for the given width
func (p *Player) Render(width int) string {
	p.mu.Lock()
	state, wave, err, zoom := p.state, p.wave, p.err, p.zoom
	pos := p.positionLocked()
	dur := p.durationLocked()
	p.mu.Unlock()

	var b strings.Builder
	b.WriteString(playerTitleStyle.Render(p.name))
	b.WriteString(" ")
	b.WriteString(stateIcon(state))

	switch {
	case state == StateError:
		b.WriteString("\n")
		b.WriteString(playerErrorStyle.Render(fmt.Sprintf("Cannot display audio: %v", err)))
	case wave == nil && state == StateDecoding:
		b.WriteString("\n")
		b.WriteString(playerMutedStyle.Render("Decoding..."))
	case wave == nil:
		b.WriteString("\n")
		b.WriteString(playerMutedStyle.Render("No audio loaded"))
	default:
		progress := 0.0
		if dur > 0 {
			progress = float64(pos) / float64(dur)
		}
		b.WriteString(" ")
		b.WriteString(playerMutedStyle.Render(fmt.Sprintf("%s / %s", formatSeconds(pos.Seconds()), wave.Summary())))
		if zoom > 1 {
			b.WriteString(playerMutedStyle.Render(fmt.Sprintf(" | zoom %dx", zoom)))
		}
		b.WriteString("\n")
		b.WriteString(wave.RenderWindow(width, zoom, progress))
	}
	return b.String()
}

func stateIcon(s State) string {
	switch s {
	case StatePlaying:
		return "▶"
	case StatePaused:
		return "⏸"
	case StateFinished:
		return "■"
	case StateDecoding:
		return "…"
	case StateError:
		return "✗"
	default:
		return "○"
	}
}

func extension(f audio.Format) string {
	switch f {
	case audio.FormatAIFF:
		return ".aiff"
	case audio.FormatMP3:
		return ".mp3"
	case audio.FormatVorbis:
		return ".ogg"
	default:
		return ".wav"
	}
}
