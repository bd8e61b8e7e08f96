// Package session owns one tuning session: the user's parameters, the single
// in-flight request, the latest result and the playable references for the
// input and tuned tracks.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/linuxmatters/retune/internal/logging"
	"github.com/linuxmatters/retune/internal/resource"
	"github.com/linuxmatters/retune/internal/tuning"
)

// DownloadName is the file name used when saving the tuned track
const DownloadName = "tuned_audio.wav"

var (
	ErrNoSource = errors.New("no source file selected")
	ErrInFlight = errors.New("a tuning request is already in flight")
	ErrDisposed = errors.New("session disposed")
	ErrNoOutput = errors.New("no tuned audio to download")
)

// Phase is the request lifecycle state
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRequesting
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseRequesting:
		return "requesting"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Tuner performs one tuning request. *tuning.Client satisfies it.
type Tuner interface {
	Tune(ctx context.Context, req tuning.Request) (*tuning.Result, error)
}

// Snapshot is a read-only copy of the session for renderers
type Snapshot struct {
	Phase       Phase
	InFlight    bool
	Disposed    bool
	Parameters  tuning.Parameters
	Result      *tuning.Result // nil until the first success; a private copy
	InputRef    string
	OutputRef   string
	DetectedKey string
	Message     string
	Generation  uint64
}

// Stats counts completed submits by outcome
type Stats struct {
	Succeeded    int
	Failed       int
	Discarded    int
	LastDuration time.Duration
}

// Controller coordinates parameters, the tuning request and the two track
// resources. All methods are safe for concurrent use.
type Controller struct {
	tuner     Tuner
	resources *resource.Manager
	listener  func(Snapshot)
	log       logging.Debugf

	mu         sync.Mutex
	params     tuning.Parameters
	phase      Phase
	inFlight   bool
	disposed   bool
	generation uint64
	result     *tuning.Result
	input      resource.Handle
	output     resource.Handle
	message    string
	stats      Stats
}

// Option configures a Controller
type Option func(*Controller)

// WithListener is called with a fresh snapshot after every state change,
// without the controller's lock held. Renderers switch to new references in
// the listener; retired references are released only after it returns.
func WithListener(fn func(Snapshot)) Option {
	return func(c *Controller) { c.listener = fn }
}

// WithLogger sets the debug log
func WithLogger(log logging.Debugf) Option {
	return func(c *Controller) { c.log = logging.OrDiscard(log) }
}

// WithParameters sets the starting parameters
func WithParameters(p tuning.Parameters) Option {
	return func(c *Controller) { c.params = p }
}

// New creates an idle session
func New(tuner Tuner, resources *resource.Manager, opts ...Option) *Controller {
	c := &Controller{
		tuner:     tuner,
		resources: resources,
		log:       logging.Discard,
		params:    tuning.DefaultParameters(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetParameters merges a partial update. Every field is validated first;
// on error nothing changes. A request already in flight keeps the
// parameters it was started with.
func (c *Controller) SetParameters(u tuning.Update) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	next, err := c.params.Apply(u)
	if err != nil {
		c.mu.Unlock()
		c.log("[SESSION] rejected parameters: %v", err)
		return err
	}
	c.params = next
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.log("[SESSION] parameters: key=%s correction=%.2f", next.Key, next.Correction)
	c.notify(snap)
	return nil
}

// Submit sends the current parameters to the tuning service and blocks
// until the response is handled. Only one request may be in flight.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.disposed:
		c.mu.Unlock()
		return ErrDisposed
	case c.inFlight:
		c.mu.Unlock()
		return ErrInFlight
	case c.params.Source == nil:
		c.mu.Unlock()
		return ErrNoSource
	}

	req, err := tuning.NewRequest(c.params)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.inFlight = true
	c.phase = PhaseRequesting
	c.message = ""
	c.generation++
	gen := c.generation
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.log("[SESSION] submit #%d: %s (%d bytes) key=%q correction=%g",
		gen, req.Source.Name, len(req.Source.Data), req.Key.Wire(), req.Correction)
	c.notify(snap)

	start := time.Now()
	res, err := c.tuner.Tune(ctx, req)
	if err == nil {
		err = checkResult(res)
	}
	elapsed := time.Since(start)

	c.mu.Lock()
	if c.disposed || gen != c.generation {
		c.inFlight = false
		c.stats.Discarded++
		c.mu.Unlock()
		c.log("[SESSION] discarded response #%d after %s", gen, elapsed)
		return fmt.Errorf("response discarded: %w", ErrDisposed)
	}

	if err != nil {
		c.fail(err, elapsed)
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.notify(snap)
		return err
	}

	retired, err := c.install(req, res)
	if err != nil {
		c.fail(err, elapsed)
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.notify(snap)
		return err
	}
	c.stats.Succeeded++
	c.stats.LastDuration = elapsed
	snap = c.snapshotLocked()
	c.mu.Unlock()

	c.log("[SESSION] ready #%d in %s: %d frames, detected key %q",
		gen, elapsed.Round(time.Millisecond), res.Frames(), res.DetectedKey)
	c.notify(snap)

	return c.release(retired...)
}

// fail records a failed request. The previous result and references stay.
// Caller holds c.mu.
func (c *Controller) fail(err error, elapsed time.Duration) {
	c.inFlight = false
	c.phase = PhaseFailed
	c.message = err.Error()
	c.stats.Failed++
	c.stats.LastDuration = elapsed
	c.log("[SESSION] request failed after %s: %v", elapsed.Round(time.Millisecond), err)
}

// install schedules the current references for release, acquires the new
// ones and stores the result. It returns the handles to release once the
// listener has switched over. On error the previous state is restored.
// Caller holds c.mu.
func (c *Controller) install(req tuning.Request, res *tuning.Result) ([]resource.Handle, error) {
	retired := []resource.Handle{c.input, c.output}
	c.input, c.output = resource.Handle{}, resource.Handle{}

	output, err := c.resources.Acquire(res.Audio, ".wav")
	if err != nil {
		c.input, c.output = retired[0], retired[1]
		return nil, fmt.Errorf("store tuned audio: %w", err)
	}
	input, err := c.resources.Acquire(req.Source.Data, sourceExt(req.Source.Name))
	if err != nil {
		if rerr := c.resources.Release(output); rerr != nil {
			c.log("[SESSION] %v", rerr)
		}
		c.input, c.output = retired[0], retired[1]
		return nil, fmt.Errorf("store input audio: %w", err)
	}

	c.input, c.output = input, output
	c.result = res
	c.phase = PhaseReady
	c.inFlight = false
	return retired, nil
}

func (c *Controller) release(handles ...resource.Handle) error {
	var errs []error
	for _, h := range handles {
		if h.IsZero() {
			continue
		}
		if err := c.resources.Release(h); err != nil {
			c.log("[SESSION] %v", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dispose tears the session down. A response still in flight is discarded
// when it arrives. Safe to call more than once.
func (c *Controller) Dispose() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil
	}
	c.disposed = true
	c.generation++
	retired := []resource.Handle{c.input, c.output}
	c.input, c.output = resource.Handle{}, resource.Handle{}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.log("[SESSION] disposed")
	c.notify(snap)
	return c.release(retired...)
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Phase:      c.phase,
		InFlight:   c.inFlight,
		Disposed:   c.disposed,
		Parameters: c.params,
		Result:     c.result.Clone(),
		InputRef:   c.input.Ref(),
		OutputRef:  c.output.Ref(),
		Message:    c.message,
		Generation: c.generation,
	}
	if c.result != nil {
		s.DetectedKey = c.result.DetectedKey
	}
	return s
}

// Stats returns outcome counters
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Download writes the tuned audio to dir/tuned_audio.wav from the bytes
// backing the output reference and returns the path
func (c *Controller) Download(dir string) (string, error) {
	c.mu.Lock()
	if c.result == nil || c.output.IsZero() {
		c.mu.Unlock()
		return "", ErrNoOutput
	}
	data := c.result.Audio
	c.mu.Unlock()

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, DownloadName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", DownloadName, err)
	}
	c.log("[SESSION] downloaded %d bytes to %s", len(data), path)
	return path, nil
}

func (c *Controller) notify(s Snapshot) {
	if c.listener != nil {
		c.listener(s)
	}
}

// checkResult guards against a Tuner that returns misaligned series
func checkResult(r *tuning.Result) error {
	if r == nil {
		return &tuning.DecodeError{Reason: "empty result"}
	}
	if len(r.Audio) == 0 {
		return &tuning.DecodeError{Reason: "no audio"}
	}
	if len(r.Original) != len(r.Time) || len(r.Tuned) != len(r.Time) {
		return &tuning.DecodeError{Reason: fmt.Sprintf("series lengths differ: time=%d original=%d tuned=%d",
			len(r.Time), len(r.Original), len(r.Tuned))}
	}
	return nil
}

func sourceExt(name string) string {
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
		return ext
	}
	return ".wav"
}
