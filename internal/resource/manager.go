// Package resource manages playable references over in-memory audio.
//
// A reference is a temp file path that an external player can open. Every
// Acquire must be paired with exactly one Release; the Manager tracks which
// handles are live so that double releases and releases of unknown handles
// are reported instead of silently ignored.
package resource

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrLifecycleViolation marks a release of a handle that is not live.
// It indicates a programming error in the owner of the handle.
var ErrLifecycleViolation = errors.New("resource lifecycle violation")

// Handle identifies one acquired playable reference
type Handle struct {
	id   uint64
	ref  string
	size int
}

// ID returns the manager-assigned identifier (0 for the zero Handle)
func (h Handle) ID() uint64 { return h.id }

// Ref returns the playable reference (a file path)
func (h Handle) Ref() string { return h.ref }

// Size returns the number of audio bytes behind the reference
func (h Handle) Size() int { return h.size }

// IsZero reports whether h was never acquired
func (h Handle) IsZero() bool { return h.id == 0 }

// Manager creates and releases playable references
type Manager struct {
	mu       sync.Mutex
	dir      string
	strict   bool
	nextID   uint64
	live     map[uint64]string
	acquired int
	released int
}

// Option configures a Manager
type Option func(*Manager)

// Strict makes lifecycle violations panic instead of returning an error
func Strict(strict bool) Option {
	return func(m *Manager) { m.strict = strict }
}

// NewManager creates a manager writing references under dir ("" = os.TempDir())
func NewManager(dir string, opts ...Option) *Manager {
	m := &Manager{
		dir:  dir,
		live: make(map[uint64]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire stores data behind a new playable reference. ext is the file
// extension players use to pick a demuxer (e.g. ".wav").
func (m *Manager) Acquire(data []byte, ext string) (Handle, error) {
	f, err := os.CreateTemp(m.dir, "retune-*"+ext)
	if err != nil {
		return Handle{}, fmt.Errorf("create reference: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return Handle{}, fmt.Errorf("write reference: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return Handle{}, fmt.Errorf("close reference: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	m.live[m.nextID] = f.Name()
	m.acquired++

	return Handle{id: m.nextID, ref: f.Name(), size: len(data)}, nil
}

// Release invalidates the reference behind h. Releasing a handle twice, or
// one this manager never issued, is a lifecycle violation.
func (m *Manager) Release(h Handle) error {
	m.mu.Lock()
	path, ok := m.live[h.id]
	if ok {
		delete(m.live, h.id)
		m.released++
	}
	m.mu.Unlock()

	if !ok {
		err := fmt.Errorf("%w: handle %d (%s) is not live", ErrLifecycleViolation, h.id, h.ref)
		if m.strict {
			panic(err)
		}
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove reference: %w", err)
	}
	return nil
}

// Valid reports whether h is still live
func (m *Manager) Valid(h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.live[h.id]
	return ok
}

// Live returns the number of references not yet released
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Stats returns lifetime acquire and release counts
func (m *Manager) Stats() (acquired, released int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquired, m.released
}

// Close removes every reference still live. Owners should have released
// their handles already; this only guarantees nothing leaks on exit.
func (m *Manager) Close() error {
	m.mu.Lock()
	paths := make([]string, 0, len(m.live))
	for id, path := range m.live {
		paths = append(paths, path)
		delete(m.live, id)
		m.released++
	}
	m.mu.Unlock()

	var errs []error
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
