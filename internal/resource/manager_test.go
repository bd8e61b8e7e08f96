package resource

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireRelease(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	h, err := m.Acquire([]byte("RIFF1234"), ".wav")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if h.IsZero() {
		t.Fatal("Acquire returned zero handle")
	}
	if h.Size() != 8 {
		t.Errorf("Size() = %d, want 8", h.Size())
	}
	if filepath.Dir(h.Ref()) != dir || filepath.Ext(h.Ref()) != ".wav" {
		t.Errorf("Ref() = %q, want .wav under %q", h.Ref(), dir)
	}

	data, err := os.ReadFile(h.Ref())
	if err != nil || string(data) != "RIFF1234" {
		t.Fatalf("reference contents = %q, %v", data, err)
	}
	if !m.Valid(h) || m.Live() != 1 {
		t.Errorf("Valid = %v, Live = %d after acquire", m.Valid(h), m.Live())
	}

	if err := m.Release(h); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if m.Valid(h) || m.Live() != 0 {
		t.Errorf("Valid = %v, Live = %d after release", m.Valid(h), m.Live())
	}
	if _, err := os.Stat(h.Ref()); !os.IsNotExist(err) {
		t.Errorf("reference file still exists after release: %v", err)
	}

	acquired, released := m.Stats()
	if acquired != 1 || released != 1 {
		t.Errorf("Stats() = %d, %d, want 1, 1", acquired, released)
	}
}

func TestDoubleReleaseIsViolation(t *testing.T) {
	m := NewManager(t.TempDir())
	h, err := m.Acquire([]byte("x"), ".wav")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Release(h); err != nil {
		t.Fatal(err)
	}

	err = m.Release(h)
	if !errors.Is(err, ErrLifecycleViolation) {
		t.Errorf("second Release error = %v, want ErrLifecycleViolation", err)
	}
	if _, released := m.Stats(); released != 1 {
		t.Errorf("released = %d, want 1", released)
	}
}

func TestReleaseUnknownHandle(t *testing.T) {
	m := NewManager(t.TempDir())
	if err := m.Release(Handle{}); !errors.Is(err, ErrLifecycleViolation) {
		t.Errorf("Release(zero) error = %v, want ErrLifecycleViolation", err)
	}

	other := NewManager(t.TempDir())
	h, err := other.Acquire([]byte("x"), ".wav")
	if err != nil {
		t.Fatal(err)
	}
	defer other.Release(h)

	// Handle ids are per manager; a foreign handle with an unused id is unknown here
	if err := m.Release(h); !errors.Is(err, ErrLifecycleViolation) {
		t.Errorf("Release(foreign) error = %v, want ErrLifecycleViolation", err)
	}
}

func TestStrictPanics(t *testing.T) {
	m := NewManager(t.TempDir(), Strict(true))
	h, err := m.Acquire([]byte("x"), ".wav")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Release(h); err != nil {
		t.Fatal(err)
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("strict double release did not panic")
		}
		if err, ok := r.(error); !ok || !errors.Is(err, ErrLifecycleViolation) {
			t.Errorf("panic value = %v, want ErrLifecycleViolation", r)
		}
	}()
	m.Release(h)
}

func TestCloseReleasesLive(t *testing.T) {
	m := NewManager(t.TempDir())
	var refs []string
	for i := 0; i < 3; i++ {
		h, err := m.Acquire([]byte{byte(i)}, ".wav")
		if err != nil {
			t.Fatal(err)
		}
		refs = append(refs, h.Ref())
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if m.Live() != 0 {
		t.Errorf("Live() = %d after Close, want 0", m.Live())
	}
	for _, ref := range refs {
		if _, err := os.Stat(ref); !os.IsNotExist(err) {
			t.Errorf("%s still exists after Close", ref)
		}
	}
}
