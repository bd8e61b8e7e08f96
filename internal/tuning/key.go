// Package tuning holds the tuning parameters and results exchanged with the
// remote pitch-correction service, and the HTTP client that talks to it.
package tuning

import (
	"fmt"
	"strings"
)

// NoteNames is the 12-tone chromatic name table, index 0 = C
var NoteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// flat spellings map onto the sharp names above
var flatNames = map[string]int{
	"DB": 1, "EB": 3, "GB": 6, "AB": 8, "BB": 10,
	"CB": 11, "FB": 4,
}

// KeyKind distinguishes the three families of key selection
type KeyKind int

const (
	KeyChromatic KeyKind = iota
	KeyAuto
	KeyTonal
)

// Mode is the scale mode of a tonal key
type Mode int

const (
	Major Mode = iota
	Minor
)

func (m Mode) String() string {
	if m == Minor {
		return "minor"
	}
	return "major"
}

// wire returns the abbreviation understood by the tuning service
func (m Mode) wire() string {
	if m == Minor {
		return "min"
	}
	return "maj"
}

// Key is a musical key used to constrain correction.
// The zero value is the chromatic (unconstrained) key.
type Key struct {
	Kind  KeyKind
	Tonic int // 0..11, only meaningful for KeyTonal
	Mode  Mode
}

var (
	// Chromatic snaps to the nearest semitone with no scale constraint
	Chromatic = Key{Kind: KeyChromatic}

	// AutoKey asks the service to detect the key
	AutoKey = Key{Kind: KeyAuto}
)

// NewKey returns a tonal key; tonic is reduced modulo 12
func NewKey(tonic int, mode Mode) Key {
	return Key{Kind: KeyTonal, Tonic: ((tonic % 12) + 12) % 12, Mode: mode}
}

// ParseKey parses "chromatic", "auto" or "{note}:{mode}".
// Notes accept sharp or flat spellings in any case; modes accept
// major/maj/minor/min in any case.
func ParseKey(s string) (Key, error) {
	raw := strings.TrimSpace(s)
	switch strings.ToLower(raw) {
	case "chromatic":
		return Chromatic, nil
	case "auto":
		return AutoKey, nil
	case "":
		return Key{}, fmt.Errorf("empty key")
	}

	note, mode, ok := strings.Cut(raw, ":")
	if !ok {
		return Key{}, fmt.Errorf("key %q must be chromatic, auto or {note}:{mode}", s)
	}

	tonic, err := parseNote(note)
	if err != nil {
		return Key{}, err
	}

	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "major", "maj":
		return NewKey(tonic, Major), nil
	case "minor", "min":
		return NewKey(tonic, Minor), nil
	default:
		return Key{}, fmt.Errorf("unknown mode %q in key %q", mode, s)
	}
}

func parseNote(note string) (int, error) {
	n := strings.ToUpper(strings.TrimSpace(note))
	for i, name := range NoteNames {
		if n == name {
			return i, nil
		}
	}
	if i, ok := flatNames[n]; ok {
		return i, nil
	}
	return 0, fmt.Errorf("unknown note %q", note)
}

// String returns the canonical display form, e.g. "C#:major"
func (k Key) String() string {
	switch k.Kind {
	case KeyAuto:
		return "auto"
	case KeyTonal:
		return NoteNames[k.Tonic] + ":" + k.Mode.String()
	default:
		return "chromatic"
	}
}

// Wire returns the token sent in the "key" form field.
// Auto has no token: the field is omitted and auto_key is set instead.
func (k Key) Wire() string {
	switch k.Kind {
	case KeyAuto:
		return ""
	case KeyTonal:
		return NoteNames[k.Tonic] + ":" + k.Mode.wire()
	default:
		return "chromatic"
	}
}

// IsAuto reports whether the service should detect the key
func (k Key) IsAuto() bool {
	return k.Kind == KeyAuto
}

// AllKeys lists the selectable manual keys: chromatic, then every tonic in
// major and minor.
func AllKeys() []Key {
	keys := make([]Key, 0, 25)
	keys = append(keys, Chromatic)
	for tonic := range NoteNames {
		keys = append(keys, NewKey(tonic, Major), NewKey(tonic, Minor))
	}
	return keys
}
