package tuning

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// DefaultCorrection matches the slider's starting position
const DefaultCorrection = 0.5

// SourceFile is the locally selected clip sent to the service
type SourceFile struct {
	Name string
	Data []byte
}

// OpenSource reads a clip from disk. No format validation is done here;
// the service decides whether it can decode the file.
func OpenSource(path string) (*SourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}
	return &SourceFile{Name: filepath.Base(path), Data: data}, nil
}

// Parameters are the user-selected inputs to one tuning cycle
type Parameters struct {
	Source     *SourceFile
	Key        Key
	Correction float64 // 0.0 to 1.0
}

// DefaultParameters returns chromatic correction at half strength
func DefaultParameters() Parameters {
	return Parameters{
		Key:        Chromatic,
		Correction: DefaultCorrection,
	}
}

// Update is a partial change to Parameters; nil fields are left alone
type Update struct {
	Source     *SourceFile
	Key        *string
	Correction *float64
}

// ValidationError reports a parameter rejected before any request is made
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Apply validates every field of u and returns the merged parameters.
// Nothing is merged if any field is invalid.
func (p Parameters) Apply(u Update) (Parameters, error) {
	next := p

	if u.Key != nil {
		key, err := ParseKey(*u.Key)
		if err != nil {
			return p, &ValidationError{Field: "key", Value: *u.Key, Reason: err.Error()}
		}
		next.Key = key
	}

	if u.Correction != nil {
		c := *u.Correction
		if math.IsNaN(c) || c < 0 || c > 1 {
			return p, &ValidationError{
				Field:  "correction",
				Value:  fmt.Sprintf("%g", c),
				Reason: "must be between 0 and 1",
			}
		}
		next.Correction = c
	}

	if u.Source != nil {
		if len(u.Source.Data) == 0 {
			return p, &ValidationError{Field: "source", Value: u.Source.Name, Reason: "file is empty"}
		}
		next.Source = u.Source
	}

	return next, nil
}

// KeyPtr and CorrectionPtr build Update fields inline
func KeyPtr(s string) *string { return &s }

func CorrectionPtr(c float64) *float64 { return &c }
