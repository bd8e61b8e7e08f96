package tuning

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestApplyRejectsOutOfRangeCorrection(t *testing.T) {
	base := DefaultParameters()

	for _, c := range []float64{-0.01, 1.01, -5, 42, math.NaN(), math.Inf(1), math.Inf(-1)} {
		got, err := base.Apply(Update{Correction: CorrectionPtr(c)})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Apply(correction=%v) error = %v, want ValidationError", c, err)
		}
		if got.Correction != DefaultCorrection {
			t.Errorf("Apply(correction=%v) stored %v, want unchanged %v", c, got.Correction, DefaultCorrection)
		}
	}
}

func TestApplyAcceptsBoundaries(t *testing.T) {
	base := DefaultParameters()
	for _, c := range []float64{0, 0.8, 1} {
		got, err := base.Apply(Update{Correction: CorrectionPtr(c)})
		if err != nil {
			t.Fatalf("Apply(correction=%v) error: %v", c, err)
		}
		if got.Correction != c {
			t.Errorf("Correction = %v, want %v", got.Correction, c)
		}
	}
}

func TestApplyIsAtomic(t *testing.T) {
	base := DefaultParameters()
	got, err := base.Apply(Update{
		Key:        KeyPtr("G:minor"),
		Correction: CorrectionPtr(2),
	})
	if err == nil {
		t.Fatal("Apply with invalid correction succeeded")
	}
	if got.Key != Chromatic {
		t.Errorf("Key = %v, want unchanged chromatic", got.Key)
	}
}

func TestApplyMalformedKey(t *testing.T) {
	base := DefaultParameters()
	_, err := base.Apply(Update{Key: KeyPtr("X:major")})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if verr.Field != "key" {
		t.Errorf("Field = %q, want key", verr.Field)
	}
}

func TestApplyMergesPartial(t *testing.T) {
	src := &SourceFile{Name: "clip.wav", Data: []byte("RIFF")}
	p, err := DefaultParameters().Apply(Update{Source: src})
	if err != nil {
		t.Fatal(err)
	}
	p, err = p.Apply(Update{Key: KeyPtr("auto")})
	if err != nil {
		t.Fatal(err)
	}

	if p.Source != src {
		t.Error("Source lost after second update")
	}
	if !p.Key.IsAuto() {
		t.Errorf("Key = %v, want auto", p.Key)
	}
	if p.Correction != DefaultCorrection {
		t.Errorf("Correction = %v, want %v", p.Correction, DefaultCorrection)
	}
}

func TestApplyRejectsEmptySource(t *testing.T) {
	if _, err := DefaultParameters().Apply(Update{Source: &SourceFile{Name: "empty.wav"}}); err == nil {
		t.Error("Apply with empty source succeeded")
	}
}

func TestOpenSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take1.wav")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := OpenSource(path)
	if err != nil {
		t.Fatalf("OpenSource failed: %v", err)
	}
	if src.Name != "take1.wav" || string(src.Data) != "data" {
		t.Errorf("OpenSource = %+v", src)
	}

	if _, err := OpenSource(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("OpenSource on missing file succeeded")
	}
}

func TestStatsIgnoresUnvoiced(t *testing.T) {
	s := Stats([]float64{60, math.NaN(), 62, math.NaN()})
	if s.Voiced != 2 || s.Min != 60 || s.Max != 62 || s.Mean != 61 {
		t.Errorf("Stats = %+v", s)
	}

	empty := Stats([]float64{math.NaN()})
	if empty.Voiced != 0 || !math.IsNaN(empty.Mean) {
		t.Errorf("Stats(all NaN) = %+v", empty)
	}
}

func TestMeanCorrectionCents(t *testing.T) {
	r := &Result{
		Original: []float64{60.2, math.NaN(), 61.9},
		Tuned:    []float64{60, 61, 62},
	}
	got := r.MeanCorrectionCents()
	if math.Abs(got-15) > 1e-9 {
		t.Errorf("MeanCorrectionCents() = %v, want 15", got)
	}
}
