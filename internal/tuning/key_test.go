package tuning

import "testing"

func TestParseKey(t *testing.T) {
	tests := []struct {
		in       string
		want     Key
		wantWire string
	}{
		{"chromatic", Chromatic, "chromatic"},
		{"Chromatic", Chromatic, "chromatic"},
		{"auto", AutoKey, ""},
		{"C:major", NewKey(0, Major), "C:maj"},
		{"C:maj", NewKey(0, Major), "C:maj"},
		{"c:Major", NewKey(0, Major), "C:maj"},
		{"G:minor", NewKey(7, Minor), "G:min"},
		{"F#:min", NewKey(6, Minor), "F#:min"},
		{"Db:major", NewKey(1, Major), "C#:maj"},
		{"bb:MIN", NewKey(10, Minor), "A#:min"},
		{" A : minor ", NewKey(9, Minor), "A:min"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKey(tt.in)
			if err != nil {
				t.Fatalf("ParseKey(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseKey(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got.Wire() != tt.wantWire {
				t.Errorf("ParseKey(%q).Wire() = %q, want %q", tt.in, got.Wire(), tt.wantWire)
			}
		})
	}
}

func TestParseKeyRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "H:major", "C", "C:dorian", "C#", ":major", "major:C"} {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseKey(in); err == nil {
				t.Errorf("ParseKey(%q) succeeded, want error", in)
			}
		})
	}
}

func TestKeyStringRoundTrip(t *testing.T) {
	keys := AllKeys()
	if len(keys) != 25 {
		t.Fatalf("AllKeys() returned %d keys, want 25", len(keys))
	}
	if keys[0] != Chromatic {
		t.Errorf("AllKeys()[0] = %v, want chromatic", keys[0])
	}

	for _, k := range keys {
		got, err := ParseKey(k.String())
		if err != nil {
			t.Errorf("ParseKey(%q) error: %v", k.String(), err)
			continue
		}
		if got != k {
			t.Errorf("ParseKey(%q) = %v, want %v", k.String(), got, k)
		}

		wire, err := ParseKey(k.Wire())
		if err != nil || wire != k {
			t.Errorf("ParseKey(Wire %q) = %v, %v; want %v", k.Wire(), wire, err, k)
		}
	}
}

func TestNewKeyWrapsTonic(t *testing.T) {
	if got := NewKey(-1, Major); got.Tonic != 11 {
		t.Errorf("NewKey(-1).Tonic = %d, want 11", got.Tonic)
	}
	if got := NewKey(14, Minor); got.Tonic != 2 {
		t.Errorf("NewKey(14).Tonic = %d, want 2", got.Tonic)
	}
}
