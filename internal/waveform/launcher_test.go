package waveform

import (
	"reflect"
	"testing"
	"time"
)

func TestExecLauncherCommand(t *testing.T) {
	tests := []struct {
		name     string
		template string
		offset   time.Duration
		want     []string
	}{
		{
			name:     "default",
			template: DefaultPlayerCommand,
			offset:   1500 * time.Millisecond,
			want:     []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", "-ss", "1.500", "/tmp/a.wav"},
		},
		{
			name:     "no_offset",
			template: "aplay -q {file}",
			offset:   3 * time.Second,
			want:     []string{"aplay", "-q", "/tmp/a.wav"},
		},
		{
			name:     "embedded",
			template: "mpv --start={offset} --no-video {file}",
			want:     []string{"mpv", "--start=0.000", "--no-video", "/tmp/a.wav"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewExecLauncher(tt.template)
			if err != nil {
				t.Fatalf("NewExecLauncher failed: %v", err)
			}
			if got := l.Command("/tmp/a.wav", tt.offset); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Command() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewExecLauncherRejects(t *testing.T) {
	for _, template := range []string{"", "   ", "ffplay -nodisp"} {
		if _, err := NewExecLauncher(template); err == nil {
			t.Errorf("NewExecLauncher(%q) succeeded, want error", template)
		}
	}
}
