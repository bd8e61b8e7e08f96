package waveform

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultPlayerCommand plays a file without a window, starting at {offset}
// seconds. {file} is replaced by the playable reference.
const DefaultPlayerCommand = "ffplay -nodisp -autoexit -loglevel quiet -ss {offset} {file}"

// Process is one running playback
type Process interface {
	// Wait blocks until playback ends (naturally or via Stop)
	Wait() error
	// Stop ends playback early
	Stop() error
}

// Launcher starts playback of a reference at an offset
type Launcher interface {
	Launch(ref string, offset time.Duration) (Process, error)
}

// ExecLauncher runs an external command per playback
type ExecLauncher struct {
	args []string
}

// NewExecLauncher parses a command template containing {file} and
// optionally {offset}
func NewExecLauncher(template string) (*ExecLauncher, error) {
	args := strings.Fields(template)
	if len(args) == 0 {
		return nil, errors.New("empty player command")
	}
	if !strings.Contains(template, "{file}") {
		return nil, fmt.Errorf("player command %q has no {file} placeholder", template)
	}
	return &ExecLauncher{args: args}, nil
}

// Command returns the argv for a given reference and offset
func (l *ExecLauncher) Command(ref string, offset time.Duration) []string {
	secs := strconv.FormatFloat(offset.Seconds(), 'f', 3, 64)
	argv := make([]string, len(l.args))
	for i, a := range l.args {
		a = strings.ReplaceAll(a, "{file}", ref)
		a = strings.ReplaceAll(a, "{offset}", secs)
		argv[i] = a
	}
	return argv
}

// Launch starts the player command
func (l *ExecLauncher) Launch(ref string, offset time.Duration) (Process, error) {
	argv := l.Command(ref, offset)
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start player %s: %w", argv[0], err)
	}
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

func (p *execProcess) Stop() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}
