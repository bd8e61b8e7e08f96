package logging

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Debugf writes one line to the debug log. The zero value is not usable;
// use Discard when no log file is configured.
type Debugf func(format string, args ...interface{})

// Discard drops every message
func Discard(string, ...interface{}) {}

// OpenDebugLog opens (appending) the debug log at path. An empty path
// returns Discard. The returned close function is always safe to call.
func OpenDebugLog(path string) (Debugf, func() error, error) {
	if path == "" {
		return Discard, func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return Discard, func() error { return nil }, fmt.Errorf("failed to open debug log: %w", err)
	}

	var mu sync.Mutex
	log := func(format string, args ...interface{}) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(f, "%s "+format+"\n", append([]interface{}{time.Now().Format("15:04:05.000")}, args...)...)
	}
	return log, f.Close, nil
}

// OrDiscard returns d, or Discard when d is nil
func OrDiscard(d Debugf) Debugf {
	if d == nil {
		return Discard
	}
	return d
}
