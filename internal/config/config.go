package config

import (
	"os"
	"strconv"
	"time"

	"github.com/linuxmatters/retune/internal/waveform"
)

// DefaultServiceURL is the tuning endpoint of a locally running service
const DefaultServiceURL = "http://127.0.0.1:8000/tune"

// Config holds runtime defaults, loaded from environment variables.
// Command-line flags and the --config file override these.
type Config struct {
	// Tuning service
	ServiceURL string
	Timeout    time.Duration // whole request, including upload

	// Playback
	PlayerCommand string // {file} and {offset} are substituted

	// Files
	OutputDir string // where tuned_audio.wav is written
	TempDir   string // playable references; empty uses the OS temp dir
	DebugLog  string // empty disables the debug log

	// Starting parameters
	Key        string
	Correction float64
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		ServiceURL: envStr("RETUNE_SERVICE_URL", DefaultServiceURL),
		Timeout:    time.Duration(envInt("RETUNE_TIMEOUT", 120)) * time.Second,

		PlayerCommand: envStr("RETUNE_PLAYER", waveform.DefaultPlayerCommand),

		OutputDir: envStr("RETUNE_OUTPUT_DIR", "."),
		TempDir:   envStr("RETUNE_TEMP_DIR", ""),
		DebugLog:  envStr("RETUNE_DEBUG_LOG", ""),

		Key:        envStr("RETUNE_KEY", "chromatic"),
		Correction: envFloat("RETUNE_CORRECTION", 0.5),
	}
}

// Vars exposes the configuration as kong interpolation variables so
// environment values become flag defaults
func (c Config) Vars() map[string]string {
	return map[string]string{
		"service_url": c.ServiceURL,
		"timeout":     c.Timeout.String(),
		"player":      c.PlayerCommand,
		"output_dir":  c.OutputDir,
		"temp_dir":    c.TempDir,
		"debug_log":   c.DebugLog,
		"key":         c.Key,
		"correction":  strconv.FormatFloat(c.Correction, 'f', -1, 64),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
