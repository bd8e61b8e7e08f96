package config

import (
	"os"
	"testing"
	"time"

	"github.com/linuxmatters/retune/internal/waveform"
)

var envVars = []string{
	"RETUNE_SERVICE_URL", "RETUNE_TIMEOUT", "RETUNE_PLAYER",
	"RETUNE_OUTPUT_DIR", "RETUNE_TEMP_DIR", "RETUNE_DEBUG_LOG",
	"RETUNE_KEY", "RETUNE_CORRECTION",
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range envVars {
		os.Unsetenv(k)
	}

	cfg := Load()

	if cfg.ServiceURL != DefaultServiceURL {
		t.Errorf("ServiceURL = %q, want default", cfg.ServiceURL)
	}
	if cfg.Timeout != 120*time.Second {
		t.Errorf("Timeout = %v, want 2m0s", cfg.Timeout)
	}
	if cfg.PlayerCommand != waveform.DefaultPlayerCommand {
		t.Errorf("PlayerCommand = %q, want default", cfg.PlayerCommand)
	}
	if cfg.OutputDir != "." {
		t.Errorf("OutputDir = %q, want '.'", cfg.OutputDir)
	}
	if cfg.TempDir != "" || cfg.DebugLog != "" {
		t.Errorf("TempDir = %q, DebugLog = %q; want empty defaults", cfg.TempDir, cfg.DebugLog)
	}
	if cfg.Key != "chromatic" {
		t.Errorf("Key = %q, want chromatic", cfg.Key)
	}
	if cfg.Correction != 0.5 {
		t.Errorf("Correction = %f, want 0.5", cfg.Correction)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RETUNE_SERVICE_URL", "http://tuner:9000/tune")
	t.Setenv("RETUNE_TIMEOUT", "30")
	t.Setenv("RETUNE_PLAYER", "aplay {file}")
	t.Setenv("RETUNE_OUTPUT_DIR", "/tmp/out")
	t.Setenv("RETUNE_TEMP_DIR", "/tmp/refs")
	t.Setenv("RETUNE_DEBUG_LOG", "/tmp/retune.log")
	t.Setenv("RETUNE_KEY", "A:minor")
	t.Setenv("RETUNE_CORRECTION", "0.85")

	cfg := Load()

	if cfg.ServiceURL != "http://tuner:9000/tune" {
		t.Errorf("ServiceURL = %q", cfg.ServiceURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.PlayerCommand != "aplay {file}" {
		t.Errorf("PlayerCommand = %q", cfg.PlayerCommand)
	}
	if cfg.OutputDir != "/tmp/out" || cfg.TempDir != "/tmp/refs" || cfg.DebugLog != "/tmp/retune.log" {
		t.Errorf("paths = %q %q %q", cfg.OutputDir, cfg.TempDir, cfg.DebugLog)
	}
	if cfg.Key != "A:minor" {
		t.Errorf("Key = %q, want A:minor", cfg.Key)
	}
	if cfg.Correction != 0.85 {
		t.Errorf("Correction = %f, want 0.85", cfg.Correction)
	}
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("RETUNE_TIMEOUT", "soon")
	t.Setenv("RETUNE_CORRECTION", "lots")

	cfg := Load()

	if cfg.Timeout != 120*time.Second {
		t.Errorf("Timeout = %v, want default for invalid value", cfg.Timeout)
	}
	if cfg.Correction != 0.5 {
		t.Errorf("Correction = %f, want default for invalid value", cfg.Correction)
	}
}

func TestVars(t *testing.T) {
	cfg := Config{Timeout: 90 * time.Second, Correction: 0.25, Key: "auto"}
	vars := cfg.Vars()

	tests := map[string]string{
		"timeout":    "1m30s",
		"correction": "0.25",
		"key":        "auto",
		"temp_dir":   "",
	}
	for k, want := range tests {
		if got, ok := vars[k]; !ok || got != want {
			t.Errorf("Vars()[%q] = %q, want %q", k, got, want)
		}
	}
}
