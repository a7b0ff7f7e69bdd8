// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := Default()

	if config.Cache.TTL != 30*time.Minute {
		t.Errorf("expected 30m cache TTL, got %v", config.Cache.TTL)
	}
	if config.Cache.MaxSize != 1000 {
		t.Errorf("expected max size 1000, got %d", config.Cache.MaxSize)
	}
	if config.Batch.WindowSize != 5 {
		t.Errorf("expected batch window 5, got %d", config.Batch.WindowSize)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromBytes(t *testing.T) {
	yaml := `
cache:
  ttl: 10m
  max_size: 50
extraction:
  step_timeout: 3s
learning:
  enabled: true
log_level: debug
`
	config, err := LoadFromBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if config.Cache.TTL != 10*time.Minute {
		t.Errorf("expected 10m TTL, got %v", config.Cache.TTL)
	}
	if config.Cache.MaxSize != 50 {
		t.Errorf("expected max size 50, got %d", config.Cache.MaxSize)
	}
	if config.Extraction.StepTimeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", config.Extraction.StepTimeout)
	}
	if !config.Learning.Enabled {
		t.Error("learning should be enabled")
	}
	// Unset fields fall back to defaults
	if config.Batch.WindowSize != DefaultBatchWindowSize {
		t.Errorf("expected default batch window, got %d", config.Batch.WindowSize)
	}
}

func TestLoadExpandsEnvironment(t *testing.T) {
	os.Setenv("CLIPSENSE_TEST_RULES", "/etc/clipsense/rules.yaml")
	defer os.Unsetenv("CLIPSENSE_TEST_RULES")

	config, err := LoadFromBytes([]byte("rules:\n  file: ${CLIPSENSE_TEST_RULES}\n"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if config.Rules.File != "/etc/clipsense/rules.yaml" {
		t.Errorf("environment variable not expanded: %s", config.Rules.File)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: warn\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	config, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if config.LogLevel != "warn" {
		t.Errorf("expected warn, got %s", config.LogLevel)
	}

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should error")
	}
	if _, err := LoadFromFile(""); err == nil {
		t.Error("empty filename should error")
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		fragment string
	}{
		{"negative ttl", "cache:\n  ttl: -5m\n", "cache.ttl"},
		{"bad log level", "log_level: loud\n", "log_level"},
		{"bad yaml", "cache: [\n", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.fragment) {
				t.Errorf("expected %q in error, got %v", tt.fragment, err)
			}
		})
	}
}
