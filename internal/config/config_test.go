package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MaxIterations != DefaultMaxIterations {
		t.Errorf("MaxIterations = %d, want %d", cfg.MaxIterations, DefaultMaxIterations)
	}
	if cfg.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", cfg.MaxRetries, DefaultMaxRetries)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		Version:       "1.0",
		MaxIterations: 25,
		MaxRetries:    5,
		TmuxSession:   "work",
		TmuxPane:      "1",
	}
	if err := SaveConfig(dir, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.MaxIterations != 25 || loaded.MaxRetries != 5 {
		t.Errorf("limits lost in round trip: %+v", loaded)
	}
	if loaded.TmuxSession != "work" || loaded.TmuxPane != "1" {
		t.Errorf("tmux target lost in round trip: %+v", loaded)
	}
}

func TestLoadConfig_ZeroLimitsFallBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(StateDir(dir), 0o755); err != nil {
		t.Fatalf("failed to create state dir: %v", err)
	}
	path := filepath.Join(StateDir(dir), "config.json")
	if err := os.WriteFile(path, []byte(`{"version":"1.0","max_iterations":0}`), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MaxIterations != DefaultMaxIterations {
		t.Errorf("MaxIterations = %d, want default %d", cfg.MaxIterations, DefaultMaxIterations)
	}
}

func TestLoadConfig_MalformedFileIsError(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(StateDir(dir), 0o755); err != nil {
		t.Fatalf("failed to create state dir: %v", err)
	}
	path := filepath.Join(StateDir(dir), "config.json")
	if err := os.WriteFile(path, []byte(`{"version"`), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("LoadConfig accepted malformed JSON")
	}
}
