package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// StateDirName is the project-local directory holding warden state.
const StateDirName = ".warden"

// Default safety limits applied when the config file omits them.
const (
	DefaultMaxIterations = 10
	DefaultMaxRetries    = 3
)

// Config represents the flat warden configuration for a project.
type Config struct {
	Version       string `json:"version"`
	MaxIterations int    `json:"max_iterations,omitempty"` // Safety cap on unattended loop steps
	MaxRetries    int    `json:"max_retries,omitempty"`    // No-progress streak before STUCK
	TmuxSession   string `json:"tmux_session,omitempty"`   // Session hosting the supervised agent (for nudge)
	TmuxPane      string `json:"tmux_pane,omitempty"`      // Pane target within the session
}

// StateDir returns the warden state directory for a project directory.
func StateDir(dir string) string {
	return filepath.Join(dir, StateDirName)
}

// LoadConfig reads .warden/config.json from the specified directory.
// A missing file is not an error: defaults are returned so first runs work.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, StateDirName, "config.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	return &cfg, nil
}

// SaveConfig writes config.json to the project's state directory.
func SaveConfig(dir string, cfg *Config) error {
	stateDir := StateDir(dir)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", StateDirName, err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(stateDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func defaults() *Config {
	return &Config{
		Version:       "1.0",
		MaxIterations: DefaultMaxIterations,
		MaxRetries:    DefaultMaxRetries,
	}
}
