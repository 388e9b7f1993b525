// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; API keys go to the OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "specforge/cli/internal/errors"
	"specforge/cli/internal/xdg"
)

// Environment variables that override the file.
const (
	EnvAgentMode    = "SPECFORGE_AGENT_MODE"
	EnvCursorBridge = "SPECFORGE_CURSOR_BRIDGE"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	// AgentMode names the provider tried first. Unknown values are routed to simple.
	AgentMode      string       `json:"agent_mode"`
	LogLevel       string       `json:"log_level"`
	Concurrency    int          `json:"concurrency"`
	TimeoutSeconds int          `json:"timeout_seconds"`
	Claude         ModelConfig  `json:"claude"`
	OpenAI         ModelConfig  `json:"openai"`
	Cursor         CursorConfig `json:"cursor"`
}

// ModelConfig selects the model and endpoint of an HTTP provider.
type ModelConfig struct {
	Model   string `json:"model"`
	BaseURL string `json:"base_url"`
}

// CursorConfig points at the local Cursor agent bridge.
type CursorConfig struct {
	// BridgeAddress is a gRPC target such as "localhost:7437". Empty disables the provider.
	BridgeAddress string `json:"bridge_address"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		AgentMode:      "simple",
		LogLevel:       "info",
		Concurrency:    4,
		TimeoutSeconds: 300,
		Claude: ModelConfig{
			Model:   "claude-sonnet-4-20250514",
			BaseURL: "https://api.anthropic.com",
		},
		OpenAI: ModelConfig{
			Model:   "gpt-4o",
			BaseURL: "https://api.openai.com/v1",
		},
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file from the XDG dir and applies environment overrides.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(p)
}

// LoadFrom reads the config at p and applies environment overrides. A missing file
// yields defaults; fields absent from the file keep their default values.
func LoadFrom(p string) (Config, error) {
	c, err := ReadFile(p)
	if err != nil {
		return c, err
	}
	c.applyEnv(os.Getenv)
	return c, c.Validate()
}

// ReadFile reads the config at p without environment overrides.
func ReadFile(p string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse %s: %w", p, err)
		}
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvAgentMode)); v != "" {
		c.AgentMode = v
	}
	if v := strings.TrimSpace(getenv(EnvCursorBridge)); v != "" {
		c.Cursor.BridgeAddress = v
	}
}

// Validate rejects values the CLI cannot run with.
func (c Config) Validate() error {
	if c.Concurrency <= 0 {
		return apperrors.New(apperrors.InvalidConfig, fmt.Sprintf("concurrency must be positive, got %d", c.Concurrency))
	}
	if c.TimeoutSeconds <= 0 {
		return apperrors.New(apperrors.InvalidConfig, fmt.Sprintf("timeout_seconds must be positive, got %d", c.TimeoutSeconds))
	}
	return nil
}

// Save writes configuration to the XDG dir with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(p, c)
}

// SaveTo writes configuration to p with 0600 permissions.
func SaveTo(p string, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, append(b, '\n'), 0o600)
}
