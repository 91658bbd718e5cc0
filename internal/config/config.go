// Package config loads client configuration from YAML with environment
// overrides. Missing files are not an error; defaults apply.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all mentor client configuration.
type Config struct {
	// Server is the counsellor backend.
	Server ServerConfig `yaml:"server"`

	// Reveal paces delayed message presentation.
	Reveal RevealConfig `yaml:"reveal"`

	// Speech configures spoken narration.
	Speech SpeechConfig `yaml:"speech"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the backend gateway.
type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// RevealConfig configures presentation delays.
type RevealConfig struct {
	TypedDelay string `yaml:"typed_delay"` // delay before a typed reply lands
	ChainGap   string `yaml:"chain_gap"`   // gap between chained replies
}

// SpeechConfig configures narration.
type SpeechConfig struct {
	Enabled bool    `yaml:"enabled"`
	Rate    float64 `yaml:"rate"`
	Pitch   float64 `yaml:"pitch"`
	Volume  float64 `yaml:"volume"`
}

// LoggingConfig configures the file logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:8000",
			Timeout: "30s",
		},
		Reveal: RevealConfig{
			TypedDelay: "600ms",
			ChainGap:   "900ms",
		},
		Speech: SpeechConfig{
			Enabled: false,
			Rate:    0.9,
			Pitch:   1.1,
			Volume:  0.9,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "mentor.log",
		},
	}
}

// DefaultPath returns the per-user config location, honoring the
// MENTOR_CONFIG override.
func DefaultPath() string {
	if p := os.Getenv("MENTOR_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "mentor.yaml"
	}
	return filepath.Join(home, ".mentor", "config.yaml")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("MENTOR_SERVER_URL"); url != "" {
		c.Server.BaseURL = url
	}
	if v := os.Getenv("MENTOR_SPEAK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Speech.Enabled = b
		}
	}
	if lvl := os.Getenv("MENTOR_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
}

// GetServerTimeout returns the gateway timeout as a duration.
func (c *Config) GetServerTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetTypedDelay returns the typed-reveal delay as a duration.
func (c *Config) GetTypedDelay() time.Duration {
	d, err := time.ParseDuration(c.Reveal.TypedDelay)
	if err != nil {
		return 600 * time.Millisecond
	}
	return d
}

// GetChainGap returns the chained-reveal gap as a duration.
func (c *Config) GetChainGap() time.Duration {
	d, err := time.ParseDuration(c.Reveal.ChainGap)
	if err != nil {
		return 900 * time.Millisecond
	}
	return d
}
