// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v10"
	"github.com/rs/zerolog"

	"github.com/LAGkitty/ollama-GUI/internal/util"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "OLLAMA_CHAT_"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ollama-chat configuration.
type Config struct {
	Version string `toml:"version"`

	// DefaultModel is selected at startup. Empty picks the first model the
	// server lists.
	DefaultModel string `toml:"default_model" env:"MODEL"`

	Ollama     OllamaConfig     `toml:"ollama"`
	Generation GenerationConfig `toml:"generation"`
	Logging    LoggingConfig    `toml:"logging"`
	Telemetry  TelemetryConfig  `toml:"telemetry"`
}

// OllamaConfig contains the server connection settings.
type OllamaConfig struct {
	URL             string   `toml:"url" env:"URL"`
	FallbackModel   string   `toml:"fallback_model" env:"FALLBACK_MODEL"`
	RegistryTimeout Duration `toml:"registry_timeout" env:"REGISTRY_TIMEOUT"`
}

// GenerationConfig contains per-request settings.
type GenerationConfig struct {
	SystemPrompt string   `toml:"system_prompt" env:"SYSTEM_PROMPT"`
	Temperature  float64  `toml:"temperature" env:"TEMPERATURE"`
	History      string   `toml:"history" env:"HISTORY"`
	TokenPacing  Duration `toml:"token_pacing" env:"TOKEN_PACING"`
	Timeout      Duration `toml:"timeout" env:"TIMEOUT"`
}

// LoggingConfig controls the zerolog logger.
type LoggingConfig struct {
	Level string `toml:"level" env:"LOG_LEVEL"`
	// File is where the TUI logs. Empty means <config dir>/ollama-chat.log.
	File string `toml:"file" env:"LOG_FILE"`
}

// TelemetryConfig controls the local metrics endpoint.
type TelemetryConfig struct {
	// MetricsAddr is a host:port to serve /metrics on. Empty disables it.
	MetricsAddr string `toml:"metrics_addr" env:"METRICS_ADDR"`
}

// Duration is a time.Duration written as "2s" in TOML and env values.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1",
		Ollama: OllamaConfig{
			URL:             "http://localhost:11434",
			FallbackModel:   "gemma3:1b",
			RegistryTimeout: Duration{2 * time.Second},
		},
		Generation: GenerationConfig{
			SystemPrompt: "You are a helpful AI assistant. Be concise and straightforward in your responses.",
			Temperature:  0.7,
			History:      "single",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ollama-chat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath returns the log file: the configured one, or ollama-chat.log next
// to the config file at configPath.
func (c *Config) LogPath(configPath string) string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return filepath.Join(filepath.Dir(configPath), "ollama-chat.log")
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default path.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads configuration from path. A missing file yields defaults.
// Environment overrides are applied last, then the result is validated.
func LoadFrom(path string) (*Config, error) {
	cfg, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// decodeFile decodes path over the defaults, so keys absent from the file
// keep their default value.
func decodeFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	_, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies OLLAMA_CHAT_* variables from the process
// environment.
func (c *Config) ApplyEnvOverrides() error {
	return c.applyEnv(nil)
}

// applyEnv applies overrides from environ, or the process environment when
// environ is nil.
func (c *Config) applyEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}
	return nil
}

// fillDefaults restores defaults for string settings left empty.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Ollama.URL == "" {
		c.Ollama.URL = defaults.Ollama.URL
	}
	if c.Ollama.FallbackModel == "" {
		c.Ollama.FallbackModel = defaults.Ollama.FallbackModel
	}
	if c.Ollama.RegistryTimeout.Duration == 0 {
		c.Ollama.RegistryTimeout = defaults.Ollama.RegistryTimeout
	}
	if c.Generation.History == "" {
		c.Generation.History = defaults.Generation.History
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default path.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the configuration as TOML. The file is replaced atomically
// and is readable by the owner only.
func SaveTo(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# ollama-chat configuration file\n")
	buf.WriteString("# Environment variables prefixed with " + EnvPrefix + " override these values.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.Ollama.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "ollama.url",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host[:port]", c.Ollama.URL),
		})
	}

	if rt := c.Ollama.RegistryTimeout.Duration; rt <= 0 || rt > time.Minute {
		errs = append(errs, ValidationError{
			Field:   "ollama.registry_timeout",
			Message: fmt.Sprintf("must be between 0 and 1m, got %s", rt),
		})
	}

	if t := c.Generation.Temperature; t < 0 || t > 2 {
		errs = append(errs, ValidationError{
			Field:   "generation.temperature",
			Message: fmt.Sprintf("must be between 0.0 and 2.0, got %g", t),
		})
	}

	switch c.Generation.History {
	case "single", "replay":
	default:
		errs = append(errs, ValidationError{
			Field:   "generation.history",
			Message: fmt.Sprintf("invalid mode '%s', must be one of: single, replay", c.Generation.History),
		})
	}

	if c.Generation.TokenPacing.Duration < 0 || c.Generation.TokenPacing.Duration > time.Second {
		errs = append(errs, ValidationError{
			Field:   "generation.token_pacing",
			Message: fmt.Sprintf("must be between 0s and 1s, got %s", c.Generation.TokenPacing.Duration),
		})
	}

	if c.Generation.Timeout.Duration < 0 {
		errs = append(errs, ValidationError{
			Field:   "generation.timeout",
			Message: "must not be negative",
		})
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level '%s'", c.Logging.Level),
		})
	}

	if addr := c.Telemetry.MetricsAddr; addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			errs = append(errs, ValidationError{
				Field:   "telemetry.metrics_addr",
				Message: fmt.Sprintf("invalid address '%s': %v", addr, err),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}
