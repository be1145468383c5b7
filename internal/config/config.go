// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/schemas"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv
const (
	EnvAPIKey         = "GEMINI_API_KEY"
	EnvModel          = "RESUME_MODEL"
	EnvPort           = "PORT"
	EnvSessionTTL     = "SESSION_TTL"
	EnvSessionSecret  = "SESSION_SECRET"
	EnvAllowedOrigins = "ALLOWED_ORIGINS"
	EnvUseBrowser     = "RESUME_USE_BROWSER"
	EnvVerbose        = "RESUME_VERBOSE"
)

// Defaults
const (
	DefaultPort         = 8080
	DefaultSessionTTL   = "1h"
	DefaultFetchTimeout = "30s"
	DefaultOutDir       = "."
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Server
	Port           int      `json:"port,omitempty" yaml:"port,omitempty"`                       // HTTP listen port
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"` // CORS origins; empty allows none

	// Completion
	APIKey          string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`                     // Gemini API key
	Model           string  `json:"model,omitempty" yaml:"model,omitempty"`                         // Model used for tailoring
	Temperature     float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`             // Sampling temperature (0.0-2.0)
	MaxOutputTokens int     `json:"max_output_tokens,omitempty" yaml:"max_output_tokens,omitempty"` // Completion length cap

	// Sessions
	SessionSecret string `json:"session_secret,omitempty" yaml:"session_secret,omitempty"` // Session token secret; random per process if empty
	SessionTTL    string `json:"session_ttl,omitempty" yaml:"session_ttl,omitempty"`       // Go duration, e.g. "1h"

	// Job postings
	UseBrowser   bool   `json:"use_browser,omitempty" yaml:"use_browser,omitempty"`     // Use headless browser for SPA sites
	FetchTimeout string `json:"fetch_timeout,omitempty" yaml:"fetch_timeout,omitempty"` // Go duration for page fetches

	// Output
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`       // Display name used in download filenames
	OutDir  string   `json:"out_dir,omitempty" yaml:"out_dir,omitempty"` // Directory for written artifacts
	Formats []string `json:"formats,omitempty" yaml:"formats,omitempty"` // Download formats (txt, docx)

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"` // Print detailed debug information
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:            DefaultPort,
		Temperature:     float64(llm.DefaultTemperature),
		MaxOutputTokens: int(llm.DefaultMaxOutputTokens),
		SessionTTL:      DefaultSessionTTL,
		FetchTimeout:    DefaultFetchTimeout,
		OutDir:          DefaultOutDir,
		Formats:         []string{string(rendering.FormatText), string(rendering.FormatDOCX)},
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension
// (.yaml and .yml are YAML, anything else JSON). The content is checked
// against the embedded config schema before decoding.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		return parseJSON(data)
	}
}

func parseJSON(data []byte) (*Config, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := schemas.Validate(schemas.ConfigSchema, data); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

func parseYAML(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	if err := schemas.ValidateValue(schemas.ConfigSchema, raw); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config error: 'temperature' must be between 0 and 2, got %g", c.Temperature)
	}
	if c.MaxOutputTokens < 0 {
		return fmt.Errorf("config error: 'max_output_tokens' must be non-negative")
	}
	if _, err := c.SessionDuration(); err != nil {
		return err
	}
	if _, err := c.FetchTimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.OutputFormats(); err != nil {
		return err
	}
	if c.OutDir != "" {
		if info, err := os.Stat(c.OutDir); err == nil && !info.IsDir() {
			return fmt.Errorf("config error: out_dir is not a directory: %s", c.OutDir)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.SessionSecret == "" {
		result.SessionSecret = defaults.SessionSecret
	}
	if result.SessionTTL == "" {
		result.SessionTTL = defaults.SessionTTL
	}
	if result.FetchTimeout == "" {
		result.FetchTimeout = defaults.FetchTimeout
	}
	if result.Name == "" {
		result.Name = defaults.Name
	}
	if result.OutDir == "" {
		result.OutDir = defaults.OutDir
	}

	// Numeric fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}
	if result.MaxOutputTokens == 0 {
		result.MaxOutputTokens = defaults.MaxOutputTokens
	}

	// Slices: use default if empty
	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}
	if len(result.Formats) == 0 {
		result.Formats = defaults.Formats
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv overrides fields with any of the environment variables that are set.
// Malformed numeric or boolean values are reported rather than ignored.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvSessionSecret); v != "" {
		c.SessionSecret = v
	}
	if v := os.Getenv(EnvSessionTTL); v != "" {
		c.SessionTTL = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		c.Port = port
	}
	if v := os.Getenv(EnvAllowedOrigins); v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv(EnvUseBrowser); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvUseBrowser, err)
		}
		c.UseBrowser = b
	}
	if v := os.Getenv(EnvVerbose); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvVerbose, err)
		}
		c.Verbose = b
	}
	return nil
}

// SessionDuration parses SessionTTL, falling back to DefaultSessionTTL.
func (c *Config) SessionDuration() (time.Duration, error) {
	return parseDuration("session_ttl", c.SessionTTL, DefaultSessionTTL)
}

// FetchTimeoutDuration parses FetchTimeout, falling back to DefaultFetchTimeout.
func (c *Config) FetchTimeoutDuration() (time.Duration, error) {
	return parseDuration("fetch_timeout", c.FetchTimeout, DefaultFetchTimeout)
}

// OutputFormats parses Formats. An empty list means every supported format.
func (c *Config) OutputFormats() ([]rendering.Format, error) {
	if len(c.Formats) == 0 {
		return rendering.Formats(), nil
	}
	formats := make([]rendering.Format, 0, len(c.Formats))
	seen := make(map[rendering.Format]bool)
	for _, name := range c.Formats {
		f, err := rendering.ParseFormat(name)
		if err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	return formats, nil
}

// LLMConfig builds the completion client configuration.
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.DefaultConfig()
	if c.Model != "" {
		cfg = cfg.WithModel(llm.TierAdvanced, c.Model)
	}
	if c.Temperature > 0 {
		cfg.Temperature = float32(c.Temperature)
	}
	if c.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(c.MaxOutputTokens)
	}
	return cfg
}

func parseDuration(field, value, fallback string) (time.Duration, error) {
	if value == "" {
		value = fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config error: invalid '%s': %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config error: '%s' must be positive, got %s", field, value)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
