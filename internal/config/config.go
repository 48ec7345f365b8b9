// Package config loads and validates the mara.yml pipeline configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for the configuration when --config is
// not given. A missing file there is not an error: defaults apply.
const DefaultPath = "mara.yml"

// Duration wraps time.Duration so YAML values can be written as "5s" or
// "1m30s".
type Duration time.Duration

// UnmarshalYAML parses Go duration syntax.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q (expected Go syntax like '5s' or '1m30s'): %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in Go syntax.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// SourceConfig describes the external source articles are acquired from.
type SourceConfig struct {
	URL string `yaml:"url"`

	// PlaceholderAuthor is assigned during synthesis to articles whose
	// author the extractor could not determine.
	PlaceholderAuthor string `yaml:"placeholder_author,omitempty"`
}

// RetryConfig bounds the acquisition worker's extraction calls.
type RetryConfig struct {
	MaxAttempts    int      `yaml:"max_attempts"`
	Delay          Duration `yaml:"delay"`
	AttemptTimeout Duration `yaml:"attempt_timeout"`
}

// StalenessConfig controls when the staleness monitor requests a refresh.
type StalenessConfig struct {
	// Threshold is the knowledge age, in completed workflow cycles, at
	// which a refresh is requested.
	Threshold int `yaml:"threshold"`
}

// Extractor strategy names.
const (
	ExtractorHTML = "html"
	ExtractorLLM  = "llm"
)

// LLMConfig configures the Gemini-backed decomposition and extraction
// strategies. The API key is read from the named environment variable, never
// from the file itself.
type LLMConfig struct {
	Model     string `yaml:"model,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

// LoggingConfig selects the zap logger profile.
type LoggingConfig struct {
	Level       string `yaml:"level,omitempty"`       // debug, info, warn, error
	Development bool   `yaml:"development,omitempty"` // console encoder instead of JSON
}

// Config is the top-level mara.yml structure.
type Config struct {
	Version   string          `yaml:"version"`
	Source    SourceConfig    `yaml:"source"`
	Retry     RetryConfig     `yaml:"retry,omitempty"`
	Staleness StalenessConfig `yaml:"staleness,omitempty"`
	Extractor string          `yaml:"extractor,omitempty"`
	LLM       LLMConfig       `yaml:"llm,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// Default returns the configuration used when no mara.yml exists.
func Default() *Config {
	return &Config{
		Version: "1.0",
		Source: SourceConfig{
			URL:               "https://perinim.github.io/projects",
			PlaceholderAuthor: "Unknown Author",
		},
		Retry: RetryConfig{
			MaxAttempts:    3,
			Delay:          Duration(5 * time.Second),
			AttemptTimeout: Duration(60 * time.Second),
		},
		Staleness: StalenessConfig{Threshold: 2},
		Extractor: ExtractorHTML,
		LLM: LLMConfig{
			Model:     "gemini-2.0-flash",
			APIKeyEnv: "GEMINI_API_KEY",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads and validates mara.yml from the specified path. Fields left
// unset in the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate performs strict validation on the configuration
func (c *Config) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	// Required: a source to acquire from
	if c.Source.URL == "" {
		return fmt.Errorf("source.url is required")
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be >= 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.AttemptTimeout.Std() <= 0 {
		return fmt.Errorf("retry.attempt_timeout must be positive, got %v", c.Retry.AttemptTimeout.Std())
	}
	if c.Retry.Delay.Std() < 0 {
		return fmt.Errorf("retry.delay must not be negative, got %v", c.Retry.Delay.Std())
	}

	if c.Staleness.Threshold < 1 {
		return fmt.Errorf("staleness.threshold must be >= 1, got %d", c.Staleness.Threshold)
	}

	if c.Extractor != ExtractorHTML && c.Extractor != ExtractorLLM {
		return fmt.Errorf("invalid extractor: %s (must be '%s' or '%s')", c.Extractor, ExtractorHTML, ExtractorLLM)
	}
	if c.Extractor == ExtractorLLM && c.LLM.APIKeyEnv == "" {
		return fmt.Errorf("extractor '%s' requires llm.api_key_env", ExtractorLLM)
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s (must be 'debug', 'info', 'warn', or 'error')", c.Logging.Level)
	}

	return nil
}

// APIKey resolves the configured LLM API key from the environment. An empty
// result means the LLM strategies are unavailable and the deterministic
// fallbacks are used instead.
func (c *Config) APIKey() string {
	if c.LLM.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.LLM.APIKeyEnv)
}
