// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultAPIURL is the CV service used when nothing else is configured.
const DefaultAPIURL = "https://piyo.my.id"

// AutosaveCreateDelay is the quiet period before saving a document drafted from scratch.
const AutosaveCreateDelay = 3 * time.Second

// AutosaveEditDelay is the quiet period before saving revisions of an existing document.
const AutosaveEditDelay = 5 * time.Second

// DefaultHTTPTimeout bounds every request to the CV service.
const DefaultHTTPTimeout = 30 * time.Second

// DefaultArtifactName is the file name used for a generated CV without a title.
const DefaultArtifactName = "generated_cv.pdf"

// Environment variables read by FromEnv.
const (
	EnvAPIURL      = "CVCTL_API_URL"
	EnvRedisURL    = "CVCTL_REDIS_URL"
	EnvLogMode     = "CVCTL_LOG_MODE"
	EnvOutputDir   = "CVCTL_OUTPUT_DIR"
	EnvSessionFile = "CVCTL_SESSION_FILE"
	EnvHTTPTimeout = "CVCTL_HTTP_TIMEOUT"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or come from CLI flags.
type Config struct {
	APIURL      string `json:"api_url,omitempty" validate:"omitempty,url"`                   // CV service base URL
	RedisURL    string `json:"redis_url,omitempty" validate:"omitempty,url"`                 // Shared session store
	LogMode     string `json:"log_mode,omitempty" validate:"omitempty,oneof=dev prod quiet"` // Logger mode
	OutputDir   string `json:"output_dir,omitempty"`                                         // Where generated PDFs are written
	SessionFile string `json:"session_file,omitempty"`                                       // File session backend location
	HTTPTimeout string `json:"http_timeout,omitempty"`                                       // Go duration, e.g. "45s"
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

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

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from the CVCTL_* environment variables.
func FromEnv() Config {
	return Config{
		APIURL:      os.Getenv(EnvAPIURL),
		RedisURL:    os.Getenv(EnvRedisURL),
		LogMode:     os.Getenv(EnvLogMode),
		OutputDir:   os.Getenv(EnvOutputDir),
		SessionFile: os.Getenv(EnvSessionFile),
		HTTPTimeout: os.Getenv(EnvHTTPTimeout),
	}
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:      DefaultAPIURL,
		LogMode:     "dev",
		OutputDir:   ".",
		SessionFile: DefaultSessionFile(),
		HTTPTimeout: DefaultHTTPTimeout.String(),
	}
}

// DefaultSessionFile is session.json under the user config directory, or in the
// working directory when no config directory can be determined.
func DefaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "cvctl-session.json"
	}
	return filepath.Join(dir, "cvctl", "session.json")
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are filled
// from defaults after merging.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.HTTPTimeout != "" {
		d, err := time.ParseDuration(c.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("config error: invalid 'http_timeout': %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("config error: 'http_timeout' must be positive")
		}
	}
	return nil
}

// Timeout returns the parsed HTTP timeout, or DefaultHTTPTimeout when unset or invalid.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil || d <= 0 {
		return DefaultHTTPTimeout
	}
	return d
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// Layers are merged highest priority first: flags, then env, then file, then Default().
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.LogMode == "" {
		result.LogMode = defaults.LogMode
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.SessionFile == "" {
		result.SessionFile = defaults.SessionFile
	}
	if result.HTTPTimeout == "" {
		result.HTTPTimeout = defaults.HTTPTimeout
	}

	return result
}
