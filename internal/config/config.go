// Package config provides configuration loading and validation for the CLI and the AI proxy.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Environment variable names
const (
	EnvAPIKey      = "GEMINI_API_KEY"
	EnvProxyURL    = "CV_PROXY_URL"
	EnvProxyToken  = "CV_PROXY_TOKEN"
	EnvLogMode     = "CV_LOG_MODE"
	EnvCORSOrigins = "CV_CORS_ORIGINS"
	EnvAddr        = "CV_ADDR"
	EnvChromePath  = "CHROME_PATH"
	EnvDebounceMS  = "CV_DEBOUNCE_MS"
)

// DefaultAddr is the proxy listen address
const DefaultAddr = ":8080"

// DefaultDebounce is the quiet period before a skills regroup runs
const DefaultDebounce = 600 * time.Millisecond

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults, the environment or CLI flags.
type Config struct {
	// Inputs
	Document string `json:"document,omitempty"` // Path to the CV document JSON
	Job      string `json:"job,omitempty"`      // Path to a job description text file
	JobURL   string `json:"job_url,omitempty"`  // URL of a job posting to import
	Country  string `json:"country,omitempty"`  // Country rule pack code
	Locale   string `json:"locale,omitempty"`   // Spelling locale, or "auto"

	// AI backends
	APIKey     string            `json:"api_key,omitempty"`     // Gemini API key
	ProxyURL   string            `json:"proxy_url,omitempty"`   // Base URL of the remote AI proxy
	ProxyToken string            `json:"proxy_token,omitempty"` // Bearer token for the proxy
	Models     map[string]string `json:"models,omitempty"`      // Model per tier: lite, standard, advanced

	// Proxy server
	Addr        string   `json:"addr,omitempty"`         // Listen address
	CORSOrigins []string `json:"cors_origins,omitempty"` // Allowed origins; empty allows any

	// Behavior
	UseBrowser bool   `json:"use_browser,omitempty"` // Headless browser fallback for job boards
	ChromePath string `json:"chrome_path,omitempty"` // Chrome binary for PDF export
	LogMode    string `json:"log_mode,omitempty"`    // "prod" for JSON logs
	DebounceMS int    `json:"debounce_ms,omitempty"` // Skills regroup quiet period
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

// FromEnv builds a Config from the environment. Unset variables leave fields empty.
func FromEnv() Config {
	cfg := Config{
		APIKey:     os.Getenv(EnvAPIKey),
		ProxyURL:   os.Getenv(EnvProxyURL),
		ProxyToken: os.Getenv(EnvProxyToken),
		LogMode:    os.Getenv(EnvLogMode),
		Addr:       os.Getenv(EnvAddr),
		ChromePath: os.Getenv(EnvChromePath),
	}
	if origins := os.Getenv(EnvCORSOrigins); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
	if ms, err := strconv.Atoi(os.Getenv(EnvDebounceMS)); err == nil {
		cfg.DebounceMS = ms
	}
	return cfg
}

var knownTiers = map[string]bool{"lite": true, "standard": true, "advanced": true}

// Validate checks that the configuration has valid values.
// Required inputs are checked by each command after merging.
func (c *Config) Validate() error {
	if c.Job != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'job' and 'job_url' are mutually exclusive")
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("config error: 'debounce_ms' must be non-negative")
	}
	if c.Country != "" && len(strings.TrimSpace(c.Country)) != 2 {
		return fmt.Errorf("config error: 'country' must be a two-letter code, got %q", c.Country)
	}
	if c.ProxyURL != "" && !strings.HasPrefix(c.ProxyURL, "http://") && !strings.HasPrefix(c.ProxyURL, "https://") {
		return fmt.Errorf("config error: 'proxy_url' must be an http(s) URL")
	}
	for tier := range c.Models {
		if !knownTiers[tier] {
			return fmt.Errorf("config error: unknown model tier %q", tier)
		}
	}

	if c.Document != "" {
		if _, err := os.Stat(c.Document); os.IsNotExist(err) {
			return fmt.Errorf("config error: document file not found: %s", c.Document)
		}
	}
	if c.Job != "" {
		if _, err := os.Stat(c.Job); os.IsNotExist(err) {
			return fmt.Errorf("config error: job file not found: %s", c.Job)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// Config file values are merged over the environment this way, and flags win over both.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	for _, f := range []struct {
		dst *string
		src string
	}{
		{&result.Document, defaults.Document},
		{&result.Job, defaults.Job},
		{&result.JobURL, defaults.JobURL},
		{&result.Country, defaults.Country},
		{&result.Locale, defaults.Locale},
		{&result.APIKey, defaults.APIKey},
		{&result.ProxyURL, defaults.ProxyURL},
		{&result.ProxyToken, defaults.ProxyToken},
		{&result.Addr, defaults.Addr},
		{&result.ChromePath, defaults.ChromePath},
		{&result.LogMode, defaults.LogMode},
	} {
		if *f.dst == "" {
			*f.dst = f.src
		}
	}

	if len(result.Models) == 0 {
		result.Models = defaults.Models
	}
	if len(result.CORSOrigins) == 0 {
		result.CORSOrigins = defaults.CORSOrigins
	}
	if result.DebounceMS == 0 {
		result.DebounceMS = defaults.DebounceMS
	}

	// Bool fields: cannot distinguish unset from false, so flags decide
	return result
}

// ListenAddr returns Addr or DefaultAddr
func (c *Config) ListenAddr() string {
	if c.Addr == "" {
		return DefaultAddr
	}
	return c.Addr
}

// Debounce returns the configured quiet period or DefaultDebounce
func (c *Config) Debounce() time.Duration {
	if c.DebounceMS <= 0 {
		return DefaultDebounce
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}
