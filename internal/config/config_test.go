package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"job_url": "https://example.com/job",
		"country": "DE",
		"proxy_url": "https://proxy.example.com",
		"models": {"lite": "gemini-2.5-flash-lite"},
		"debounce_ms": 250,
		"use_browser": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://example.com/job", cfg.JobURL)
	assert.Equal(t, "DE", cfg.Country)
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.Models["lite"])
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce())
	assert.True(t, cfg.UseBrowser)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"empty is valid", Config{}, ""},
		{"job and job_url", Config{Job: "a.txt", JobURL: "https://x"}, "mutually exclusive"},
		{"negative debounce", Config{DebounceMS: -1}, "debounce_ms"},
		{"long country", Config{Country: "USA"}, "two-letter"},
		{"proxy scheme", Config{ProxyURL: "proxy.example.com"}, "proxy_url"},
		{"unknown tier", Config{Models: map[string]string{"turbo": "x"}}, "unknown model tier"},
		{"missing document", Config{Document: "/nonexistent/cv.json"}, "document file not found"},
		{"missing job", Config{Job: "/nonexistent/job.txt"}, "job file not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "key")
	t.Setenv(EnvProxyURL, "https://proxy.example.com")
	t.Setenv(EnvLogMode, "prod")
	t.Setenv(EnvCORSOrigins, "https://a.example, ,https://b.example")
	t.Setenv(EnvDebounceMS, "100")

	cfg := FromEnv()
	assert.Equal(t, "key", cfg.APIKey)
	assert.Equal(t, "https://proxy.example.com", cfg.ProxyURL)
	assert.Equal(t, "prod", cfg.LogMode)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 100, cfg.DebounceMS)
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Country: "GB", Models: map[string]string{"lite": "m"}}
	defaults := Config{
		Country:     "US",
		APIKey:      "env-key",
		ProxyURL:    "https://proxy",
		CORSOrigins: []string{"https://a"},
		DebounceMS:  300,
		Models:      map[string]string{"advanced": "x"},
	}

	merged := cfg.MergeWithDefaults(defaults)

	assert.Equal(t, "GB", merged.Country)
	assert.Equal(t, "env-key", merged.APIKey)
	assert.Equal(t, "https://proxy", merged.ProxyURL)
	assert.Equal(t, []string{"https://a"}, merged.CORSOrigins)
	assert.Equal(t, 300, merged.DebounceMS)
	assert.Equal(t, map[string]string{"lite": "m"}, merged.Models)
	assert.Empty(t, cfg.APIKey, "receiver must not change")
}

func TestDefaults(t *testing.T) {
	var cfg Config
	assert.Equal(t, DefaultAddr, cfg.ListenAddr())
	assert.Equal(t, DefaultDebounce, cfg.Debounce())
}
