package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the quota for one endpoint.
type EndpointConfig struct {
	Path   string        // Exact path, or a prefix when it ends in "/"
	Method string        // HTTP method
	Limit  int           // Requests per window; zero or less means unlimited
	Window time.Duration // Refill window
	Burst  int           // Bucket capacity (defaults to Limit)
}

// Unlimited reports whether the endpoint bypasses limiting
func (e *EndpointConfig) Unlimited() bool {
	return e.Limit <= 0 || e.Window <= 0
}

func (e *EndpointConfig) capacity() int {
	if e.Burst > 0 {
		return e.Burst
	}
	return e.Limit
}

func (e *EndpointConfig) rate() float64 {
	return float64(e.Limit) / e.Window.Seconds()
}

// DefaultConfig is used when no configuration is supplied.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    300,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		Endpoints:       DefaultEndpointConfigs(),
	}
}

// LoadConfig loads rate limiting configuration from CV_RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	if !getEnvBool("CV_RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	cfg := DefaultConfig()
	cfg.DefaultLimit = getEnvInt("CV_RATE_LIMIT_DEFAULT_LIMIT", cfg.DefaultLimit)
	cfg.DefaultWindow = getEnvDuration("CV_RATE_LIMIT_DEFAULT_WINDOW", cfg.DefaultWindow)
	cfg.CleanupInterval = getEnvDuration("CV_RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.Whitelist = parseIPList(os.Getenv("CV_RATE_LIMIT_WHITELIST"))
	cfg.Blacklist = parseIPList(os.Getenv("CV_RATE_LIMIT_BLACKLIST"))
	return cfg
}

// DefaultEndpointConfigs returns the per-endpoint AI quotas. Generation from a job
// description is the most expensive call, short-field proofreading the cheapest.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/generate-from-job", Method: "POST", Limit: 10, Window: time.Minute, Burst: 3},
		{Path: "/summarize-job", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},
		{Path: "/categorize-skills", Method: "POST", Limit: 30, Window: time.Minute, Burst: 10},
		{Path: "/country-spec", Method: "POST", Limit: 30, Window: time.Hour, Burst: 10},
		{Path: "/write", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/rewrite", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/proofread", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/render", Method: "POST", Limit: 120, Window: time.Minute, Burst: 30},
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of client addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
