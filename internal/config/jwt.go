package config

import (
	"fmt"
	"os"
	"strconv"
)

// JWTConfig holds configuration for proxy bearer tokens.
type JWTConfig struct {
	Secret          string
	Issuer          string
	ExpirationHours int
}

// DefaultIssuer is the iss claim of issued tokens
const DefaultIssuer = "cv-editor"

// NewJWTConfig creates a JWT configuration from environment variables.
// It reads CV_JWT_SECRET, CV_JWT_ISSUER (default cv-editor) and CV_JWT_EXPIRATION_HOURS
// (default 24). An unset secret returns nil, nil: the proxy then runs without auth.
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("CV_JWT_SECRET")
	if secret == "" {
		return nil, nil
	}

	expirationStr := os.Getenv("CV_JWT_EXPIRATION_HOURS")
	if expirationStr == "" {
		expirationStr = "24"
	}
	expirationHours, err := strconv.Atoi(expirationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CV_JWT_EXPIRATION_HOURS: %w", err)
	}

	issuer := os.Getenv("CV_JWT_ISSUER")
	if issuer == "" {
		issuer = DefaultIssuer
	}

	config := &JWTConfig{
		Secret:          secret,
		Issuer:          issuer,
		ExpirationHours: expirationHours,
	}
	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if len(c.Secret) < 16 {
		return fmt.Errorf("CV_JWT_SECRET must be at least 16 characters")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("CV_JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
