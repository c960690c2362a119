// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Session store (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Base URL of the dashboard (e.g., https://apiwatch.dev)
	// Used to build the billing portal return URL.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Session settings
	SessionCookie string        `env:"SESSION_COOKIE" envDefault:"apiwatch_session"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Route guard
	// Comma-separated path prefixes that require a signed-in session.
	ProtectedPrefixes string `env:"PROTECTED_PREFIXES" envDefault:"/dashboard,/settings,/apis,/add-api,/billing"`
	SigninPath        string `env:"SIGNIN_PATH" envDefault:"/signin"`

	// Payment processor
	BillingSecretKey string `env:"BILLING_SECRET_KEY,required"`
	BillingAPIBase   string `env:"BILLING_API_BASE" envDefault:"https://api.stripe.com"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Diagnostic event pipeline buffer size
	DiagBufferSize int `env:"DIAG_BUFFER_SIZE" envDefault:"1024"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetProtectedPrefixes parses the comma-separated prefix list into a slice.
func (c *Config) GetProtectedPrefixes() []string {
	if c.ProtectedPrefixes == "" {
		return nil
	}

	prefixes := strings.Split(c.ProtectedPrefixes, ",")
	result := make([]string, 0, len(prefixes))

	for _, prefix := range prefixes {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// PortalReturnURL builds the URL the payment processor sends users back to.
func (c *Config) PortalReturnURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/billing"
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
