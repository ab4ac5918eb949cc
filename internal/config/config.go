// Package config provides environment-driven configuration for auditkeeper.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Supported credential verifiers.
const (
	AuthProviderAPIKey = "apikey"
	AuthProviderOIDC   = "oidc"
)

// Config holds all application configuration values.
type Config struct {
	DatabaseURL        Secret        `env:"DATABASE_URL"`
	Port               string        `env:"PORT" envDefault:"3040"`
	ListenHost         string        `env:"LISTEN_HOST" envDefault:"127.0.0.1"`
	CORSOrigins        []string      `env:"CORS_ORIGINS" envDefault:"http://localhost:3002" envSeparator:","`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat          string        `env:"LOG_FORMAT" envDefault:"text"`
	DBMaxConns         int32         `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns         int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBStatementTimeout time.Duration `env:"DB_STATEMENT_TIMEOUT" envDefault:"30s"`
	AuthProvider       string        `env:"AUTH_PROVIDER" envDefault:"apikey"`
	OIDCIssuerURL      string        `env:"OIDC_ISSUER_URL"`
	OIDCClientID       string        `env:"OIDC_CLIENT_ID"`
	OIDCRoleClaim      string        `env:"OIDC_ROLE_CLAIM" envDefault:"role"`
	OIDCEmailClaim     string        `env:"OIDC_EMAIL_CLAIM" envDefault:"email"`
	RateLimit          float64       `env:"RATE_LIMIT" envDefault:"50"`
	RateBurst          int           `env:"RATE_BURST" envDefault:"100"`
	RunMigrations      bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	origins := cfg.CORSOrigins[:0]
	for _, o := range cfg.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.CORSOrigins = origins

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// PortNumber returns Port as an integer. Valid after Load.
func (c *Config) PortNumber() int {
	n, _ := strconv.Atoi(c.Port)
	return n
}
