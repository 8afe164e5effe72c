package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults for token lifetimes. The pending token outlives a single TOTP step
// but never a forgotten browser tab; the session token matches the original
// deployment's 30 minute window.
const (
	DefaultPendingTokenTTL = 5 * time.Minute
	DefaultSessionTokenTTL = 30 * time.Minute
)

// SMTP holds outbound mail configuration. An empty Host disables real
// delivery; the mailer then logs instead of sending.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Server captures process-wide configuration, initialized once at startup
// and read-only thereafter.
type Server struct {
	Addr            string
	Environment     string
	DatabaseURL     string
	JWTSigningKey   string
	PendingTokenTTL time.Duration
	SessionTokenTTL time.Duration

	// DiffComparison selects the governed-field equality rule: "loose"
	// coerces string-typed numbers, "strict" flags them as changes.
	DiffComparison string

	SMTP SMTP
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:            getenv("ETP_ADDR", ":8080"),
		Environment:     getenv("ETP_ENV", "development"),
		DiffComparison:  getenv("ETP_DIFF_COMPARISON", "loose"),
		DatabaseURL:     os.Getenv("ETP_DATABASE_URL"),
		JWTSigningKey:   getenv("ETP_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PendingTokenTTL: DefaultPendingTokenTTL,
		SessionTokenTTL: DefaultSessionTokenTTL,
		SMTP: SMTP{
			Host:     os.Getenv("ETP_SMTP_HOST"),
			Port:     getenvInt("ETP_SMTP_PORT", 465),
			Username: os.Getenv("ETP_SMTP_USERNAME"),
			Password: os.Getenv("ETP_SMTP_PASSWORD"),
			From:     getenv("ETP_SMTP_FROM", "no-reply@eventtravelplanner.local"),
		},
	}

	if d, err := time.ParseDuration(os.Getenv("ETP_PENDING_TOKEN_TTL")); err == nil && d > 0 {
		cfg.PendingTokenTTL = d
	}
	if d, err := time.ParseDuration(os.Getenv("ETP_SESSION_TOKEN_TTL")); err == nil && d > 0 {
		cfg.SessionTokenTTL = d
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
