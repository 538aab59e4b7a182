// Package config loads the server's environment-derived settings.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the process-wide configuration, populated once at startup.
type Config struct {
	HTTPAddr            string
	AllowedOrigins      []string
	MaxNameLength       int
	TopScoreDatabaseURL string
	LogLevel            string
}

const defaultMaxNameLength = 16

// Load reads configuration from the environment, applying defaults for
// anything optional. It never fails: a missing TopScoreDatabaseURL just
// means the top-score sink degrades to a no-op (see internal/topscore).
func Load() Config {
	cfg := Config{
		HTTPAddr:            getenv("HTTP_ADDR", ":5000"),
		MaxNameLength:       defaultMaxNameLength,
		TopScoreDatabaseURL: os.Getenv("TOPSCORE_DATABASE_URL"),
		LogLevel:            getenv("LOG_LEVEL", "info"),
	}

	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		cfg.AllowedOrigins = strings.Split(raw, ",")
	}

	if raw := os.Getenv("MAX_NAME_LENGTH"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.MaxNameLength = n
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
