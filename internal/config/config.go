// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	Addr        string
	DatabaseURL string
	BaseURL     string
	WebDir      string

	// DevMode runs against in-memory storage and disables the database.
	DevMode bool

	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:        env("ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		BaseURL:     env("BASE_URL", "http://localhost:8080"),
		WebDir:      env("WEB_DIR", "web"),
		DevMode:     os.Getenv("DEV_MODE") == "1",

		OIDCIssuer:       os.Getenv("OIDC_ISSUER"),
		OIDCClientID:     os.Getenv("OIDC_CLIENT_ID"),
		OIDCClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
		OIDCRedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
	}

	if !cfg.DevMode && cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required unless DEV_MODE=1")
	}
	return cfg, nil
}

// OIDCEnabled reports whether all fields needed for single sign-on are set.
func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != "" && c.OIDCClientSecret != "" && c.OIDCRedirectURL != ""
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
