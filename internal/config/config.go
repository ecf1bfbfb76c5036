// Package config loads application configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// Server settings
	ServerPort string
	WebDir     string
	Env        string
	// CookieSecure marks the session cookie Secure. Defaults to true when
	// ENV is "production"; COOKIE_SECURE=1 or =0 overrides either way.
	CookieSecure bool

	// Shared board secret. BoardPasswordHash, when set, is a bcrypt hash
	// and takes precedence over the plain BoardPassword.
	BoardPassword     string
	BoardPasswordHash string

	// Server-side salt for trip badge derivation.
	TripSalt string

	// Store selects the backing store: "file" (default), "postgres", or
	// "sqlite".
	Store        string
	DataDir      string
	PresenceFile string
	MessagesFile string
	DatabaseURL  string
	SQLitePath   string

	// CORS settings
	AllowedOrigins []string
}

// Load loads configuration from environment variables.
func Load() Config {
	dataDir := envOr("DATA_DIR", "data")

	env := envOr("ENV", "development")
	cookieSecure := env == "production"
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		cookieSecure = v == "1"
	}

	cfg := Config{
		ServerPort:        envOr("SERVER_PORT", "8080"),
		WebDir:            envOr("WEB_DIR", "web"),
		Env:               env,
		CookieSecure:      cookieSecure,
		BoardPassword:     os.Getenv("BOARD_PASSWORD"),
		BoardPasswordHash: os.Getenv("BOARD_PASSWORD_HASH"),
		TripSalt:          os.Getenv("TRIP_SALT"),
		Store:             envOr("STORE", "file"),
		DataDir:           dataDir,
		PresenceFile:      envOr("PRESENCE_FILE", filepath.Join(dataDir, "logged_in_users.json")),
		MessagesFile:      envOr("MESSAGES_FILE", filepath.Join(dataDir, "messages.json")),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SQLitePath:        envOr("SQLITE_PATH", filepath.Join(dataDir, "chatboard.db")),
	}

	origins := envOr("ALLOWED_ORIGINS", "http://localhost:8080")
	for _, o := range strings.Split(origins, ",") {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, strings.TrimSpace(o))
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
