package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"pulse-backend/internal/screening"

	"github.com/joho/godotenv"
)

// Config collects everything read from the environment at startup.
type Config struct {
	Port      string
	JWTSecret string

	// MongoURI empty means the in-memory store is used.
	MongoURI string
	DBName   string

	BlockedTerms []string

	// Resend email delivery; unset API key falls back to the log notifier.
	ResendAPIKey    string
	FromEmail       string
	ModerationInbox string

	NotifyBuffer int
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// Load .env (ignore error in production — env vars set directly)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		MongoURI:        getEnv("MONGODB_URI", ""),
		DBName:          getEnv("DB_NAME", "pulse"),
		BlockedTerms:    splitTerms(getEnv("BLOCKED_TERMS", "")),
		ResendAPIKey:    getEnv("RESEND_API_KEY", ""),
		FromEmail:       getEnv("FROM_EMAIL", ""),
		ModerationInbox: getEnv("MODERATION_INBOX", ""),
		NotifyBuffer:    getEnvInt("NOTIFY_BUFFER", 64),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if len(cfg.BlockedTerms) == 0 {
		cfg.BlockedTerms = screening.DefaultBlockedTerms
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func splitTerms(raw string) []string {
	if raw == "" {
		return nil
	}
	var terms []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}
