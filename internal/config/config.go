// Package config loads environment-driven configuration.
//
// Configuration comes exclusively from environment variables, with a
// best-effort .env file load for local development (godotenv never fails the
// process — a missing .env is the normal case in deployment).
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration.
type Config struct {
	Port    int    // HTTP listen port
	DataDir string // storage root for the durable backend
	AppEnv  string // runtime mode flag ("development", "production")

	JWTSecret string // HMAC secret for bearer tokens; auth disabled if empty

	DeepSeekAPIKey  string // generation collaborator credentials
	DeepSeekBaseURL string
	DeepSeekModel   string
}

// Load reads configuration from the environment, applying defaults.
func Load() Config {
	// Best effort — .env is for local development only.
	_ = godotenv.Load()

	cfg := Config{
		Port:            8080,
		DataDir:         "data",
		AppEnv:          getenv("APP_ENV", "development"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		DeepSeekAPIKey:  os.Getenv("DEEPSEEK_API_KEY"),
		DeepSeekBaseURL: getenv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
		DeepSeekModel:   getenv("DEEPSEEK_MODEL", "deepseek-chat"),
	}

	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
