package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the config file, then applies .env and LK_* overrides.
func Load(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// .env is optional; existing environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Backend = getEnv("LK_BACKEND", cfg.Backend)
	cfg.DataDir = getEnv("LK_DATA_DIR", cfg.DataDir)
	cfg.SQLitePath = getEnv("LK_SQLITE_PATH", cfg.SQLitePath)
	cfg.JSONPath = getEnv("LK_JSON_PATH", cfg.JSONPath)
	cfg.FirestoreProject = getEnv("LK_FIRESTORE_PROJECT", cfg.FirestoreProject)
	cfg.FirestoreCredentials = getEnv("LK_FIRESTORE_CREDENTIALS", cfg.FirestoreCredentials)
	cfg.PostgresURL = getEnv("LK_POSTGRES_URL", cfg.PostgresURL)
	cfg.RemoteURL = getEnv("LK_REMOTE_URL", cfg.RemoteURL)
	cfg.ServerAddr = getEnv("LK_SERVER_ADDR", cfg.ServerAddr)
	cfg.JWTSecret = getEnv("LK_JWT_SECRET", cfg.JWTSecret)
	cfg.LogLevel = getEnv("LK_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LK_LOG_FORMAT", cfg.LogFormat)

	if origins := os.Getenv("LK_CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = strings.Split(origins, ",")
	}
	cfg.TokenTTL = getDuration("LK_TOKEN_TTL", cfg.TokenTTL)
	cfg.SearchDebounce = getDuration("LK_SEARCH_DEBOUNCE", cfg.SearchDebounce)
	cfg.UndoTimeout = getDuration("LK_UNDO_TIMEOUT", cfg.UndoTimeout)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration ignores values that do not parse.
func getDuration(key string, defaultValue Duration) Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return Duration(d)
}
