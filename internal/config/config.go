// Package config loads lk settings from the config file, a .env file
// and LK_* environment variables, in that order of precedence (lowest
// first).
package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Backend names.
const (
	BackendSQLite    = "sqlite"
	BackendJSON      = "json"
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendRemote    = "remote"
)

// Duration is a time.Duration stored as a string such as "300ms".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Config holds application configuration.
type Config struct {
	Backend              string   `json:"backend"`
	DataDir              string   `json:"dataDir"`
	SQLitePath           string   `json:"sqlitePath,omitempty"`
	JSONPath             string   `json:"jsonPath,omitempty"`
	FirestoreProject     string   `json:"firestoreProject,omitempty"`
	FirestoreCredentials string   `json:"firestoreCredentials,omitempty"`
	PostgresURL          string   `json:"postgresUrl,omitempty"`
	RemoteURL            string   `json:"remoteUrl,omitempty"`
	ServerAddr           string   `json:"serverAddr"`
	JWTSecret            string   `json:"jwtSecret"`
	TokenTTL             Duration `json:"tokenTtl"`
	CORSOrigins          []string `json:"corsOrigins"`
	LogLevel             string   `json:"logLevel"`
	LogFormat            string   `json:"logFormat"`
	SearchDebounce       Duration `json:"searchDebounce"`
	UndoTimeout          Duration `json:"undoTimeout"`
}

// DefaultConfig returns the default configuration rooted at dataDir.
func DefaultConfig(dataDir string) Config {
	return Config{
		Backend:        BackendSQLite,
		DataDir:        dataDir,
		ServerAddr:     ":8080",
		TokenTTL:       Duration(24 * time.Hour),
		CORSOrigins:    []string{"*"},
		LogLevel:       "info",
		LogFormat:      "text",
		SearchDebounce: Duration(300 * time.Millisecond),
		UndoTimeout:    Duration(4 * time.Second),
	}
}

// SQLiteFile returns the database path, defaulting into DataDir.
func (c *Config) SQLiteFile() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return filepath.Join(c.DataDir, "linkkoy.db")
}

// JSONFile returns the JSON store path, defaulting into DataDir.
func (c *Config) JSONFile() string {
	if c.JSONPath != "" {
		return c.JSONPath
	}
	return filepath.Join(c.DataDir, "linkkoy.json")
}

// SessionFile returns the path of the persisted session.
func (c *Config) SessionFile() string {
	return filepath.Join(c.DataDir, "session.json")
}

// LogDir returns the directory for log files written while the TUI runs.
func (c *Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// Validate checks settings that depend on the chosen backend.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendJSON, BackendMemory:
	case BackendFirestore:
		if c.FirestoreProject == "" {
			return errors.New("firestore backend requires firestoreProject")
		}
	case BackendPostgres:
		if c.PostgresURL == "" {
			return errors.New("postgres backend requires postgresUrl")
		}
	case BackendRemote:
		if c.RemoteURL == "" {
			return errors.New("remote backend requires remoteUrl")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	defaults := DefaultConfig(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := defaults
			config.JWTSecret = randomSecret()
			// Non-fatal: defaults are still usable if the file can't be written
			_ = SaveConfig(path, &config)
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("while parsing %s: %w", path, err)
	}

	// Apply defaults for missing fields
	if config.Backend == "" {
		config.Backend = defaults.Backend
	}
	if config.DataDir == "" {
		config.DataDir = defaults.DataDir
	}
	if config.ServerAddr == "" {
		config.ServerAddr = defaults.ServerAddr
	}
	if config.TokenTTL == 0 {
		config.TokenTTL = defaults.TokenTTL
	}
	if config.CORSOrigins == nil {
		config.CORSOrigins = defaults.CORSOrigins
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.LogFormat == "" {
		config.LogFormat = defaults.LogFormat
	}
	if config.SearchDebounce == 0 {
		config.SearchDebounce = defaults.SearchDebounce
	}
	if config.UndoTimeout == 0 {
		config.UndoTimeout = defaults.UndoTimeout
	}

	return &config, nil
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	// The file carries the token signing secret.
	return os.WriteFile(path, data, 0600)
}

// DefaultConfigFilePath returns the default config path: ~/.config/lk/config.json
func DefaultConfigFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "lk", "config.json"), nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return hex.EncodeToString(b)
}
