// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`

	// Database Configuration
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Session Configuration
	// SessionDuration is the fixed lifetime of a session credential.
	// Configured in seconds (default one week); the Firebase session-cookie
	// API consumes it in milliseconds at the transport boundary.
	SessionDuration   time.Duration `mapstructure:"SESSION_DURATION_SECONDS"`
	SessionCookieName string        `mapstructure:"SESSION_COOKIE_NAME"`
	SessionBackend    string        `mapstructure:"SESSION_BACKEND"` // "firebase" or "local"
	SessionSigningKey string        `mapstructure:"SESSION_SIGNING_KEY"`

	// User Directory Configuration
	DirectoryBackend string `mapstructure:"DIRECTORY_BACKEND"` // "postgres" or "firestore"

	// Audit Configuration
	AuditRetentionDays int    `mapstructure:"AUDIT_RETENTION_DAYS"`
	AuditPruneSchedule string `mapstructure:"AUDIT_PRUNE_SCHEDULE"`

	// Firebase Configuration
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`

	// Elasticsearch Configuration (optional audit index)
	ElasticsearchURL string `mapstructure:"ELASTICSEARCH_URL"`
}

// IsProduction reports whether the server runs in release mode. Session
// cookies are marked Secure only in this mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	// Set default values
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "prepwise_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	// Session credential lifetime: one week.
	v.SetDefault("SESSION_DURATION_SECONDS", 60*60*24*7)
	v.SetDefault("SESSION_COOKIE_NAME", "session")
	v.SetDefault("SESSION_BACKEND", "firebase")
	v.SetDefault("SESSION_SIGNING_KEY", "")

	v.SetDefault("DIRECTORY_BACKEND", "postgres")

	v.SetDefault("AUDIT_RETENTION_DAYS", 90)
	v.SetDefault("AUDIT_PRUNE_SCHEDULE", "@daily")

	// Firebase
	v.SetDefault("FIREBASE_PROJECT_ID", "") // Optional
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")

	// Elasticsearch (empty disables the audit index)
	v.SetDefault("ELASTICSEARCH_URL", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.SessionDuration = time.Duration(v.GetInt("SESSION_DURATION_SECONDS")) * time.Second

	// Basic validation for critical configs
	if strings.TrimSpace(cfg.FirebaseServiceAccountKeyPath) == "" {
		return nil, fmt.Errorf("FATAL: FIREBASE_SERVICE_ACCOUNT_KEY_PATH is not set. This is required for Firebase Admin SDK initialization")
	}
	if _, err := os.Stat(cfg.FirebaseServiceAccountKeyPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("FATAL: Firebase service account key file specified in FIREBASE_SERVICE_ACCOUNT_KEY_PATH (%s) not found", cfg.FirebaseServiceAccountKeyPath)
	}

	switch cfg.SessionBackend {
	case "firebase", "local":
	default:
		return nil, fmt.Errorf("invalid SESSION_BACKEND %q: must be \"firebase\" or \"local\"", cfg.SessionBackend)
	}
	switch cfg.DirectoryBackend {
	case "postgres", "firestore":
	default:
		return nil, fmt.Errorf("invalid DIRECTORY_BACKEND %q: must be \"postgres\" or \"firestore\"", cfg.DirectoryBackend)
	}

	return &cfg, nil
}
