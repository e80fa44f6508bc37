package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration, populated from environment
// variables. Values are read once at boot; the struct is treated as
// read-only afterwards.
type Config struct {
	Env        string
	Version    string
	ServerPort string

	// Database
	DBDriver string // sqlite, mysql, postgres
	DBPath   string // sqlite file path
	DBDSN    string // mysql/postgres DSN

	// Auth
	JWTSecret      string
	JWTExpiryHours int
	GoogleAudience string // OAuth client id for Google sign-in; empty disables it

	// Storage
	StorageProvider  string // local, s3
	StoragePath      string
	StorageBaseURL   string
	StorageAccessKey string
	StorageSecretKey string
	StorageEndpoint  string
	StorageBucket    string
	StorageRegion    string

	// Email
	EmailProvider    string // sendgrid, postmark, none
	EmailAPIKey      string
	EmailFromAddress string

	WebSocketEnabled bool

	Middleware MiddlewareConfig
}

// MiddlewareConfig controls the globally applied middleware.
type MiddlewareConfig struct {
	CORSEnabled    bool
	CORSOrigins    []string
	LoggingSkipped []string // path prefixes excluded from request logging
}

// IsLoggingRequired reports whether requests to path should be logged.
func (m *MiddlewareConfig) IsLoggingRequired(path string) bool {
	for _, prefix := range m.LoggingSkipped {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// NewConfig reads configuration from the environment, applying defaults
// suitable for local development.
func NewConfig() *Config {
	return &Config{
		Env:        getEnv("APP_ENV", "development"),
		Version:    getEnv("APP_VERSION", "1.0.0"),
		ServerPort: normalizePort(getEnv("SERVER_PORT", ":8100")),

		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBPath:   getEnv("DB_PATH", "storage/plinth.db"),
		DBDSN:    getEnv("DB_DSN", ""),

		JWTSecret:      getEnv("JWT_SECRET", "plinth-dev-secret"),
		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),
		GoogleAudience: getEnv("GOOGLE_CLIENT_ID", ""),

		StorageProvider:  getEnv("STORAGE_PROVIDER", "local"),
		StoragePath:      getEnv("STORAGE_PATH", "storage/uploads"),
		StorageBaseURL:   getEnv("STORAGE_BASE_URL", "/storage"),
		StorageAccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey: getEnv("STORAGE_SECRET_KEY", ""),
		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", ""),
		StorageBucket:    getEnv("STORAGE_BUCKET", ""),
		StorageRegion:    getEnv("STORAGE_REGION", "us-east-1"),

		EmailProvider:    getEnv("EMAIL_PROVIDER", "none"),
		EmailAPIKey:      getEnv("EMAIL_API_KEY", ""),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@localhost"),

		WebSocketEnabled: getEnvBool("WEBSOCKET_ENABLED", true),

		Middleware: MiddlewareConfig{
			CORSEnabled:    getEnvBool("CORS_ENABLED", true),
			CORSOrigins:    splitEnv("CORS_ALLOWED_ORIGINS"),
			LoggingSkipped: splitEnv("LOGGING_SKIPPED_PATHS"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func splitEnv(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizePort(port string) string {
	if !strings.HasPrefix(port, ":") {
		return ":" + port
	}
	return port
}
