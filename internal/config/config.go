// Package config loads runtime configuration from the environment (and an
// optional .env file).
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every knob the API server reads at startup.
type Config struct {
	Env      string
	HTTPAddr string
	BaseURL  string

	// Database
	DBDriver      string
	DBDSNPrimary  string
	DBDSNReadOnly string
	AdminEmail    string
	AdminPassword string

	// Auth
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string

	// Uploads
	UploadDir      string
	MaxUploadBytes int64

	// Per-user history caps
	ActivityLimit      int
	SearchHistoryLimit int

	// Audit retention
	AuditKeep          int
	AuditPruneInterval time.Duration

	// Event stream
	KafkaBrokers []string
	KafkaTopic   string

	// AI assistant
	GeminiAPIKey string
	GeminiModel  string

	ShutdownTimeout time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}

func listenv(key, def string) []string {
	raw := getenv(key, def)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads .env (if present) and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("could not load .env file, relying on system environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	primary := getenv("DB_DSN_PRIMARY", "relique.sqlite3")
	return Config{
		Env:      getenv("APP_ENV", "production"),
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),
		BaseURL:  strings.TrimRight(getenv("BASE_URL", "http://localhost:8080"), "/"),

		DBDriver:      getenv("DB_DRIVER", "sqlite"),
		DBDSNPrimary:  primary,
		DBDSNReadOnly: getenv("DB_DSN_READONLY", primary),
		AdminEmail:    getenv("ADMIN_EMAIL", ""),
		AdminPassword: getenv("ADMIN_PASSWORD", ""),

		JWTSecret:   getenv("JWT_SECRET", ""),
		TokenTTL:    time.Duration(atoienv("TOKEN_TTL_HOURS", 72)) * time.Hour,
		CORSOrigins: listenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001,http://localhost:3002"),

		UploadDir:      getenv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes: int64(atoienv("MAX_UPLOAD_MB", 10)) << 20,

		ActivityLimit:      atoienv("ACTIVITY_LIMIT", 20),
		SearchHistoryLimit: atoienv("SEARCH_HISTORY_LIMIT", 10),

		AuditKeep:          atoienv("AUDIT_KEEP", 5000),
		AuditPruneInterval: durenvs("AUDIT_PRUNE_INTERVAL_SECONDS", 3600),

		KafkaBrokers: listenv("KAFKA_BROKERS", ""),
		KafkaTopic:   getenv("KAFKA_TOPIC", "relique.activity"),

		GeminiAPIKey: getenv("GEMINI_API_KEY", ""),
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-1.5-flash"),

		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT_SECONDS", 15),
	}
}

// IsDevelopment reports whether the server runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate reports configuration that would leave the server unusable.
func (c Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		errs = append(errs, errors.New("DB_DRIVER must be one of mysql, postgres, sqlite"))
	}
	if c.DBDSNPrimary == "" {
		errs = append(errs, errors.New("DB_DSN_PRIMARY is not set"))
	}
	if c.JWTSecret == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	if c.ActivityLimit <= 0 || c.SearchHistoryLimit <= 0 || c.AuditKeep <= 0 {
		errs = append(errs, errors.New("history limits must be positive"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL_HOURS must be positive"))
	}
	if c.AuditPruneInterval <= 0 {
		errs = append(errs, errors.New("AUDIT_PRUNE_INTERVAL_SECONDS must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be positive"))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	return errors.Join(errs...)
}
