package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret         string
	JWTExpiry         time.Duration
	CronWebhookSecret string // Signs requests from the external sweep scheduler

	// HTTP
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	// Workflow
	Timezone      string
	Location      *time.Location // Calendar days for streaks are counted here
	SweepSchedule string         // cron spec, empty disables the in-process sweep
	SweepTimeout  time.Duration

	// Notifications
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN string

	// Card archive (optional, S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
	S3Prefix    string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Coachflow"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envString("APP_URL", "http://localhost:8090"),
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/coachflow.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret:         envRequired("JWT_SECRET"),
		JWTExpiry:         envDuration("JWT_EXPIRY", 24*time.Hour),
		CronWebhookSecret: envString("CRON_WEBHOOK_SECRET", ""),

		// HTTP
		RequestTimeout: envDuration("REQUEST_TIMEOUT", 30*time.Second),
		RateLimitRPS:   envFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 20),

		// Workflow
		Timezone:      envString("TIMEZONE", "UTC"),
		SweepSchedule: envString("SWEEP_SCHEDULE", "@every 5m"),
		SweepTimeout:  envDuration("SWEEP_TIMEOUT", 2*time.Minute),

		// Notifications (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "coach@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Card archive
		S3Region:    envString("S3_REGION", "us-east-1"),
		S3Bucket:    envString("S3_BUCKET", ""),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
		S3Prefix:    envString("S3_PREFIX", ""),
	}

	cfg.Location = loadLocation(cfg.Timezone)

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production deployments.
// Development logs notifications instead of sending them.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with notification log mode")
		os.Exit(1)
	}
	if cfg.CronWebhookSecret == "" {
		slog.Warn("CRON_WEBHOOK_SECRET not set, the sweep endpoint only accepts admin tokens")
	}
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("config invalid timezone, using UTC", "key", "TIMEZONE", "value", name)
		return time.UTC
	}
	return loc
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envFloat(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("config invalid float, using default", "key", key, "value", v, "default", def)
		return def
	}
	return f
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
