package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Payments PaymentsConfig
	Logging  LoggingConfig

	// Optional YAML fixture file loaded at server startup (empty = no seeding)
	SeedFile string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration (Asynq queues and login rate limiting)
type RedisConfig struct {
	Address string
}

// AuthConfig holds token issuance and login throttling configuration
type AuthConfig struct {
	JWTSecret string
	// TokenTTLMinutes is the access token lifetime (minutes)
	TokenTTLMinutes int
	// LoginRateMax is the number of passwordless client logins allowed per
	// phone number within LoginRateWindowSeconds
	LoginRateMax           int
	LoginRateWindowSeconds int
}

// PaymentsConfig holds payment settlement configuration
type PaymentsConfig struct {
	// SweepSchedule is a standard 5-field cron expression for the pending
	// payment expiry sweep, empty = sweep disabled
	SweepSchedule string
	// PendingMaxAgeMinutes is how long a payment may stay pending before the
	// sweep marks it failed
	PendingMaxAgeMinutes int
	// QRDir is where QR receipt PNGs are written
	QRDir string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	return &Config{
		Database: DatabaseConfig{
			URL: envOr("DATABASE_URL", "facilite.sqlite"),
		},
		Redis: RedisConfig{
			Address: envOr("REDIS_ADDRESS", "localhost:6379"),
		},
		Auth: AuthConfig{
			JWTSecret:              os.Getenv("JWT_SECRET"),
			TokenTTLMinutes:        envIntOr("TOKEN_TTL_MINUTES", 60),
			LoginRateMax:           envIntOr("LOGIN_RATE_MAX", 5),
			LoginRateWindowSeconds: envIntOr("LOGIN_RATE_WINDOW_SECONDS", 60),
		},
		Payments: PaymentsConfig{
			SweepSchedule:        envOr("PAYMENT_SWEEP_SCHEDULE", "*/15 * * * *"),
			PendingMaxAgeMinutes: envIntOr("PAYMENT_PENDING_MAX_AGE_MINUTES", 30),
			QRDir:                envOr("QR_DIR", "static/qrcodes"),
		},
		Logging: LoggingConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
		SeedFile: os.Getenv("SEED_FILE"),
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
