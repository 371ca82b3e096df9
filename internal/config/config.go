package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis (empty disables snapshots, idle tracking and the score feed)
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Sessions
	SessionTokenTTLMinutes int
	SessionIdleSeconds     int
	SessionStateTTLMinutes int
	IdleWorkerPollSeconds  int
	SnapshotEveryTicks     int
	RNGSeed                int64 // 0 seeds every session from the clock

	// Security
	JWTSecret      string
	AdminTokenHash string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "sqlite://tiltball.db"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Sessions
		SessionTokenTTLMinutes: getEnvInt("SESSION_TOKEN_TTL_MINUTES", 120),
		SessionIdleSeconds:     getEnvInt("SESSION_IDLE_SECONDS", 300),
		SessionStateTTLMinutes: getEnvInt("SESSION_STATE_TTL_MINUTES", 60),
		IdleWorkerPollSeconds:  getEnvInt("IDLE_WORKER_POLL_SECONDS", 15),
		SnapshotEveryTicks:     getEnvInt("SNAPSHOT_EVERY_TICKS", 300),
		RNGSeed:                getEnvInt64("RNG_SEED", 0),

		// Security
		JWTSecret:      getEnv("JWT_SECRET", "change-me-in-production"),
		AdminTokenHash: getEnv("ADMIN_TOKEN_HASH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
