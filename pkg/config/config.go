// Package config loads Daybreak configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// HTTP
	ListenAddr   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Database. Driver is selected from DATABASE_URL: postgres:// URLs use
	// pgx, anything else is treated as a SQLite path.
	DatabaseURL string

	// Redis (optional). When set, plan generation takes a Redis advisory
	// lock per (user, date) instead of an in-process one.
	RedisURL string

	// RabbitMQ (optional). When set, domain events are published to the
	// broker; otherwise they stay on the in-process bus.
	RabbitMQURL string

	// Planning engine
	ModelPath          string
	FeedbackFetchLimit int
	PlanLockTTL        time.Duration
}

// Load loads configuration from environment variables, reading .env first
// when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ListenAddr:   getEnv("DAYBREAK_ADDR", "0.0.0.0:8080"),
		ReadTimeout:  getDurationEnv("DAYBREAK_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getDurationEnv("DAYBREAK_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:  getDurationEnv("DAYBREAK_IDLE_TIMEOUT", 60*time.Second),

		DatabaseURL: getEnv("DATABASE_URL", "daybreak.db"),
		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		ModelPath:          getEnv("DAYBREAK_MODEL_PATH", ""),
		FeedbackFetchLimit: getIntEnv("DAYBREAK_FEEDBACK_LIMIT", 500),
		PlanLockTTL:        getDurationEnv("DAYBREAK_PLAN_LOCK_TTL", 30*time.Second),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
