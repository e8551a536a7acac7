// Package config loads application configuration from environment
// variables, optionally seeded from a .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the service.
type Config struct {
	Env  string
	Port string

	// PostgreSQL connection settings.
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWTSecret signs access tokens. Required outside local dev.
	JWTSecret string
	// AccessTokenTTL bounds how long an issued token stays valid.
	AccessTokenTTL time.Duration

	// RedisAddr is optional; when empty or unreachable, rate limiting
	// is disabled and the service degrades gracefully.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// AMQPURL is optional; when empty, booking events are not published.
	AMQPURL      string
	AMQPExchange string

	// RateLimitPerMinute caps write-heavy endpoints per client.
	RateLimitPerMinute int

	// StorageTimeout bounds every storage call made by a request.
	StorageTimeout time.Duration
}

// Load reads configuration, first from a .env file if one exists, then
// from the process environment. All values except JWT_SECRET have
// local-development defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "evently"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		AccessTokenTTL: getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "evently.bookings"),

		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 60),
		StorageTimeout:     getDuration("STORAGE_TIMEOUT", 5*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
