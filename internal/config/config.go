package config

import (
	"os"
	"strconv"
)

// Config holds all server configuration, loaded from environment variables.
type Config struct {
	DatabaseURL    string
	ServerPort     string
	Env            string
	JWTSecret      string
	AllowedOrigins string
	LogLevel       string

	// Rate limit in ulule/limiter formatted notation, e.g. "100-M" = 100 req/min.
	RateLimit string

	Redis RedisConfig
}

// RedisConfig configures the optional audit event publisher.
// An empty Addr disables redis entirely.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	AuditChannel string
}

// Load reads configuration from the environment with development defaults.
// DATABASE_URL and JWT_SECRET have no defaults and must be set.
func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		Env:            getEnv("APP_ENV", "development"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RateLimit:      getEnv("RATE_LIMIT", "300-M"),
		Redis: RedisConfig{
			Addr:         os.Getenv("REDIS_ADDR"),
			Password:     os.Getenv("REDIS_PASSWORD"),
			DB:           redisDB,
			AuditChannel: getEnv("AUDIT_CHANNEL", "orderhub.audit"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
