package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string
	LogLevel    string

	// Database
	DatabaseURL string
	AutoMigrate bool

	// JWT (claims verification only, tokens are issued elsewhere)
	JWTSecret string

	// Background Workers
	WorkerCount int

	// CORS
	AllowedOrigins []string

	// Sentry
	SentryDSN string

	// Calendar
	Timezone   string
	DateLocale string

	// Reminder thresholds
	PaymentDueDays    int
	RenewalWindowDays int
	SweepConcurrency  int

	// Dispatch
	RedisURL            string
	AMQPURL             string
	NotifyExchange      string
	NotifyRatePerSecond float64
	NotifyBurst         int
	NotifyMaxAttempts   int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Environment:         getEnv("ENVIRONMENT", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		AutoMigrate:         getEnvAsBool("AUTO_MIGRATE", false),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		WorkerCount:         getEnvAsInt("WORKER_COUNT", 5),
		AllowedOrigins:      getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		SentryDSN:           getEnv("SENTRY_DSN", ""),
		Timezone:            getEnv("TIMEZONE", "Asia/Taipei"),
		DateLocale:          getEnv("DATE_LOCALE", "zh-TW"),
		PaymentDueDays:      getEnvAsInt("PAYMENT_DUE_DAYS", 5),
		RenewalWindowDays:   getEnvAsInt("RENEWAL_WINDOW_DAYS", 30),
		SweepConcurrency:    getEnvAsInt("SWEEP_CONCURRENCY", 8),
		RedisURL:            getEnv("REDIS_URL", ""),
		AMQPURL:             getEnv("AMQP_URL", ""),
		NotifyExchange:      getEnv("NOTIFY_EXCHANGE", "notifications"),
		NotifyRatePerSecond: getEnvAsFloat("NOTIFY_RATE_PER_SECOND", 5),
		NotifyBurst:         getEnvAsInt("NOTIFY_BURST", 1),
		NotifyMaxAttempts:   getEnvAsInt("NOTIFY_MAX_ATTEMPTS", 3),
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", cfg.Timezone, err)
	}

	if cfg.PaymentDueDays < 0 || cfg.RenewalWindowDays < 0 {
		return nil, fmt.Errorf("PAYMENT_DUE_DAYS and RENEWAL_WINDOW_DAYS must not be negative")
	}

	if cfg.SweepConcurrency < 1 {
		cfg.SweepConcurrency = 1
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	return cfg, nil
}

// Location returns the time zone that defines "today" for scheduled sweeps
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
