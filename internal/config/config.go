// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-dashboard/internal/logger"
)

// Storage drivers
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	// Core settings
	GRPCAddr string
	LogLevel string

	// Storage
	StorageDriver string
	DatabasePath  string // sqlite file
	DBConnStr     string // postgres DSN

	// Identity: HS256 secret used to verify caller JWTs
	JWTSecret string

	// Market data feed
	MarketDataBaseURL string
	MarketDataAPIKey  string
	MarketDataTimeout time.Duration
	MarketDataRPS     int
	QuoteCacheTTL     time.Duration
	VsCurrency        string

	// Domain tuning
	NotificationTTL       time.Duration
	NotificationSeedDelay time.Duration
	LargeExpenseThreshold decimal.Decimal
	Currency              string
}

// Load reads configuration from the environment or a .env file.
func Load() (*AppConfig, error) {
	// Try the current directory first, then the parent (running from cmd/...)
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil && !os.IsNotExist(err) {
			logger.L.Warn().Err(err).Msg("Error loading .env file, relying on OS environment")
		}
	}

	threshold, err := decimal.NewFromString(getEnv("LARGE_EXPENSE_THRESHOLD", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid LARGE_EXPENSE_THRESHOLD: %w", err)
	}

	cfg := &AppConfig{
		GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageSQLite)),
		DatabasePath:  getEnv("DATABASE_PATH", "./wealthflow.db"),
		DBConnStr:     postgresConnString(),

		JWTSecret: getEnv("JWT_SECRET", ""),

		MarketDataBaseURL: getEnv("MARKET_DATA_BASE_URL", "https://api.coingecko.com/api/v3"),
		MarketDataAPIKey:  getEnv("MARKET_DATA_API_KEY", ""),
		MarketDataTimeout: getEnvAsDuration("MARKET_DATA_TIMEOUT", 10*time.Second),
		MarketDataRPS:     getEnvAsInt("MARKET_DATA_RPS", 1),
		QuoteCacheTTL:     getEnvAsDuration("QUOTE_CACHE_TTL", 60*time.Second),
		VsCurrency:        strings.ToLower(getEnv("MARKET_DATA_VS_CURRENCY", "usd")),

		NotificationTTL:       getEnvAsDuration("NOTIFICATION_TTL", 7*24*time.Hour),
		NotificationSeedDelay: getEnvAsDuration("NOTIFICATION_SEED_DELAY", 0),
		LargeExpenseThreshold: threshold,
		Currency:              strings.ToUpper(getEnv("CURRENCY", "USD")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.L.Info().
		Str("grpc_addr", cfg.GRPCAddr).
		Str("storage", cfg.StorageDriver).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")
	return cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *AppConfig) Validate() error {
	switch c.StorageDriver {
	case StorageSQLite, StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.NotificationTTL <= 0 {
		return fmt.Errorf("NOTIFICATION_TTL must be positive")
	}
	if c.MarketDataRPS <= 0 {
		return fmt.Errorf("MARKET_DATA_RPS must be positive")
	}
	if c.LargeExpenseThreshold.IsNegative() {
		return fmt.Errorf("LARGE_EXPENSE_THRESHOLD must be non-negative")
	}
	return nil
}

// postgresConnString uses DB_CONN_STR, or builds it from individual vars (Docker friendly).
func postgresConnString() string {
	if dsn := os.Getenv("DB_CONN_STR"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "wealthflow"),
	)
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer or returns a fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	logger.L.Warn().Str("key", key).Str("value", valueStr).Int("default", fallback).Msg("Invalid integer value, using default")
	return fallback
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a fallback.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	logger.L.Warn().Str("key", key).Str("value", valueStr).Dur("default", fallback).Msg("Invalid duration value, using default")
	return fallback
}
