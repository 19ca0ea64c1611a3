package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Parser    ParserConfig
	Assistant AssistantConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Export    ExportConfig
	Log       LogConfig
	Tracing   TracingConfig
}

type ParserConfig struct {
	// Timezone relative dates (昨天, 上周六) are resolved in.
	Timezone string
}

// AssistantConfig points at the optional remote analyzer. An empty Endpoint
// means offline parsing only.
type AssistantConfig struct {
	Endpoint           string
	APIKey             string
	Timeout            time.Duration
	RateLimitPerSecond float64
	RateLimitBurst     int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig enables the remote analysis cache when Address is set.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	CacheTTL time.Duration
}

type ExportConfig struct {
	// ArchiveDir enables archiving of every export when set.
	ArchiveDir string
	// OwnerID keys archived exports and saved records.
	OwnerID string
}

type LogConfig struct {
	Level string
}

// TracingConfig picks the span exporter: none or stdout (written to stderr).
type TracingConfig struct {
	Exporter    string
	ServiceName string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Parser: ParserConfig{
			Timezone: getEnv("GIFTLEDGER_TIMEZONE", "Asia/Shanghai"),
		},
		Assistant: AssistantConfig{
			Endpoint:           getEnv("ASSISTANT_ENDPOINT", ""),
			APIKey:             getEnv("ASSISTANT_API_KEY", ""),
			Timeout:            getEnvAsDuration("ASSISTANT_TIMEOUT", 8*time.Second),
			RateLimitPerSecond: getEnvAsFloat("ASSISTANT_RATE_LIMIT_PER_SECOND", 2),
			RateLimitBurst:     getEnvAsInt("ASSISTANT_RATE_LIMIT_BURST", 4),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "giftledger"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("ASSISTANT_CACHE_TTL", 6*time.Hour),
		},
		Export: ExportConfig{
			ArchiveDir: getEnv("EXPORT_ARCHIVE_DIR", ""),
			OwnerID:    getEnv("GIFTLEDGER_OWNER_ID", "00000000-0000-0000-0000-000000000001"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Tracing: TracingConfig{
			Exporter:    strings.ToLower(getEnv("OTEL_TRACES_EXPORTER", "none")),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "giftparse"),
		},
	}

	if _, err := cfg.Parser.Location(); err != nil {
		return nil, err
	}

	if cfg.Assistant.Endpoint != "" && cfg.Assistant.RateLimitPerSecond <= 0 {
		return nil, fmt.Errorf("ASSISTANT_RATE_LIMIT_PER_SECOND must be positive, got %v", cfg.Assistant.RateLimitPerSecond)
	}

	return cfg, nil
}

// Location loads the configured timezone.
func (c *ParserConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid GIFTLEDGER_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// SlogLevel maps the configured level name, defaulting to Info.
func (c *LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
