package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server (artifact API)
	Port string
	Env  string // development, staging, production

	// Database (optional cycle history)
	Database DatabaseConfig

	// Redis (optional cross-process cache tier)
	Redis RedisConfig

	// Market data providers
	Yahoo    ProviderConfig
	Stooq    ProviderConfig
	Newswire NewswireConfig

	// Fetcher
	Fetcher FetcherConfig

	// Pipeline
	Pipeline PipelineConfig

	// Paths
	StrategyPath  string // universe/strategy YAML
	ReportDir     string // CSV/JSON artifacts
	ModelStoreDir string // per-symbol trained model artifacts

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ProviderConfig holds a market-data provider endpoint.
type ProviderConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewswireConfig holds the news/disclosure feed endpoint.
type NewswireConfig struct {
	BaseURL string
	Timeout time.Duration
}

// FetcherConfig holds cache and rate-budget settings shared by all workers.
type FetcherConfig struct {
	CacheTTL        time.Duration
	CallsPerMinute  int
	CallsPerDay     int
	ProviderRetries int
}

// PipelineConfig holds orchestration settings.
type PipelineConfig struct {
	Workers      int
	Schedule     string // cron expression for the overnight run
	DrainTimeout time.Duration
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8087"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Yahoo: ProviderConfig{
			BaseURL: getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			Timeout: getEnvAsDuration("YAHOO_TIMEOUT", "10s"),
		},
		Stooq: ProviderConfig{
			BaseURL: getEnv("STOOQ_BASE_URL", "https://stooq.com"),
			Timeout: getEnvAsDuration("STOOQ_TIMEOUT", "10s"),
		},
		Newswire: NewswireConfig{
			BaseURL: getEnv("NEWSWIRE_BASE_URL", "https://www.investegate.co.uk"),
			Timeout: getEnvAsDuration("NEWSWIRE_TIMEOUT", "10s"),
		},

		Fetcher: FetcherConfig{
			CacheTTL:        getEnvAsDuration("FETCH_CACHE_TTL", "4h"),
			CallsPerMinute:  getEnvAsInt("FETCH_CALLS_PER_MINUTE", 30),
			CallsPerDay:     getEnvAsInt("FETCH_CALLS_PER_DAY", 2000),
			ProviderRetries: getEnvAsInt("FETCH_PROVIDER_RETRIES", 1),
		},

		Pipeline: PipelineConfig{
			Workers:      getEnvAsInt("PIPELINE_WORKERS", 3),
			Schedule:     getEnv("PIPELINE_SCHEDULE", "0 30 21 * * MON-FRI"),
			DrainTimeout: getEnvAsDuration("PIPELINE_DRAIN_TIMEOUT", "30s"),
		},

		StrategyPath:  getEnv("STRATEGY_PATH", "config/universe.yaml"),
		ReportDir:     getEnv("REPORT_DIR", "out/reports"),
		ModelStoreDir: getEnv("MODEL_STORE_DIR", "models"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks required configuration values.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("PIPELINE_WORKERS must be at least 1")
	}

	if c.Fetcher.CallsPerMinute < 1 || c.Fetcher.CallsPerDay < 1 {
		return fmt.Errorf("fetch call budgets must be positive")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
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
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
