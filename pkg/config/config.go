package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/mourafe/radarb3/internal/contracts"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Upstream APIs
	Brapi BrapiConfig
	Yahoo YahooConfig

	// Universe fallback snapshot
	FallbackCSVPath string

	// Scan defaults (operator-tunable per request, clamped to bounds)
	Scan ScanConfig

	// Cache
	Cache CacheConfig
	Redis RedisConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// BrapiConfig holds brapi.dev listing API configuration
type BrapiConfig struct {
	BaseURL string
	Token   string // optional; anonymous access is rate limited
	Limit   int    // listing page size
	Timeout time.Duration
}

// YahooConfig holds the bulk price-history API configuration
type YahooConfig struct {
	BaseURL string
	Timeout time.Duration
	// Requests per second against the history endpoint (0 disables limiting)
	RateLimitRPS float64
}

// ScanConfig holds default scan parameters and fetch tuning
type ScanConfig struct {
	Weeks        int
	MinReturnPct float64
	BatchSize    int
	Interval     string // sampling interval, e.g. "1d"
	Workers      int    // concurrent in-flight batch requests
}

// CacheConfig holds cache TTLs: minutes for prices, an hour for the primary
// listing, a day for the resolved universe.
type CacheConfig struct {
	PricesTTL          time.Duration
	PrimaryUniverseTTL time.Duration
	UniverseTTL        time.Duration
}

// RedisConfig holds the optional Redis cache backend configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// SchedulerConfig holds the periodic scan job configuration
type SchedulerConfig struct {
	Enabled bool
	// Cron spec with seconds field, e.g. "0 0 7 * * MON-FRI"
	ScanSchedule string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8087"),
		Env:  getEnv("ENV", "development"),

		Brapi: BrapiConfig{
			BaseURL: getEnv("BRAPI_BASE_URL", "https://brapi.dev"),
			Token:   getEnv("BRAPI_TOKEN", ""),
			Limit:   getEnvAsInt("BRAPI_LIST_LIMIT", 10000),
			Timeout: getEnvAsDuration("BRAPI_TIMEOUT", "30s"),
		},

		Yahoo: YahooConfig{
			BaseURL:      getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			Timeout:      getEnvAsDuration("YAHOO_TIMEOUT", "60s"),
			RateLimitRPS: getEnvAsFloat("YAHOO_RATE_LIMIT_RPS", 4),
		},

		FallbackCSVPath: getEnv("UNIVERSE_FALLBACK_CSV", "data/tickers_fallback.csv"),

		Scan: ScanConfig{
			Weeks:        getEnvAsInt("SCAN_WEEKS", contracts.DefaultWeeks),
			MinReturnPct: getEnvAsFloat("SCAN_MIN_RETURN_PCT", contracts.DefaultMinReturn),
			BatchSize:    getEnvAsInt("SCAN_BATCH_SIZE", contracts.DefaultBatchSize),
			Interval:     getEnv("SCAN_INTERVAL", "1d"),
			Workers:      getEnvAsInt("SCAN_WORKERS", 4),
		},

		Cache: CacheConfig{
			PricesTTL:          getEnvAsDuration("CACHE_PRICES_TTL", "30m"),
			PrimaryUniverseTTL: getEnvAsDuration("CACHE_PRIMARY_UNIVERSE_TTL", "1h"),
			UniverseTTL:        getEnvAsDuration("CACHE_UNIVERSE_TTL", "24h"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Scheduler: SchedulerConfig{
			Enabled:      getEnvAsBool("SCHEDULER_ENABLED", false),
			ScanSchedule: getEnv("SCHEDULER_SCAN_CRON", "0 0 19 * * MON-FRI"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultScanParams returns the configured scan parameters, clamped to the
// operator bounds so a bad .env cannot push the pipeline out of range.
func (c *Config) DefaultScanParams() contracts.Params {
	return contracts.Params{
		Weeks:        c.Scan.Weeks,
		MinReturnPct: c.Scan.MinReturnPct,
		BatchSize:    c.Scan.BatchSize,
	}.Clamped()
}

// validate checks configuration invariants
func (c *Config) validate() error {
	if c.Brapi.BaseURL == "" {
		return fmt.Errorf("config: BRAPI_BASE_URL must not be empty")
	}
	if c.Yahoo.BaseURL == "" {
		return fmt.Errorf("config: YAHOO_BASE_URL must not be empty")
	}
	if c.Scan.Workers < 1 {
		return fmt.Errorf("config: SCAN_WORKERS must be >= 1, got %d", c.Scan.Workers)
	}
	if c.Scan.Interval == "" {
		return fmt.Errorf("config: SCAN_INTERVAL must not be empty")
	}
	return nil
}

// loadEnvFile tries to load a .env file from common locations.
// Missing files are fine; real deployments use actual environment variables.
func loadEnvFile() {
	candidates := []string{
		".env",
		filepath.Join("..", ".env"),
		filepath.Join("..", "..", ".env"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

// getEnv reads an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as int with a default value
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

// getEnvAsFloat reads an environment variable as float64 with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool reads an environment variable as bool with a default value
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

// getEnvAsDuration reads an environment variable as time.Duration
func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		fallback, _ := time.ParseDuration(defaultValue)
		return fallback
	}
	return value
}
