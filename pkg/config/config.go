package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 所有环境变量只在这里读取
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Market data provider
	Provider ProviderConfig

	// Analysis defaults
	Analysis AnalysisConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ProviderConfig holds market data provider configuration
type ProviderConfig struct {
	QuoteBaseURL string // 行情快照接口
	ChartBaseURL string // K线接口
	ListBaseURL  string // 股票列表页
	UserAgent    string
	RatePerSec   float64 // 请求限速 (req/s)
}

// AnalysisConfig holds defaults for the daily recommendation run
type AnalysisConfig struct {
	TopN      int
	OutputDir string
	CronSpec  string // daily-recommend job schedule
	SaveToDB  bool
	KlineDays int // history window for single-stock analysis
}

// Load reads configuration from environment variables
// ⭐ SSOT: 只有这个函数调用 os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Market data provider
		Provider: ProviderConfig{
			QuoteBaseURL: getEnv("PROVIDER_QUOTE_BASE_URL", "https://push2.eastmoney.com"),
			ChartBaseURL: getEnv("PROVIDER_CHART_BASE_URL", "https://push2his.eastmoney.com"),
			ListBaseURL:  getEnv("PROVIDER_LIST_BASE_URL", "https://quote.eastmoney.com"),
			UserAgent:    getEnv("PROVIDER_USER_AGENT", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"),
			RatePerSec:   getEnvAsFloat("PROVIDER_RATE_PER_SEC", 5),
		},

		// Analysis defaults
		Analysis: AnalysisConfig{
			TopN:      getEnvAsInt("ANALYSIS_TOP_N", 10),
			OutputDir: getEnv("ANALYSIS_OUTPUT_DIR", "outputs/recommendations"),
			CronSpec:  getEnv("ANALYSIS_CRON_SPEC", "0 0 17 * * MON-FRI"),
			SaveToDB:  getEnvAsBool("ANALYSIS_SAVE_TO_DB", false),
			KlineDays: getEnvAsInt("ANALYSIS_KLINE_DAYS", 120),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Analysis.TopN <= 0 {
		return fmt.Errorf("ANALYSIS_TOP_N must be positive")
	}

	// DATABASE_URL is only needed when persistence is requested
	if c.Analysis.SaveToDB && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when ANALYSIS_SAVE_TO_DB is enabled")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
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
