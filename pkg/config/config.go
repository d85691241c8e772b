package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Data source kinds
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
	SourceHTTP     = "http"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Raw table source
	Data DataConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Analysis parameters
	Analysis AnalysisConfig

	// Feature cache
	Cache CacheConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DataConfig selects where the raw customers/orders/payments tables come from
type DataConfig struct {
	Source        string // csv, postgres, http
	CustomersPath string
	OrdersPath    string
	PaymentsPath  string
	BaseURL       string // http source: serves the three CSV files
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

// AnalysisConfig holds the pipeline parameters read from the environment.
// An optional YAML file (ConfigPath) takes precedence, see internal/pipelineconfig.
type AnalysisConfig struct {
	ChurnThresholdDays int
	ValidStatus        []string
	HistogramBins      int
	TopRiskSize        int
	ConfigPath         string
}

// CacheConfig controls the in-memory feature snapshot and the shared summary cache
type CacheConfig struct {
	Enabled    bool
	SummaryTTL time.Duration
}

// SchedulerConfig holds the refresh job configuration
type SchedulerConfig struct {
	RefreshSchedule string // cron spec with seconds
	MaxRetries      int
	RetryDelay      time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	dataDir := getEnv("DATA_DIR", "data")

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "5000"),
		Env:  getEnv("ENV", "development"),

		Data: DataConfig{
			Source:        strings.ToLower(getEnv("DATA_SOURCE", SourceCSV)),
			CustomersPath: getEnv("PATH_CUSTOMERS", filepath.Join(dataDir, "olist_customers_dataset.csv")),
			OrdersPath:    getEnv("PATH_ORDERS", filepath.Join(dataDir, "olist_orders_dataset.csv")),
			PaymentsPath:  getEnv("PATH_PAYMENTS", filepath.Join(dataDir, "olist_order_payments_dataset.csv")),
			BaseURL:       getEnv("DATA_BASE_URL", ""),
		},

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
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

		Analysis: AnalysisConfig{
			ChurnThresholdDays: getEnvAsInt("CHURN_THRESHOLD_DAYS", 270),
			ValidStatus:        getEnvAsList("VALID_STATUS", []string{"delivered"}),
			HistogramBins:      getEnvAsInt("RECENCY_HIST_BINS", 20),
			TopRiskSize:        getEnvAsInt("TOP_RISK_SIZE", 50),
			ConfigPath:         getEnv("ANALYSIS_CONFIG", ""),
		},

		Cache: CacheConfig{
			Enabled:    getEnvAsBool("CACHE_ENABLED", true),
			SummaryTTL: getEnvAsDuration("SUMMARY_CACHE_TTL", "10m"),
		},

		Scheduler: SchedulerConfig{
			RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 0 3 * * *"), // 매일 03:00
			MaxRetries:      getEnvAsInt("REFRESH_MAX_RETRIES", 0),
			RetryDelay:      getEnvAsDuration("REFRESH_RETRY_DELAY", "1m"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Data.Source {
	case SourceCSV:
	case SourcePostgres:
		// Database URL is required only for the postgres source
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_SOURCE=postgres")
		}
	case SourceHTTP:
		if c.Data.BaseURL == "" {
			return fmt.Errorf("DATA_BASE_URL is required when DATA_SOURCE=http")
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be one of: csv, postgres, http")
	}

	if c.Analysis.ChurnThresholdDays <= 0 {
		return fmt.Errorf("CHURN_THRESHOLD_DAYS must be > 0")
	}
	if len(c.Analysis.ValidStatus) == 0 {
		return fmt.Errorf("VALID_STATUS must list at least one status")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
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
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	values := make([]string, 0)
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return defaultValue
	}
	return values
}
