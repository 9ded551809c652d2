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
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional run log)
	Database DatabaseConfig

	// Redis (optional bar cache)
	Redis RedisConfig

	// Market data provider
	Alpaca AlpacaConfig

	// Candidate pipeline
	Pipeline PipelineConfig

	// Reference data file (empty = embedded default)
	RefDataPath string

	// Saved briefs for the scheduler
	BriefsPath string

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
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

// Enabled reports whether a run log database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// AlpacaConfig holds market data provider configuration
type AlpacaConfig struct {
	APIKey       string
	APISecret    string
	BaseURL      string // trading API (asset listing)
	DataURL      string // market data API (bars)
	Feed         string // iex | sip
	RatePerMin   int    // provider request budget
	FetchTimeout time.Duration
}

// PipelineConfig holds candidate pipeline bounds
type PipelineConfig struct {
	PreRankWindow  int           // pre-enrichment truncation
	MaxEnrichment  int           // hard cap on symbols enriched per request
	BatchSize      int           // concurrent fetches per batch
	BatchPause     time.Duration // pause between batches
	BatchTimeout   time.Duration
	CacheTTL       time.Duration
	RequestTimeout time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
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

		Alpaca: AlpacaConfig{
			APIKey:       getEnv("ALPACA_API_KEY", ""),
			APISecret:    getEnv("ALPACA_API_SECRET", ""),
			BaseURL:      getEnv("ALPACA_BASE_URL", "https://paper-api.alpaca.markets"),
			DataURL:      getEnv("ALPACA_DATA_URL", "https://data.alpaca.markets"),
			Feed:         getEnv("ALPACA_FEED", "iex"),
			RatePerMin:   getEnvAsInt("ALPACA_RATE_PER_MIN", 200),
			FetchTimeout: getEnvAsDuration("ALPACA_FETCH_TIMEOUT", "10s"),
		},

		Pipeline: PipelineConfig{
			PreRankWindow:  getEnvAsInt("PIPELINE_PRERANK_WINDOW", 300),
			MaxEnrichment:  getEnvAsInt("PIPELINE_MAX_ENRICHMENT", 150),
			BatchSize:      getEnvAsInt("PIPELINE_BATCH_SIZE", 15),
			BatchPause:     getEnvAsDuration("PIPELINE_BATCH_PAUSE", "250ms"),
			BatchTimeout:   getEnvAsDuration("PIPELINE_BATCH_TIMEOUT", "60s"),
			CacheTTL:       getEnvAsDuration("PIPELINE_CACHE_TTL", "10m"),
			RequestTimeout: getEnvAsDuration("PIPELINE_REQUEST_TIMEOUT", "5m"),
		},

		RefDataPath: getEnv("REFDATA_PATH", ""),
		BriefsPath:  getEnv("BRIEFS_PATH", "briefs.yaml"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
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

	if c.Alpaca.RatePerMin <= 0 {
		return fmt.Errorf("ALPACA_RATE_PER_MIN must be > 0")
	}

	p := c.Pipeline
	if p.BatchSize <= 0 {
		return fmt.Errorf("PIPELINE_BATCH_SIZE must be > 0")
	}
	if p.MaxEnrichment <= 0 || p.PreRankWindow <= 0 {
		return fmt.Errorf("PIPELINE_MAX_ENRICHMENT and PIPELINE_PRERANK_WINDOW must be > 0")
	}
	if p.MaxEnrichment > p.PreRankWindow {
		return fmt.Errorf("PIPELINE_MAX_ENRICHMENT (%d) must not exceed PIPELINE_PRERANK_WINDOW (%d)",
			p.MaxEnrichment, p.PreRankWindow)
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
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
