/**
 * @description
 * Configuration loader for the RiskWatch backend.
 * Responsible for reading environment variables, setting defaults, and performing strict validation.
 *
 * @dependencies
 * - github.com/joho/godotenv: For loading .env files
 * - standard "os": For reading env vars
 * - standard "fmt": For error reporting
 *
 * @notes
 * - Fails fast if DATABASE_URL is missing.
 * - Upstream API keys are validated lazily by the job that needs them, so the API server
 *   can run read-only without any vendor credentials.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	DB          DBConfig
	Redis       RedisConfig
	Commodities CommoditiesConfig
	Fred        FredConfig
	Services    ServicesConfig
	Jobs        JobsConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
	Env  string // "development" or "production"
}

// DBConfig holds PostgreSQL settings
type DBConfig struct {
	URL string
}

// RedisConfig holds Redis settings
type RedisConfig struct {
	URL string
}

// CommoditiesConfig holds the commodity price API endpoint and key
type CommoditiesConfig struct {
	BaseURL string
	APIKey  string
}

// FredConfig holds the FRED economic data API endpoint and key
type FredConfig struct {
	BaseURL string
	APIKey  string
}

// ServicesConfig holds external service keys (AI summarization)
type ServicesConfig struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
}

// JobsConfig holds scheduler settings for the worker
type JobsConfig struct {
	TriggerSecret  string // Shared secret for on-demand job triggers over HTTP
	PriceIntervalM int    // Minutes between price refresh runs
	RiskIntervalM  int    // Minutes between risk recalculation runs
	SummaryHourUTC int    // Hour of day (UTC) for the daily AI summary
	HistoryDays    int    // Trailing window for history backfill and risk scoring
}

// Load reads .env file and populates the Config struct
func Load() (*Config, error) {
	// Attempt to load .env, but don't crash if it fails (prod might inject env vars directly)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("GO_ENV", "development"),
		},
		DB: DBConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Commodities: CommoditiesConfig{
			BaseURL: getEnv("COMMODITIES_API_URL", "https://commodities-api.com/api"),
			APIKey:  sanitizeCredential(getEnv("COMMODITIES_API_KEY", "")),
		},
		Fred: FredConfig{
			BaseURL: getEnv("FRED_API_URL", "https://api.stlouisfed.org/fred"),
			APIKey:  sanitizeCredential(getEnv("FRED_API_KEY", "")),
		},
		Services: ServicesConfig{
			OpenAIAPIKey:  sanitizeCredential(getEnv("OPENAI_API_KEY", "")),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://openrouter.ai/api/v1/chat/completions"),
			OpenAIModel:   getEnv("OPENAI_MODEL", "anthropic/claude-sonnet-4"),
		},
		Jobs: JobsConfig{
			TriggerSecret:  sanitizeCredential(getEnv("JOB_TRIGGER_SECRET", "")),
			PriceIntervalM: getEnvAsInt("PRICE_REFRESH_MINUTES", 60),
			RiskIntervalM:  getEnvAsInt("RISK_REFRESH_MINUTES", 60),
			SummaryHourUTC: getEnvAsInt("SUMMARY_HOUR_UTC", 6),
			HistoryDays:    getEnvAsInt("HISTORY_WINDOW_DAYS", 30),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks for required variables
func validate(cfg *Config) error {
	if cfg.DB.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Jobs.SummaryHourUTC < 0 || cfg.Jobs.SummaryHourUTC > 23 {
		return fmt.Errorf("SUMMARY_HOUR_UTC must be between 0 and 23")
	}
	if cfg.Commodities.APIKey == "" && cfg.Server.Env != "test" {
		// Warning only: the API server can run read-only; ingestion jobs fail individually.
		fmt.Println("Warning: COMMODITIES_API_KEY is missing. Price ingestion jobs will fail.")
	}
	return nil
}

// Helper to get env var with default
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func sanitizeCredential(value string) string {
	trimmed := strings.TrimSpace(value)
	return strings.Trim(trimmed, "\"")
}

// Helper to get env var as int
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
