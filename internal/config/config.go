/**
 * @description
 * Configuration loader for Sharpline Backend.
 * Responsible for reading environment variables, setting defaults, and performing strict validation.
 *
 * @dependencies
 * - github.com/joho/godotenv: For loading .env files
 * - standard "os": For reading env vars
 * - standard "fmt": For error reporting
 *
 * @notes
 * - Fails fast if critical variables (Database URL) are missing.
 * - Uses a Singleton-like pattern where Load() returns a Config struct.
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
	Server   ServerConfig
	DB       DBConfig
	Redis    RedisConfig
	OddsFeed OddsFeedConfig
	Services ServicesConfig
	Jobs     JobsConfig
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

// OddsFeedConfig holds the sportsbook odds scraper settings
type OddsFeedConfig struct {
	BaseURL string
	Token   string
	Actor   string // actor slug of the sportsbook odds scraper
}

// ServicesConfig holds external service keys (AI, search)
type ServicesConfig struct {
	TavilyAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
}

// JobsConfig holds scheduled job settings for the worker
type JobsConfig struct {
	NBAHourUTC int // hour of day (UTC) the daily NBA job fires
	NFLHourUTC int // hour of day (UTC) the weekly NFL job fires (Tuesdays)
}

// Load reads .env file and populates the Config struct
func Load() (*Config, error) {
	// Attempt to load .env, but don't crash if it fails (k8s/prod might inject env vars directly)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "5169"),
			Env:  getEnv("GO_ENV", "development"),
		},
		DB: DBConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		OddsFeed: OddsFeedConfig{
			BaseURL: getEnv("ODDS_FEED_URL", "https://api.apify.com/v2"),
			Token:   sanitizeCredential(getEnv("ODDS_FEED_TOKEN", "")),
			Actor:   getEnv("ODDS_FEED_ACTOR", "harvest~sportsbook-odds-scraper"),
		},
		Services: ServicesConfig{
			TavilyAPIKey:  sanitizeCredential(getEnv("TAVILY_API_KEY", "")),
			OpenAIAPIKey:  sanitizeCredential(getEnv("OPENAI_API_KEY", "")),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://openrouter.ai/api/v1/chat/completions"),
			OpenAIModel:   getEnv("OPENAI_MODEL", "google/gemini-2.5-pro"),
		},
		Jobs: JobsConfig{
			NBAHourUTC: getEnvAsInt("NBA_JOB_HOUR_UTC", 11),
			NFLHourUTC: getEnvAsInt("NFL_JOB_HOUR_UTC", 12),
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
	if cfg.OddsFeed.Token == "" && cfg.Server.Env != "test" {
		// Warning: strictly required for schedule ingestion
		fmt.Println("Warning: ODDS_FEED_TOKEN is missing. Schedule ingestion will fail.")
	}
	if cfg.Jobs.NBAHourUTC < 0 || cfg.Jobs.NBAHourUTC > 23 {
		return fmt.Errorf("NBA_JOB_HOUR_UTC must be between 0 and 23")
	}
	if cfg.Jobs.NFLHourUTC < 0 || cfg.Jobs.NFLHourUTC > 23 {
		return fmt.Errorf("NFL_JOB_HOUR_UTC must be between 0 and 23")
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
