package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the server and aggregation settings.
type Config struct {
	Host           string
	Port           string
	AllowedOrigins string

	// MaxParallel bounds how many source adapters fetch concurrently
	// within a single query.
	MaxParallel int

	// QueryTimeout is the overall deadline for one aggregation run,
	// covering every adapter fetch and any detail-page fallbacks.
	QueryTimeout time.Duration

	// SourceInterval is the minimum spacing between consecutive requests
	// to the same source.
	SourceInterval time.Duration

	// RequestsPerMinute is the per-client API rate limit.
	RequestsPerMinute float64

	// BrowserEnabled launches the headless browser at startup so that
	// render-backed adapters are available.
	BrowserEnabled bool

	// MaxWorkers bounds concurrent async search tasks.
	MaxWorkers int
}

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		Host:              getEnv("HOST", "0.0.0.0"),
		Port:              getEnv("PORT", "8080"),
		AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		MaxParallel:       getEnvInt("MAX_PARALLEL_SOURCES", 3),
		QueryTimeout:      getEnvDuration("QUERY_TIMEOUT", 45*time.Second),
		SourceInterval:    getEnvDuration("SOURCE_INTERVAL", 500*time.Millisecond),
		RequestsPerMinute: float64(getEnvInt("API_RATE_LIMIT", 60)),
		BrowserEnabled:    getEnvBool("BROWSER_ENABLED", false),
		MaxWorkers:        getEnvInt("MAX_SEARCH_WORKERS", 5),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
