package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Haraj      HarajConfig
	Search     SearchConfig
	Retry      RetryConfig
	Dialogue   DialogueConfig
	PostgreSQL PostgreSQLConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// HarajConfig holds the Haraj GraphQL endpoint configuration
type HarajConfig struct {
	GraphQLURL  string
	UserAgent   string // Haraj asks callers to identify themselves
	AccessToken string // optional bearer token
	Timeout     int    // seconds
}

// SearchConfig holds search-related configuration
type SearchConfig struct {
	Page         int
	Limit        int
	DisplayLimit int
}

// RetryConfig holds rate-limit backoff configuration
type RetryConfig struct {
	MaxRetries int
	BaseDelay  int // milliseconds
	MaxDelay   int // milliseconds
}

// DialogueConfig selects the conversation mode
type DialogueConfig struct {
	Mode string // off, guided or onboarding
}

// PostgreSQLConfig holds the optional turn-log database configuration
type PostgreSQLConfig struct {
	DSN                string
	MaxConnections     int
	MaxIdleConnections int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Haraj: HarajConfig{
			GraphQLURL:  getEnv("HARAJ_GRAPHQL_URL", "https://graphql.haraj.com.sa"),
			UserAgent:   getEnv("USER_AGENT", ""),
			AccessToken: getEnv("HARAJ_ACCESS_TOKEN", ""),
			Timeout:     getEnvAsInt("HARAJ_TIMEOUT", 20),
		},
		Search: SearchConfig{
			Page:         getEnvAsInt("SEARCH_PAGE", 1),
			Limit:        getEnvAsInt("SEARCH_LIMIT", 10),
			DisplayLimit: getEnvAsInt("SEARCH_DISPLAY_LIMIT", 5),
		},
		Retry: RetryConfig{
			MaxRetries: getEnvAsInt("RETRY_MAX_RETRIES", 4),
			BaseDelay:  getEnvAsInt("RETRY_BASE_DELAY_MS", 1000),
			MaxDelay:   getEnvAsInt("RETRY_MAX_DELAY_MS", 10000),
		},
		Dialogue: DialogueConfig{
			Mode: getEnv("DIALOGUE_MODE", "off"),
		},
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
	}

	return cfg, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}
