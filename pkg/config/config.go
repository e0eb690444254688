// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Notion   *NotionConfig
	Postgres *PostgresConfig

	// Sync settings
	MaxItemsPerSource  int
	MaxItemsPerSection int

	// Logging
	LogLevel  string
	LogFormat string
}

// NotionConfig holds Notion API client parameters. The access token itself
// is per-user and comes from the connection store, not from here.
type NotionConfig struct {
	BaseURL              string
	MaxRequestsPerSecond int
	RequestTimeout       time.Duration
}

// PostgresConfig holds PostgreSQL connection parameters
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Notion: &NotionConfig{
			BaseURL:              getEnv("NOTION_BASE_URL", "https://api.notion.com"),
			MaxRequestsPerSecond: getEnvAsInt("NOTION_MAX_REQUESTS_PER_SECOND", 3),
			RequestTimeout:       time.Duration(getEnvAsInt("NOTION_REQUEST_TIMEOUT_MS", 30000)) * time.Millisecond,
		},
		MaxItemsPerSource:  getEnvAsInt("SYNC_MAX_ITEMS_PER_SOURCE", 1000),
		MaxItemsPerSection: getEnvAsInt("PORTAL_MAX_ITEMS_PER_SECTION", 200),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
	}

	pgConfig, err := LoadPostgresConfig()
	if err != nil {
		return nil, errors.New("failed to load PostgreSQL configuration: " + err.Error())
	}
	cfg.Postgres = pgConfig

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadPostgresConfig loads PostgreSQL configuration from environment variables
func LoadPostgresConfig() (*PostgresConfig, error) {
	database := os.Getenv("POSTGRES_DB")
	if database == "" {
		return nil, errors.New("POSTGRES_DB environment variable is required")
	}

	user := os.Getenv("POSTGRES_USER")
	if user == "" {
		return nil, errors.New("POSTGRES_USER environment variable is required")
	}

	return &PostgresConfig{
		Host:            getEnv("POSTGRES_HOST", "localhost"),
		Port:            getEnvAsInt("POSTGRES_PORT", 5432),
		User:            user,
		Password:        os.Getenv("POSTGRES_PASSWORD"),
		Database:        database,
		SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("POSTGRES_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvAsInt("POSTGRES_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: time.Duration(getEnvAsInt("POSTGRES_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
		ConnMaxIdleTime: time.Duration(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_MIN", 5)) * time.Minute,
	}, nil
}

// ConnectionString builds the PostgreSQL DSN
func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.Notion == nil {
		return errors.New("notion configuration is required")
	}

	if c.Postgres == nil {
		return errors.New("postgreSQL configuration is required")
	}

	if c.Notion.MaxRequestsPerSecond <= 0 {
		return errors.New("notion max requests per second must be positive")
	}

	if c.MaxItemsPerSource <= 0 {
		return errors.New("max items per source must be positive")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
