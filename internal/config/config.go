// Package config provides configuration management for Kindred.
// It loads settings from environment variables with the KINDRED_ prefix
// and provides sensible defaults for all configuration options.
package config

import (
	"os"
	"strconv"
)

// Config holds all configuration settings for the Kindred application.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Charts   ChartsConfig
	Geocode  GeocodeConfig
	Backup   BackupConfig
	Security SecurityConfig
	Features FeaturesConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 7373)
	Host string // Server host (default: 127.0.0.1)
}

// StorageConfig contains database and storage configuration.
type StorageConfig struct {
	StorageEngine string // Storage engine type: sqlite, postgres (default: sqlite)
	DataPath      string // Path to data directory (default: ./data)
	PostgresDSN   string // Connection string used when StorageEngine is postgres
}

// ChartsConfig contains chart request defaults and caps enforced at the
// API layer.
type ChartsConfig struct {
	DefaultDepth int // Depth applied when a chart request omits one (default: 4)
	MaxDepth     int // Upper bound on requested traversal depth (default: 10)
	MatrixLimit  int // Default person count for the relationship matrix (default: 20)
}

// GeocodeConfig contains settings for the optional birthplace geocoding
// client.
type GeocodeConfig struct {
	GeocodeEnabled bool   // Enable geocoding of birthplaces (default: false)
	GeocodeURL     string // Geocoding service base URL (default: Nominatim)
}

// BackupConfig contains settings for the database snapshot service.
type BackupConfig struct {
	SnapshotPath     string // Directory for database snapshots (default: ./data/snapshots)
	SnapshotInterval string // Interval between snapshots as a duration string (default: 1h)
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	SecurityMode string // Security mode: development, production (default: development)
	APIToken     string // API authentication token
}

// FeaturesConfig contains feature flags.
type FeaturesConfig struct {
	EnableWebUI      bool // Enable web UI (default: true)
	EnableChangeFeed bool // Enable the websocket change feed (default: true)
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the KINDRED_ prefix.
func LoadConfig() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("KINDRED_PORT", 7373),
			Host: getEnv("KINDRED_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			StorageEngine: getEnv("KINDRED_STORAGE_ENGINE", "sqlite"),
			DataPath:      getEnv("KINDRED_DATA_PATH", "./data"),
			PostgresDSN:   getEnv("KINDRED_POSTGRES_DSN", ""),
		},
		Charts: ChartsConfig{
			DefaultDepth: getEnvInt("KINDRED_CHART_DEFAULT_DEPTH", 4),
			MaxDepth:     getEnvInt("KINDRED_CHART_MAX_DEPTH", 10),
			MatrixLimit:  getEnvInt("KINDRED_MATRIX_LIMIT", 20),
		},
		Geocode: GeocodeConfig{
			GeocodeEnabled: getEnvBool("KINDRED_GEOCODE_ENABLED", false),
			GeocodeURL:     getEnv("KINDRED_GEOCODE_URL", "https://nominatim.openstreetmap.org"),
		},
		Backup: BackupConfig{
			SnapshotPath:     getEnv("KINDRED_SNAPSHOT_PATH", "./data/snapshots"),
			SnapshotInterval: getEnv("KINDRED_SNAPSHOT_INTERVAL", "1h"),
		},
		Security: SecurityConfig{
			SecurityMode: getEnv("KINDRED_SECURITY_MODE", "development"),
			APIToken:     getEnv("KINDRED_API_TOKEN", ""),
		},
		Features: FeaturesConfig{
			EnableWebUI:      getEnvBool("KINDRED_ENABLE_WEB_UI", true),
			EnableChangeFeed: getEnvBool("KINDRED_ENABLE_CHANGE_FEED", true),
		},
	}, nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value.
// It recognizes "true", "1", "yes" as true and "false", "0", "no" as false.
// If the environment variable exists but cannot be parsed as a boolean,
// it returns the default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}
