// Package config loads application configuration from environment
// variables, with a .env file picked up automatically when present.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Snapshot SnapshotConfig
	Ingest   IngestConfig
	Logging  LoggingConfig
}

// SnapshotConfig locates the snapshot store.
type SnapshotConfig struct {
	DBPath string
}

// IngestConfig tunes the ingestion pipeline.
type IngestConfig struct {
	// HeaderScanRows is how many leading rows the header detector scans.
	HeaderScanRows int
	// CurrencyCode is the display currency for summary amounts.
	CurrencyCode string
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string // debug, info, warn, error
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Snapshot: SnapshotConfig{
			DBPath: getEnv("PO_SNAPSHOT_DB", "data/po-insight.db"),
		},
		Ingest: IngestConfig{
			HeaderScanRows: getEnvAsInt("PO_HEADER_SCAN_ROWS", 8),
			CurrencyCode:   getEnv("PO_CURRENCY", "USD"),
		},
		Logging: LoggingConfig{
			Level: getEnv("PO_LOG_LEVEL", "info"),
		},
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
