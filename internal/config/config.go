package config

import (
	"os"
	"strconv"
	"time"

	"statview/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Data    DataConfig
	Session SessionConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port          string
	GinMode       string
	MaxConcurrent int64 // concurrent upload parses admitted at once
}

// DataConfig holds data processing settings
type DataConfig struct {
	MaxUploadBytes int64
	HistogramBins  int // default bin count when the caller leaves it unset
	TopK           int // default partner count for correlation lookups
}

// SessionConfig holds session lifecycle settings
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:          getEnvOrDefault("PORT", "8080"),
			GinMode:       getEnvOrDefault("GIN_MODE", "release"),
			MaxConcurrent: int64(getEnvIntOrDefault("MAX_CONCURRENT_UPLOADS", 4)),
		},
		Data: DataConfig{
			MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", 32<<20)),
			HistogramBins:  getEnvIntOrDefault("HISTOGRAM_BINS", 20),
			TopK:           getEnvIntOrDefault("TOP_CORRELATED_K", 5),
		},
		Session: SessionConfig{
			TTL:           getEnvDurationOrDefault("SESSION_TTL", 2*time.Hour),
			SweepInterval: getEnvDurationOrDefault("SESSION_SWEEP_INTERVAL", 10*time.Minute),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Server.MaxConcurrent < 1 {
		return errors.ConfigInvalid("MAX_CONCURRENT_UPLOADS must be at least 1")
	}
	if config.Data.MaxUploadBytes < 1 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
	}
	if config.Data.HistogramBins < 1 {
		return errors.ConfigInvalid("HISTOGRAM_BINS must be positive")
	}
	if config.Session.TTL <= 0 {
		return errors.ConfigInvalid("SESSION_TTL must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
