package config

import (
	"os"
	"strconv"

	"ablab/domain/analysis"
	"ablab/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Analysis AnalysisConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds database connection settings. The URL is optional;
// without one the server falls back to in-memory report storage.
type DatabaseConfig struct {
	URL string
}

// AnalysisConfig holds the default analysis parameters applied to every run
// that does not override them
type AnalysisConfig struct {
	Alpha     float64
	Resamples int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Analysis: AnalysisConfig{
			Alpha:     getEnvFloatOrDefault("ANALYSIS_ALPHA", analysis.DefaultAlpha),
			Resamples: getEnvIntOrDefault("ANALYSIS_RESAMPLES", analysis.DefaultResamples),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Params converts the configured analysis defaults into run parameters
func (c *Config) Params() analysis.Params {
	p := analysis.DefaultParams()
	p.Alpha = c.Analysis.Alpha
	p.Resamples = c.Analysis.Resamples
	return p
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.Configuration("server port is required")
	}
	return config.Params().Validate()
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
