package config

import (
	"os"
	"strconv"

	"aggstat/internal/errors"
)

// Config represents the application environment configuration. Job-level
// options live in Settings, loaded from a YAML file.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Paths    PathConfig
}

// DatabaseConfig holds the optional run-archive database settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// PathConfig holds file system paths
type PathConfig struct {
	SettingsFile string
	ReportDir    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     getEnvOrDefault("DATABASE_URL", ""),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Paths: PathConfig{
			SettingsFile: getEnvOrDefault("SETTINGS_FILE", ""),
			ReportDir:    getEnvOrDefault("REPORT_DIR", "."),
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
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("server port must be numeric")
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
