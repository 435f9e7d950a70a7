// Package config provides Viper-based hierarchical configuration management and
// .env loading for the spending coach.
package config

import (
	"os"
	"path/filepath"
	"sync"

	"fjacquet/spending-coach/internal/logging"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// LoadEnv loads environment variables from a .env file in the current or parent
// directory, if one exists. It runs at most once per process.
func LoadEnv(logger logging.Logger) {
	envOnce.Do(func() {
		envFile := findEnvFile()
		if envFile == "" {
			if logger != nil {
				logger.Debug("No .env file found, using environment variables")
			}
			return
		}

		if err := godotenv.Load(envFile); err != nil {
			if logger != nil {
				logger.WithError(err).Warn("Error loading .env file")
			}
			return
		}
		if logger != nil {
			logger.Debug("Loaded environment variables", logging.F("file", envFile))
		}
	})
}

func findEnvFile() string {
	for _, candidate := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
