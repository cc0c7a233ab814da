// Package config loads runtime settings from the environment, with an
// optional .env file layered underneath.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host           string
	Port           string
	RequestTimeout time.Duration
	FetchTimeout   time.Duration
	FetchRetries   int
	GIFQuality     int
	LogLevel       string
	ScratchPath    string
}

func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Load reads a .env file when present, then the environment, falling back to
// defaults per key.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Host:           getEnvOrDefault("PIXELVIEW_HOST", "0.0.0.0"),
		Port:           getEnvOrDefault("PIXELVIEW_PORT", "8080"),
		RequestTimeout: parseDurationOrDefault("PIXELVIEW_REQUEST_TIMEOUT", 30*time.Second),
		FetchTimeout:   parseDurationOrDefault("PIXELVIEW_FETCH_TIMEOUT", 30*time.Second),
		FetchRetries:   parseIntOrDefault("PIXELVIEW_FETCH_RETRIES", 3),
		GIFQuality:     parseIntOrDefault("PIXELVIEW_GIF_QUALITY", 10),
		LogLevel:       getEnvOrDefault("PIXELVIEW_LOG_LEVEL", "info"),
		ScratchPath:    getEnvOrDefault("PIXELVIEW_SCRATCH_PATH", defaultScratchPath()),
	}
	return cfg, nil
}

func defaultScratchPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "pixelview-scratch.env"
	}
	return filepath.Join(dir, "pixelview", "scratch.env")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
