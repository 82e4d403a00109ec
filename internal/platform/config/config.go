// Package config loads application configuration from environment variables.
// All variables use the FORGE_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Cache      CacheConfig
	Log        LogConfig
	LimitsPath string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL means
// courses are kept in memory only.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings. An empty URL disables the
// export metadata cache.
type CacheConfig struct {
	URL string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with FORGE_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("FORGE_SERVER_PORT", 8080),
			Host: envStr("FORGE_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("FORGE_DATABASE_URL", ""),
			MaxConns: envInt("FORGE_DATABASE_MAX_CONNS", 25),
			MinConns: envInt("FORGE_DATABASE_MIN_CONNS", 5),
		},
		Cache: CacheConfig{
			URL: envStr("FORGE_CACHE_URL", ""),
		},
		Log: LogConfig{
			Level:  envStr("FORGE_LOG_LEVEL", "info"),
			Format: envStr("FORGE_LOG_FORMAT", "json"),
		},
		LimitsPath: envStr("FORGE_LIMITS_PATH", ""),
	}

	return cfg, nil
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("FORGE_SERVER_PORT must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Database.URL != "" && c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("FORGE_DATABASE_MIN_CONNS (%d) exceeds FORGE_DATABASE_MAX_CONNS (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("FORGE_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
