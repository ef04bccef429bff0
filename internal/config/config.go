package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Charts
	ChartMinAngleDeg float64
	ChartCacheTTL    time.Duration
	ChartCacheSize   int

	// Logging
	LogLevel string

	// POST requests per client per minute
	RateLimitPerMinute int
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/budget.db"),

		ChartMinAngleDeg: getEnvFloat("CHART_MIN_ANGLE_DEG", 45),
		ChartCacheTTL:    getEnvDuration("CHART_CACHE_TTL", 5*time.Minute),
		ChartCacheSize:   getEnvInt("CHART_CACHE_SIZE", 64),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		// Check if directory exists or can be created
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if math.IsNaN(c.ChartMinAngleDeg) || c.ChartMinAngleDeg < 0 || c.ChartMinAngleDeg >= 360 {
		errors = append(errors, fmt.Sprintf("invalid chart min angle %v: must be in [0, 360)", c.ChartMinAngleDeg))
	}

	if c.ChartCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid chart cache TTL %v: must be at least 1 second", c.ChartCacheTTL))
	} else if c.ChartCacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid chart cache TTL %v: must be at most 24 hours", c.ChartCacheTTL))
	}

	if c.ChartCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid chart cache size %d: must be at least 1", c.ChartCacheSize))
	} else if c.ChartCacheSize > 10000 {
		errors = append(errors, fmt.Sprintf("invalid chart cache size %d: must be at most 10000", c.ChartCacheSize))
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
