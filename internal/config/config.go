package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port     string
	RedisURL string // empty disables the analysis cache
	CacheTTL time.Duration

	// Session defaults. ScenarioFile, when set, overrides AxisLimit and
	// AllowUnilateralIncrement along with the voter and entity positions.
	AxisLimit                int
	AllowUnilateralIncrement bool
	ScenarioFile             string

	LogLevel string
	LogFile  string
	Dev      bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:                     envOrDefault("PORT", "8010"),
		RedisURL:                 os.Getenv("REDIS_URL"),
		CacheTTL:                 envDuration("CACHE_TTL", 10*time.Minute),
		AxisLimit:                envInt("AXIS_LIMIT", 60),
		AllowUnilateralIncrement: envBool("ALLOW_UNILATERAL", false),
		ScenarioFile:             os.Getenv("SCENARIO_FILE"),
		LogLevel:                 envOrDefault("LOG_LEVEL", "info"),
		LogFile:                  os.Getenv("LOG_FILE"),
		Dev:                      envBool("DEV", false) || envBool("DEV_MODE", false) || envBool("DEVELOPMENT", false),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}
