package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "REDIS_URL", "CACHE_TTL", "AXIS_LIMIT", "ALLOW_UNILATERAL", "SCENARIO_FILE", "LOG_LEVEL", "DEV", "DEV_MODE", "DEVELOPMENT"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8010" {
		t.Errorf("expected port 8010, got %s", cfg.Port)
	}
	if cfg.RedisURL != "" {
		t.Errorf("expected cache disabled by default, got %q", cfg.RedisURL)
	}
	if cfg.AxisLimit != 60 {
		t.Errorf("expected axis limit 60, got %d", cfg.AxisLimit)
	}
	if cfg.AllowUnilateralIncrement {
		t.Error("expected relaxation off by default")
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("expected 10m TTL, got %v", cfg.CacheTTL)
	}
	if cfg.LogLevel != "info" || cfg.Dev {
		t.Errorf("unexpected log settings %q dev=%v", cfg.LogLevel, cfg.Dev)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("AXIS_LIMIT", "120")
	t.Setenv("ALLOW_UNILATERAL", "true")
	t.Setenv("DEV_MODE", "true")

	cfg := Load()
	if cfg.Port != "9000" || cfg.RedisURL != "redis://cache:6379/1" {
		t.Errorf("unexpected %+v", cfg)
	}
	if cfg.CacheTTL != 30*time.Second || cfg.AxisLimit != 120 || !cfg.AllowUnilateralIncrement || !cfg.Dev {
		t.Errorf("unexpected %+v", cfg)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("AXIS_LIMIT", "sixty")
	t.Setenv("CACHE_TTL", "soon")
	cfg := Load()
	if cfg.AxisLimit != 60 || cfg.CacheTTL != 10*time.Minute {
		t.Errorf("expected defaults on parse failure, got %d %v", cfg.AxisLimit, cfg.CacheTTL)
	}
}
