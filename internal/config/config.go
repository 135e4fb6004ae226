package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries the server settings and the detection tunables read at
// startup. Detection tunables are snapshots: each pipeline invocation reads
// them once and never mutates them.
type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	FetchTimeout       time.Duration
	MaxRequestBodySize int64

	// Detection tunables
	MinArea     float64
	MaxArea     float64
	EpsAuto     bool
	Eps         float64
	EpsFraction float64
	MinPoints   int
	BoxPadding  float64

	// Live mode
	LiveInterval  time.Duration
	LiveSourceURL string

	// Optional Azure blob candidate source
	AzureAccountName string
	AzureAccountKey  string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		FetchTimeout:       parseDurationOrDefault("FETCH_TIMEOUT", 15*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		MinArea:     parseFloatOrDefault("MIN_AREA", 30),
		MaxArea:     parseFloatOrDefault("MAX_AREA", 5000),
		EpsFraction: parseFloatOrDefault("EPS_FRACTION", 0.065),
		MinPoints:   int(parseIntOrDefault("MIN_POINTS", 1)),
		BoxPadding:  parseFloatOrDefault("BOX_PADDING", 10),

		LiveInterval:  parseDurationOrDefault("LIVE_INTERVAL", time.Second),
		LiveSourceURL: os.Getenv("LIVE_SOURCE_URL"),

		AzureAccountName: os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureAccountKey:  os.Getenv("AZURE_STORAGE_KEY"),
	}

	// EPS is either "auto" (derive from frame dimensions per request) or an
	// explicit non-negative pixel radius.
	epsRaw := strings.TrimSpace(getEnvOrDefault("EPS", "auto"))
	if strings.EqualFold(epsRaw, "auto") {
		cfg.EpsAuto = true
	} else {
		eps, err := strconv.ParseFloat(epsRaw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid EPS: %q", epsRaw)
		}
		if eps < 0 {
			return nil, fmt.Errorf("EPS must be >= 0 (got %g)", eps)
		}
		cfg.Eps = eps
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.FetchTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s)",
			cfg.RequestTimeout, cfg.FetchTimeout)
	}

	// Fail fast on bad detection tunables rather than clamping; MIN_POINTS is
	// the one defensive exception and is clamped later by the detector.
	if cfg.MinArea <= 0 {
		return nil, fmt.Errorf("MIN_AREA must be > 0 (got %g)", cfg.MinArea)
	}
	if cfg.MaxArea < cfg.MinArea {
		return nil, fmt.Errorf("MAX_AREA must be >= MIN_AREA (got min=%g, max=%g)", cfg.MinArea, cfg.MaxArea)
	}
	if cfg.EpsFraction <= 0 || cfg.EpsFraction >= 1 {
		return nil, fmt.Errorf("EPS_FRACTION must be in (0, 1) (got %g)", cfg.EpsFraction)
	}
	if cfg.LiveInterval <= 0 {
		return nil, fmt.Errorf("LIVE_INTERVAL must be > 0 (got %s)", cfg.LiveInterval)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
