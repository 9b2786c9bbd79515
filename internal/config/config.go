package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all client settings for the nwsq command, populated from
// environment variables.
type Config struct {
	BaseURL   string
	UserAgent string
	UserEmail string
	CacheTTL  time.Duration
	Timeout   time.Duration
	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cacheTTL, err := parseSeconds("NWS_CACHE_EXPIRY", 600)
	if err != nil {
		return nil, err
	}

	timeout, err := parseSeconds("NWS_TIMEOUT", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BaseURL:   envOrDefault("NWS_BASE_URL", "https://api.weather.gov"),
		UserAgent: envOrDefault("NWS_USER_AGENT", "go-nws/1.0 (+https://github.com/wxfetch/go-nws)"),
		UserEmail: os.Getenv("NWS_USER_EMAIL"),
		CacheTTL:  cacheTTL,
		Timeout:   timeout,
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),
	}

	return cfg, nil
}

// FullUserAgent appends the operator contact to the User-Agent string, as the
// NWS asks API consumers to do.
func (c *Config) FullUserAgent() string {
	if c.UserEmail == "" {
		return c.UserAgent
	}
	return c.UserAgent + " (" + c.UserEmail + ")"
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseSeconds(key string, def int) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return time.Duration(def) * time.Second, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive number of seconds, got %q", key, s)
	}
	return time.Duration(n) * time.Second, nil
}
