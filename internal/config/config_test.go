package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.weather.gov", cfg.BaseURL)
	assert.Equal(t, "go-nws/1.0 (+https://github.com/wxfetch/go-nws)", cfg.UserAgent)
	assert.Empty(t, cfg.UserEmail)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("NWS_BASE_URL", "http://localhost:8080")
	t.Setenv("NWS_USER_AGENT", "my-app/2.0")
	t.Setenv("NWS_USER_EMAIL", "ops@example.com")
	t.Setenv("NWS_CACHE_EXPIRY", "60")
	t.Setenv("NWS_TIMEOUT", "5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "my-app/2.0", cfg.UserAgent)
	assert.Equal(t, "ops@example.com", cfg.UserEmail)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_InvalidCacheExpiry(t *testing.T) {
	t.Setenv("NWS_CACHE_EXPIRY", "not-a-number")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NWS_CACHE_EXPIRY")
}

func TestLoad_NegativeTimeout(t *testing.T) {
	t.Setenv("NWS_TIMEOUT", "-5")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NWS_TIMEOUT")
}

func TestFullUserAgent(t *testing.T) {
	cfg := &Config{UserAgent: "my-app/2.0"}
	assert.Equal(t, "my-app/2.0", cfg.FullUserAgent())

	cfg.UserEmail = "ops@example.com"
	assert.Equal(t, "my-app/2.0 (ops@example.com)", cfg.FullUserAgent())
}
