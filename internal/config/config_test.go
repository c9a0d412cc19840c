package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENV", "JWT_SECRET",
		"ULTRA_ENDPOINT", "ULTRA_NAMESPACE", "ULTRA_WSDL_USERNAME", "ULTRA_WSDL_PASSWORD",
		"ULTRA_TIMEOUT", "ULTRA_RATE_LIMIT", "ULTRA_OUTPUT_PATH", "ULTRA_PRODUCT_URL",
		"ULTRA_VENDOR", "ULTRA_POLL_ATTEMPTS", "ULTRA_POLL_SLEEP", "ULTRA_COMMIT_AFTER_EXPORT",
		"ULTRA_EXPORT_INTERVAL", "REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB",
		"EXPORT_LOCK_TTL", "S3_REGION", "S3_ENDPOINT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "https://portal.it-ultra.com/b2b/ru/ws/b2b.1cws", cfg.Ultra.Endpoint)
	assert.Equal(t, "http://www.it-ultra.com/b2b", cfg.Ultra.Namespace)
	assert.Equal(t, 60*time.Second, cfg.Ultra.Timeout)
	assert.Zero(t, cfg.Ultra.RateLimit)
	assert.Equal(t, "storage/app/ultra/catalog.xml", cfg.Export.OutputPath)
	assert.Equal(t, "https://example.com/product/{code}", cfg.Export.ProductURL)
	assert.Equal(t, "Ultra", cfg.Export.Vendor)
	assert.Equal(t, 15, cfg.Export.PollAttempts)
	assert.Equal(t, 4*time.Second, cfg.Export.PollSleep)
	assert.False(t, cfg.Export.CommitAfterExport)
	assert.Zero(t, cfg.Export.Interval)
	assert.Equal(t, 30*time.Minute, cfg.Export.LockTTL)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "ap-southeast-3", cfg.S3.Region)
	assert.Error(t, cfg.RequireJWTSecret())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ULTRA_POLL_ATTEMPTS", "3")
	t.Setenv("ULTRA_POLL_SLEEP", "250ms")
	t.Setenv("ULTRA_RATE_LIMIT", "2.5")
	t.Setenv("ULTRA_COMMIT_AFTER_EXPORT", "true")
	t.Setenv("ULTRA_EXPORT_INTERVAL", "1h")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENV", "production")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Export.PollAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Export.PollSleep)
	assert.Equal(t, 2.5, cfg.Ultra.RateLimit)
	assert.True(t, cfg.Export.CommitAfterExport)
	assert.Equal(t, time.Hour, cfg.Export.Interval)
	assert.True(t, cfg.Redis.Enabled())
	assert.NoError(t, cfg.RequireJWTSecret())
	assert.True(t, cfg.IsProduction())
}

func TestLoad_InvalidPollAttempts(t *testing.T) {
	clearEnv(t)
	t.Setenv("ULTRA_POLL_ATTEMPTS", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "ULTRA_POLL_ATTEMPTS")
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("ULTRA_POLL_SLEEP", "-1s")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid ULTRA_POLL_SLEEP")
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("ULTRA_RATE_LIMIT", "-1")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestLoad_BareIntegerDurationsAreSeconds(t *testing.T) {
	clearEnv(t)
	t.Setenv("ULTRA_POLL_SLEEP", "4")
	t.Setenv("ULTRA_TIMEOUT", " 90 ")
	t.Setenv("EXPORT_LOCK_TTL", "0")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 4*time.Second, cfg.Export.PollSleep)
	assert.Equal(t, 90*time.Second, cfg.Ultra.Timeout)
	assert.Zero(t, cfg.Export.LockTTL)
}

func TestLoad_NegativeBareIntegerDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("ULTRA_POLL_SLEEP", "-4")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid ULTRA_POLL_SLEEP")
}
