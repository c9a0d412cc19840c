package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	Ultra  UltraConfig
	Export ExportConfig
	Redis  RedisConfig
	S3     S3Config
}

// UltraConfig contains the Ultra SOAP web service connection settings.
type UltraConfig struct {
	Endpoint  string
	Namespace string
	Username  string
	Password  string
	Timeout   time.Duration
	// RateLimit caps remote calls per second; 0 disables the limit.
	RateLimit float64
}

// ExportConfig contains catalog export parameters.
type ExportConfig struct {
	OutputPath        string
	ProductURL        string
	Vendor            string
	PollAttempts      int
	PollSleep         time.Duration
	CommitAfterExport bool
	// Interval schedules incremental exports in serve mode; 0 disables them.
	Interval time.Duration
	LockTTL  time.Duration
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host is configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// S3Config contains settings for s3:// output paths. Credentials come from
// the AWS default chain (AWS_ACCESS_KEY_ID, shared config, instance role).
type S3Config struct {
	Region   string
	Endpoint string
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Ultra
	cfg.Ultra = UltraConfig{
		Endpoint:  getEnv("ULTRA_ENDPOINT", "https://portal.it-ultra.com/b2b/ru/ws/b2b.1cws"),
		Namespace: getEnv("ULTRA_NAMESPACE", "http://www.it-ultra.com/b2b"),
		Username:  getEnv("ULTRA_WSDL_USERNAME", ""),
		Password:  getEnv("ULTRA_WSDL_PASSWORD", ""),
		RateLimit: getEnvFloat("ULTRA_RATE_LIMIT", 0),
	}

	// Export
	cfg.Export = ExportConfig{
		OutputPath:        getEnv("ULTRA_OUTPUT_PATH", "storage/app/ultra/catalog.xml"),
		ProductURL:        getEnv("ULTRA_PRODUCT_URL", "https://example.com/product/{code}"),
		Vendor:            getEnv("ULTRA_VENDOR", "Ultra"),
		PollAttempts:      getEnvInt("ULTRA_POLL_ATTEMPTS", 15),
		CommitAfterExport: getEnvBool("ULTRA_COMMIT_AFTER_EXPORT", false),
	}

	// Redis (export lock)
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// S3 (s3:// output paths)
	cfg.S3 = S3Config{
		Region:   getEnv("S3_REGION", "ap-southeast-3"),
		Endpoint: getEnv("S3_ENDPOINT", ""),
	}

	// Durations
	var err error
	if cfg.Ultra.Timeout, err = parseDurationEnv("ULTRA_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid ULTRA_TIMEOUT: %w", err)
	}
	if cfg.Export.PollSleep, err = parseDurationEnv("ULTRA_POLL_SLEEP", "4s"); err != nil {
		return nil, fmt.Errorf("invalid ULTRA_POLL_SLEEP: %w", err)
	}
	if cfg.Export.Interval, err = parseDurationEnv("ULTRA_EXPORT_INTERVAL", "0"); err != nil {
		return nil, fmt.Errorf("invalid ULTRA_EXPORT_INTERVAL: %w", err)
	}
	if cfg.Export.LockTTL, err = parseDurationEnv("EXPORT_LOCK_TTL", "30m"); err != nil {
		return nil, fmt.Errorf("invalid EXPORT_LOCK_TTL: %w", err)
	}

	if cfg.Export.PollAttempts <= 0 {
		return nil, errors.New("ULTRA_POLL_ATTEMPTS must be greater than 0")
	}
	if strings.TrimSpace(cfg.Export.ProductURL) == "" {
		return nil, errors.New("ULTRA_PRODUCT_URL must not be empty")
	}
	if cfg.Ultra.RateLimit < 0 {
		return nil, errors.New("ULTRA_RATE_LIMIT must be >= 0")
	}

	return cfg, nil
}

// RequireJWTSecret validates settings needed by the HTTP server and the
// token command.
func (c *Config) RequireJWTSecret() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set for authentication")
	}
	return nil
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
// A bare integer is a number of seconds.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := strings.TrimSpace(getEnv(key, def))
	var d time.Duration
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		d = time.Duration(secs) * time.Second
	} else if d, err = time.ParseDuration(raw); err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
