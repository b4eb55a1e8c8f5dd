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

// Environment names.
const (
	EnvDevelopment = "dev"
	EnvProduction  = "prod"
)

// devSessionSecret signs sessions when ENV=dev and SESSION_SECRET is unset.
const devSessionSecret = "dev-only-session-secret-change-me!!"

// Config holds the service configuration.
type Config struct {
	HTTPAddr string
	LogLevel string
	Env      string

	DatabaseURL string // empty selects the in-memory employee store

	CacheBackend string // memory | redis
	RedisAddr    string
	CacheTTL     time.Duration
	CachePrefix  string
	CacheSize    int

	SessionSecret string
	SessionTTL    time.Duration
	RememberTTL   time.Duration
	SecureCookie  bool

	LoginRatePerSec float64
	LoginRateBurst  int
	TrustProxy      bool // honour X-Forwarded-For / X-Real-IP from a fronting proxy

	AdminBasePath string
}

// Development reports whether the service runs in dev mode.
func (c *Config) Development() bool {
	return c.Env == EnvDevelopment
}

// Load reads configuration from environment variables, after loading an
// optional .env file from the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Env:           strings.ToLower(getEnv("ENV", EnvDevelopment)),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		CacheBackend:  strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		CachePrefix:   getEnv("CACHE_PREFIX", "backoffice"),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		AdminBasePath: getEnv("ADMIN_BASE_PATH", "/admin"),
	}

	var errs []error
	cfg.CacheTTL = parseDuration("CACHE_TTL", 5*time.Minute, &errs)
	cfg.SessionTTL = parseDuration("SESSION_TTL", time.Hour, &errs)
	cfg.RememberTTL = parseDuration("REMEMBER_TTL", 14*24*time.Hour, &errs)
	cfg.CacheSize = parseInt("CACHE_SIZE", 1024, &errs)
	cfg.LoginRateBurst = parseInt("LOGIN_RATE_BURST", 5, &errs)
	cfg.LoginRatePerSec = parseFloat("LOGIN_RATE_PER_SEC", 0.5, &errs)
	cfg.TrustProxy = parseBool("TRUSTED_PROXY", false, &errs)
	cfg.SecureCookie = parseBool("SESSION_SECURE_COOKIE", cfg.Env != EnvDevelopment, &errs)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if cfg.SessionSecret == "" && cfg.Development() {
		cfg.SessionSecret = devSessionSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.HTTPAddr) == "" {
		errs = append(errs, errors.New("HTTP_ADDR cannot be empty"))
	}
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env))
	}
	switch c.CacheBackend {
	case "memory":
		if c.CacheSize <= 0 {
			errs = append(errs, errors.New("CACHE_SIZE must be positive"))
		}
	case "redis":
		if strings.TrimSpace(c.RedisAddr) == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis cache backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("CACHE_BACKEND must be memory or redis, got %q", c.CacheBackend))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}
	if len(c.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes"))
	}
	if c.SessionTTL <= 0 || c.RememberTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL and REMEMBER_TTL must be positive"))
	}
	if c.LoginRatePerSec <= 0 || c.LoginRateBurst <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_PER_SEC and LOGIN_RATE_BURST must be positive"))
	}
	if !strings.HasPrefix(c.AdminBasePath, "/") {
		errs = append(errs, errors.New("ADMIN_BASE_PATH must start with /"))
	}
	return errors.Join(errs...)
}

// getEnv retrieves an environment variable or returns a fallback value.
// KEY_FILE, when set, names a file holding the value.
func getEnv(key, fallback string) string {
	if path := os.Getenv(key + "_FILE"); path != "" {
		content, err := os.ReadFile(path)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func parseDuration(key string, def time.Duration, errs *[]error) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s format: %w", key, err))
		return def
	}
	return d
}

func parseInt(key string, def int, errs *[]error) int {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return n
}

func parseFloat(key string, def float64, errs *[]error) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return f
}

func parseBool(key string, def bool, errs *[]error) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return b
}
