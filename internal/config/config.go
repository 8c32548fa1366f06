// Package config loads process configuration from the environment.
// A .env file in the working directory is read first when present.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config is the full process configuration.
type Config struct {
	Env      string
	Port     string
	LogLevel string

	Backend BackendConfig
	Store   StoreConfig

	// CORSAllowedOrigins is required in production; elsewhere any origin is allowed
	CORSAllowedOrigins []string

	// SequenceYearOverride pins the two-digit year used for seeds (ops and tests only)
	SequenceYearOverride string
}

type BackendConfig struct {
	URL     string
	Timeout time.Duration
	Token   string
}

type StoreConfig struct {
	Driver        string
	File          string
	DatabaseURL   string
	RedisAddress  string
	RedisPassword string
	RedisDB       int
}

// IsDevelopment reports whether the process runs outside production.
func (c Config) IsDevelopment() bool {
	return c.Env != "production"
}

// AllowedOrigins is the CORS allowlist to enforce; nil outside production.
func (c Config) AllowedOrigins() []string {
	if c.IsDevelopment() {
		return nil
	}
	return c.CORSAllowedOrigins
}

// Load reads .env (if any) and the environment, then validates.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment without touching .env.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:      getEnv("APP_ENV", "development"),
		Port:     getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Backend: BackendConfig{
			URL:     strings.TrimSpace(os.Getenv("BACKEND_URL")),
			Timeout: getEnvDuration("BACKEND_TIMEOUT", 10*time.Second),
			Token:   os.Getenv("BACKEND_TOKEN"),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(getEnv("STORE_DRIVER", StoreFile)),
			File:          getEnv("STORE_FILE", "data/baselines.json"),
			DatabaseURL:   os.Getenv("DATABASE_URL"),
			RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       getEnvInt("REDIS_DB", 0),
		},
		CORSAllowedOrigins:   splitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS")),
		SequenceYearOverride: strings.TrimSpace(os.Getenv("SEQUENCE_YEAR_OVERRIDE")),
	}
	return cfg, cfg.Validate()
}

var twoDigits = regexp.MustCompile(`^\d{2}$`)

// Validate checks required keys and cross-field rules.
func (c Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	switch c.Store.Driver {
	case StoreMemory:
	case StoreFile:
		if c.Store.File == "" {
			return fmt.Errorf("STORE_FILE is required for the file store")
		}
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreRedis:
		if c.Store.RedisAddress == "" {
			return fmt.Errorf("REDIS_ADDRESS is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if !c.IsDevelopment() && len(c.CORSAllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS is required in production")
	}
	if c.SequenceYearOverride != "" && !twoDigits.MatchString(c.SequenceYearOverride) {
		return fmt.Errorf("SEQUENCE_YEAR_OVERRIDE must be two digits, got %q", c.SequenceYearOverride)
	}
	return nil
}

// Clock returns the clock reconcilers should use. With a year override the
// returned time keeps the current day but moves to that year.
func (c Config) Clock() func() time.Time {
	if c.SequenceYearOverride == "" {
		return time.Now
	}
	yy, _ := strconv.Atoi(c.SequenceYearOverride)
	return func() time.Time {
		now := time.Now()
		return now.AddDate(2000+yy-now.Year(), 0, 0)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
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

func splitAndTrim(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
