// Package config loads and validates application configuration.
// Values come from an optional YAML file named by CONFIG_FILE, overridden by
// environment variables (optionally loaded from a .env file).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v4"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// LogFile, when set, sends logs to a rotated file instead of stdout.
	LogFile string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// RedisAddr enables the hours summary cache. Empty disables it.
	RedisAddr string
	// SummaryCacheTTL bounds how long a cached summary is served. Defaults to 1m.
	SummaryCacheTTL time.Duration

	// KafkaBrokers enables duty-status event publishing. Empty disables it.
	KafkaBrokers []string
	// KafkaTopic defaults to "duty-status.changed".
	KafkaTopic string

	// AuthJWTSecret enables bearer-token checks on driver routes. Empty disables them.
	AuthJWTSecret string

	// HOSCycle is the on-duty cycle reported in summaries. Defaults to 70/8.
	HOSCycle domain.Cycle

	// RateLimitPerMinute caps write requests per client IP. Zero disables it.
	RateLimitPerMinute int

	// MaxBodyBytes caps request body size. Defaults to 1 MiB.
	MaxBodyBytes int64
}

// fileConfig is the YAML shape of CONFIG_FILE. Keys mirror the env names.
type fileConfig struct {
	Port               string   `yaml:"port"`
	DatabaseURL        string   `yaml:"database_url"`
	LogLevel           string   `yaml:"log_level"`
	LogFile            string   `yaml:"log_file"`
	CORSOrigins        []string `yaml:"cors_origins"`
	RedisAddr          string   `yaml:"redis_addr"`
	SummaryCacheTTL    string   `yaml:"summary_cache_ttl"`
	KafkaBrokers       []string `yaml:"kafka_brokers"`
	KafkaTopic         string   `yaml:"kafka_topic"`
	AuthJWTSecret      string   `yaml:"auth_jwt_secret"`
	HOSCycle           string   `yaml:"hos_cycle"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
	MaxBodyBytes       int64    `yaml:"max_body_bytes"`
}

func defaults() fileConfig {
	return fileConfig{
		Port:            "8080",
		LogLevel:        "info",
		CORSOrigins:     []string{"http://localhost:5173"},
		SummaryCacheTTL: "1m",
		KafkaTopic:      "duty-status.changed",
		HOSCycle:        domain.DefaultCycle.String(),
		MaxBodyBytes:    1 << 20,
	}
}

// Load reads configuration and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first value that fails to parse.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	fc := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &fc); err != nil {
			return Config{}, err
		}
	}
	return fromEnv(fc)
}

// LoadFile reads a YAML config file over the defaults, without consulting
// the environment.
func LoadFile(path string) (Config, error) {
	fc := defaults()
	if err := loadFile(path, &fc); err != nil {
		return Config{}, err
	}
	return build(fc)
}

func loadFile(path string, fc *fileConfig) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func fromEnv(fc fileConfig) (Config, error) {
	fc.Port = getEnv("PORT", fc.Port)
	fc.DatabaseURL = getEnv("DATABASE_URL", fc.DatabaseURL)
	fc.LogLevel = getEnv("LOG_LEVEL", fc.LogLevel)
	fc.LogFile = getEnv("LOG_FILE", fc.LogFile)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		fc.CORSOrigins = splitCSV(v)
	}
	fc.RedisAddr = getEnv("REDIS_ADDR", fc.RedisAddr)
	fc.SummaryCacheTTL = getEnv("SUMMARY_CACHE_TTL", fc.SummaryCacheTTL)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		fc.KafkaBrokers = splitCSV(v)
	}
	fc.KafkaTopic = getEnv("KAFKA_TOPIC", fc.KafkaTopic)
	fc.AuthJWTSecret = getEnv("AUTH_JWT_SECRET", fc.AuthJWTSecret)
	fc.HOSCycle = getEnv("HOS_CYCLE", fc.HOSCycle)

	var badInt []string
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badInt = append(badInt, "RATE_LIMIT_PER_MINUTE")
		}
		fc.RateLimitPerMinute = n
	}
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			badInt = append(badInt, "MAX_BODY_BYTES")
		}
		fc.MaxBodyBytes = n
	}
	if len(badInt) > 0 {
		return Config{}, fmt.Errorf("invalid integer environment variables: %s", strings.Join(badInt, ", "))
	}
	return build(fc)
}

// build validates fc and converts it to a Config.
func build(fc fileConfig) (Config, error) {
	var missing []string
	if fc.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	ttl, err := time.ParseDuration(fc.SummaryCacheTTL)
	if err != nil || ttl <= 0 {
		return Config{}, fmt.Errorf("SUMMARY_CACHE_TTL %q is not a positive duration", fc.SummaryCacheTTL)
	}
	cycle, err := domain.ParseCycle(fc.HOSCycle)
	if err != nil {
		return Config{}, fmt.Errorf("HOS_CYCLE: %w", err)
	}
	if fc.RateLimitPerMinute < 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if fc.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("MAX_BODY_BYTES must be positive")
	}

	return Config{
		Port:               fc.Port,
		DatabaseURL:        fc.DatabaseURL,
		LogLevel:           fc.LogLevel,
		LogFile:            fc.LogFile,
		CORSOrigins:        fc.CORSOrigins,
		RedisAddr:          fc.RedisAddr,
		SummaryCacheTTL:    ttl,
		KafkaBrokers:       fc.KafkaBrokers,
		KafkaTopic:         fc.KafkaTopic,
		AuthJWTSecret:      fc.AuthJWTSecret,
		HOSCycle:           cycle,
		RateLimitPerMinute: fc.RateLimitPerMinute,
		MaxBodyBytes:       fc.MaxBodyBytes,
	}, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
