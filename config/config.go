package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Payroll  PayrollConfig
	Lock     LockConfig
}

// AppConfig holds HTTP server and logging settings.
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Path string
}

// CacheConfig selects the month cache. Empty RedisAddr means in-memory.
type CacheConfig struct {
	RedisAddr   string
	RedisPrefix string
	TTL         time.Duration
}

type PayrollConfig struct {
	FetchConcurrency int
	BcryptCost       int
}

// LockConfig controls automatic relocking. Zero IdleTimeout turns it off.
type LockConfig struct {
	IdleTimeout   time.Duration
	CheckInterval time.Duration
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	port, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	ttl, err := time.ParseDuration(getEnv("CACHE_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	concurrency, err := strconv.Atoi(getEnv("FETCH_CONCURRENCY", "4"))
	if err != nil || concurrency < 1 {
		return nil, fmt.Errorf("invalid FETCH_CONCURRENCY: %q", os.Getenv("FETCH_CONCURRENCY"))
	}

	cost, err := strconv.Atoi(getEnv("BCRYPT_COST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	idle, err := time.ParseDuration(getEnv("LOCK_IDLE_TIMEOUT", "0s"))
	if err != nil || idle < 0 {
		return nil, fmt.Errorf("invalid LOCK_IDLE_TIMEOUT: %q", os.Getenv("LOCK_IDLE_TIMEOUT"))
	}

	interval, err := time.ParseDuration(getEnv("LOCK_CHECK_INTERVAL", "1m"))
	if err != nil || interval <= 0 {
		return nil, fmt.Errorf("invalid LOCK_CHECK_INTERVAL: %q", os.Getenv("LOCK_CHECK_INTERVAL"))
	}

	return &Config{
		App: AppConfig{
			Port:        port,
			Env:         getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "farm.db"),
		},
		Cache: CacheConfig{
			RedisAddr:   getEnv("REDIS_ADDR", ""),
			RedisPrefix: getEnv("REDIS_PREFIX", "farm-ledger"),
			TTL:         ttl,
		},
		Payroll: PayrollConfig{
			FetchConcurrency: concurrency,
			BcryptCost:       cost,
		},
		Lock: LockConfig{
			IdleTimeout:   idle,
			CheckInterval: interval,
		},
	}, nil
}

// SlogLevel maps LOG_LEVEL to a slog level. Unknown values mean info.
func (c AppConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
