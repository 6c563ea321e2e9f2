package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here
	for _, k := range []string{"APP_PORT", "CACHE_TTL", "FETCH_CONCURRENCY", "BCRYPT_COST", "APP_ENV",
		"LOG_LEVEL", "CORS_ORIGINS", "DB_PATH", "REDIS_ADDR", "REDIS_PREFIX", "LOCK_IDLE_TIMEOUT", "LOCK_CHECK_INTERVAL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, slog.LevelInfo, cfg.App.SlogLevel())
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, cfg.App.CORSOrigins)
	assert.Equal(t, "farm.db", cfg.Database.Path)
	assert.Empty(t, cfg.Cache.RedisAddr)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 4, cfg.Payroll.FetchConcurrency)
	assert.Equal(t, 10, cfg.Payroll.BcryptCost)
	assert.Zero(t, cfg.Lock.IdleTimeout)
	assert.Equal(t, time.Minute, cfg.Lock.CheckInterval)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_PORT", "3000")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CORS_ORIGINS", "https://farm.example, ,https://m.farm.example")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("FETCH_CONCURRENCY", "2")
	t.Setenv("LOCK_IDLE_TIMEOUT", "15m")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.App.Port)
	assert.Equal(t, slog.LevelDebug, cfg.App.SlogLevel())
	assert.Equal(t, []string{"https://farm.example", "https://m.farm.example"}, cfg.App.CORSOrigins)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 2, cfg.Payroll.FetchConcurrency)
	assert.Equal(t, 15*time.Minute, cfg.Lock.IdleTimeout)
}

func TestLoad_DotEnvDoesNotOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir+"/.env", "DB_PATH=from-dotenv.db\nAPP_PORT=9999\n")
	t.Setenv("APP_PORT", "7000")
	t.Setenv("DB_PATH", "")
	os.Unsetenv("DB_PATH") // restored by t.Setenv cleanup

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.App.Port)
	assert.Equal(t, "from-dotenv.db", cfg.Database.Path)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"APP_PORT":          "eighty",
		"CACHE_TTL":         "soon",
		"FETCH_CONCURRENCY": "0",
		"BCRYPT_COST":       "high",
		"LOCK_IDLE_TIMEOUT": "-1m",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(key, value)

			_, err := Load()

			assert.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}
