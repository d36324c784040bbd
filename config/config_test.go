package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable LoadConfig reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CI", "ENV", "SECRETS_DIR", "SERVER_HOST", "SERVER_PORT", "MONGO_URI", "DATABASE_URL",
		"MONGO_DB", "REDIS_URL", "LOG_LEVEL", "RATE_LIMIT_PER_MINUTE", "REQUEST_TIMEOUT",
		"SHUTDOWN_TIMEOUT", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DB", "recipes_test")
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.StoreURI)
	assert.Equal(t, "recipes_test", cfg.StoreName)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigWithDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.ServerPort)
	assert.Equal(t, "recipeBook", cfg.StoreName)
	assert.Equal(t, "", cfg.RedisURL)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigDatabaseURLFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite://recipes.db")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite://recipes.db", cfg.StoreURI)
}

func TestLoadConfigRequiresStoreURI(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig()
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has("MONGO_URI"))
}

func TestLoadConfigReportsAllProblems(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")
	t.Setenv("REQUEST_TIMEOUT", "soon")

	_, err := LoadConfig()
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has("RATE_LIMIT_PER_MINUTE"))
	assert.True(t, verrs.Has("REQUEST_TIMEOUT"))
}

func TestValidateConfig(t *testing.T) {
	cfg := &Config{
		ServerPort:         "99999",
		StoreURI:           "mongodb://localhost",
		StoreName:          "recipeBook",
		RateLimitPerMinute: 0,
		RequestTimeout:     time.Second,
		ShutdownTimeout:    time.Second,
		LogLevel:           "loud",
	}

	err := ValidateConfig(cfg)
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has("SERVER_PORT"))
	assert.True(t, verrs.Has("RATE_LIMIT_PER_MINUTE"))
	assert.True(t, verrs.Has("LOG_LEVEL"))
	assert.False(t, verrs.Has("MONGO_URI"))
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestLoadConfigProductionSecrets(t *testing.T) {
	clearEnv(t)
	secretsDir := t.TempDir()
	t.Setenv("ENV", "production")
	t.Setenv("SECRETS_DIR", secretsDir)
	t.Setenv("REDIS_URL", "redis://from-env:6379")

	require.NoError(t, os.WriteFile(filepath.Join(secretsDir, "mongo_uri"), []byte("mongodb://secret:27017\n"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://secret:27017", cfg.StoreURI)
	assert.Equal(t, "redis://from-env:6379", cfg.RedisURL)
}

func TestGetEnvironment(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, Development, GetEnvironment())

	t.Setenv("ENV", "production")
	assert.Equal(t, Production, GetEnvironment())
	assert.True(t, IsProduction())
	assert.Equal(t, "release", GetEnvironment().GinMode())

	t.Setenv("CI", "true")
	assert.Equal(t, CI, GetEnvironment())
	assert.Equal(t, "test", GetEnvironment().GinMode())
}
