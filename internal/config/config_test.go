package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"HTTP_PORT", "DATABASE_DRIVER", "DATABASE_DSN", "DATABASE_MAX_OPEN_CONNS",
		"LOG_FORMAT", "LOG_LEVEL", "IS_DEBUG", "SEED_FILE", "STATIC_DIR",
		"DB_USER", "DB_PASSWORD", "DB_HOST", "DB_PORT", "DB_NAME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "users.db?_pragma=busy_timeout(5000)", cfg.DatabaseDSN)
	assert.Equal(t, 10, cfg.MaxOpenConns)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "assets/users.csv", cfg.SeedFile)
	assert.Empty(t, cfg.StaticDir)
}

func TestLoadInvalidPortFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "http")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "-3")
	cfg := Load()
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 10, cfg.MaxOpenConns)
}

func TestIsDebugSelectsConsole(t *testing.T) {
	clearEnv(t)
	t.Setenv("IS_DEBUG", "true")
	assert.Equal(t, "console", Load().LogFormat)

	t.Setenv("LOG_FORMAT", "JSON")
	assert.Equal(t, "json", Load().LogFormat)
}

func TestPostgresDSNFromParts(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db")
	cfg := Load()
	assert.Equal(t, "postgres://app:secret@db:5432/users?sslmode=disable", cfg.DatabaseDSN)
}
