package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration values.
type Config struct {
	HTTPPort       string
	DatabaseDriver string
	DatabaseDSN    string
	MaxOpenConns   int
	LogFormat      string
	LogLevel       string
	SeedFile       string
	StaticDir      string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	port := getenv("HTTP_PORT", "8080")
	if _, err := strconv.Atoi(port); err != nil {
		fmt.Fprintf(os.Stderr, "invalid HTTP_PORT value %q, defaulting to 8080\n", port)
		port = "8080"
	}

	driver := strings.ToLower(getenv("DATABASE_DRIVER", "sqlite"))
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = defaultDSN(driver)
	}

	maxOpen, err := strconv.Atoi(getenv("DATABASE_MAX_OPEN_CONNS", "10"))
	if err != nil || maxOpen < 1 {
		maxOpen = 10
	}

	format := strings.ToLower(os.Getenv("LOG_FORMAT"))
	if format == "" {
		format = "json"
		if os.Getenv("IS_DEBUG") == "true" {
			format = "console"
		}
	}

	return Config{
		HTTPPort:       port,
		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		MaxOpenConns:   maxOpen,
		LogFormat:      format,
		LogLevel:       getenv("LOG_LEVEL", "info"),
		SeedFile:       getenv("SEED_FILE", "assets/users.csv"),
		StaticDir:      os.Getenv("STATIC_DIR"),
	}
}

func defaultDSN(driver string) string {
	if driver != "postgres" {
		return "users.db?_pragma=busy_timeout(5000)"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getenv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getenv("DB_HOST", "localhost"),
		getenv("DB_PORT", "5432"),
		getenv("DB_NAME", "users"),
	)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
