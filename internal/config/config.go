package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DBPath          string
	JWTSecret       string
	TokenTTL        time.Duration
	CORSOrigins     []string
	MigrationsDir   string
	LogLevel        string
	ShutdownTimeout time.Duration
}

// Load reads the configuration from the environment. Files in envFiles are
// loaded first when present; variables already set win over file values.
// An empty MigrationsDir selects the migrations embedded in the binary.
func Load(envFiles ...string) Config {
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		DBPath:          getEnv("DB_PATH", "./data/mindgarden.db"),
		JWTSecret:       getEnv("JWT_SECRET", "change-this-secret"),
		TokenTTL:        time.Duration(getEnvInt("TOKEN_TTL_HOURS", 72)) * time.Hour,
		CORSOrigins:     getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),
		MigrationsDir:   getEnv("MIGRATIONS_DIR", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
