package config

import (
	"os"
	"strconv"
	"strings"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int

	LogLevel  string
	LogFormat string

	DB DBConfig

	// SaveAtomic оборачивает сохранение layout и его элементов в одну транзакцию.
	SaveAtomic bool
	Timezone   string

	CORSOrigins []string
	Reviews     ReviewsConfig
}

type DBConfig struct {
	Driver   string // sqlite3 | postgres
	Path     string
	Host     string
	Port     int
	UserName string
	Password string
	DBName   string
	SSLMode  string
}

type ReviewsConfig struct {
	Enabled        bool
	Schedule       string
	BaseURL        string
	SendgridAPIKey string
	FromName       string
	FromEmail      string
	SandboxMode    bool
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3000"),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
		DB: DBConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite3"),
			Path:     getEnv("DB_PATH", "data/db/planner.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			UserName: getEnv("DB_USERNAME", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "planner"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		SaveAtomic:  getEnvAsBool("SAVE_ATOMIC", false),
		Timezone:    getEnv("TZ_NAME", "Local"),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"*"}),
		Reviews: ReviewsConfig{
			Enabled:        getEnvAsBool("REVIEWS_ENABLED", false),
			Schedule:       getEnv("REVIEWS_SCHEDULE", "0 12 * * *"),
			BaseURL:        getEnv("REVIEWS_BASE_URL", "http://localhost:3000"),
			SendgridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromName:       getEnv("REVIEWS_FROM_NAME", "Restaurant"),
			FromEmail:      getEnv("REVIEWS_FROM_EMAIL", "no-reply@example.com"),
			SandboxMode:    getEnvAsBool("SENDGRID_SANDBOX", false),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsList(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
