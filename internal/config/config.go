package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type LogConfig struct {
	Level     string
	Format    string
	Component string
	Source    bool
}

type DBConfig struct {
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type HTTPConfig struct {
	Host string
	Port string
}

// QuotaConfig controls the free-tier engagement gate. The ceiling is a
// product constant, overridable per environment.
type QuotaConfig struct {
	FreeDailyCeiling int
}

// RecommenderConfig points at the best-effort feedback/training endpoint.
// An empty BaseURL disables notifications entirely.
type RecommenderConfig struct {
	BaseURL string
	Timeout time.Duration
}

type Config struct {
	App struct {
		ENV string
	}

	Log         LogConfig
	DB          DBConfig
	Redis       RedisConfig
	HTTP        HTTPConfig
	Quota       QuotaConfig
	Recommender RecommenderConfig
}

func New() *Config {
	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "development")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "engagement_api")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "wellnoosh")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "127.0.0.1")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "8080")

	// Quota
	cfg.Quota.FreeDailyCeiling = 5
	if s := os.Getenv("QUOTA_FREE_DAILY"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			cfg.Quota.FreeDailyCeiling = n
		}
	}

	// Recommendation feedback endpoint
	cfg.Recommender.BaseURL = getEnvDefault("RECOMMENDER_URL", "")
	cfg.Recommender.Timeout = 5 * time.Second
	if s := os.Getenv("RECOMMENDER_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.Recommender.Timeout = d
		}
	}

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
