package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	App struct {
		Port        string
		Debug       bool
		FrontendURL string
	}
	DB struct {
		Driver   string
		Path     string
		Host     string
		Port     string
		User     string
		Password string
		DBName   string
		SSLMode  string
	}
	Redis struct {
		Host     string
		Port     string
		Password string
		DB       int
	}
	NASA struct {
		APIKey  string
		FeedURL string
	}
	Ingest struct {
		StartDate    string
		RecordLimit  int
		WindowDays   int
		RequestDelay time.Duration
		ArchivePath  string
	}
	Workers struct {
		NEOEnabled  bool
		NEOInterval time.Duration
	}
	RateLimit struct {
		RequestsPerSecond int
		Burst             int
	}
}

func Load() *Config {
	cfg := &Config{}

	// App
	cfg.App.Port = getEnv("PORT", "8080")
	cfg.App.Debug = getEnvAsBool("DEBUG", false)
	cfg.App.FrontendURL = getEnv("FRONTEND_URL", "http://localhost:3000")

	// DB
	cfg.DB.Driver = getEnv("DB_DRIVER", "sqlite")
	cfg.DB.Path = getEnv("DB_PATH", "./data/neo_tracker.db")
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.DBName = getEnv("DB_NAME", "neo_tracker")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	// Redis
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnv("REDIS_PORT", "6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)

	// NASA
	cfg.NASA.APIKey = getEnv("NASA_API_KEY", "DEMO_KEY")
	cfg.NASA.FeedURL = getEnv("NASA_NEO_URL", "https://api.nasa.gov/neo/rest/v1/feed")

	// Ingest
	cfg.Ingest.StartDate = getEnv("INGEST_START_DATE", "2024-01-01")
	cfg.Ingest.RecordLimit = getEnvAsInt("INGEST_RECORD_LIMIT", 10000)
	cfg.Ingest.WindowDays = getEnvAsInt("INGEST_WINDOW_DAYS", 7)
	cfg.Ingest.RequestDelay = getEnvAsDuration("INGEST_REQUEST_DELAY", time.Second)
	cfg.Ingest.ArchivePath = getEnv("INGEST_ARCHIVE_PATH", "./data/neo_records.json")

	// Workers
	cfg.Workers.NEOEnabled = getEnvAsBool("NEO_WORKER_ENABLED", false)
	cfg.Workers.NEOInterval = getEnvAsDuration("NEO_WORKER_INTERVAL", 24*time.Hour)

	// Rate Limit
	cfg.RateLimit.RequestsPerSecond = getEnvAsInt("RATE_LIMIT_RPS", 10)
	cfg.RateLimit.Burst = getEnvAsInt("RATE_LIMIT_BURST", 20)

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if dur, err := time.ParseDuration(value); err == nil {
			return dur
		}
	}
	return defaultValue
}
