package config_test

import (
	"testing"
	"time"

	"neotrack/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DEBUG", "DB_DRIVER", "DB_PATH", "NASA_API_KEY", "NASA_NEO_URL",
		"INGEST_START_DATE", "INGEST_RECORD_LIMIT", "INGEST_WINDOW_DAYS",
		"INGEST_REQUEST_DELAY", "INGEST_ARCHIVE_PATH",
		"NEO_WORKER_ENABLED", "NEO_WORKER_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg := config.Load()

	assert.Equal(t, "8080", cfg.App.Port)
	assert.False(t, cfg.App.Debug)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "./data/neo_tracker.db", cfg.DB.Path)
	assert.Equal(t, "DEMO_KEY", cfg.NASA.APIKey)
	assert.Equal(t, "https://api.nasa.gov/neo/rest/v1/feed", cfg.NASA.FeedURL)
	assert.Equal(t, "2024-01-01", cfg.Ingest.StartDate)
	assert.Equal(t, 10000, cfg.Ingest.RecordLimit)
	assert.Equal(t, 7, cfg.Ingest.WindowDays)
	assert.Equal(t, time.Second, cfg.Ingest.RequestDelay)
	assert.Equal(t, "./data/neo_records.json", cfg.Ingest.ArchivePath)
	assert.False(t, cfg.Workers.NEOEnabled)
	assert.Equal(t, 24*time.Hour, cfg.Workers.NEOInterval)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerSecond)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("INGEST_RECORD_LIMIT", "250")
	t.Setenv("INGEST_WINDOW_DAYS", "3")
	t.Setenv("INGEST_REQUEST_DELAY", "250ms")
	t.Setenv("NEO_WORKER_ENABLED", "true")
	t.Setenv("DEBUG", "1")

	cfg := config.Load()

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 250, cfg.Ingest.RecordLimit)
	assert.Equal(t, 3, cfg.Ingest.WindowDays)
	assert.Equal(t, 250*time.Millisecond, cfg.Ingest.RequestDelay)
	assert.True(t, cfg.Workers.NEOEnabled)
	assert.True(t, cfg.App.Debug)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("INGEST_RECORD_LIMIT", "many")
	t.Setenv("INGEST_REQUEST_DELAY", "soon")
	t.Setenv("NEO_WORKER_ENABLED", "da")

	cfg := config.Load()

	assert.Equal(t, 10000, cfg.Ingest.RecordLimit)
	assert.Equal(t, time.Second, cfg.Ingest.RequestDelay)
	assert.False(t, cfg.Workers.NEOEnabled)
}
