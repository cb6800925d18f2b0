package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "aurum.scoring", cfg.ScoringQueueName)
	assert.Equal(t, 3, cfg.ScoringMaxRetries)
	assert.Equal(t, 60*time.Second, cfg.ScoringRetryBackoff)
	assert.Equal(t, 100, cfg.BulkBatchSize)
	assert.Equal(t, time.Second, cfg.BulkBatchPause)
	assert.Equal(t, 5*time.Minute, cfg.HierarchyCacheTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/aurum.db")
	t.Setenv("SCORING_MAX_RETRIES", "5")
	t.Setenv("SCORING_RETRY_BACKOFF", "30s")
	t.Setenv("SCORING_BULK_BATCH_SIZE", "250")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "/tmp/aurum.db", cfg.SQLitePath)
	assert.Equal(t, 5, cfg.ScoringMaxRetries)
	assert.Equal(t, 30*time.Second, cfg.ScoringRetryBackoff)
	assert.Equal(t, 250, cfg.BulkBatchSize)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SCORING_MAX_RETRIES", "not-a-number")
	t.Setenv("SCORING_RETRY_BACKOFF", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.ScoringMaxRetries)
	assert.Equal(t, 60*time.Second, cfg.ScoringRetryBackoff)
}
