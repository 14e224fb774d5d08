package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybreakhq/daybreak/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "0.0.0.0:8080", cfg.ListenAddr)
	assert.Equal(t, "daybreak.db", cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Equal(t, 500, cfg.FeedbackFetchLimit)
	assert.Equal(t, 30*time.Second, cfg.PlanLockTTL)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DAYBREAK_ADDR", "127.0.0.1:9999")
	t.Setenv("DATABASE_URL", "postgres://localhost/daybreak")
	t.Setenv("DAYBREAK_FEEDBACK_LIMIT", "50")
	t.Setenv("DAYBREAK_PLAN_LOCK_TTL", "5s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "127.0.0.1:9999", cfg.ListenAddr)
	assert.Equal(t, "postgres://localhost/daybreak", cfg.DatabaseURL)
	assert.Equal(t, 50, cfg.FeedbackFetchLimit)
	assert.Equal(t, 5*time.Second, cfg.PlanLockTTL)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("DAYBREAK_FEEDBACK_LIMIT", "plenty")
	t.Setenv("DAYBREAK_PLAN_LOCK_TTL", "soon")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.FeedbackFetchLimit)
	assert.Equal(t, 30*time.Second, cfg.PlanLockTTL)
}
