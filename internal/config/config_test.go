package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/leaderboard")
	t.Setenv("TIMEZONE", "")
	t.Setenv("PORT", "")
	t.Setenv("RUN_ON_STARTUP", "")
	t.Setenv("LEADERBOARD_ACTIVITY_TYPES", "")
	t.Setenv("ALLOWED_ACTIVITY_TYPES", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":3333", cfg.Addr())
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, []string{"Run"}, cfg.LeaderboardActivityTypes)
	assert.Empty(t, cfg.NotifyActivityTypes)
	assert.Equal(t, "0 */10 5-23 * * *", cfg.LeaderboardSchedule)
	assert.Equal(t, "0 0 6 1 * *", cfg.MonthlyResultsSchedule)
	assert.True(t, cfg.RunOnStartup)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/leaderboard")
	t.Setenv("TIMEZONE", "Europe/Berlin")
	t.Setenv("PORT", "8080")
	t.Setenv("ALLOWED_ACTIVITY_TYPES", "Run, Walk")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("RUN_ON_STARTUP", "false")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", cfg.Location.String())
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, []string{"Run", "Walk"}, cfg.NotifyActivityTypes)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.False(t, cfg.RunOnStartup)
}

func TestFromEnvErrors(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/leaderboard")
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err = FromEnv()
	assert.Error(t, err)
}
