package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 366, cfg.Scheduling.HorizonDays)
	assert.Equal(t, 800*time.Millisecond, cfg.Scheduling.DebounceWindow)
	assert.False(t, cfg.Sessions.CacheEnabled)
	assert.Equal(t, 2, cfg.Attendance.Workers)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SCHEDULE_HORIZON_DAYS", "90")
	t.Setenv("SCHEDULE_DEBOUNCE", "250ms")
	t.Setenv("SCHEDULE_FALLBACK_PATTERN", "Mon: 19:00-20:00")
	t.Setenv("ENABLE_SESSION_CACHE", "true")
	t.Setenv("SESSIONS_CACHE_TTL", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "https://gym.example, ,https://admin.gym.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Scheduling.HorizonDays)
	assert.Equal(t, 250*time.Millisecond, cfg.Scheduling.DebounceWindow)
	assert.Equal(t, "Mon: 19:00-20:00", cfg.Scheduling.FallbackPattern)
	assert.True(t, cfg.Sessions.CacheEnabled)
	assert.Equal(t, 5*time.Minute, cfg.Sessions.CacheTTL)
	assert.Equal(t, []string{"https://gym.example", "https://admin.gym.example"}, cfg.CORS.AllowedOrigins)
}
