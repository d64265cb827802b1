package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentaid/assessment-engine/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "./assessments.db", cfg.Database.Path)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 15*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, time.Minute, cfg.ProgramYear.ReloadInterval)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ENV", config.EnvProduction)
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("PROGRAM_YEAR_DIR", "/etc/programyears")
	t.Setenv("PROGRAM_YEAR_RELOAD_INTERVAL", "0")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.EnvProduction, cfg.Env)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 90*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "/etc/programyears", cfg.ProgramYear.Dir)
	assert.Zero(t, cfg.ProgramYear.ReloadInterval)
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}
