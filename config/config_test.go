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

	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.Equal(t, "gator-hub-storage", cfg.Storage.Key)
	assert.Equal(t, "local", cfg.Chat.Strategy)
	assert.Equal(t, 1500*time.Millisecond, cfg.Chat.LocalDelay)
	assert.Equal(t, 3, cfg.Gate.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Gate.InitDelay)
	assert.Equal(t, "X-API-Key", cfg.Auth.Header)
	assert.True(t, cfg.IsDevelopment())
	assert.True(t, cfg.Features.IsEnabled(FeatureEventReminders))
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("CHAT_STRATEGY", "remote")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("GATE_MAX_ATTEMPTS", "5")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("FEATURE_CHAT_QUICK_SUGGESTIONS", "false")
	t.Setenv("CHAT_CB_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageRedis, cfg.Storage.Backend)
	assert.Equal(t, "remote", cfg.Chat.Strategy)
	assert.Equal(t, 5, cfg.Gate.MaxAttempts)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Chat.CircuitBreakerTimeout)
	assert.Zero(t, cfg.Chat.Timeout)
	assert.False(t, cfg.Features.IsEnabled(FeatureQuickSuggestions))
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("CHAT_STRATEGY", "remote")
	t.Setenv("GATE_MAX_ATTEMPTS", "0")

	_, err := Load()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "configuration errors:")
	assert.Contains(t, msg, "DATABASE_URL is required")
	assert.Contains(t, msg, "ANTHROPIC_API_KEY is required")
	assert.Contains(t, msg, "GATE_MAX_ATTEMPTS must be at least 1")
	assert.Contains(t, msg, "STAFF_API_KEY_HASHES is required in production")
}

func TestValidate_UnknownValues(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("CHAT_STRATEGY", "oracle")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `STORAGE_BACKEND must be memory, redis or postgres, got "sqlite"`)
	assert.Contains(t, err.Error(), `CHAT_STRATEGY must be local or remote, got "oracle"`)
	assert.Contains(t, err.Error(), `APP_TIMEZONE "Mars/Olympus"`)
}

func TestFeatureFlags(t *testing.T) {
	ff := LoadFeatureFlags()
	now := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	ff.now = func() time.Time { return now }

	assert.False(t, ff.IsEnabled("unknown.feature"))
	assert.ErrorIs(t, ff.SetEnabled("unknown.feature", true), ErrFeatureNotFound)

	require.NoError(t, ff.SetEnabled(FeatureStaffWrites, false))
	assert.False(t, ff.IsEnabled(FeatureStaffWrites))

	later := now.Add(time.Hour)
	require.NoError(t, ff.SetWindow(FeatureEventReminders, &later, nil))
	assert.False(t, ff.IsEnabled(FeatureEventReminders))

	earlier := now.Add(-time.Hour)
	require.NoError(t, ff.SetWindow(FeatureEventReminders, nil, &earlier))
	assert.False(t, ff.IsEnabled(FeatureEventReminders))

	require.NoError(t, ff.SetWindow(FeatureEventReminders, &earlier, &later))
	assert.True(t, ff.IsEnabled(FeatureEventReminders))

	all := ff.All()
	require.Len(t, all, 4)
	assert.Equal(t, FeatureQuickSuggestions, all[0].Name)
	assert.Equal(t, "FEATURE_CHAT_QUICK_SUGGESTIONS", featureNameToEnvKey(FeatureQuickSuggestions))
}
