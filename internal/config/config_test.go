package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUDITOR_DB_PATH", filepath.Join(t.TempDir(), "auditor.db"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 15*time.Minute, cfg.FailedLoginWindow)
	assert.Equal(t, 5, cfg.FailedLoginThreshold)
	assert.Equal(t, time.Minute, cfg.NotifyInterval)
	assert.Empty(t, cfg.NotifyURLs)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUDITOR_DB_PATH", filepath.Join(t.TempDir(), "auditor.db"))
	t.Setenv("AUDITOR_ENV", "production")
	t.Setenv("AUDITOR_FAILED_LOGIN_WINDOW", "5m")
	t.Setenv("AUDITOR_FAILED_LOGIN_THRESHOLD", "3")
	t.Setenv("AUDITOR_NOTIFY_URLS", "discord://token@id,slack://token@channel")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 5*time.Minute, cfg.FailedLoginWindow)
	assert.Equal(t, 3, cfg.FailedLoginThreshold)
	assert.Equal(t, []string{"discord://token@id", "slack://token@channel"}, cfg.NotifyURLs)
}
