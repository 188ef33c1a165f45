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

	assert.Equal(t, 5*time.Second, cfg.Polling.Interval)
	assert.Equal(t, 60, cfg.Polling.MaxAttempts)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.Flows.AllowSkipWaiting)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LEDGER_BASE_URL", "https://ledger.example/api/")
	t.Setenv("SHARE_BASE_URL", "https://passit.example/")
	t.Setenv("POLL_INTERVAL", "250ms")
	t.Setenv("POLL_MAX_ATTEMPTS", "3")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://ledger.example/api", cfg.Ledger.BaseURL)
	assert.Equal(t, "https://passit.example", cfg.Artifacts.ShareBaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Polling.Interval)
	assert.Equal(t, 3, cfg.Polling.MaxAttempts)
	assert.True(t, cfg.RedisEnabled())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("POLL_MAX_ATTEMPTS", "0")
	_, err := Load()
	assert.ErrorContains(t, err, "POLL_MAX_ATTEMPTS")
}

func TestLoadRejectsBadLedgerURL(t *testing.T) {
	t.Setenv("LEDGER_BASE_URL", "not a url")
	_, err := Load()
	assert.ErrorContains(t, err, "LEDGER_BASE_URL")
}
