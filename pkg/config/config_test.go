package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"HEALTHDASH_BASE_URL", "HEALTHDASH_DB", "HEALTHDASH_REMINDER_TIME",
		"HEALTHDASH_DEBOUNCE", "HEALTHDASH_POLL_INITIAL", "HEALTHDASH_POLL_INTERVAL",
		"HEALTHDASH_REQUEST_TIMEOUT", "HEALTHDASH_RATE_LIMIT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.Debounce)
	assert.Equal(t, 30*time.Minute, cfg.PollInitial)
	assert.Equal(t, 5*time.Minute, cfg.PollInterval)
	assert.Equal(t, "14:00", cfg.ReminderTime)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "healthdash.yaml")
	body := "base_url: https://health.example.com\npoll_interval: 1m\ndebounce: 250ms\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("HEALTHDASH_POLL_INTERVAL", "2m")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://health.example.com", cfg.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
	assert.Equal(t, 2*time.Minute, cfg.PollInterval)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad duration", map[string]string{"HEALTHDASH_DEBOUNCE": "soon"}},
		{"bad url", map[string]string{"HEALTHDASH_BASE_URL": "localhost:5000"}},
		{"bad reminder", map[string]string{"HEALTHDASH_REMINDER_TIME": "2pm"}},
		{"bad rate", map[string]string{"HEALTHDASH_RATE_LIMIT": "fast"}},
		{"zero interval", map[string]string{"HEALTHDASH_POLL_INTERVAL": "0s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
