package utilities

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_DEV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FILE", "")
	t.Setenv("LOG_MAX_AGE_DAYS", "")
	cfg := ConfigFromEnv()
	assert.Equal(t, "info", cfg.Level)
	assert.False(t, cfg.Dev)
	assert.Equal(t, 7, cfg.MaxAgeDays)

	t.Setenv("LOG_DEV", "1")
	t.Setenv("LOG_MAX_AGE_DAYS", "3")
	cfg = ConfigFromEnv()
	assert.Equal(t, "debug", cfg.Level)
	assert.True(t, cfg.Dev)
	assert.Equal(t, 3, cfg.MaxAgeDays)
}

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, levelFromString("warning"))
	assert.Equal(t, zapcore.ErrorLevel, levelFromString("error"))
	assert.Equal(t, zapcore.InfoLevel, levelFromString("bogus"))
}

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "healthdash.log")
	lg, err := Init(Config{Level: "debug", File: path, MaxAgeDays: 1})
	require.NoError(t, err)
	lg.Info("hello")
	_ = lg.Sync()
	assert.FileExists(t, path)
}

func TestSnowflakeIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewSnowflakeIDWithNode(3)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSnowflakeBadNodeFallsBackToKSUID(t *testing.T) {
	id := NewSnowflakeIDWithNode(-1)
	assert.Len(t, id, 27)
}
