package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"qdirac/internal/config"
)

func TestNewLevels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		cfg := config.DefaultConfig().Logging
		cfg.Level = lvl
		logger, err := New(cfg)
		require.NoError(t, err, lvl)

		want, _ := zapcore.ParseLevel(lvl)
		assert.True(t, logger.Core().Enabled(want), lvl)
		if want > zapcore.DebugLevel {
			assert.False(t, logger.Core().Enabled(want-1), lvl)
		}
	}
}

func TestNewBadLevel(t *testing.T) {
	cfg := config.DefaultConfig().Logging
	cfg.Level = "loud"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qdirac.log")
	logger, err := New(config.LoggingConfig{
		Level:       "info",
		Encoding:    "json",
		OutputPaths: []string{path},
	})
	require.NoError(t, err)

	logger.Info("reduced")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"reduced"`), string(data))
}
