package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("QDIRAC_LOG_LEVEL", "")
	t.Setenv("QDIRAC_MAX_DEPTH", "")
	t.Setenv("QDIRAC_FORMAT", "")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 512, cfg.Engine.MaxDepth)
	assert.Equal(t, FormatPlain, cfg.Render.Format)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "qdirac.yaml")

	cfg := DefaultConfig()
	cfg.Engine.MaxDepth = 64
	cfg.Render.Format = FormatLaTeX
	cfg.TUI.Input = "H*|0>"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "qdirac.yaml")
	require.NoError(t, os.WriteFile(path, []byte("render:\n  format: json\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.Render.Format)
	assert.Equal(t, 512, cfg.Engine.MaxDepth)
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "qdirac.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("applied without a file", func(t *testing.T) {
		t.Setenv("QDIRAC_LOG_LEVEL", "debug")
		t.Setenv("QDIRAC_MAX_DEPTH", "32")
		t.Setenv("QDIRAC_FORMAT", "latex")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, 32, cfg.Engine.MaxDepth)
		assert.Equal(t, FormatLaTeX, cfg.Render.Format)
	})

	t.Run("override file values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("QDIRAC_FORMAT", "json")
		path := filepath.Join(t.TempDir(), "qdirac.yaml")
		require.NoError(t, os.WriteFile(path, []byte("render:\n  format: latex\n"), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, FormatJSON, cfg.Render.Format)
	})

	t.Run("bad depth", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("QDIRAC_MAX_DEPTH", "deep")
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero depth", func(c *Config) { c.Engine.MaxDepth = 0 }},
		{"unknown format", func(c *Config) { c.Render.Format = "html" }},
		{"unknown level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
