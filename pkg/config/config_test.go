package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatConsole, cfg.LogFormat)
	assert.Equal(t, DefaultRewriteThreshold, cfg.RewriteThreshold)
	assert.Positive(t, cfg.Workers)
	assert.False(t, cfg.SkipPacks)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
workers = 3
log_level = "debug"
log_format = "json"
rewrite_threshold = 0.8
skip_packs = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Workers:          3,
		LogLevel:         LogLevelDebug,
		LogFormat:        LogFormatJSON,
		RewriteThreshold: 0.8,
		SkipPacks:        true,
	}, cfg)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `log_level = "warn"`))
	require.NoError(t, err)
	assert.Equal(t, LogLevelWarn, cfg.LogLevel)
	assert.Equal(t, LogFormatConsole, cfg.LogFormat)
	assert.Equal(t, DefaultRewriteThreshold, cfg.RewriteThreshold)
}

func TestLoadForRepo(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("workers = 7\n"), 0o644))
	cfg, err := LoadForRepo(dir)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		errIs    error
	}{
		{name: "syntax", contents: "workers = = 1"},
		{name: "unknown-key", contents: "colour = \"red\""},
		{name: "zero-workers", contents: "workers = 0", errIs: errInvalidWorkers},
		{name: "bad-level", contents: `log_level = "loud"`, errIs: errInvalidLogLevel},
		{name: "bad-format", contents: `log_format = "xml"`, errIs: errInvalidLogFormat},
		{name: "threshold-high", contents: "rewrite_threshold = 1.5", errIs: errInvalidThreshold},
		{name: "threshold-low", contents: "rewrite_threshold = -0.1", errIs: errInvalidThreshold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.contents))
			require.Error(t, err)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
			}
		})
	}
}
