package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLoader returns a loader backed by a fresh viper instance so tests
// don't leak state through the global viper.
func newTestLoader() *Loader {
	return &Loader{v: viper.New()}
}

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := newTestLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://localhost:9003", cfg.Engine.URL)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tally.yaml")
	content := `
log_level: debug
engine:
  url: http://engine:9003
parser:
  row_gap_threshold: 20
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := newTestLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://engine:9003", cfg.Engine.URL)
	assert.InDelta(t, 20.0, cfg.Parser.RowGapThreshold, 1e-9)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Unset keys keep defaults.
	assert.Equal(t, 50, cfg.Server.MaxUploadMB)
}

func TestLoadWithFileMissing(t *testing.T) {
	_, err := newTestLoader().LoadWithFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadWithFileInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tally.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: -1\n"), 0o600))

	_, err := newTestLoader().LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TALLY_ENGINE_URL", "http://override:9003")
	t.Setenv("TALLY_LOG_LEVEL", "warn")

	cfg, err := newTestLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "http://override:9003", cfg.Engine.URL)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestGetConfigSearchPaths(t *testing.T) {
	paths := GetConfigSearchPaths()
	assert.Contains(t, paths, ".")
	assert.Contains(t, paths, "/etc/tally")
}
