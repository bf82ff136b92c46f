package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 8*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ScreenLockOKTimeout)
	assert.Equal(t, 30*time.Minute, cfg.ScreenLockWarnTimeout)
	assert.Equal(t, "reports", cfg.ReportDir)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guarddog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"probe_timeout: 3s\nscreen_lock_ok_timeout: 10m\nreport_dir: out\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 10*time.Minute, cfg.ScreenLockOKTimeout)
	// Unset keys keep their defaults.
	assert.Equal(t, 30*time.Minute, cfg.ScreenLockWarnTimeout)
	assert.Equal(t, "out", cfg.ReportDir)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guarddog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("probe_timeout: [broken\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8*time.Second, cfg.ProbeTimeout)
}
