package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Florex0Real/linux-system-manager/internal/errors"
)

// isolate points the default config lookup at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.RefreshInterval)
	assert.Equal(t, time.Second, cfg.CPUWindow)
	assert.Equal(t, "/", cfg.DiskPath)
	assert.Equal(t, 10*time.Second, cfg.Command.Timeout)
	assert.Equal(t, "/bin/sh", cfg.Command.Shell)
	assert.Equal(t, "127.0.0.1:8080", cfg.Web.Addr)
	assert.Equal(t, 50, cfg.Web.ProcessLimit)
	assert.Equal(t, 20, cfg.TUI.ProcessLimit)
	assert.Equal(t, 20, cfg.TUI.FileLimit)
}

func TestLoadFromDefaultPath(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ConfigDirName), 0o755))
	content := "refresh_interval: 5s\nweb:\n  process_limit: 10\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigDirName, ConfigFileName), []byte(content), 0o644))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 10, cfg.Web.ProcessLimit)
	assert.Equal(t, 20, cfg.TUI.ProcessLimit, "unset keys keep defaults")
}

func TestLoadEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("LSM_COMMAND_TIMEOUT", "3s")
	t.Setenv("LSM_REFRESH_INTERVAL", "750ms")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Command.Timeout)
	assert.Equal(t, 750*time.Millisecond, cfg.RefreshInterval)
}

func TestLoadExplicitMissing(t *testing.T) {
	isolate(t)

	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero interval", func(c *Config) { c.RefreshInterval = 0 }},
		{"negative window", func(c *Config) { c.CPUWindow = -time.Second }},
		{"zero timeout", func(c *Config) { c.Command.Timeout = 0 }},
		{"empty shell", func(c *Config) { c.Command.Shell = "" }},
		{"empty disk path", func(c *Config) { c.DiskPath = "" }},
		{"negative limit", func(c *Config) { c.TUI.FileLimit = -1 }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeConfig))
		})
	}
}

func TestPathHonoursXDG(t *testing.T) {
	dir := isolate(t)
	assert.Equal(t, filepath.Join(dir, "lsm", "config.yaml"), Path())
}
