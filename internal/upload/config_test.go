package upload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "shift_manager_imports", cfg.Prefix)
	assert.Equal(t, 15*time.Minute, cfg.Interval)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SHIFTSYNC_WATCH_DIR", `C:\Shift Manager Summary`)
	t.Setenv("SHIFTSYNC_ENDPOINT", "https://storage.example.com/bucket")
	t.Setenv("SHIFTSYNC_INTERVAL", "5m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, `C:\Shift Manager Summary`, cfg.WatchDir)
	assert.Equal(t, "https://storage.example.com/bucket", cfg.Endpoint)
	assert.Equal(t, 5*time.Minute, cfg.Interval)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	err := Config{}.Validate()
	require.Error(t, err)

	err = Config{WatchDir: "x"}.Validate()
	require.Error(t, err)

	err = Config{WatchDir: "x", Endpoint: "https://s"}.Validate()
	require.NoError(t, err)
}
