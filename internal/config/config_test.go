package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir is a stand-in for t.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir()) // no config.yaml present

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "EVENT_PUBLISHER_DATE", cfg.Dataset.DateColumn)
	assert.Equal(t, "CDSPEND", cfg.Dataset.SpendColumn)
	assert.Equal(t, "APPLY_START", cfg.Dataset.ApplyStartColumn)
	assert.Equal(t, "MAIN_REF_NUMBER", cfg.Dataset.JobRefColumn)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 5000, cfg.Envelope.MinBudget, 1e-9)
	assert.InDelta(t, 3.0, cfg.Envelope.MinCPAS, 1e-9)
	assert.InDelta(t, 15.0, cfg.Envelope.MaxCPAS, 1e-9)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FORECAST_SERVER_PORT", "9000")
	t.Setenv("FORECAST_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
