package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/ensemble-engine/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LOOKBACK_WINDOW", "")
	t.Setenv("REGIME_DETECTION_WINDOW", "")
	t.Setenv("MIN_MODELS_REQUIRED", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ENSEMBLE_TUNING_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 252, cfg.LookbackWindow)
	assert.Equal(t, 60, cfg.RegimeDetectionWindow)
	assert.Equal(t, 3, cfg.MinModelsRequired)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Nil(t, cfg.Tuning)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LOOKBACK_WINDOW", "500")
	t.Setenv("REGIME_DETECTION_WINDOW", "30")
	t.Setenv("MIN_MODELS_REQUIRED", "5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("ENSEMBLE_TUNING_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.LookbackWindow)
	assert.Equal(t, 30, cfg.RegimeDetectionWindow)
	assert.Equal(t, 5, cfg.MinModelsRequired)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.DevMode)
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("LOOKBACK_WINDOW", "not-a-number")
	t.Setenv("ENSEMBLE_TUNING_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 252, cfg.LookbackWindow)
}

func TestValidate(t *testing.T) {
	cfg := &Config{LookbackWindow: 252, RegimeDetectionWindow: 60, MinModelsRequired: 3}
	assert.NoError(t, cfg.Validate())

	cfg.MinModelsRequired = 0
	assert.Error(t, cfg.Validate())

	cfg.MinModelsRequired = 3
	cfg.LookbackWindow = -1
	assert.Error(t, cfg.Validate())
}

func TestLoadTuningFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	content := []byte(`
thresholds:
  crisis_fear: 35
  high_volatility: 0.3
preferences:
  crisis:
    momentum: 0.5
    volatility: 0.5
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	t.Setenv("ENSEMBLE_TUNING_FILE", path)
	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg.Tuning)

	engineCfg := cfg.ToEngineConfig()
	require.NotNil(t, engineCfg.Thresholds)

	// Overridden fields apply, untouched fields keep their defaults
	assert.Equal(t, 35.0, engineCfg.Thresholds.CrisisFear)
	assert.Equal(t, 0.3, engineCfg.Thresholds.HighVol)
	assert.Equal(t, 0.4, engineCfg.Thresholds.CrisisVol)

	require.NotNil(t, engineCfg.Preferences)
	assert.Equal(t, 0.5, engineCfg.Preferences[domain.RegimeCrisis]["momentum"])
}

func TestLoadMissingTuningFile(t *testing.T) {
	t.Setenv("ENSEMBLE_TUNING_FILE", "/nonexistent/tuning.yaml")

	_, err := Load()
	assert.Error(t, err)
}

func TestToEngineConfigWithoutTuning(t *testing.T) {
	cfg := &Config{LookbackWindow: 100, RegimeDetectionWindow: 20, MinModelsRequired: 2}

	engineCfg := cfg.ToEngineConfig()
	assert.Equal(t, 100, engineCfg.LookbackWindow)
	assert.Equal(t, 20, engineCfg.RegimeDetectionWindow)
	assert.Equal(t, 2, engineCfg.MinModelsRequired)
	assert.Nil(t, engineCfg.Thresholds)
	assert.Nil(t, engineCfg.Preferences)
}
