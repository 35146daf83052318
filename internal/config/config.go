package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/aristath/ensemble-engine/internal/domain"
	"github.com/aristath/ensemble-engine/internal/modules/ensemble"
	"github.com/aristath/ensemble-engine/internal/modules/ensemble/strategies"
	"github.com/aristath/ensemble-engine/internal/modules/regime"
)

// Config holds application configuration
type Config struct {
	LookbackWindow        int
	RegimeDetectionWindow int
	MinModelsRequired     int
	LogLevel              string
	DevMode               bool
	TuningFile            string
	Tuning                *Tuning
}

// Tuning optionally overrides the compiled classification thresholds and
// regime preference table. Absent fields keep their defaults.
type Tuning struct {
	Thresholds  *ThresholdOverrides           `yaml:"thresholds"`
	Preferences map[string]map[string]float64 `yaml:"preferences"`
}

// ThresholdOverrides mirrors regime.Thresholds with optional fields
type ThresholdOverrides struct {
	CrisisFear  *float64 `yaml:"crisis_fear"`
	CrisisVol   *float64 `yaml:"crisis_volatility"`
	HighVol     *float64 `yaml:"high_volatility"`
	RiskOffCorr *float64 `yaml:"risk_off_correlation"`
	RiskOffVol  *float64 `yaml:"risk_off_volatility"`
	LowVol      *float64 `yaml:"low_volatility"`
	RiskOnCorr  *float64 `yaml:"risk_on_correlation"`
	RiskOnVol   *float64 `yaml:"risk_on_volatility"`
}

// Load reads configuration from environment variables and, when
// ENSEMBLE_TUNING_FILE is set, the YAML tuning file it points to.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		LookbackWindow:        getEnvAsInt("LOOKBACK_WINDOW", 252),
		RegimeDetectionWindow: getEnvAsInt("REGIME_DETECTION_WINDOW", 60),
		MinModelsRequired:     getEnvAsInt("MIN_MODELS_REQUIRED", 3),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		DevMode:               getEnvAsBool("DEV_MODE", false),
		TuningFile:            getEnv("ENSEMBLE_TUNING_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.TuningFile != "" {
		tuning, err := loadTuning(cfg.TuningFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load tuning file: %w", err)
		}
		cfg.Tuning = tuning
	}

	return cfg, nil
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	if c.LookbackWindow <= 0 {
		return fmt.Errorf("LOOKBACK_WINDOW must be positive, got %d", c.LookbackWindow)
	}
	if c.RegimeDetectionWindow <= 0 {
		return fmt.Errorf("REGIME_DETECTION_WINDOW must be positive, got %d", c.RegimeDetectionWindow)
	}
	if c.MinModelsRequired <= 0 {
		return fmt.Errorf("MIN_MODELS_REQUIRED must be positive, got %d", c.MinModelsRequired)
	}
	return nil
}

// ToEngineConfig converts the application config into the engine's
// configuration, resolving tuning overrides onto the defaults.
func (c *Config) ToEngineConfig() ensemble.Config {
	engineCfg := ensemble.Config{
		LookbackWindow:        c.LookbackWindow,
		RegimeDetectionWindow: c.RegimeDetectionWindow,
		MinModelsRequired:     c.MinModelsRequired,
	}

	if c.Tuning == nil {
		return engineCfg
	}

	if c.Tuning.Thresholds != nil {
		thresholds := regime.DefaultThresholds()
		applyThresholdOverrides(&thresholds, c.Tuning.Thresholds)
		engineCfg.Thresholds = &thresholds
	}

	if len(c.Tuning.Preferences) > 0 {
		prefs := make(strategies.PreferenceTable, len(c.Tuning.Preferences))
		for regimeName, multipliers := range c.Tuning.Preferences {
			prefs[domain.Regime(regimeName)] = multipliers
		}
		engineCfg.Preferences = prefs
	}

	return engineCfg
}

func applyThresholdOverrides(thresholds *regime.Thresholds, overrides *ThresholdOverrides) {
	if overrides.CrisisFear != nil {
		thresholds.CrisisFear = *overrides.CrisisFear
	}
	if overrides.CrisisVol != nil {
		thresholds.CrisisVol = *overrides.CrisisVol
	}
	if overrides.HighVol != nil {
		thresholds.HighVol = *overrides.HighVol
	}
	if overrides.RiskOffCorr != nil {
		thresholds.RiskOffCorr = *overrides.RiskOffCorr
	}
	if overrides.RiskOffVol != nil {
		thresholds.RiskOffVol = *overrides.RiskOffVol
	}
	if overrides.LowVol != nil {
		thresholds.LowVol = *overrides.LowVol
	}
	if overrides.RiskOnCorr != nil {
		thresholds.RiskOnCorr = *overrides.RiskOnCorr
	}
	if overrides.RiskOnVol != nil {
		thresholds.RiskOnVol = *overrides.RiskOnVol
	}
}

func loadTuning(path string) (*Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tuning Tuning
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return nil, fmt.Errorf("invalid tuning YAML: %w", err)
	}
	return &tuning, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
