package strategies

import (
	"strings"

	"github.com/aristath/ensemble-engine/internal/domain"
	"github.com/aristath/ensemble-engine/internal/modules/performance"
)

// Model type labels inferred from model names
const (
	ModelTypeMomentum      = "momentum"
	ModelTypeVolatility    = "volatility"
	ModelTypeCorrelation   = "correlation"
	ModelTypeMeanReversion = "mean_reversion"
	ModelTypeTrend         = "trend"
)

// PreferenceTable maps a regime to the weight multipliers preferred for
// each model type in that regime. Model types absent from a regime's row
// multiply by 1; regimes absent from the table degrade to equal weights.
type PreferenceTable map[domain.Regime]map[string]float64

// DefaultPreferences returns the standard regime-to-model-type preference
// table. RECOVERY and TRANSITION carry no preferences, so they weight all
// models equally.
func DefaultPreferences() PreferenceTable {
	return PreferenceTable{
		domain.RegimeCrisis: {
			ModelTypeMomentum: 0.4, ModelTypeVolatility: 0.3, ModelTypeCorrelation: 0.3,
		},
		domain.RegimeRiskOff: {
			ModelTypeCorrelation: 0.4, ModelTypeVolatility: 0.3, ModelTypeMomentum: 0.3,
		},
		domain.RegimeRiskOn: {
			ModelTypeMomentum: 0.4, ModelTypeMeanReversion: 0.3, ModelTypeTrend: 0.3,
		},
		domain.RegimeHighVolatility: {
			ModelTypeVolatility: 0.5, ModelTypeMomentum: 0.3, ModelTypeCorrelation: 0.2,
		},
		domain.RegimeLowVolatility: {
			ModelTypeMeanReversion: 0.4, ModelTypeTrend: 0.3, ModelTypeMomentum: 0.3,
		},
		domain.RegimeNormal: {
			ModelTypeTrend: 0.3, ModelTypeMomentum: 0.3, ModelTypeMeanReversion: 0.2, ModelTypeVolatility: 0.2,
		},
	}
}

// InferModelType classifies a model by substring matching on its name.
// Unmatched names default to trend.
func InferModelType(modelName string) string {
	name := strings.ToLower(modelName)
	switch {
	case strings.Contains(name, "momentum") || strings.Contains(name, "trend"):
		return ModelTypeMomentum
	case strings.Contains(name, "volatility") || strings.Contains(name, "vol"):
		return ModelTypeVolatility
	case strings.Contains(name, "correlation") || strings.Contains(name, "corr"):
		return ModelTypeCorrelation
	case strings.Contains(name, "reversion") || strings.Contains(name, "mean"):
		return ModelTypeMeanReversion
	default:
		return ModelTypeTrend
	}
}

// RegimeAware multiplies a uniform base weight by the preference for each
// model's inferred type under the current regime.
type RegimeAware struct {
	Preferences PreferenceTable
}

// Name returns the strategy identifier
func (RegimeAware) Name() domain.Strategy { return domain.StrategyRegimeAware }

// ComputeWeights applies the regime preference multipliers and normalizes
func (s RegimeAware) ComputeWeights(preds []domain.ModelPrediction, current domain.Regime, _ *performance.Ledger) (map[string]float64, error) {
	if len(preds) == 0 {
		return nil, ErrNoUsableInput
	}

	prefs := s.Preferences
	if prefs == nil {
		prefs = DefaultPreferences()
	}
	regimePrefs := prefs[current]

	names := modelNames(preds)
	base := 1.0 / float64(len(names))
	weights := make(map[string]float64, len(names))
	for _, name := range names {
		multiplier := 1.0
		if m, ok := regimePrefs[InferModelType(name)]; ok {
			multiplier = m
		}
		weights[name] = base * multiplier
	}
	return normalizeOrEqual(weights, names), nil
}
