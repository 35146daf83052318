// Package strategies implements the eight ensemble weighting strategies.
// Every strategy returns a weight map over the supplied model names with
// non-negative weights summing to 1, degrading to equal weights when its
// inputs can not drive the formula.
package strategies

import (
	"errors"

	"github.com/aristath/ensemble-engine/internal/domain"
	"github.com/aristath/ensemble-engine/internal/modules/performance"
)

// ErrNoUsableInput signals that a strategy had no usable numeric
// predictions to work with; the caller substitutes equal weights.
var ErrNoUsableInput = errors.New("no usable numeric predictions")

// WeightingStrategy turns a set of model predictions plus the current
// regime into a normalized weight map.
type WeightingStrategy interface {
	Name() domain.Strategy
	ComputeWeights(preds []domain.ModelPrediction, current domain.Regime, ledger *performance.Ledger) (map[string]float64, error)
}

// ForStrategy selects the strategy implementation for a Strategy value.
// Unknown values fall back to equal weighting.
func ForStrategy(s domain.Strategy, prefs PreferenceTable) WeightingStrategy {
	switch s {
	case domain.StrategyEqualWeight:
		return EqualWeight{}
	case domain.StrategyPerformanceWeighted:
		return PerformanceWeighted{}
	case domain.StrategyVolatilityAdjusted:
		return VolatilityAdjusted{}
	case domain.StrategyRegimeAware:
		return RegimeAware{Preferences: prefs}
	case domain.StrategyCorrelationAdjusted:
		return CorrelationAdjusted{}
	case domain.StrategyDynamicWeight:
		return DynamicWeight{Preferences: prefs}
	case domain.StrategyRiskParity:
		return RiskParity{}
	case domain.StrategyBayesianAveraging:
		return BayesianAveraging{}
	default:
		return EqualWeight{}
	}
}

// modelNames extracts the model identifiers in prediction order
func modelNames(preds []domain.ModelPrediction) []string {
	names := make([]string, len(preds))
	for i, pred := range preds {
		names[i] = pred.ModelName
	}
	return names
}

// equalWeights assigns 1/n to every name
func equalWeights(names []string) map[string]float64 {
	weights := make(map[string]float64, len(names))
	if len(names) == 0 {
		return weights
	}
	weight := 1.0 / float64(len(names))
	for _, name := range names {
		weights[name] = weight
	}
	return weights
}

// normalizeOrEqual scales weights to sum to 1, substituting equal weights
// when the raw total is not positive.
func normalizeOrEqual(weights map[string]float64, names []string) map[string]float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return equalWeights(names)
	}
	for name, w := range weights {
		weights[name] = w / total
	}
	return weights
}
