package strategies

import (
	"github.com/aristath/ensemble-engine/internal/domain"
	"github.com/aristath/ensemble-engine/internal/modules/performance"
)

// Blend coefficients for the dynamic strategy
const (
	dynamicPerformanceShare = 0.4
	dynamicVolatilityShare  = 0.3
	dynamicRegimeShare      = 0.3
)

// DynamicWeight blends the performance-weighted, volatility-adjusted and
// regime-aware strategies into one weight map.
type DynamicWeight struct {
	Preferences PreferenceTable
}

// Name returns the strategy identifier
func (DynamicWeight) Name() domain.Strategy { return domain.StrategyDynamicWeight }

// ComputeWeights combines the three component strategies as
// 0.4*performance + 0.3*volatility + 0.3*regime and renormalizes.
func (s DynamicWeight) ComputeWeights(preds []domain.ModelPrediction, current domain.Regime, ledger *performance.Ledger) (map[string]float64, error) {
	if len(preds) == 0 {
		return nil, ErrNoUsableInput
	}

	perfWeights, err := PerformanceWeighted{}.ComputeWeights(preds, current, ledger)
	if err != nil {
		return nil, err
	}
	volWeights, err := VolatilityAdjusted{}.ComputeWeights(preds, current, ledger)
	if err != nil {
		return nil, err
	}
	regimeWeights, err := RegimeAware{Preferences: s.Preferences}.ComputeWeights(preds, current, ledger)
	if err != nil {
		return nil, err
	}

	names := modelNames(preds)
	combined := make(map[string]float64, len(names))
	for _, name := range names {
		combined[name] = dynamicPerformanceShare*perfWeights[name] +
			dynamicVolatilityShare*volWeights[name] +
			dynamicRegimeShare*regimeWeights[name]
	}
	return normalizeOrEqual(combined, names), nil
}
