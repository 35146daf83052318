package strategies

import (
	"math"

	"github.com/aristath/ensemble-engine/internal/domain"
	"github.com/aristath/ensemble-engine/internal/modules/performance"
)

// defaultVolatility is assumed when a prediction carries no volatility
// risk metric.
const defaultVolatility = 0.2

// volatilityFloor avoids division blow-ups for near-zero volatilities
const volatilityFloor = 0.01

// VolatilityAdjusted weights models inversely to the volatility reported
// in their own risk metrics.
type VolatilityAdjusted struct{}

// Name returns the strategy identifier
func (VolatilityAdjusted) Name() domain.Strategy { return domain.StrategyVolatilityAdjusted }

// ComputeWeights assigns weight proportional to 1/max(volatility, 0.01)
func (VolatilityAdjusted) ComputeWeights(preds []domain.ModelPrediction, _ domain.Regime, _ *performance.Ledger) (map[string]float64, error) {
	if len(preds) == 0 {
		return nil, ErrNoUsableInput
	}

	weights := make(map[string]float64, len(preds))
	for _, pred := range preds {
		vol := pred.RiskMetric("volatility", defaultVolatility)
		weights[pred.ModelName] = 1.0 / math.Max(vol, volatilityFloor)
	}
	return normalizeOrEqual(weights, modelNames(preds)), nil
}
