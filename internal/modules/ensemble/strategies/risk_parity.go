package strategies

import (
	"math"

	"github.com/aristath/ensemble-engine/internal/domain"
	"github.com/aristath/ensemble-engine/internal/modules/performance"
)

// defaultOverallRisk is assumed when a prediction carries no overall_risk
// metric.
const defaultOverallRisk = 0.5

// riskFloor avoids division blow-ups for near-zero risk scores
const riskFloor = 0.01

// RiskParity weights models inversely to their self-reported overall risk
type RiskParity struct{}

// Name returns the strategy identifier
func (RiskParity) Name() domain.Strategy { return domain.StrategyRiskParity }

// ComputeWeights assigns weight proportional to 1/max(overall_risk, 0.01)
func (RiskParity) ComputeWeights(preds []domain.ModelPrediction, _ domain.Regime, _ *performance.Ledger) (map[string]float64, error) {
	if len(preds) == 0 {
		return nil, ErrNoUsableInput
	}

	weights := make(map[string]float64, len(preds))
	for _, pred := range preds {
		risk := pred.RiskMetric("overall_risk", defaultOverallRisk)
		weights[pred.ModelName] = 1.0 / math.Max(risk, riskFloor)
	}
	return normalizeOrEqual(weights, modelNames(preds)), nil
}
