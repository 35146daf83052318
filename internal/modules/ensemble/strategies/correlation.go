package strategies

import (
	"math"

	"github.com/aristath/ensemble-engine/internal/domain"
	"github.com/aristath/ensemble-engine/internal/modules/performance"
)

// CorrelationAdjusted penalizes models whose scalar predictions are
// numerically close to the others, as a proxy for redundancy among the
// models.
type CorrelationAdjusted struct{}

// Name returns the strategy identifier
func (CorrelationAdjusted) Name() domain.Strategy { return domain.StrategyCorrelationAdjusted }

// ComputeWeights accumulates, per model, a similarity penalty
// sum_j(1 - |p_i - p_j| / (|p_i| + |p_j| + eps)) over the other models and
// weights inversely to 1 + penalty. With fewer than two scalar
// predictions there is no redundancy to measure and the strategy reports
// no usable input.
func (CorrelationAdjusted) ComputeWeights(preds []domain.ModelPrediction, _ domain.Regime, _ *performance.Ledger) (map[string]float64, error) {
	if len(preds) == 0 {
		return nil, ErrNoUsableInput
	}

	values := make([]float64, 0, len(preds))
	names := make([]string, 0, len(preds))
	for _, pred := range preds {
		if v, ok := pred.ScalarValue(); ok {
			values = append(values, v)
			names = append(names, pred.ModelName)
		}
	}
	if len(values) < 2 {
		return nil, ErrNoUsableInput
	}

	const eps = 1e-8
	weights := make(map[string]float64, len(names))
	for i, name := range names {
		penalty := 0.0
		for j := range values {
			if i == j {
				continue
			}
			distance := math.Abs(values[i]-values[j]) / (math.Abs(values[i]) + math.Abs(values[j]) + eps)
			penalty += 1.0 - distance
		}
		weights[name] = 1.0 / (1.0 + penalty)
	}
	return normalizeOrEqual(weights, names), nil
}
