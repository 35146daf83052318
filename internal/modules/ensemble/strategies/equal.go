package strategies

import (
	"github.com/aristath/ensemble-engine/internal/domain"
	"github.com/aristath/ensemble-engine/internal/modules/performance"
)

// EqualWeight assigns every model the same weight 1/n
type EqualWeight struct{}

// Name returns the strategy identifier
func (EqualWeight) Name() domain.Strategy { return domain.StrategyEqualWeight }

// ComputeWeights returns 1/n for each of the n models
func (EqualWeight) ComputeWeights(preds []domain.ModelPrediction, _ domain.Regime, _ *performance.Ledger) (map[string]float64, error) {
	if len(preds) == 0 {
		return nil, ErrNoUsableInput
	}
	return equalWeights(modelNames(preds)), nil
}
