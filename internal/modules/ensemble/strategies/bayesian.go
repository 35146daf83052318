package strategies

import (
	"github.com/aristath/ensemble-engine/internal/domain"
	"github.com/aristath/ensemble-engine/internal/modules/performance"
	"github.com/aristath/ensemble-engine/pkg/formulas"
)

// bayesianLookback is the number of trailing ledger records used as the
// historical-evidence term.
const bayesianLookback = 5

// BayesianAveraging approximates Bayesian model averaging with each
// model's confidence as evidence, scaled by its recent regime-specific
// performance.
type BayesianAveraging struct{}

// Name returns the strategy identifier
func (BayesianAveraging) Name() domain.Strategy { return domain.StrategyBayesianAveraging }

// ComputeWeights assigns weight proportional to confidence times the mean
// regime-specific performance of the last 5 ledger records; models with
// no history weigh by confidence alone.
func (BayesianAveraging) ComputeWeights(preds []domain.ModelPrediction, current domain.Regime, ledger *performance.Ledger) (map[string]float64, error) {
	if len(preds) == 0 {
		return nil, ErrNoUsableInput
	}

	weights := make(map[string]float64, len(preds))
	for _, pred := range preds {
		weight := pred.Confidence
		if ledger != nil {
			if recent := ledger.Recent(pred.ModelName, bayesianLookback); len(recent) > 0 {
				scores := make([]float64, len(recent))
				for i, perf := range recent {
					scores[i] = perf.RegimeScore(current)
				}
				weight = pred.Confidence * formulas.Mean(scores)
			}
		}
		weights[pred.ModelName] = weight
	}
	return normalizeOrEqual(weights, modelNames(preds)), nil
}
