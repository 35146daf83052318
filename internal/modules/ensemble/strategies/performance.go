package strategies

import (
	"math"

	"github.com/aristath/ensemble-engine/internal/domain"
	"github.com/aristath/ensemble-engine/internal/modules/performance"
	"github.com/aristath/ensemble-engine/pkg/formulas"
)

// performanceLookback is the number of trailing ledger records averaged
// per model.
const performanceLookback = 10

// minPerformanceScore floors each model's performance score so weak
// models keep a small weight instead of vanishing.
const minPerformanceScore = 0.1

// neutralScore is assigned to models with no ledger history
const neutralScore = 0.5

// PerformanceWeighted weights models by their recent regime-specific
// performance from the ledger.
type PerformanceWeighted struct{}

// Name returns the strategy identifier
func (PerformanceWeighted) Name() domain.Strategy { return domain.StrategyPerformanceWeighted }

// ComputeWeights averages each model's last 10 ledger records using the
// regime-specific score (plain accuracy when the regime key is absent),
// floors the result at 0.1, and normalizes. Unknown models score a
// neutral 0.5, so an empty ledger reduces to equal weights.
func (PerformanceWeighted) ComputeWeights(preds []domain.ModelPrediction, current domain.Regime, ledger *performance.Ledger) (map[string]float64, error) {
	if len(preds) == 0 {
		return nil, ErrNoUsableInput
	}

	names := modelNames(preds)
	weights := make(map[string]float64, len(names))
	for _, name := range names {
		weights[name] = performanceScore(name, current, ledger)
	}
	return normalizeOrEqual(weights, names), nil
}

func performanceScore(name string, current domain.Regime, ledger *performance.Ledger) float64 {
	if ledger == nil {
		return neutralScore
	}
	recent := ledger.Recent(name, performanceLookback)
	if len(recent) == 0 {
		return neutralScore
	}

	scores := make([]float64, len(recent))
	for i, perf := range recent {
		scores[i] = perf.RegimeScore(current)
	}
	return math.Max(formulas.Mean(scores), minPerformanceScore)
}
