// Package ensemble combines per-model forecasts into a single prediction
// with regime-aware weighting, confidence scoring, risk decomposition and
// prediction intervals.
package ensemble

import (
	"math"

	"github.com/aristath/ensemble-engine/internal/domain"
	"github.com/aristath/ensemble-engine/pkg/formulas"
)

// Risk assessment component keys
const (
	RiskModel         = "model_risk"
	RiskConcentration = "concentration_risk"
	RiskPrediction    = "prediction_risk"
	RiskRegime        = "regime_risk"
	RiskOverall       = "overall_risk"
)

// Prediction interval labels
const (
	IntervalOneSigma = "68%"
	IntervalTwoSigma = "95%"
)

// placeholderModelRisk is a fixed model-risk component until per-model
// calibration data exists.
const placeholderModelRisk = 0.5

// maxConsensusBonus caps the confidence bonus granted for close agreement
// between models.
const maxConsensusBonus = 0.2

// stabilityBonusShare scales regime stability into a confidence bonus
const stabilityBonusShare = 0.1

// scalarInputs gathers the scalar predictions and their weights in
// prediction order.
func scalarInputs(preds []domain.ModelPrediction, weights map[string]float64) (values, modelWeights []float64) {
	for _, pred := range preds {
		v, ok := pred.ScalarValue()
		if !ok {
			continue
		}
		values = append(values, v)
		modelWeights = append(modelWeights, weights[pred.ModelName])
	}
	return values, modelWeights
}

// weightedPrediction calculates the weighted average over the scalar
// predictions carrying positive weight. Returns 0 when that subset is
// empty.
func weightedPrediction(preds []domain.ModelPrediction, weights map[string]float64) float64 {
	var weightedSum, totalWeight float64
	for _, pred := range preds {
		v, ok := pred.ScalarValue()
		weight := weights[pred.ModelName]
		if !ok || weight <= 0 {
			continue
		}
		weightedSum += v * weight
		totalWeight += weight
	}
	if totalWeight <= 0 {
		return 0
	}
	return weightedSum / totalWeight
}

// confidenceScore combines the weighted average of the individual model
// confidences with a consensus bonus and a regime-stability bonus,
// clamped to [0, 1].
func confidenceScore(preds []domain.ModelPrediction, weights map[string]float64, stability float64) float64 {
	if len(preds) == 0 {
		return 0
	}

	var weightedConfidence, totalWeight float64
	for _, pred := range preds {
		weight := weights[pred.ModelName]
		weightedConfidence += pred.Confidence * weight
		totalWeight += weight
	}
	base := 0.0
	if totalWeight > 0 {
		base = weightedConfidence / totalWeight
	}

	return formulas.Clamp(base+consensusBonus(preds)+stability*stabilityBonusShare, 0, 1)
}

// consensusBonus grants up to 0.2 extra confidence when the scalar
// predictions agree closely, measured by their coefficient of variation.
// When the mean is effectively zero the coefficient is undefined; a small
// fixed bonus applies only if the dispersion is also near zero.
func consensusBonus(preds []domain.ModelPrediction) float64 {
	values := scalarOnly(preds)
	if len(values) < 2 {
		return 0
	}

	mean := formulas.Mean(values)
	std := formulas.PopStdDev(values)

	if math.Abs(mean) < 1e-8 {
		if std < 0.01 {
			return 0.1
		}
		return 0
	}

	cv := std / math.Abs(mean)
	return math.Max(0, maxConsensusBonus*(1-math.Min(cv, 1)))
}

// assessRisk decomposes ensemble risk into five components. Components
// that can not be computed keep their neutral 0.5 default.
func assessRisk(preds []domain.ModelPrediction, weights map[string]float64, stability float64) map[string]float64 {
	risk := map[string]float64{
		RiskModel:         placeholderModelRisk,
		RiskConcentration: 0.5,
		RiskPrediction:    0.5,
		RiskRegime:        0.5,
		RiskOverall:       0.5,
	}

	if len(weights) > 0 {
		maxWeight := 0.0
		for _, w := range weights {
			if w > maxWeight {
				maxWeight = w
			}
		}
		risk[RiskConcentration] = maxWeight
	}

	values := scalarOnly(preds)
	if len(values) > 1 {
		meanAbs := formulas.Mean(absValues(values))
		if meanAbs > 0 {
			risk[RiskPrediction] = math.Min(1, formulas.PopStdDev(values)/meanAbs)
		}
	}

	risk[RiskRegime] = 1 - stability

	risk[RiskOverall] = (risk[RiskModel] + risk[RiskConcentration] + risk[RiskRegime] + risk[RiskPrediction]) / 4
	return risk
}

// diversificationBenefit scores the spread of the scalar predictions
// relative to their magnitude: a wider disagreement means the ensemble is
// averaging genuinely different views. Requires at least two scalar
// predictions, else 0.
func diversificationBenefit(preds []domain.ModelPrediction) float64 {
	values := scalarOnly(preds)
	if len(values) < 2 {
		return 0
	}

	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}

	meanAbs := formulas.Mean(absValues(values))
	if meanAbs <= 0 {
		return 0.5
	}
	return math.Min(1, (maxVal-minVal)/meanAbs/2)
}

// predictionIntervals reports 68% and 95% intervals around the weighted
// ensemble mean using a weight-weighted standard deviation of the scalar
// predictions. With fewer than two scalar predictions the intervals
// collapse to (0, 0).
func predictionIntervals(preds []domain.ModelPrediction, weights map[string]float64) map[string]domain.Interval {
	values, modelWeights := scalarInputs(preds, weights)
	if len(values) < 2 {
		return map[string]domain.Interval{
			IntervalOneSigma: {},
			IntervalTwoSigma: {},
		}
	}

	mean := weightedPrediction(preds, weights)
	std := formulas.WeightedStdDev(values, modelWeights, mean)

	return map[string]domain.Interval{
		IntervalOneSigma: {Lower: mean - std, Upper: mean + std},
		IntervalTwoSigma: {Lower: mean - 1.96*std, Upper: mean + 1.96*std},
	}
}

func scalarOnly(preds []domain.ModelPrediction) []float64 {
	values := make([]float64, 0, len(preds))
	for _, pred := range preds {
		if v, ok := pred.ScalarValue(); ok {
			values = append(values, v)
		}
	}
	return values
}

func absValues(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Abs(v)
	}
	return out
}
