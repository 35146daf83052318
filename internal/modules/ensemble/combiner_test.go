package ensemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/ensemble-engine/internal/domain"
)

func scalar(v float64) *float64 { return &v }

func combinerPredictions() []domain.ModelPrediction {
	return []domain.ModelPrediction{
		{ModelName: "a", Value: scalar(0.04), Confidence: 0.8},
		{ModelName: "b", Value: scalar(0.02), Confidence: 0.6},
		{ModelName: "c", Value: scalar(0.06), Confidence: 0.4},
	}
}

func equalTestWeights() map[string]float64 {
	return map[string]float64{"a": 1.0 / 3.0, "b": 1.0 / 3.0, "c": 1.0 / 3.0}
}

func TestWeightedPrediction(t *testing.T) {
	preds := combinerPredictions()

	assert.InDelta(t, 0.04, weightedPrediction(preds, equalTestWeights()), 0.0001)

	skewed := map[string]float64{"a": 0.5, "b": 0.5, "c": 0}
	assert.InDelta(t, 0.03, weightedPrediction(preds, skewed), 0.0001)
}

func TestWeightedPredictionNoScalars(t *testing.T) {
	preds := []domain.ModelPrediction{
		{ModelName: "vec", Vector: []float64{1, 2}},
	}
	assert.Equal(t, 0.0, weightedPrediction(preds, map[string]float64{"vec": 1}))
}

func TestWeightedPredictionIgnoresVectorModels(t *testing.T) {
	preds := []domain.ModelPrediction{
		{ModelName: "s", Value: scalar(0.05)},
		{ModelName: "vec", Vector: []float64{1, 2}},
	}
	weights := map[string]float64{"s": 0.5, "vec": 0.5}
	assert.InDelta(t, 0.05, weightedPrediction(preds, weights), 0.0001)
}

func TestConfidenceScoreBounds(t *testing.T) {
	preds := combinerPredictions()
	weights := equalTestWeights()

	for _, stability := range []float64{0, 0.5, 1} {
		score := confidenceScore(preds, weights, stability)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}

	// Higher stability never lowers confidence
	assert.GreaterOrEqual(t,
		confidenceScore(preds, weights, 1),
		confidenceScore(preds, weights, 0))
}

func TestConfidenceScoreEmpty(t *testing.T) {
	assert.Equal(t, 0.0, confidenceScore(nil, nil, 1))
}

func TestConsensusBonus(t *testing.T) {
	tight := []domain.ModelPrediction{
		{ModelName: "a", Value: scalar(0.0500)},
		{ModelName: "b", Value: scalar(0.0501)},
	}
	spread := []domain.ModelPrediction{
		{ModelName: "a", Value: scalar(0.05)},
		{ModelName: "b", Value: scalar(-0.05)},
	}

	assert.Greater(t, consensusBonus(tight), consensusBonus(spread))
	assert.LessOrEqual(t, consensusBonus(tight), maxConsensusBonus)
	assert.Equal(t, 0.0, consensusBonus(spread))

	// A single scalar carries no consensus signal
	assert.Equal(t, 0.0, consensusBonus(tight[:1]))
}

func TestConsensusBonusZeroMean(t *testing.T) {
	// Mean is zero but predictions agree tightly: small fixed bonus
	tightAroundZero := []domain.ModelPrediction{
		{ModelName: "a", Value: scalar(0.001)},
		{ModelName: "b", Value: scalar(-0.001)},
	}
	assert.InDelta(t, 0.1, consensusBonus(tightAroundZero), 0.0001)

	// Mean is zero and predictions disagree widely: no bonus
	wideAroundZero := []domain.ModelPrediction{
		{ModelName: "a", Value: scalar(0.5)},
		{ModelName: "b", Value: scalar(-0.5)},
	}
	assert.Equal(t, 0.0, consensusBonus(wideAroundZero))
}

func TestAssessRiskComponents(t *testing.T) {
	preds := combinerPredictions()
	risk := assessRisk(preds, equalTestWeights(), 0.8)

	require.Contains(t, risk, RiskModel)
	require.Contains(t, risk, RiskConcentration)
	require.Contains(t, risk, RiskPrediction)
	require.Contains(t, risk, RiskRegime)
	require.Contains(t, risk, RiskOverall)

	assert.Equal(t, placeholderModelRisk, risk[RiskModel])
	assert.InDelta(t, 1.0/3.0, risk[RiskConcentration], 0.0001)
	assert.InDelta(t, 0.2, risk[RiskRegime], 0.0001)

	expectedOverall := (risk[RiskModel] + risk[RiskConcentration] + risk[RiskRegime] + risk[RiskPrediction]) / 4
	assert.InDelta(t, expectedOverall, risk[RiskOverall], 0.0001)

	for _, v := range risk {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestAssessRiskDefaults(t *testing.T) {
	// No predictions and no weights keep the neutral defaults
	risk := assessRisk(nil, nil, 0.5)
	assert.Equal(t, 0.5, risk[RiskConcentration])
	assert.Equal(t, 0.5, risk[RiskPrediction])
}

func TestAssessRiskConcentration(t *testing.T) {
	weights := map[string]float64{"a": 0.9, "b": 0.1}
	risk := assessRisk(combinerPredictions(), weights, 0.5)
	assert.InDelta(t, 0.9, risk[RiskConcentration], 0.0001)
}

func TestDiversificationBenefit(t *testing.T) {
	// Identical predictions offer zero diversification
	identical := []domain.ModelPrediction{
		{ModelName: "a", Value: scalar(0.05)},
		{ModelName: "b", Value: scalar(0.05)},
	}
	assert.InDelta(t, 0.0, diversificationBenefit(identical), 0.0001)

	// Disagreement scores higher, capped at 1
	spread := []domain.ModelPrediction{
		{ModelName: "a", Value: scalar(0.10)},
		{ModelName: "b", Value: scalar(-0.10)},
	}
	assert.InDelta(t, 1.0, diversificationBenefit(spread), 0.0001)

	// Fewer than two scalar predictions score zero
	assert.Equal(t, 0.0, diversificationBenefit(identical[:1]))

	// All-zero predictions have no magnitude to scale by
	zeros := []domain.ModelPrediction{
		{ModelName: "a", Value: scalar(0)},
		{ModelName: "b", Value: scalar(0)},
	}
	assert.Equal(t, 0.5, diversificationBenefit(zeros))
}

func TestPredictionIntervals(t *testing.T) {
	preds := combinerPredictions()
	weights := equalTestWeights()
	intervals := predictionIntervals(preds, weights)

	require.Contains(t, intervals, IntervalOneSigma)
	require.Contains(t, intervals, IntervalTwoSigma)

	one := intervals[IntervalOneSigma]
	two := intervals[IntervalTwoSigma]
	mean := weightedPrediction(preds, weights)

	assert.Less(t, one.Lower, mean)
	assert.Greater(t, one.Upper, mean)
	assert.Less(t, two.Lower, one.Lower)
	assert.Greater(t, two.Upper, one.Upper)

	// Intervals are symmetric around the weighted mean
	assert.InDelta(t, mean-one.Lower, one.Upper-mean, 0.0001)
	assert.InDelta(t, (two.Upper-two.Lower)/(one.Upper-one.Lower), 1.96, 0.0001)
}

func TestPredictionIntervalsCollapse(t *testing.T) {
	preds := []domain.ModelPrediction{
		{ModelName: "only", Value: scalar(0.05)},
	}
	intervals := predictionIntervals(preds, map[string]float64{"only": 1})

	assert.Equal(t, domain.Interval{}, intervals[IntervalOneSigma])
	assert.Equal(t, domain.Interval{}, intervals[IntervalTwoSigma])
}
