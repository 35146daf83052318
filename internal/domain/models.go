package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Regime represents a cross-asset market regime classification
type Regime string

const (
	RegimeRiskOn         Regime = "risk_on"
	RegimeRiskOff        Regime = "risk_off"
	RegimeLowVolatility  Regime = "low_volatility"
	RegimeHighVolatility Regime = "high_volatility"
	RegimeCrisis         Regime = "crisis"
	RegimeRecovery       Regime = "recovery"
	RegimeNormal         Regime = "normal"
	RegimeTransition     Regime = "transition"
)

// Regimes lists all valid regime values
func Regimes() []Regime {
	return []Regime{
		RegimeRiskOn, RegimeRiskOff, RegimeLowVolatility, RegimeHighVolatility,
		RegimeCrisis, RegimeRecovery, RegimeNormal, RegimeTransition,
	}
}

// Strategy identifies an ensemble weighting strategy
type Strategy string

const (
	StrategyEqualWeight         Strategy = "equal_weight"
	StrategyPerformanceWeighted Strategy = "performance_weighted"
	StrategyVolatilityAdjusted  Strategy = "volatility_adjusted"
	StrategyRegimeAware         Strategy = "regime_aware"
	StrategyCorrelationAdjusted Strategy = "correlation_adjusted"
	StrategyDynamicWeight       Strategy = "dynamic_weight"
	StrategyRiskParity          Strategy = "risk_parity"
	StrategyBayesianAveraging   Strategy = "bayesian_model_averaging"
)

// Strategies lists all valid weighting strategies
func Strategies() []Strategy {
	return []Strategy{
		StrategyEqualWeight, StrategyPerformanceWeighted, StrategyVolatilityAdjusted,
		StrategyRegimeAware, StrategyCorrelationAdjusted, StrategyDynamicWeight,
		StrategyRiskParity, StrategyBayesianAveraging,
	}
}

// ParseStrategy converts a string into a Strategy
func ParseStrategy(s string) (Strategy, error) {
	for _, strategy := range Strategies() {
		if string(strategy) == s {
			return strategy, nil
		}
	}
	return "", fmt.Errorf("unknown weighting strategy %q", s)
}

// Series is a time-indexed close-price series for one asset class.
// Timestamps and Closes are parallel slices ordered by time.
type Series struct {
	Timestamps []time.Time `json:"timestamps"`
	Closes     []float64   `json:"closes"`
}

// Len returns the number of observations in the series
func (s Series) Len() int {
	return len(s.Closes)
}

// ReturnsByTime calculates percentage returns keyed by the timestamp of
// the later observation. Intervals starting at a zero close are skipped
// since the return is undefined there.
func (s Series) ReturnsByTime() ([]time.Time, []float64) {
	if s.Len() < 2 || len(s.Timestamps) != len(s.Closes) {
		return nil, nil
	}
	times := make([]time.Time, 0, s.Len()-1)
	returns := make([]float64, 0, s.Len()-1)
	for i := 1; i < s.Len(); i++ {
		if s.Closes[i-1] == 0 {
			continue
		}
		times = append(times, s.Timestamps[i])
		returns = append(returns, (s.Closes[i]-s.Closes[i-1])/s.Closes[i-1])
	}
	return times, returns
}

// ModelPrediction is one forecast from one upstream model.
// Value is the scalar forecast; it is nil when the model only produced a
// vector output, in which case the prediction is excluded from scalar
// aggregation but still participates in name-based strategies.
type ModelPrediction struct {
	ModelName         string                 `json:"model_name"`
	Value             *float64               `json:"value,omitempty"`
	Vector            []float64              `json:"vector,omitempty"`
	Confidence        float64                `json:"confidence"`
	Timestamp         time.Time              `json:"timestamp"`
	AssetClass        string                 `json:"asset_class"`
	Horizon           string                 `json:"horizon"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
	RiskMetrics       map[string]float64     `json:"risk_metrics,omitempty"`
	FeatureImportance map[string]float64     `json:"feature_importance,omitempty"`
}

// ScalarValue returns the scalar forecast and whether one exists
func (p ModelPrediction) ScalarValue() (float64, bool) {
	if p.Value == nil {
		return 0, false
	}
	return *p.Value, true
}

// RiskMetric looks up a named risk metric, returning fallback when the
// metric map is nil or the key is absent.
func (p ModelPrediction) RiskMetric(key string, fallback float64) float64 {
	if p.RiskMetrics == nil {
		return fallback
	}
	if v, ok := p.RiskMetrics[key]; ok {
		return v
	}
	return fallback
}

// ModelPerformance is a rolling scorecard for one model, appended after
// out-of-sample evaluation.
type ModelPerformance struct {
	ModelName             string             `json:"model_name"`
	Accuracy              float64            `json:"accuracy"`
	SharpeRatio           float64            `json:"sharpe_ratio"`
	MaxDrawdown           float64            `json:"max_drawdown"`
	Volatility            float64            `json:"volatility"`
	HitRate               float64            `json:"hit_rate"`
	AvgReturn             float64            `json:"avg_return"`
	RegimePerformance     map[Regime]float64 `json:"regime_performance,omitempty"`
	AssetClassPerformance map[string]float64 `json:"asset_class_performance,omitempty"`
	RecentPerformance     float64            `json:"recent_performance"`
	StabilityScore        float64            `json:"stability_score"`
}

// RegimeScore returns the performance recorded for the given regime,
// falling back to plain accuracy when the regime key is absent.
func (p ModelPerformance) RegimeScore(regime Regime) float64 {
	if p.RegimePerformance != nil {
		if v, ok := p.RegimePerformance[regime]; ok {
			return v
		}
	}
	return p.Accuracy
}

// Interval is a (lower, upper) prediction interval
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// EnsembleResult is the output of one ensemble prediction call
type EnsembleResult struct {
	ID                     uuid.UUID              `json:"id"`
	EnsemblePrediction     float64                `json:"ensemble_prediction"`
	IndividualPredictions  []ModelPrediction      `json:"individual_predictions"`
	ModelWeights           map[string]float64     `json:"model_weights"`
	ConfidenceScore        float64                `json:"confidence_score"`
	Regime                 Regime                 `json:"regime"`
	StrategyUsed           Strategy               `json:"strategy_used"`
	RiskAssessment         map[string]float64     `json:"risk_assessment"`
	DiversificationBenefit float64                `json:"diversification_benefit"`
	PredictionIntervals    map[string]Interval    `json:"prediction_intervals"`
	ExecutionTime          time.Duration          `json:"execution_time"`
	GeneratedAt            time.Time              `json:"generated_at"`
	Metadata               map[string]interface{} `json:"metadata"`
}
