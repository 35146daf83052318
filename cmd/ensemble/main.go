package main

import (
	"math/rand"
	"time"

	"github.com/aristath/ensemble-engine/internal/config"
	"github.com/aristath/ensemble-engine/internal/domain"
	"github.com/aristath/ensemble-engine/internal/modules/ensemble"
	"github.com/aristath/ensemble-engine/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Str("log_level", cfg.LogLevel).Msg("Starting ensemble engine demo")

	engine := ensemble.New(cfg.ToEngineConfig(), log)

	market := sampleMarketData()
	predictions := samplePredictions()

	result, err := engine.GenerateEnsemblePrediction(predictions, market, domain.StrategyDynamicWeight, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Ensemble prediction failed")
	}

	log.Info().
		Str("id", result.ID.String()).
		Float64("prediction", result.EnsemblePrediction).
		Float64("confidence", result.ConfidenceScore).
		Str("regime", string(result.Regime)).
		Str("strategy", string(result.StrategyUsed)).
		Float64("diversification", result.DiversificationBenefit).
		Dur("execution_time", result.ExecutionTime).
		Msg("Ensemble prediction complete")

	for model, weight := range result.ModelWeights {
		log.Info().Str("model", model).Float64("weight", weight).Msg("Model weight")
	}
	for component, value := range result.RiskAssessment {
		log.Info().Str("component", component).Float64("value", value).Msg("Risk")
	}
}

// sampleMarketData builds 100 days of synthetic close prices per asset
// class with a fixed seed so repeated runs are comparable.
func sampleMarketData() map[string]domain.Series {
	rng := rand.New(rand.NewSource(7))
	start := time.Now().AddDate(0, 0, -100)

	walk := func(base, drift, vol float64) domain.Series {
		series := domain.Series{
			Timestamps: make([]time.Time, 100),
			Closes:     make([]float64, 100),
		}
		price := base
		for i := 0; i < 100; i++ {
			price *= 1 + drift + vol*rng.NormFloat64()
			series.Timestamps[i] = start.AddDate(0, 0, i)
			series.Closes[i] = price
		}
		return series
	}

	vix := domain.Series{
		Timestamps: make([]time.Time, 100),
		Closes:     make([]float64, 100),
	}
	for i := 0; i < 100; i++ {
		vix.Timestamps[i] = start.AddDate(0, 0, i)
		vix.Closes[i] = 10 + 30*rng.Float64()
	}

	return map[string]domain.Series{
		"stocks":      walk(100, 0.0004, 0.012),
		"bonds":       walk(50, 0.0001, 0.004),
		"commodities": walk(150, 0.0002, 0.015),
		"VIX":         vix,
	}
}

func samplePredictions() []domain.ModelPrediction {
	value := func(v float64) *float64 { return &v }
	now := time.Now()

	return []domain.ModelPrediction{
		{
			ModelName:   "lstm_model",
			Value:       value(0.05),
			Confidence:  0.8,
			Timestamp:   now,
			AssetClass:  "stocks",
			Horizon:     "1d",
			RiskMetrics: map[string]float64{"volatility": 0.15, "overall_risk": 0.4},
		},
		{
			ModelName:   "momentum_model",
			Value:       value(0.03),
			Confidence:  0.7,
			Timestamp:   now,
			AssetClass:  "stocks",
			Horizon:     "1d",
			RiskMetrics: map[string]float64{"volatility": 0.12, "overall_risk": 0.3},
		},
		{
			ModelName:   "correlation_model",
			Value:       value(0.02),
			Confidence:  0.6,
			Timestamp:   now,
			AssetClass:  "multi_asset",
			Horizon:     "1d",
			RiskMetrics: map[string]float64{"volatility": 0.18, "overall_risk": 0.5},
		},
	}
}
