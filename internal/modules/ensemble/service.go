package ensemble

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/ensemble-engine/internal/domain"
	"github.com/aristath/ensemble-engine/internal/modules/ensemble/strategies"
	"github.com/aristath/ensemble-engine/internal/modules/performance"
	"github.com/aristath/ensemble-engine/internal/modules/regime"
	"github.com/aristath/ensemble-engine/pkg/formulas"
)

// ErrInsufficientModels is returned when fewer predictions are supplied
// than the configured minimum.
var ErrInsufficientModels = errors.New("insufficient models for ensemble")

// Config holds the engine's tunable parameters
type Config struct {
	// LookbackWindow bounds both ledgers (performance records per model,
	// regime history entries).
	LookbackWindow int
	// RegimeDetectionWindow is the regime history length at which
	// classification switches from rules to clustering.
	RegimeDetectionWindow int
	// MinModelsRequired is the minimum prediction count per call
	MinModelsRequired int
	// Thresholds tunes the rule-based classifier; zero value means defaults
	Thresholds *regime.Thresholds
	// Preferences tunes the regime-aware strategy; nil means defaults
	Preferences strategies.PreferenceTable
}

// DefaultConfig returns the standard engine parameters
func DefaultConfig() Config {
	return Config{
		LookbackWindow:        252,
		RegimeDetectionWindow: 60,
		MinModelsRequired:     3,
	}
}

// Service is a caller-owned ensemble prediction engine. It owns its two
// bounded ledgers for its lifetime; a single mutex serializes every call
// so one instance may be shared, though one engine per owner is the
// recommended deployment.
type Service struct {
	cfg         Config
	preferences strategies.PreferenceTable

	mu         sync.Mutex
	extractor  *regime.Extractor
	classifier *regime.Classifier
	perf       *performance.Ledger
	regimes    *regime.History

	log zerolog.Logger
}

// New creates an ensemble prediction engine
func New(cfg Config, log zerolog.Logger) *Service {
	defaults := DefaultConfig()
	if cfg.LookbackWindow <= 0 {
		cfg.LookbackWindow = defaults.LookbackWindow
	}
	if cfg.RegimeDetectionWindow <= 0 {
		cfg.RegimeDetectionWindow = defaults.RegimeDetectionWindow
	}
	if cfg.MinModelsRequired <= 0 {
		cfg.MinModelsRequired = defaults.MinModelsRequired
	}
	thresholds := regime.DefaultThresholds()
	if cfg.Thresholds != nil {
		thresholds = *cfg.Thresholds
	}

	log = log.With().Str("component", "ensemble_engine").Logger()
	return &Service{
		cfg:         cfg,
		preferences: cfg.Preferences,
		extractor:   regime.NewExtractor(log),
		classifier:  regime.NewClassifier(thresholds, cfg.RegimeDetectionWindow, cfg.LookbackWindow, log),
		perf:        performance.NewLedger(cfg.LookbackWindow),
		regimes:     regime.NewHistory(cfg.LookbackWindow),
		log:         log,
	}
}

// UpdateModelPerformance appends an out-of-sample performance record for
// the named model, truncating that model's history to the lookback
// window.
func (s *Service) UpdateModelPerformance(modelName string, perf domain.ModelPerformance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perf.Update(modelName, perf)
}

// GenerateEnsemblePrediction combines the supplied model predictions into
// one forecast, adapting the weighting to the detected market regime.
// An empty strategy selects DYNAMIC_WEIGHT. The only caller-visible error
// is the minimum-models precondition; every internal failure degrades to
// documented defaults recorded in the result metadata.
func (s *Service) GenerateEnsemblePrediction(
	preds []domain.ModelPrediction,
	market map[string]domain.Series,
	strategy domain.Strategy,
	economic map[string]float64,
) (*domain.EnsembleResult, error) {
	start := time.Now()

	if len(preds) < s.cfg.MinModelsRequired {
		return nil, fmt.Errorf("%w: got %d, need %d", ErrInsufficientModels, len(preds), s.cfg.MinModelsRequired)
	}
	if strategy == "" {
		strategy = domain.StrategyDynamicWeight
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	features := s.extractor.Calculate(market, economic)
	classification := s.classifier.Classify(features, s.regimes.Len())
	s.classifier.Observe(features)

	weights, weightsFallback := s.computeWeights(preds, strategy, classification.Regime)

	// Confidence and risk score against the stability seen before this
	// call's regime is recorded; metadata reports it after.
	stability := s.regimes.Stability()
	prediction := weightedPrediction(preds, weights)
	confidence := confidenceScore(preds, weights, stability)
	risk := assessRisk(preds, weights, stability)
	diversification := diversificationBenefit(preds)
	intervals := predictionIntervals(preds, weights)

	now := time.Now()
	s.regimes.Append(now, classification.Regime)

	metadata := map[string]interface{}{
		"num_models":           len(preds),
		"regime_stability":     s.regimes.Stability(),
		"weight_concentration": formulas.Herfindahl(weights),
		"regime_path":          string(classification.Path),
	}
	if classification.FallbackReason != "" {
		metadata["regime_fallback_reason"] = classification.FallbackReason
	}
	if weightsFallback != "" {
		metadata["weights_fallback"] = weightsFallback
	}

	result := &domain.EnsembleResult{
		ID:                     uuid.New(),
		EnsemblePrediction:     prediction,
		IndividualPredictions:  preds,
		ModelWeights:           weights,
		ConfidenceScore:        confidence,
		Regime:                 classification.Regime,
		StrategyUsed:           strategy,
		RiskAssessment:         risk,
		DiversificationBenefit: diversification,
		PredictionIntervals:    intervals,
		ExecutionTime:          time.Since(start),
		GeneratedAt:            now,
		Metadata:               metadata,
	}

	s.log.Debug().
		Str("regime", string(classification.Regime)).
		Str("strategy", string(strategy)).
		Float64("prediction", prediction).
		Float64("confidence", confidence).
		Msg("Generated ensemble prediction")

	return result, nil
}

// computeWeights dispatches to the selected strategy, substituting equal
// weights when the strategy reports unusable input.
func (s *Service) computeWeights(preds []domain.ModelPrediction, strategy domain.Strategy, current domain.Regime) (map[string]float64, string) {
	impl := strategies.ForStrategy(strategy, s.preferences)
	weights, err := impl.ComputeWeights(preds, current, s.perf)
	if err != nil {
		s.log.Debug().Err(err).Str("strategy", string(strategy)).Msg("Strategy degraded to equal weights")
		fallback, fallbackErr := strategies.EqualWeight{}.ComputeWeights(preds, current, s.perf)
		if fallbackErr != nil {
			return map[string]float64{}, err.Error()
		}
		return fallback, err.Error()
	}
	return weights, ""
}

// RegimeHistory returns a copy of the recorded (timestamp, regime) log
func (s *Service) RegimeHistory() []regime.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regimes.Entries()
}

// RegimeStability reports the current regime stability score
func (s *Service) RegimeStability() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regimes.Stability()
}

// PerformanceHistory returns a copy of the recorded performance ledger
// entries for the named model, most recent last.
func (s *Service) PerformanceHistory(modelName string) []domain.ModelPerformance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perf.Recent(modelName, s.cfg.LookbackWindow)
}

// CurrentRegime returns the most recently detected regime, or NORMAL when
// no prediction has been generated yet.
func (s *Service) CurrentRegime() domain.Regime {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.regimes.Entries()
	if len(entries) == 0 {
		return domain.RegimeNormal
	}
	return entries[len(entries)-1].Regime
}
