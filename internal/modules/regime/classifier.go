package regime

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/ensemble-engine/internal/domain"
	"github.com/aristath/ensemble-engine/pkg/formulas"
)

// Path identifies which classification path produced a regime
type Path string

const (
	// PathRule is the threshold-based decision table
	PathRule Path = "rule"
	// PathCluster is the k-means assignment over accumulated features
	PathCluster Path = "cluster"
	// PathDefault means classification degraded to the NORMAL regime
	PathDefault Path = "default"
)

// Classification is the result of one regime detection, including which
// path produced it so degraded classifications are observable.
type Classification struct {
	Regime         domain.Regime
	Path           Path
	FallbackReason string
}

// Thresholds holds the rule-based classification thresholds
type Thresholds struct {
	CrisisFear  float64 `yaml:"crisis_fear"`
	CrisisVol   float64 `yaml:"crisis_volatility"`
	HighVol     float64 `yaml:"high_volatility"`
	RiskOffCorr float64 `yaml:"risk_off_correlation"`
	RiskOffVol  float64 `yaml:"risk_off_volatility"`
	LowVol      float64 `yaml:"low_volatility"`
	RiskOnCorr  float64 `yaml:"risk_on_correlation"`
	RiskOnVol   float64 `yaml:"risk_on_volatility"`
}

// DefaultThresholds returns the standard rule-based thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		CrisisFear:  40,
		CrisisVol:   0.4,
		HighVol:     0.25,
		RiskOffCorr: 0.7,
		RiskOffVol:  0.15,
		LowVol:      0.1,
		RiskOnCorr:  0.3,
		RiskOnVol:   0.2,
	}
}

// Defaults used when a feature is absent from the map
const (
	defaultAvgVolatility  = 0.2
	defaultAvgCorrelation = 0.5
	defaultFearIndex      = 20
	defaultFearPercentile = 0.5
)

// coreFeatures is the fixed, ordered feature vector used for clustering.
// A stable order and dimensionality keeps the fitted model valid across
// calls with different asset sets.
var coreFeatures = []string{
	FeatureAvgVolatility,
	FeatureMaxVolatility,
	FeatureVolDispersion,
	FeatureAvgCorrelation,
	FeatureMaxCorrelation,
	FeatureCorrelationDispersion,
	FeatureFearIndex,
	FeatureFearPercentile,
}

var coreDefaults = map[string]float64{
	FeatureAvgVolatility:         defaultAvgVolatility,
	FeatureMaxVolatility:         defaultAvgVolatility,
	FeatureVolDispersion:         0,
	FeatureAvgCorrelation:        defaultAvgCorrelation,
	FeatureMaxCorrelation:        defaultAvgCorrelation,
	FeatureCorrelationDispersion: 0,
	FeatureFearIndex:             defaultFearIndex,
	FeatureFearPercentile:        defaultFearPercentile,
}

// clusterRegimes statically maps cluster ids to regimes. Centroids are
// reordered by their average-volatility component after fitting so ids
// rank clusters from calmest to most stressed.
var clusterRegimes = map[int]domain.Regime{
	0: domain.RegimeLowVolatility,
	1: domain.RegimeNormal,
	2: domain.RegimeHighVolatility,
	3: domain.RegimeRiskOff,
	4: domain.RegimeCrisis,
}

const (
	clusterCount = 5
	// minFitSamples is the minimum accumulated feature history before the
	// cluster model is fit.
	minFitSamples = 50
)

// Classifier maps a feature vector to one of the eight market regimes.
// The rule-based path is authoritative; the cluster path activates once
// enough regime history has accumulated and falls back to rules on any
// misfit. Classification never fails: the worst case is NORMAL.
type Classifier struct {
	thresholds      Thresholds
	detectionWindow int

	featureHistory [][]float64
	maxHistory     int
	model          *kMeans
	scalerMean     []float64
	scalerStd      []float64

	log zerolog.Logger
}

// NewClassifier creates a regime classifier. detectionWindow is the regime
// history length at which the cluster path takes over from the rules;
// maxHistory bounds the stored feature vectors used for fitting.
func NewClassifier(thresholds Thresholds, detectionWindow, maxHistory int, log zerolog.Logger) *Classifier {
	return &Classifier{
		thresholds:      thresholds,
		detectionWindow: detectionWindow,
		maxHistory:      maxHistory,
		log:             log.With().Str("component", "regime_classifier").Logger(),
	}
}

// Classify determines the market regime from a feature map and the current
// regime history length. It is deterministic for identical inputs.
func (c *Classifier) Classify(features map[string]float64, historyLen int) Classification {
	if historyLen < c.detectionWindow {
		return Classification{Regime: c.ruleBased(features), Path: PathRule}
	}
	return c.clusterBased(features)
}

// Observe records the core feature vector for future cluster fitting.
// The stored history is bounded; oldest vectors are evicted first.
func (c *Classifier) Observe(features map[string]float64) {
	c.featureHistory = append(c.featureHistory, coreVector(features))
	if c.maxHistory > 0 && len(c.featureHistory) > c.maxHistory {
		c.featureHistory = c.featureHistory[len(c.featureHistory)-c.maxHistory:]
	}
}

// ruleBased applies the threshold decision table, first match wins.
func (c *Classifier) ruleBased(features map[string]float64) domain.Regime {
	avgVol := featureOr(features, FeatureAvgVolatility, defaultAvgVolatility)
	avgCorr := featureOr(features, FeatureAvgCorrelation, defaultAvgCorrelation)
	fear := featureOr(features, FeatureFearIndex, defaultFearIndex)

	t := c.thresholds
	switch {
	case fear > t.CrisisFear || avgVol > t.CrisisVol:
		return domain.RegimeCrisis
	case avgVol > t.HighVol:
		return domain.RegimeHighVolatility
	case avgCorr > t.RiskOffCorr && avgVol > t.RiskOffVol:
		return domain.RegimeRiskOff
	case avgVol < t.LowVol:
		return domain.RegimeLowVolatility
	case avgCorr < t.RiskOnCorr && avgVol < t.RiskOnVol:
		return domain.RegimeRiskOn
	default:
		return domain.RegimeNormal
	}
}

// clusterBased assigns the feature vector to the nearest fitted cluster,
// falling back to the rule path when the model cannot be fit or scored.
func (c *Classifier) clusterBased(features map[string]float64) Classification {
	if c.model == nil {
		if err := c.fit(); err != nil {
			c.log.Debug().Err(err).Msg("Cluster model unavailable, using rule-based classification")
			return Classification{
				Regime:         c.ruleBased(features),
				Path:           PathRule,
				FallbackReason: err.Error(),
			}
		}
	}

	vector := c.standardize(coreVector(features))
	cluster, err := c.model.Nearest(vector)
	if err != nil {
		c.log.Warn().Err(err).Msg("Cluster scoring failed, using rule-based classification")
		return Classification{
			Regime:         c.ruleBased(features),
			Path:           PathRule,
			FallbackReason: err.Error(),
		}
	}

	regime, ok := clusterRegimes[cluster]
	if !ok {
		return Classification{
			Regime:         domain.RegimeNormal,
			Path:           PathDefault,
			FallbackReason: "cluster id outside regime mapping",
		}
	}
	return Classification{Regime: regime, Path: PathCluster}
}

// fit trains the cluster model once on the standardized accumulated
// feature history.
func (c *Classifier) fit() error {
	if len(c.featureHistory) < minFitSamples {
		return fmt.Errorf("insufficient feature history for cluster fit: have %d, need %d", len(c.featureHistory), minFitSamples)
	}

	c.fitScaler()
	standardized := make([][]float64, len(c.featureHistory))
	for i, row := range c.featureHistory {
		standardized[i] = c.standardize(row)
	}

	model, err := fitKMeans(standardized, clusterCount)
	if err != nil {
		return err
	}

	// Order cluster ids by the centroid's standardized average-volatility
	// component, so the static id->regime table ranks by stress level.
	centroids := model.Centroids()
	sort.SliceStable(centroids, func(i, j int) bool {
		return centroids[i][0] < centroids[j][0]
	})

	c.model = model
	c.log.Info().Int("samples", len(standardized)).Msg("Fitted cluster-based regime model")
	return nil
}

// fitScaler computes per-column mean and standard deviation over the
// feature history. Zero-variance columns scale by 1 to stay finite.
func (c *Classifier) fitScaler() {
	dim := len(coreFeatures)
	c.scalerMean = make([]float64, dim)
	c.scalerStd = make([]float64, dim)
	column := make([]float64, len(c.featureHistory))
	for j := 0; j < dim; j++ {
		for i, row := range c.featureHistory {
			column[i] = row[j]
		}
		c.scalerMean[j] = formulas.Mean(column)
		std := formulas.PopStdDev(column)
		if std == 0 {
			std = 1
		}
		c.scalerStd[j] = std
	}
}

func (c *Classifier) standardize(row []float64) []float64 {
	if c.scalerMean == nil || len(row) != len(c.scalerMean) {
		return row
	}
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = (v - c.scalerMean[i]) / c.scalerStd[i]
	}
	return out
}

// coreVector extracts the fixed-order clustering vector from a feature
// map, substituting documented defaults for absent slots.
func coreVector(features map[string]float64) []float64 {
	vector := make([]float64, len(coreFeatures))
	for i, name := range coreFeatures {
		vector[i] = featureOr(features, name, coreDefaults[name])
	}
	return vector
}

func featureOr(features map[string]float64, key string, fallback float64) float64 {
	if v, ok := features[key]; ok {
		return v
	}
	return fallback
}
