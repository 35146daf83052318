package regime

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/ensemble-engine/internal/domain"
	"github.com/aristath/ensemble-engine/pkg/formulas"
)

// Feature map keys produced by the extractor and consumed by the classifier
const (
	FeatureAvgVolatility         = "avg_volatility"
	FeatureMaxVolatility         = "max_volatility"
	FeatureVolDispersion         = "vol_dispersion"
	FeatureAvgCorrelation        = "avg_correlation"
	FeatureMaxCorrelation        = "max_correlation"
	FeatureCorrelationDispersion = "correlation_dispersion"
	FeatureFearIndex             = "fear_index"
	FeatureFearPercentile        = "fear_percentile"
	FeatureAdvanceDeclineRatio   = "advance_decline_ratio"
	FeatureMomentumBreadth       = "momentum_breadth"
)

// Asset classes with dedicated feature treatment
const (
	assetVIX    = "VIX"
	assetStocks = "stocks"
)

// minObservations is the minimum series length before an asset class
// contributes volatility or correlation features.
const minObservations = 20

// Extractor turns multi-asset market data into a flat numeric feature map
// for regime classification.
type Extractor struct {
	log zerolog.Logger
}

// NewExtractor creates a new regime feature extractor
func NewExtractor(log zerolog.Logger) *Extractor {
	return &Extractor{
		log: log.With().Str("component", "regime_features").Logger(),
	}
}

// Calculate computes regime features from per-asset-class close series and
// optional macroeconomic scalars. Assets with insufficient or degenerate
// data are skipped individually; with no usable input the result is an
// empty map, which the classifier treats as maximally uncertain.
func (e *Extractor) Calculate(market map[string]domain.Series, economic map[string]float64) map[string]float64 {
	features := make(map[string]float64)

	volatilities := make([]float64, 0, len(market))
	returnsByAsset := make(map[string]assetReturns, len(market))

	for _, asset := range sortedKeys(market) {
		series := market[asset]
		if series.Len() <= minObservations {
			continue
		}
		times, returns := series.ReturnsByTime()
		if len(returns) < minObservations {
			continue
		}
		returnsByAsset[asset] = assetReturns{times: times, values: returns}

		vol20 := formulas.AnnualizedVolatility(returns[len(returns)-20:])
		vol5 := formulas.AnnualizedVolatility(returns[len(returns)-5:])
		volatilities = append(volatilities, vol20)

		features[asset+"_volatility"] = vol20
		if vol20 > 0 {
			features[asset+"_vol_ratio"] = vol5 / vol20
		} else {
			features[asset+"_vol_ratio"] = 1.0
		}

		if trend := formulas.DistanceFromSMA(series.Closes, minObservations); trend != nil {
			features[asset+"_trend"] = *trend
		}
	}

	correlations := e.pairwiseCorrelations(returnsByAsset, features)

	if len(volatilities) > 0 {
		features[FeatureAvgVolatility] = formulas.Mean(volatilities)
		features[FeatureMaxVolatility] = maxOf(volatilities)
		features[FeatureVolDispersion] = formulas.PopStdDev(volatilities)
	}
	if len(correlations) > 0 {
		features[FeatureAvgCorrelation] = formulas.Mean(correlations)
		features[FeatureMaxCorrelation] = maxOf(correlations)
		features[FeatureCorrelationDispersion] = formulas.PopStdDev(correlations)
	}

	if vix, ok := market[assetVIX]; ok && vix.Len() > 0 {
		level := vix.Closes[vix.Len()-1]
		features[FeatureFearIndex] = level
		features[FeatureFearPercentile] = formulas.PercentileRank(vix.Closes, level)
	}

	for name, value := range economic {
		features[name] = value
	}

	if stocks, ok := market[assetStocks]; ok {
		e.breadthIndicators(stocks, features)
	}

	e.log.Debug().Int("features", len(features)).Int("assets", len(returnsByAsset)).Msg("Calculated regime features")
	return features
}

type assetReturns struct {
	times  []time.Time
	values []float64
}

// pairwiseCorrelations records the Pearson correlation of returns for every
// unordered asset pair with enough overlapping observations, and returns
// the collected absolute correlations for aggregation.
func (e *Extractor) pairwiseCorrelations(returnsByAsset map[string]assetReturns, features map[string]float64) []float64 {
	assets := make([]string, 0, len(returnsByAsset))
	for asset := range returnsByAsset {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	absCorrelations := make([]float64, 0, len(assets)*(len(assets)-1)/2)
	for i := 0; i < len(assets); i++ {
		for j := i + 1; j < len(assets); j++ {
			x, y := alignReturns(returnsByAsset[assets[i]], returnsByAsset[assets[j]])
			if len(x) <= minObservations {
				continue
			}
			corr := formulas.Correlation(x, y)
			if math.IsNaN(corr) {
				// Zero-variance overlap, skip this pair only
				continue
			}
			features[fmt.Sprintf("%s_%s_correlation", assets[i], assets[j])] = corr
			absCorrelations = append(absCorrelations, math.Abs(corr))
		}
	}
	return absCorrelations
}

// alignReturns intersects two return series on their timestamps, keeping
// time order. Instants are matched by their epoch reading, so differing
// Location pointers or monotonic-clock readings on otherwise identical
// timestamps do not empty the overlap.
func alignReturns(a, b assetReturns) ([]float64, []float64) {
	index := make(map[int64]float64, len(b.times))
	for i, t := range b.times {
		index[t.UnixNano()] = b.values[i]
	}
	x := make([]float64, 0, len(a.times))
	y := make([]float64, 0, len(a.times))
	for i, t := range a.times {
		if v, ok := index[t.UnixNano()]; ok {
			x = append(x, a.values[i])
			y = append(y, v)
		}
	}
	return x, y
}

// breadthIndicators computes market breadth from the stocks series: the
// fraction of positive-return days overall and over the trailing 20
// observations.
func (e *Extractor) breadthIndicators(stocks domain.Series, features map[string]float64) {
	if stocks.Len() <= minObservations {
		return
	}
	_, returns := stocks.ReturnsByTime()
	if len(returns) == 0 {
		return
	}

	features[FeatureAdvanceDeclineRatio] = positiveFraction(returns)

	recent := returns
	if len(recent) > minObservations {
		recent = recent[len(recent)-minObservations:]
	}
	features[FeatureMomentumBreadth] = positiveFraction(recent)
}

func positiveFraction(returns []float64) float64 {
	if len(returns) == 0 {
		return 0.5
	}
	positive := 0
	for _, r := range returns {
		if r > 0 {
			positive++
		}
	}
	return float64(positive) / float64(len(returns))
}

func sortedKeys(m map[string]domain.Series) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func maxOf(values []float64) float64 {
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
