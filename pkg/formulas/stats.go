package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation (n-1 denominator).
// This matches the convention used for rolling return volatility.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// PopStdDev calculates the population standard deviation (n denominator).
// Used for cross-sectional dispersion (volatilities, correlations,
// the spread of model predictions).
func PopStdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	mean := stat.Mean(data, nil)
	sumSq := 0.0
	for _, v := range data {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(data)))
}

// WeightedStdDev calculates the weight-weighted standard deviation around
// the supplied mean. Falls back to the unweighted population standard
// deviation when the total weight is 0.
func WeightedStdDev(values, weights []float64, mean float64) float64 {
	if len(values) == 0 || len(values) != len(weights) {
		return 0
	}
	var weightedVar, totalWeight float64
	for i, v := range values {
		diff := v - mean
		weightedVar += weights[i] * diff * diff
		totalWeight += weights[i]
	}
	if totalWeight <= 0 {
		return PopStdDev(values)
	}
	return math.Sqrt(weightedVar / totalWeight)
}

// AnnualizedVolatility calculates annualized volatility from daily returns
// Formula: Std Dev of Daily Returns × sqrt(252 trading days)
func AnnualizedVolatility(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}

	return StdDev(dailyReturns) * math.Sqrt(252)
}

// CalculateReturns converts prices to percentage returns
// Returns[i] = (Price[i] - Price[i-1]) / Price[i-1]
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}

	return returns
}

// Correlation calculates the Pearson correlation coefficient between two datasets
func Correlation(x, y []float64) float64 {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// PercentileRank calculates the empirical percentile of value within data:
// the fraction of observations less than or equal to value.
// Returns 0.5 for empty data.
func PercentileRank(data []float64, value float64) float64 {
	if len(data) == 0 {
		return 0.5
	}
	count := 0
	for _, v := range data {
		if v <= value {
			count++
		}
	}
	return float64(count) / float64(len(data))
}

// Herfindahl calculates the Herfindahl-Hirschman concentration index of a
// weight map: the sum of squared weights. An empty map is treated as fully
// concentrated (1.0).
func Herfindahl(weights map[string]float64) float64 {
	if len(weights) == 0 {
		return 1.0
	}
	hhi := 0.0
	for _, w := range weights {
		hhi += w * w
	}
	return hhi
}

// Clamp constrains x to the inclusive range [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
