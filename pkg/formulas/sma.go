package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// CalculateSMA calculates the Simple Moving Average over the trailing
// `length` closes. Returns nil when there is not enough data.
func CalculateSMA(closes []float64, length int) *float64 {
	if length <= 0 || len(closes) < length {
		return nil
	}

	sma := talib.Sma(closes, length)
	if len(sma) > 0 && !math.IsNaN(sma[len(sma)-1]) {
		result := sma[len(sma)-1]
		return &result
	}

	// Fallback to a plain mean of the last 'length' closes
	mean := Mean(closes[len(closes)-length:])
	return &mean
}

// DistanceFromSMA calculates the relative distance of the last close from
// its trailing simple moving average: close/SMA - 1. Returns nil when the
// SMA cannot be computed or is zero.
func DistanceFromSMA(closes []float64, length int) *float64 {
	sma := CalculateSMA(closes, length)
	if sma == nil || *sma == 0 {
		return nil
	}
	dist := closes[len(closes)-1]/(*sma) - 1
	return &dist
}
