package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateSMA calculates the Simple Moving Average of the most recent prices.
//
// Formula:
//
//	SMA = (P[n-period] + ... + P[n-1]) / period
//
// Args:
//
//	prices: closing prices, oldest first
//	period: window length
//
// Returns:
//
//	Current SMA value or nil if fewer than period prices are available
func CalculateSMA(prices []float64, period int) *float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}

	// Only the last window is passed so rounding from the running sum over
	// the whole history cannot accumulate
	window := prices[len(prices)-period:]
	sma := talib.Sma(window, period)
	if len(sma) > 0 && !isNaN(sma[len(sma)-1]) {
		result := sma[len(sma)-1]
		// One correction pass removes the rounding left in the window sum
		result += residualMean(window, result)
		return &result
	}

	return nil
}

// CalculateEMA calculates the Exponential Moving Average over the full series.
//
// The recurrence is seeded with the first price rather than an SMA, so the
// result is defined for any non-empty series:
//
//	multiplier = 2 / (period + 1)
//	EMA_0 = P_0
//	EMA_i = (P_i - EMA_{i-1}) × multiplier + EMA_{i-1}
//
// Returns:
//
//	Final EMA value or nil for an empty series or a non-positive period
func CalculateEMA(prices []float64, period int) *float64 {
	if period <= 0 || len(prices) == 0 {
		return nil
	}

	multiplier := 2.0 / float64(period+1)
	ema := prices[0]
	for _, price := range prices[1:] {
		ema = (price-ema)*multiplier + ema
	}

	return &ema
}

// CalculateDistanceFromSMA returns (price - SMA) / SMA as a fraction.
func CalculateDistanceFromSMA(prices []float64, period int) *float64 {
	sma := CalculateSMA(prices, period)
	if sma == nil || *sma == 0 {
		return nil
	}

	distance := (prices[len(prices)-1] - *sma) / *sma
	return &distance
}
