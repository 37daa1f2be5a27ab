package formulas

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// PopulationStdDev calculates the population (divide-by-N) standard deviation
func PopulationStdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	// Compensated variance can round to a tiny negative on a flat series
	_, variance := stat.PopMeanVariance(data, nil)
	if variance <= 0 {
		return 0
	}
	return math.Sqrt(variance)
}

// MeanAbs returns the mean of the absolute values
func MeanAbs(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}

	abs := make([]float64, len(data))
	for i, v := range data {
		abs[i] = math.Abs(v)
	}
	return stat.Mean(abs, nil)
}

// HerfindahlIndex returns the sum of squared weights.
// Weights are normalised to sum to 1 before squaring; a zero total yields 0.
func HerfindahlIndex(values []float64) float64 {
	total := floats.Sum(values)
	if len(values) == 0 || total == 0 {
		return 0
	}

	weights := make([]float64, len(values))
	copy(weights, values)
	floats.Scale(1/total, weights)

	return floats.Dot(weights, weights)
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

// MaxDrawdown returns the largest peak-to-trough decline as a positive fraction.
func MaxDrawdown(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}

	peak := prices[0]
	maxDD := 0.0
	for _, p := range prices[1:] {
		if p > peak {
			peak = p
			continue
		}
		if peak > 0 {
			if dd := (peak - p) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}

// residualMean returns the mean of data's deviations from mean
func residualMean(data []float64, mean float64) float64 {
	var sum float64
	for _, v := range data {
		sum += v - mean
	}
	return sum / float64(len(data))
}
