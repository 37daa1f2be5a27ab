package formulas

const (
	DefaultBollingerPeriod     = 20
	DefaultBollingerMultiplier = 2.0
)

// BollingerBands represents Bollinger Bands values
type BollingerBands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// CalculateBollingerBands calculates Bollinger Bands
//
// Bollinger Bands Formula:
//
//	Middle Band = SMA(period)
//	Upper Band = Middle + (k × population std deviation)
//	Lower Band = Middle - (k × population std deviation)
//
// Args:
//
//	prices: closing prices, oldest first
//	period: window for the moving average (typically 20)
//	stdDevMultiplier: k (typically 2)
//
// Returns:
//
//	BollingerBands struct or nil if insufficient data
func CalculateBollingerBands(prices []float64, period int, stdDevMultiplier float64) *BollingerBands {
	if period <= 0 || len(prices) < period {
		return nil
	}

	// Deviation over the window only. talib's BBands derives variance as
	// E[x²]-mean², which leaves a non-zero width on a flat series.
	middle := CalculateSMA(prices, period)
	if middle == nil {
		return nil
	}
	width := stdDevMultiplier * PopulationStdDev(prices[len(prices)-period:])

	return &BollingerBands{
		Upper:  *middle + width,
		Middle: *middle,
		Lower:  *middle - width,
	}
}

// Position returns where price sits inside the bands, 0 at the lower band and
// 1 at the upper band. Collapsed bands report 0.5.
func (b BollingerBands) Position(price float64) float64 {
	width := b.Upper - b.Lower
	if width == 0 {
		return 0.5
	}

	return Clamp((price-b.Lower)/width, 0, 1)
}
