package formulas

const (
	MACDFastPeriod = 12
	MACDSlowPeriod = 26

	// macdSignalFactor approximates the signal line as a fixed fraction of the
	// MACD line instead of a 9-period EMA of the MACD series.
	macdSignalFactor = 0.9
)

// MACD holds the latest Moving Average Convergence Divergence values
type MACD struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// CalculateMACD calculates MACD from the fast and slow EMAs.
//
// Formula:
//
//	MACD = EMA12 - EMA26
//	Signal = 0.9 × MACD
//	Histogram = MACD - Signal
//
// Returns:
//
//	MACD values or nil if fewer than 26 prices are available
func CalculateMACD(prices []float64) *MACD {
	if len(prices) < MACDSlowPeriod {
		return nil
	}

	fast := CalculateEMA(prices, MACDFastPeriod)
	slow := CalculateEMA(prices, MACDSlowPeriod)
	if fast == nil || slow == nil {
		return nil
	}

	line := *fast - *slow
	signal := line * macdSignalFactor

	return &MACD{
		MACD:      line,
		Signal:    signal,
		Histogram: line - signal,
	}
}
