package formulas

// DefaultRSIPeriod is the conventional RSI lookback.
const DefaultRSIPeriod = 14

// CalculateRSI calculates the Relative Strength Index
//
// RSI Formula:
//
//	RSI = 100 - (100 / (1 + RS))
//	where RS = Average Gain / Average Loss
//
// Averages are simple means over the first `period` price changes of the
// series. No Wilder smoothing is applied to later changes.
//
// Args:
//
//	prices: closing prices, oldest first
//	period: RSI period (typically 14)
//
// Returns:
//
//	RSI value (0-100), 100 when there were no losses, or nil if fewer than
//	period+1 prices are available
func CalculateRSI(prices []float64, period int) *float64 {
	if period <= 0 || len(prices) < period+1 {
		return nil
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		result := 100.0
		return &result
	}

	rs := avgGain / avgLoss
	result := 100 - 100/(1+rs)
	return &result
}
