package yahoo

import (
	"context"

	"github.com/stockdash/backend/internal/domain"
	"github.com/stockdash/backend/pkg/formulas"
)

// ChartIndicators derives the enhanced indicator set from daily closes served
// by a market data provider. Wired over the cached market provider it reads the
// same bar history the analysis uses, so no extra chart request is made.
type ChartIndicators struct {
	market domain.MarketDataProvider
	period string
}

// NewChartIndicators reads period bars (e.g. "6mo") from market
func NewChartIndicators(market domain.MarketDataProvider, period string) *ChartIndicators {
	return &ChartIndicators{market: market, period: period}
}

// GetIndicators computes indicators from the symbol's closes. Values the
// history is too short for stay nil.
func (c *ChartIndicators) GetIndicators(ctx context.Context, symbol string) (*domain.EnhancedIndicators, error) {
	bars, err := c.market.GetPriceBars(ctx, symbol, c.period)
	if err != nil {
		return nil, err
	}
	return IndicatorsFromCloses(domain.Closes(bars)), nil
}

// IndicatorsFromCloses computes every enhanced indicator it can from closes
func IndicatorsFromCloses(closes []float64) *domain.EnhancedIndicators {
	out := &domain.EnhancedIndicators{
		RSI:   formulas.CalculateRSI(closes, 14),
		SMA20: formulas.CalculateSMA(closes, 20),
		SMA50: formulas.CalculateSMA(closes, 50),
	}

	// EMAs are defined for any series; only report them once the window is full
	if len(closes) >= 12 {
		out.EMA12 = formulas.CalculateEMA(closes, 12)
	}
	if len(closes) >= 26 {
		out.EMA26 = formulas.CalculateEMA(closes, 26)
	}

	if m := formulas.CalculateMACD(closes); m != nil {
		out.MACD = &m.MACD
		out.MACDSignal = &m.Signal
	}

	if b := formulas.CalculateBollingerBands(closes, 20, 2); b != nil {
		out.BollingerUpper = &b.Upper
		out.BollingerMid = &b.Middle
		out.BollingerLower = &b.Lower
	}

	return out
}
