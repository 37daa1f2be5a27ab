package testing

import (
	"time"

	"github.com/stockdash/backend/internal/domain"
)

// Float returns a pointer to v, for optional quote and fundamental fields
func Float(v float64) *float64 {
	return &v
}

// NewBarSeries returns n daily bars whose closes start at start and move by
// step each day. Bars end at a fixed date so tests are deterministic.
func NewBarSeries(n int, start, step float64) []domain.PriceBar {
	end := time.Date(2024, time.June, 28, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.PriceBar, n)
	for i := range bars {
		c := start + float64(i)*step
		bars[i] = domain.PriceBar{
			Timestamp: end.AddDate(0, 0, i-n+1),
			Open:      c - step/2,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1_000_000,
		}
	}
	return bars
}

// NewQuoteFixture returns a quote with the fields the scoring rules read
func NewQuoteFixture(symbol string, price, changePercent float64) *domain.Quote {
	return &domain.Quote{
		Symbol:        symbol,
		Price:         Float(price),
		Change:        Float(price * changePercent / 100),
		ChangePercent: Float(changePercent),
		Volume:        Float(2_000_000),
		MarketCap:     Float(5e10),
		PE:            Float(20),
	}
}

// NewHoldingFixtures returns a five-position portfolio with one 40% position
func NewHoldingFixtures() []domain.Holding {
	return []domain.Holding{
		{Symbol: "AAPL", Quantity: 20, AveragePrice: 150, CurrentPrice: 200},
		{Symbol: "MSFT", Quantity: 5, AveragePrice: 300, CurrentPrice: 400},
		{Symbol: "GOOG", Quantity: 20, AveragePrice: 120, CurrentPrice: 100},
		{Symbol: "AMZN", Quantity: 10, AveragePrice: 110, CurrentPrice: 100},
		{Symbol: "NVDA", Quantity: 10, AveragePrice: 90, CurrentPrice: 100},
	}
}
