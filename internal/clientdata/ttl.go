package clientdata

import "time"

// Default TTLs per table. They are added to time.Now() when storing to
// calculate expires_at.
const (
	// Intraday quotes move constantly
	TTLQuote = 5 * time.Minute

	// Daily bars only change once the session closes
	TTLPriceBars = time.Hour

	// Ratios update with quarterly filings
	TTLFundamentals = 24 * time.Hour

	TTLSentiment  = 30 * time.Minute
	TTLIndicators = 15 * time.Minute
)

// TTLs holds the expiry applied to each cached table
type TTLs struct {
	Quote        time.Duration
	PriceBars    time.Duration
	Fundamentals time.Duration
	Sentiment    time.Duration
	Indicators   time.Duration
}

// DefaultTTLs returns the package default expiries
func DefaultTTLs() TTLs {
	return TTLs{
		Quote:        TTLQuote,
		PriceBars:    TTLPriceBars,
		Fundamentals: TTLFundamentals,
		Sentiment:    TTLSentiment,
		Indicators:   TTLIndicators,
	}
}

// withDefaults fills zero durations
func (t TTLs) withDefaults() TTLs {
	d := DefaultTTLs()
	if t.Quote <= 0 {
		t.Quote = d.Quote
	}
	if t.PriceBars <= 0 {
		t.PriceBars = d.PriceBars
	}
	if t.Fundamentals <= 0 {
		t.Fundamentals = d.Fundamentals
	}
	if t.Sentiment <= 0 {
		t.Sentiment = d.Sentiment
	}
	if t.Indicators <= 0 {
		t.Indicators = d.Indicators
	}
	return t
}
