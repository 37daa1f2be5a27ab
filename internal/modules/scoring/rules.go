package scoring

import (
	"fmt"

	"github.com/stockdash/backend/internal/domain"
)

// contribution is one scored observation
type contribution struct {
	delta  float64
	reason string
}

// rule inspects the input and returns zero or more contributions.
// Rules skip silently when their inputs are unavailable.
type rule func(in Input) []contribution

const (
	trillion = 1e12
	billion  = 1e9
	million  = 1e6
)

func defaultRules() []rule {
	return []rule{
		momentumRule,
		volumeRule,
		valuationRule,
		pegRule,
		marketCapRule,
		profitMarginRule,
		roeRule,
		betaRule,
		dividendRule,
		sentimentRule,
		indicatorRule,
	}
}

func one(delta float64, format string, args ...interface{}) []contribution {
	return []contribution{{delta: delta, reason: fmt.Sprintf(format, args...)}}
}

func momentumRule(in Input) []contribution {
	if in.Quote == nil || in.Quote.ChangePercent == nil {
		return nil
	}

	c := *in.Quote.ChangePercent
	switch {
	case c > 5:
		return one(32, "Strong upward momentum (%+.2f%% today)", c)
	case c > 2:
		return one(20, "Positive momentum (%+.2f%% today)", c)
	case c < -5:
		return one(-32, "Strong downward momentum (%+.2f%% today)", c)
	case c < -2:
		return one(-20, "Negative momentum (%+.2f%% today)", c)
	}
	return nil
}

func volumeRule(in Input) []contribution {
	if in.Quote == nil || in.Quote.Volume == nil {
		return nil
	}

	v := *in.Quote.Volume
	switch {
	case v > 5*million:
		return one(20, "Very high trading volume (%.1fM shares)", v/million)
	case v > 2*million:
		return one(15, "High trading volume (%.1fM shares)", v/million)
	case v < 500_000:
		return one(-5, "Thin trading volume (%.0fK shares)", v/1000)
	}
	return nil
}

// valuationRule scores P/E. Non-positive P/E (losses) is not scored.
func valuationRule(in Input) []contribution {
	pe := peRatio(in)
	if pe == nil || *pe <= 0 {
		return nil
	}

	p := *pe
	switch {
	case p < 10:
		return one(28, "Deeply undervalued (P/E %.1f)", p)
	case p < 15:
		return one(21, "Attractive valuation (P/E %.1f)", p)
	case p > 40:
		return one(-28, "Very expensive valuation (P/E %.1f)", p)
	case p > 25:
		return one(-21, "Expensive valuation (P/E %.1f)", p)
	}
	return nil
}

func pegRule(in Input) []contribution {
	if in.Fundamentals == nil || in.Fundamentals.PEGRatio == nil {
		return nil
	}

	peg := *in.Fundamentals.PEGRatio
	switch {
	case peg > 0 && peg < 1:
		return one(6, "Growth at a reasonable price (PEG %.2f)", peg)
	case peg > 2:
		return one(-6, "Growth looks overpriced (PEG %.2f)", peg)
	}
	return nil
}

func marketCapRule(in Input) []contribution {
	mc := marketCap(in)
	if mc == nil {
		return nil
	}

	m := *mc
	switch {
	case m > trillion:
		return one(16, "Mega-cap stability ($%.2fT market cap)", m/trillion)
	case m >= 100*billion:
		return one(12, "Large-cap company ($%.0fB market cap)", m/billion)
	case m >= 10*billion:
		return one(8, "Mid-to-large cap company ($%.1fB market cap)", m/billion)
	case m < billion:
		return one(-16, "Micro-cap risk ($%.0fM market cap)", m/million)
	default:
		return one(-8, "Small-cap risk ($%.1fB market cap)", m/billion)
	}
}

func profitMarginRule(in Input) []contribution {
	if in.Fundamentals == nil || in.Fundamentals.ProfitMargin == nil {
		return nil
	}

	pm := *in.Fundamentals.ProfitMargin
	switch {
	case pm > 0.20:
		return one(6, "High profit margin (%.1f%%)", pm*100)
	case pm < 0.02:
		return one(-6, "Weak profit margin (%.1f%%)", pm*100)
	}
	return nil
}

func roeRule(in Input) []contribution {
	if in.Fundamentals == nil || in.Fundamentals.ReturnOnEquity == nil {
		return nil
	}

	roe := *in.Fundamentals.ReturnOnEquity
	switch {
	case roe > 0.20:
		return one(6, "Excellent return on equity (%.1f%%)", roe*100)
	case roe >= 0.12:
		return one(4, "Solid return on equity (%.1f%%)", roe*100)
	case roe < 0.05:
		return one(-6, "Poor return on equity (%.1f%%)", roe*100)
	}
	return nil
}

func betaRule(in Input) []contribution {
	if in.Fundamentals == nil || in.Fundamentals.Beta == nil {
		return nil
	}

	b := *in.Fundamentals.Beta
	switch {
	case b < 0.8:
		return one(3, "Low volatility versus the market (beta %.2f)", b)
	case b > 1.5:
		return one(-3, "High volatility versus the market (beta %.2f)", b)
	}
	return nil
}

func dividendRule(in Input) []contribution {
	if in.Fundamentals == nil || in.Fundamentals.DividendYield == nil {
		return nil
	}

	y := *in.Fundamentals.DividendYield
	switch {
	case y > 0.04:
		return one(4, "High dividend yield (%.1f%%)", y*100)
	case y > 0.02:
		return one(2, "Moderate dividend yield (%.1f%%)", y*100)
	}
	return nil
}

func sentimentRule(in Input) []contribution {
	if in.Sentiment == nil {
		return nil
	}

	switch in.Sentiment.Sentiment {
	case domain.SentimentPositive:
		return one(8, "Positive news sentiment (%d articles)", in.Sentiment.ArticleCount)
	case domain.SentimentNegative:
		return one(-8, "Negative news sentiment (%d articles)", in.Sentiment.ArticleCount)
	}
	return nil
}

// indicatorRule adds a small vote per available indicator
func indicatorRule(in Input) []contribution {
	var out []contribution
	for _, ind := range in.Indicators {
		switch ind.Signal {
		case domain.SignalBuy:
			out = append(out, contribution{4, fmt.Sprintf("%s signals buy (strength %.0f)", ind.Name, ind.Strength)})
		case domain.SignalSell:
			out = append(out, contribution{-4, fmt.Sprintf("%s signals sell (strength %.0f)", ind.Name, ind.Strength)})
		}
	}
	return out
}

// peRatio prefers the fundamentals snapshot over the quote
func peRatio(in Input) *float64 {
	if in.Fundamentals != nil && in.Fundamentals.PERatio != nil {
		return in.Fundamentals.PERatio
	}
	if in.Quote != nil {
		return in.Quote.PE
	}
	return nil
}

func marketCap(in Input) *float64 {
	if in.Fundamentals != nil && in.Fundamentals.MarketCap != nil {
		return in.Fundamentals.MarketCap
	}
	if in.Quote != nil {
		return in.Quote.MarketCap
	}
	return nil
}
