// Package scoring aggregates market, fundamental, sentiment and technical
// signals into a single buy/sell/hold/watch recommendation.
package scoring

import (
	"fmt"
	"math"

	"github.com/stockdash/backend/internal/domain"
	"github.com/stockdash/backend/pkg/formulas"
)

const (
	minConfidence = 30.0
	maxConfidence = 99.0
)

// Input is everything known about a symbol at scoring time.
// Nil members are unavailable and contribute nothing.
type Input struct {
	Symbol       string
	Quote        *domain.Quote
	Fundamentals *domain.FundamentalSnapshot
	Sentiment    *domain.SentimentSnapshot
	Indicators   []domain.TechnicalIndicator
}

// Engine applies the weighted rule table
type Engine struct {
	rules []rule
}

// NewEngine creates an engine with the standard rule set
func NewEngine() *Engine {
	return &Engine{rules: defaultRules()}
}

// Score evaluates every rule, sums the contributions and maps the total to an
// action and confidence. reasoning[0] is always the verdict line.
//
// A missing quote or quote price is an error; the engine never guesses a
// default recommendation.
func (e *Engine) Score(in Input) (domain.ScoreResult, error) {
	if in.Quote == nil || in.Quote.Price == nil {
		return domain.ScoreResult{}, &domain.InsufficientDataError{Symbol: in.Symbol, Field: "current price"}
	}

	score := 0.0
	var details []string
	for _, r := range e.rules {
		for _, c := range r(in) {
			score += c.delta
			details = append(details, c.reason)
		}
	}

	action, confidence := MapScore(score)

	reasoning := make([]string, 0, len(details)+1)
	reasoning = append(reasoning, verdict(action, score))
	reasoning = append(reasoning, details...)

	return domain.ScoreResult{
		Symbol:     in.Symbol,
		Score:      score,
		Action:     action,
		Confidence: confidence,
		Reasoning:  reasoning,
		Source:     domain.ScoreSourceRules,
	}, nil
}

// MapScore converts a raw score into an action and a confidence in [30, 99].
// Bands are checked in order and the first match wins.
func MapScore(s float64) (domain.Action, float64) {
	abs := math.Abs(s)

	var action domain.Action
	var confidence float64

	switch {
	case s >= 65:
		action, confidence = domain.ActionBuy, math.Min(96, 85+(s-65)*0.15)
	case s >= 35:
		action, confidence = domain.ActionBuy, math.Min(88, 72+(s-35)*0.25)
	case s <= -65:
		action, confidence = domain.ActionSell, math.Min(94, 85+math.Abs(s+65)*0.15)
	case s <= -35:
		action, confidence = domain.ActionSell, math.Min(86, 72+math.Abs(s+35)*0.25)
	case abs < 20:
		action, confidence = domain.ActionHold, math.Max(70, 78+abs*0.1)
	case s > 25 && s < 35:
		action, confidence = domain.ActionBuy, math.Min(85, 75+(s-25)*0.3)
	case s < -25 && s > -35:
		action, confidence = domain.ActionSell, math.Min(85, 75+math.Abs(s+25)*0.3)
	case abs <= 10:
		// unreachable after the |s| < 20 band; kept so the table is total
		action, confidence = domain.ActionHold, 75
	default:
		action, confidence = domain.ActionWatch, math.Max(65, 78-abs*0.05)
	}

	return action, ClampConfidence(confidence)
}

// ClampConfidence bounds confidence to [30, 99] and rounds half away from zero.
func ClampConfidence(c float64) float64 {
	return math.Round(formulas.Clamp(c, minConfidence, maxConfidence))
}

func verdict(action domain.Action, score float64) string {
	s := math.Round(score)
	switch action {
	case domain.ActionBuy:
		if score >= 65 {
			return fmt.Sprintf("Strong buy: bullish signals dominate (score %+.0f)", s)
		}
		return fmt.Sprintf("Buy: bullish signals outweigh bearish ones (score %+.0f)", s)
	case domain.ActionSell:
		if score <= -65 {
			return fmt.Sprintf("Strong sell: bearish signals dominate (score %+.0f)", s)
		}
		return fmt.Sprintf("Sell: bearish signals outweigh bullish ones (score %+.0f)", s)
	case domain.ActionHold:
		return fmt.Sprintf("Hold: signals are balanced (score %+.0f)", s)
	default:
		return fmt.Sprintf("Watch: mixed signals without a clear direction (score %+.0f)", s)
	}
}
