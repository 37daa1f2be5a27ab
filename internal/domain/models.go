// Package domain provides core domain models and types.
package domain

import (
	"strings"
	"time"
)

// Action is the recommendation emitted for a stock
type Action string

const (
	ActionBuy   Action = "buy"
	ActionSell  Action = "sell"
	ActionHold  Action = "hold"
	ActionWatch Action = "watch"
)

// Signal is the direction suggested by a single technical indicator
type Signal string

const (
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
	SignalHold Signal = "hold"
)

// IndicatorSource records where an indicator value came from
type IndicatorSource string

const (
	// SourceProvider marks values supplied by an upstream indicator service
	SourceProvider IndicatorSource = "provider"
	// SourceCalculated marks values computed locally from price bars
	SourceCalculated IndicatorSource = "calculated"
)

// ScoreSource records which strategy produced a score
type ScoreSource string

const (
	ScoreSourceRules ScoreSource = "rules"
	ScoreSourceLLM   ScoreSource = "llm"
)

// Sentiment is the aggregate news tone for a symbol
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Impact rates how much a risk factor matters
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// PriceBar is one OHLCV bar. Series are ordered by ascending timestamp.
type PriceBar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Closes extracts closing prices in bar order
func Closes(bars []PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Quote is the latest market snapshot for a symbol.
// Every field is optional; nil means the provider did not supply it.
type Quote struct {
	Symbol        string   `json:"symbol"`
	Price         *float64 `json:"price,omitempty"`
	Change        *float64 `json:"change,omitempty"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
	Volume        *float64 `json:"volume,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
	PE            *float64 `json:"pe,omitempty"`
	EPS           *float64 `json:"eps,omitempty"`
	Dividend      *float64 `json:"dividend,omitempty"`
	High52Week    *float64 `json:"high_52_week,omitempty"`
	Low52Week     *float64 `json:"low_52_week,omitempty"`
}

// FundamentalSnapshot holds valuation and quality ratios.
// Ratios are fractions: 0.20 means 20%.
type FundamentalSnapshot struct {
	Symbol         string   `json:"symbol"`
	PERatio        *float64 `json:"pe_ratio,omitempty"`
	PEGRatio       *float64 `json:"peg_ratio,omitempty"`
	ProfitMargin   *float64 `json:"profit_margin,omitempty"`
	ReturnOnEquity *float64 `json:"return_on_equity,omitempty"`
	Beta           *float64 `json:"beta,omitempty"`
	DividendYield  *float64 `json:"dividend_yield,omitempty"`
	MarketCap      *float64 `json:"market_cap,omitempty"`
}

// SentimentSnapshot is the aggregated news sentiment for a symbol
type SentimentSnapshot struct {
	Symbol       string    `json:"symbol"`
	Sentiment    Sentiment `json:"sentiment"`
	ArticleCount int       `json:"article_count"`
	AverageScore float64   `json:"average_score"`
}

// EnhancedIndicators are indicator values supplied by an upstream service.
// A nil field means the provider had no value and local computation is used.
type EnhancedIndicators struct {
	RSI            *float64 `json:"rsi,omitempty"`
	MACD           *float64 `json:"macd,omitempty"`
	MACDSignal     *float64 `json:"macd_signal,omitempty"`
	BollingerUpper *float64 `json:"bollinger_upper,omitempty"`
	BollingerMid   *float64 `json:"bollinger_middle,omitempty"`
	BollingerLower *float64 `json:"bollinger_lower,omitempty"`
	SMA20          *float64 `json:"sma_20,omitempty"`
	SMA50          *float64 `json:"sma_50,omitempty"`
	EMA12          *float64 `json:"ema_12,omitempty"`
	EMA26          *float64 `json:"ema_26,omitempty"`
}

// TechnicalIndicator is a derived indicator reading with its trading signal
type TechnicalIndicator struct {
	Name     string          `json:"name"`
	Value    float64         `json:"value"`
	Signal   Signal          `json:"signal"`
	Strength float64         `json:"strength"` // 0-100
	Source   IndicatorSource `json:"source"`
}

// ScoreResult is the scored recommendation for a symbol
type ScoreResult struct {
	Symbol     string      `json:"symbol"`
	Score      float64     `json:"score"`
	Action     Action      `json:"action"`
	Confidence float64     `json:"confidence"` // 30-99
	Reasoning  []string    `json:"reasoning"`
	Source     ScoreSource `json:"source"`
}

// Holding is a portfolio position supplied by the caller
type Holding struct {
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	AveragePrice float64 `json:"average_price"`
	CurrentPrice float64 `json:"current_price"`
}

// MarketValue is quantity × current price
func (h Holding) MarketValue() float64 {
	return h.Quantity * h.CurrentPrice
}

// CostBasis is quantity × average price
func (h Holding) CostBasis() float64 {
	return h.Quantity * h.AveragePrice
}

// GainLoss is the unrealized profit or loss
func (h Holding) GainLoss() float64 {
	return h.MarketValue() - h.CostBasis()
}

// NormalizeSymbol upper-cases and trims a ticker
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// RiskFactor is a single named risk contributor
type RiskFactor struct {
	Factor      string `json:"factor"`
	Impact      Impact `json:"impact"`
	Description string `json:"description"`
}

// RiskAssessment summarises portfolio risk. All scores are 0-100.
type RiskAssessment struct {
	PortfolioRisk        float64      `json:"portfolio_risk"`
	DiversificationScore float64      `json:"diversification_score"`
	VolatilityScore      float64      `json:"volatility_score"`
	Recommendations      []string     `json:"recommendations"`
	RiskFactors          []RiskFactor `json:"risk_factors"`
}

// OptimizationResult is the recommended allocation for a set of holdings.
// Allocations are percentages keyed by symbol.
type OptimizationResult struct {
	CurrentAllocation     map[string]float64 `json:"current_allocation"`
	RecommendedAllocation map[string]float64 `json:"recommended_allocation"`
	ExpectedReturn        float64            `json:"expected_return"`
	ExpectedRisk          float64            `json:"expected_risk"`
	SharpeRatio           float64            `json:"sharpe_ratio"`
	Recommendations       []string           `json:"recommendations"`
	// Placeholder is set while return and risk are fixed estimates
	Placeholder bool `json:"placeholder"`
}
