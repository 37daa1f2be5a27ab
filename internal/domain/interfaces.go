package domain

import "context"

// MarketDataProvider supplies quotes and daily price history
type MarketDataProvider interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
	// GetPriceBars returns daily bars for the range (e.g. "3mo", "1y"), oldest first
	GetPriceBars(ctx context.Context, symbol string, period string) ([]PriceBar, error)
}

// FundamentalsProvider supplies valuation and quality ratios
type FundamentalsProvider interface {
	GetFundamentals(ctx context.Context, symbol string) (*FundamentalSnapshot, error)
}

// SentimentProvider supplies aggregated news sentiment
type SentimentProvider interface {
	GetSentiment(ctx context.Context, symbol string) (*SentimentSnapshot, error)
}

// IndicatorProvider supplies precomputed indicator values
type IndicatorProvider interface {
	GetIndicators(ctx context.Context, symbol string) (*EnhancedIndicators, error)
}

// LLMProvider completes a chat prompt and returns the raw reply text
type LLMProvider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// InsightStore persists scoring and portfolio outputs
type InsightStore interface {
	SaveScore(ctx context.Context, result ScoreResult) error
	SaveRisk(ctx context.Context, assessment RiskAssessment) error
	SaveOptimization(ctx context.Context, result OptimizationResult) error
}
