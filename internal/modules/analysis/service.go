// Package analysis gathers market data for a symbol, derives its technical
// indicators and scores it with the configured strategy.
package analysis

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/stockdash/backend/internal/domain"
	"github.com/stockdash/backend/internal/events"
	"github.com/stockdash/backend/internal/modules/scoring"
	"github.com/stockdash/backend/internal/modules/scoring/signals"
)

// DefaultHistoryPeriod covers the 50-day SMA window with room to spare
const DefaultHistoryPeriod = "6mo"

// EventEmitter publishes module events
type EventEmitter interface {
	Emit(module string, data events.EventData)
}

// Providers groups the data sources used by an analysis. Only Market is
// required; absent providers are treated as permanently unavailable.
type Providers struct {
	Market       domain.MarketDataProvider
	Fundamentals domain.FundamentalsProvider
	Sentiment    domain.SentimentProvider
	Indicators   domain.IndicatorProvider
}

// Analysis is the full result for one symbol
type Analysis struct {
	Symbol       string                      `json:"symbol"`
	Quote        *domain.Quote               `json:"quote"`
	Fundamentals *domain.FundamentalSnapshot `json:"fundamentals,omitempty"`
	Sentiment    *domain.SentimentSnapshot   `json:"sentiment,omitempty"`
	Indicators   []domain.TechnicalIndicator `json:"indicators"`
	Score        domain.ScoreResult          `json:"score"`
	Strategy     string                      `json:"strategy"`
	AnalyzedAt   time.Time                   `json:"analyzed_at"`
}

// Service orchestrates a symbol analysis.
//
// Flow:
//  1. Fetch quote, price bars, fundamentals, sentiment and provider indicators concurrently
//  2. Build technical indicators (provider values first, local calculation otherwise)
//  3. Score with the strategy
//  4. Persist and emit ANALYSIS_COMPLETED
type Service struct {
	providers     Providers
	strategy      scoring.Strategy
	store         domain.InsightStore
	events        EventEmitter
	historyPeriod string
	log           zerolog.Logger
}

// NewService creates an analysis service. store and emitter may be nil.
func NewService(providers Providers, strategy scoring.Strategy, store domain.InsightStore, emitter EventEmitter, log zerolog.Logger) *Service {
	return &Service{
		providers:     providers,
		strategy:      strategy,
		store:         store,
		events:        emitter,
		historyPeriod: DefaultHistoryPeriod,
		log:           log.With().Str("service", "analysis").Logger(),
	}
}

// Analyze runs the full pipeline for symbol.
//
// A quote failure is returned as *domain.UpstreamProviderError and a quote
// without a price as *domain.InsufficientDataError. Every other source degrades
// to unavailable.
func (s *Service) Analyze(ctx context.Context, symbol string) (*Analysis, error) {
	symbol = domain.NormalizeSymbol(symbol)

	var (
		quote        *domain.Quote
		bars         []domain.PriceBar
		fundamentals *domain.FundamentalSnapshot
		sentiment    *domain.SentimentSnapshot
		enhanced     *domain.EnhancedIndicators
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		q, err := s.providers.Market.GetQuote(gctx, symbol)
		if err != nil {
			return &domain.UpstreamProviderError{Provider: "market", Symbol: symbol, Err: err}
		}
		quote = q
		return nil
	})

	g.Go(func() error {
		b, err := s.providers.Market.GetPriceBars(gctx, symbol, s.historyPeriod)
		if err != nil {
			s.unavailable(symbol, "price_bars", err)
			return nil
		}
		bars = b
		return nil
	})

	if s.providers.Fundamentals != nil {
		g.Go(func() error {
			f, err := s.providers.Fundamentals.GetFundamentals(gctx, symbol)
			if err != nil {
				s.unavailable(symbol, "fundamentals", err)
				return nil
			}
			fundamentals = f
			return nil
		})
	}

	if s.providers.Sentiment != nil {
		g.Go(func() error {
			snap, err := s.providers.Sentiment.GetSentiment(gctx, symbol)
			if err != nil {
				s.unavailable(symbol, "sentiment", err)
				return nil
			}
			sentiment = snap
			return nil
		})
	}

	if s.providers.Indicators != nil {
		g.Go(func() error {
			e, err := s.providers.Indicators.GetIndicators(gctx, symbol)
			if err != nil {
				s.unavailable(symbol, "indicators", err)
				return nil
			}
			enhanced = e
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if quote == nil || quote.Price == nil {
		return nil, &domain.InsufficientDataError{Symbol: symbol, Field: "current price"}
	}

	indicators := signals.Build(domain.Closes(bars), *quote.Price, enhanced)

	result, err := s.strategy.Evaluate(ctx, scoring.Input{
		Symbol:       symbol,
		Quote:        quote,
		Fundamentals: fundamentals,
		Sentiment:    sentiment,
		Indicators:   indicators,
	})
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.SaveScore(ctx, result); err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to persist score")
		}
	}

	if s.events != nil {
		s.events.Emit("analysis", &events.AnalysisCompletedData{
			Symbol:     symbol,
			Action:     string(result.Action),
			Score:      result.Score,
			Confidence: result.Confidence,
			Source:     string(result.Source),
			Indicators: len(indicators),
		})
	}

	s.log.Info().
		Str("symbol", symbol).
		Str("action", string(result.Action)).
		Float64("score", result.Score).
		Float64("confidence", result.Confidence).
		Int("indicators", len(indicators)).
		Msg("Analysis completed")

	return &Analysis{
		Symbol:       symbol,
		Quote:        quote,
		Fundamentals: fundamentals,
		Sentiment:    sentiment,
		Indicators:   indicators,
		Score:        result,
		Strategy:     s.strategy.Name(),
		AnalyzedAt:   time.Now().UTC(),
	}, nil
}

func (s *Service) unavailable(symbol, source string, err error) {
	s.log.Warn().Err(err).Str("symbol", symbol).Str("source", source).Msg("Data source unavailable, continuing without it")
}
