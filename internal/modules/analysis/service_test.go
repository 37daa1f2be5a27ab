package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdash/backend/internal/domain"
	"github.com/stockdash/backend/internal/events"
	"github.com/stockdash/backend/internal/modules/scoring"
	"github.com/stockdash/backend/internal/modules/scoring/signals"
	testingpkg "github.com/stockdash/backend/internal/testing"
)

func strongQuote() *domain.Quote {
	return &domain.Quote{
		Symbol:        "AAPL",
		Price:         testingpkg.Float(190),
		ChangePercent: testingpkg.Float(6),
		Volume:        testingpkg.Float(6_000_000),
		PE:            testingpkg.Float(8),
		MarketCap:     testingpkg.Float(1.2e12),
	}
}

type fixture struct {
	market       *testingpkg.MockMarketData
	fundamentals *testingpkg.MockFundamentals
	sentiment    *testingpkg.MockSentiment
	indicators   *testingpkg.MockIndicators
	store        *testingpkg.MockInsightStore
	events       *events.Manager
	service      *Service
}

func newFixture() *fixture {
	f := &fixture{
		market:       testingpkg.NewMockMarketData(),
		fundamentals: testingpkg.NewMockFundamentals(),
		sentiment:    testingpkg.NewMockSentiment(),
		indicators:   testingpkg.NewMockIndicators(),
		store:        testingpkg.NewMockInsightStore(),
		events:       events.NewManager(zerolog.Nop()),
	}
	f.service = NewService(Providers{
		Market:       f.market,
		Fundamentals: f.fundamentals,
		Sentiment:    f.sentiment,
		Indicators:   f.indicators,
	}, scoring.NewRuleBasedStrategy(), f.store, f.events, zerolog.Nop())
	return f
}

func TestAnalyze_OptionalSourcesDegrade(t *testing.T) {
	f := newFixture()
	f.market.SetQuote("AAPL", strongQuote())
	f.market.SetBarsError(errors.New("chart endpoint down"))
	f.fundamentals.SetError(errors.New("quoteSummary 401"))
	f.sentiment.SetError(errors.New("rss timeout"))
	f.indicators.SetError(errors.New("no provider"))

	result, err := f.service.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Empty(t, result.Indicators)
	assert.Nil(t, result.Fundamentals)
	assert.Nil(t, result.Sentiment)
	assert.Equal(t, 96.0, result.Score.Score)
	assert.Equal(t, domain.ActionBuy, result.Score.Action)
	assert.Equal(t, 90.0, result.Score.Confidence)
	assert.Equal(t, "rules", result.Strategy)

	require.Len(t, f.store.Scores(), 1)
	recent := f.events.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, events.AnalysisCompleted, recent[0].Type)
	assert.Equal(t, "analysis", recent[0].Module)
}

func TestAnalyze_QuoteFailureIsUpstreamError(t *testing.T) {
	f := newFixture()
	f.market.SetQuoteError(errors.New("429 too many requests"))

	_, err := f.service.Analyze(context.Background(), "AAPL")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamProvider))

	var upstream *domain.UpstreamProviderError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "AAPL", upstream.Symbol)
	assert.Empty(t, f.store.Scores())
	assert.Empty(t, f.events.Recent(0))
}

func TestAnalyze_MissingPrice(t *testing.T) {
	f := newFixture()
	f.market.SetQuote("AAPL", &domain.Quote{Symbol: "AAPL", Volume: testingpkg.Float(1e6)})

	_, err := f.service.Analyze(context.Background(), "AAPL")
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestAnalyze_CalculatesIndicatorsFromBars(t *testing.T) {
	f := newFixture()
	f.market.SetQuote("MSFT", testingpkg.NewQuoteFixture("MSFT", 160, 0.5))
	f.market.SetBars("MSFT", testingpkg.NewBarSeries(60, 100, 1))

	result, err := f.service.Analyze(context.Background(), "msft ")
	require.NoError(t, err)
	assert.Equal(t, "MSFT", result.Symbol)

	require.Len(t, result.Indicators, 5)
	for _, ind := range result.Indicators {
		assert.Equal(t, domain.SourceCalculated, ind.Source, ind.Name)
		assert.GreaterOrEqual(t, ind.Strength, 0.0)
		assert.LessOrEqual(t, ind.Strength, 100.0)
	}
	assert.GreaterOrEqual(t, result.Score.Score, 0.0)
	assert.LessOrEqual(t, result.Score.Score, 100.0)
}

func TestAnalyze_PrefersProviderIndicators(t *testing.T) {
	f := newFixture()
	f.market.SetQuote("MSFT", testingpkg.NewQuoteFixture("MSFT", 160, 0.5))
	f.market.SetBars("MSFT", testingpkg.NewBarSeries(60, 100, 1))
	f.indicators.Set("MSFT", &domain.EnhancedIndicators{RSI: testingpkg.Float(25)})

	result, err := f.service.Analyze(context.Background(), "MSFT")
	require.NoError(t, err)

	var rsi *domain.TechnicalIndicator
	for i := range result.Indicators {
		if result.Indicators[i].Name == signals.NameRSI {
			rsi = &result.Indicators[i]
		}
	}
	require.NotNil(t, rsi)
	assert.Equal(t, domain.SourceProvider, rsi.Source)
	assert.Equal(t, 25.0, rsi.Value)
	assert.Equal(t, domain.SignalBuy, rsi.Signal)
}

func TestAnalyze_StoreFailureStillReturnsResult(t *testing.T) {
	f := newFixture()
	f.market.SetQuote("AAPL", strongQuote())
	f.store.SetError(errors.New("database is locked"))

	result, err := f.service.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionBuy, result.Score.Action)
}
