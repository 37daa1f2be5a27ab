package clientdata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdash/backend/internal/clients/yahoo"
	"github.com/stockdash/backend/internal/domain"
	testingpkg "github.com/stockdash/backend/internal/testing"
)

func TestCachedMarketData_Quote(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))
	market := testingpkg.NewMockMarketData()
	market.SetQuote("AAPL", testingpkg.NewQuoteFixture("AAPL", 190.5, 1.2))

	cached := NewCachedMarketData(market, repo, TTLs{}, zerolog.Nop())

	q, err := cached.GetQuote(ctx, "AAPL")
	require.NoError(t, err)
	require.NotNil(t, q.Price)
	assert.Equal(t, 190.5, *q.Price)

	// Keys are normalized, so this is a cache hit
	q, err = cached.GetQuote(ctx, " aapl")
	require.NoError(t, err)
	assert.Equal(t, 190.5, *q.Price)

	assert.Equal(t, 1, market.Calls("GetQuote"))
}

func TestCachedMarketData_StaleFallback(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))
	market := testingpkg.NewMockMarketData()

	bars := testingpkg.NewBarSeries(3, 100, 1)
	require.NoError(t, repo.Store(TablePriceBars, SeriesKey("MSFT", "6mo"), bars, -time.Hour))

	market.SetBarsError(errors.New("connection refused"))
	cached := NewCachedMarketData(market, repo, TTLs{}, zerolog.Nop())

	got, err := cached.GetPriceBars(ctx, "MSFT", "6mo")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 102.0, got[2].Close)
	assert.Equal(t, 1, market.Calls("GetPriceBars"))

	_, err = cached.GetPriceBars(ctx, "MSFT", "1y")
	assert.EqualError(t, err, "connection refused")
}

func TestCachedMarketData_QuoteNeverServedStale(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))
	market := testingpkg.NewMockMarketData()

	expired := testingpkg.NewQuoteFixture("AAPL", 180, 0.4)
	require.NoError(t, repo.Store(TableQuotes, "AAPL", expired, -time.Minute))

	market.SetQuoteError(errors.New("connection refused"))
	cached := NewCachedMarketData(market, repo, TTLs{}, zerolog.Nop())

	q, err := cached.GetQuote(ctx, "AAPL")
	assert.Nil(t, q)
	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, 1, market.Calls("GetQuote"))
}

func TestCachedFundamentals(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))
	provider := testingpkg.NewMockFundamentals()
	provider.Set("NVDA", &domain.FundamentalSnapshot{Symbol: "NVDA", Beta: testingpkg.Float(1.7)})

	cached := NewCachedFundamentals(provider, repo, TTLs{}, zerolog.Nop())

	snap, err := cached.GetFundamentals(ctx, "NVDA")
	require.NoError(t, err)
	assert.Equal(t, 1.7, *snap.Beta)

	// Provider now failing; the fresh row still answers
	provider.SetError(errors.New("rate limited"))
	snap, err = cached.GetFundamentals(ctx, "NVDA")
	require.NoError(t, err)
	assert.Equal(t, 1.7, *snap.Beta)
}

func TestCachedSentiment_NilNotCached(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))
	provider := testingpkg.NewMockSentiment()

	cached := NewCachedSentiment(provider, repo, TTLs{}, zerolog.Nop())

	snap, err := cached.GetSentiment(ctx, "ZZZZ")
	require.NoError(t, err)
	assert.Nil(t, snap)

	raw, err := repo.Get(TableSentiment, "ZZZZ")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestCachedIndicators(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))
	provider := testingpkg.NewMockIndicators()
	provider.Set("AMZN", &domain.EnhancedIndicators{RSI: testingpkg.Float(28)})

	cached := NewCachedIndicators(provider, repo, TTLs{Indicators: time.Minute}, zerolog.Nop())

	ind, err := cached.GetIndicators(ctx, "AMZN")
	require.NoError(t, err)
	assert.Equal(t, 28.0, *ind.RSI)

	raw, err := repo.GetIfFresh(TableIndicators, "AMZN")
	require.NoError(t, err)
	assert.JSONEq(t, `{"rsi":28}`, string(raw))
}

func TestTTLsWithDefaults(t *testing.T) {
	ttls := TTLs{Quote: time.Second}.withDefaults()
	assert.Equal(t, time.Second, ttls.Quote)
	assert.Equal(t, TTLPriceBars, ttls.PriceBars)
	assert.Equal(t, TTLFundamentals, ttls.Fundamentals)
	assert.Equal(t, TTLSentiment, ttls.Sentiment)
	assert.Equal(t, TTLIndicators, ttls.Indicators)
}

func TestCachedIndicators_ReuseCachedBars(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))
	market := testingpkg.NewMockMarketData()
	market.SetBars("NVDA", testingpkg.NewBarSeries(60, 100, 1))

	cachedMarket := NewCachedMarketData(market, repo, TTLs{}, zerolog.Nop())
	indicators := NewCachedIndicators(yahoo.NewChartIndicators(cachedMarket, "6mo"), repo, TTLs{}, zerolog.Nop())

	bars, err := cachedMarket.GetPriceBars(ctx, "NVDA", "6mo")
	require.NoError(t, err)
	require.Len(t, bars, 60)

	ind, err := indicators.GetIndicators(ctx, "NVDA")
	require.NoError(t, err)
	require.NotNil(t, ind.SMA50)
	assert.InDelta(t, 134.5, *ind.SMA50, 1e-9)

	// The indicator set is derived from the bars already cached
	assert.Equal(t, 1, market.Calls("GetPriceBars"))
}

// gatedMarket blocks every bar fetch until release is closed
type gatedMarket struct {
	calls   int32
	release chan struct{}
}

func (m *gatedMarket) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	return nil, nil
}

func (m *gatedMarket) GetPriceBars(ctx context.Context, symbol string, period string) ([]domain.PriceBar, error) {
	atomic.AddInt32(&m.calls, 1)
	<-m.release
	return testingpkg.NewBarSeries(5, 100, 1), nil
}

func TestCachedMarketData_ConcurrentMissesShareFetch(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))
	market := &gatedMarket{release: make(chan struct{})}
	cached := NewCachedMarketData(market, repo, TTLs{}, zerolog.Nop())

	const callers = 8
	var wg sync.WaitGroup
	results := make([][]domain.PriceBar, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cached.GetPriceBars(ctx, "TSLA", "6mo")
		}(i)
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&market.calls) == 1 }, time.Second, time.Millisecond)
	// Give the remaining callers time to join the in-flight fetch
	time.Sleep(50 * time.Millisecond)
	close(market.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&market.calls))
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Len(t, results[i], 5)
	}
}
