package clientdata

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockdash/backend/internal/domain"
)

// staleFallback reports whether a table may serve an expired row when the
// provider fails. Quotes never do: a stale price must not pass for the
// current one, so the provider error reaches the caller.
func staleFallback(table string) bool {
	return table != TableQuotes
}

// cacheFirst returns a fresh cached value, otherwise fetches and stores it.
// When the fetch fails a stale row is served instead of the error, except for
// tables excluded by staleFallback.
func cacheFirst[T any](repo *Repository, log zerolog.Logger, table, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	var zero T

	if raw, err := repo.GetIfFresh(table, key); err != nil {
		log.Warn().Err(err).Str("table", table).Str("key", key).Msg("Cache read failed")
	} else if raw != nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
	}

	// Concurrent misses for one row share a single upstream call
	shared, fetchErr, _ := repo.flight.Do(table+"|"+key, func() (interface{}, error) {
		v, err := fetch()
		if err != nil {
			return nil, err
		}
		// Providers may answer nil for unknown symbols; those are not cached
		if b, err := json.Marshal(v); err == nil && string(b) == "null" {
			return v, nil
		}
		if err := repo.Store(table, key, v, ttl); err != nil {
			log.Warn().Err(err).Str("table", table).Str("key", key).Msg("Cache write failed")
		}
		return v, nil
	})
	if fetchErr == nil {
		v, _ := shared.(T)
		return v, nil
	}

	if !staleFallback(table) {
		return zero, fetchErr
	}

	raw, err := repo.Get(table, key)
	if err != nil || raw == nil {
		return zero, fetchErr
	}
	var stale T
	if err := json.Unmarshal(raw, &stale); err != nil || string(raw) == "null" {
		return zero, fetchErr
	}

	log.Warn().
		Err(fetchErr).
		Str("table", table).
		Str("key", key).
		Msg("Provider failed, serving stale cache entry")
	return stale, nil
}

func cacheKey(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// CachedMarketData caches quotes and price bars in front of a provider
type CachedMarketData struct {
	next domain.MarketDataProvider
	repo *Repository
	ttls TTLs
	log  zerolog.Logger
}

// NewCachedMarketData wraps next with the cache
func NewCachedMarketData(next domain.MarketDataProvider, repo *Repository, ttls TTLs, log zerolog.Logger) *CachedMarketData {
	return &CachedMarketData{
		next: next,
		repo: repo,
		ttls: ttls.withDefaults(),
		log:  log.With().Str("cache", "market_data").Logger(),
	}
}

// GetQuote implements domain.MarketDataProvider
func (c *CachedMarketData) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	return cacheFirst(c.repo, c.log, TableQuotes, cacheKey(symbol), c.ttls.Quote, func() (*domain.Quote, error) {
		return c.next.GetQuote(ctx, symbol)
	})
}

// GetPriceBars implements domain.MarketDataProvider
func (c *CachedMarketData) GetPriceBars(ctx context.Context, symbol string, period string) ([]domain.PriceBar, error) {
	return cacheFirst(c.repo, c.log, TablePriceBars, SeriesKey(cacheKey(symbol), period), c.ttls.PriceBars, func() ([]domain.PriceBar, error) {
		return c.next.GetPriceBars(ctx, symbol, period)
	})
}

// CachedFundamentals caches fundamental snapshots
type CachedFundamentals struct {
	next domain.FundamentalsProvider
	repo *Repository
	ttl  time.Duration
	log  zerolog.Logger
}

// NewCachedFundamentals wraps next with the cache
func NewCachedFundamentals(next domain.FundamentalsProvider, repo *Repository, ttls TTLs, log zerolog.Logger) *CachedFundamentals {
	return &CachedFundamentals{
		next: next,
		repo: repo,
		ttl:  ttls.withDefaults().Fundamentals,
		log:  log.With().Str("cache", "fundamentals").Logger(),
	}
}

// GetFundamentals implements domain.FundamentalsProvider
func (c *CachedFundamentals) GetFundamentals(ctx context.Context, symbol string) (*domain.FundamentalSnapshot, error) {
	return cacheFirst(c.repo, c.log, TableFundamentals, cacheKey(symbol), c.ttl, func() (*domain.FundamentalSnapshot, error) {
		return c.next.GetFundamentals(ctx, symbol)
	})
}

// CachedSentiment caches news sentiment
type CachedSentiment struct {
	next domain.SentimentProvider
	repo *Repository
	ttl  time.Duration
	log  zerolog.Logger
}

// NewCachedSentiment wraps next with the cache
func NewCachedSentiment(next domain.SentimentProvider, repo *Repository, ttls TTLs, log zerolog.Logger) *CachedSentiment {
	return &CachedSentiment{
		next: next,
		repo: repo,
		ttl:  ttls.withDefaults().Sentiment,
		log:  log.With().Str("cache", "sentiment").Logger(),
	}
}

// GetSentiment implements domain.SentimentProvider
func (c *CachedSentiment) GetSentiment(ctx context.Context, symbol string) (*domain.SentimentSnapshot, error) {
	return cacheFirst(c.repo, c.log, TableSentiment, cacheKey(symbol), c.ttl, func() (*domain.SentimentSnapshot, error) {
		return c.next.GetSentiment(ctx, symbol)
	})
}

// CachedIndicators caches precomputed indicators
type CachedIndicators struct {
	next domain.IndicatorProvider
	repo *Repository
	ttl  time.Duration
	log  zerolog.Logger
}

// NewCachedIndicators wraps next with the cache
func NewCachedIndicators(next domain.IndicatorProvider, repo *Repository, ttls TTLs, log zerolog.Logger) *CachedIndicators {
	return &CachedIndicators{
		next: next,
		repo: repo,
		ttl:  ttls.withDefaults().Indicators,
		log:  log.With().Str("cache", "indicators").Logger(),
	}
}

// GetIndicators implements domain.IndicatorProvider
func (c *CachedIndicators) GetIndicators(ctx context.Context, symbol string) (*domain.EnhancedIndicators, error) {
	return cacheFirst(c.repo, c.log, TableIndicators, cacheKey(symbol), c.ttl, func() (*domain.EnhancedIndicators, error) {
		return c.next.GetIndicators(ctx, symbol)
	})
}
