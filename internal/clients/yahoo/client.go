// Package yahoo provides a Yahoo Finance client for quotes, daily price
// history and fundamental ratios.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockdash/backend/internal/domain"
)

// DefaultBaseURL is the Yahoo Finance query host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// quoteFields are the v7 quote fields read by Quote and Fundamentals
var quoteFields = []string{
	"symbol", "regularMarketPrice", "regularMarketChange", "regularMarketChangePercent",
	"regularMarketVolume", "marketCap", "trailingPE", "epsTrailingTwelveMonths",
	"trailingAnnualDividendRate", "trailingAnnualDividendYield",
	"fiftyTwoWeekHigh", "fiftyTwoWeekLow", "pegRatio", "profitMargins",
	"returnOnEquity", "beta",
}

// Client is a Yahoo Finance API client.
// It implements domain.MarketDataProvider and domain.FundamentalsProvider.
type Client struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []map[string]interface{} `json:"result"`
		Error  interface{}              `json:"error"`
	} `json:"quoteResponse"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// GetQuote fetches the latest quote for symbol
func (c *Client) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	info, err := c.quoteInfo(ctx, symbol)
	if err != nil {
		return nil, err
	}

	return &domain.Quote{
		Symbol:        symbol,
		Price:         getFloat64(info, "regularMarketPrice"),
		Change:        getFloat64(info, "regularMarketChange"),
		ChangePercent: getFloat64(info, "regularMarketChangePercent"),
		Volume:        getFloat64(info, "regularMarketVolume"),
		MarketCap:     getFloat64(info, "marketCap"),
		PE:            getFloat64(info, "trailingPE"),
		EPS:           getFloat64(info, "epsTrailingTwelveMonths"),
		Dividend:      getFloat64(info, "trailingAnnualDividendRate"),
		High52Week:    getFloat64(info, "fiftyTwoWeekHigh"),
		Low52Week:     getFloat64(info, "fiftyTwoWeekLow"),
	}, nil
}

// GetFundamentals fetches valuation and quality ratios for symbol.
// Ratios are returned as fractions.
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (*domain.FundamentalSnapshot, error) {
	info, err := c.quoteInfo(ctx, symbol)
	if err != nil {
		return nil, err
	}

	return &domain.FundamentalSnapshot{
		Symbol:         symbol,
		PERatio:        getFloat64(info, "trailingPE"),
		PEGRatio:       getFloat64(info, "pegRatio"),
		ProfitMargin:   getFloat64(info, "profitMargins"),
		ReturnOnEquity: getFloat64(info, "returnOnEquity"),
		Beta:           getFloat64(info, "beta"),
		DividendYield:  getFloat64(info, "trailingAnnualDividendYield"),
		MarketCap:      getFloat64(info, "marketCap"),
	}, nil
}

// GetPriceBars fetches daily OHLCV bars for the range.
//
// Supports periods: 1mo, 3mo, 6mo, 1y, 2y, 5y, ytd, max
func (c *Client) GetPriceBars(ctx context.Context, symbol string, period string) ([]domain.PriceBar, error) {
	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("range", period)

	var result chartResponse
	if err := c.getJSON(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), params, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch price history for %s: %w", symbol, err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("Yahoo Finance API error: %v", result.Chart.Error)
	}

	if len(result.Chart.Result) == 0 || len(result.Chart.Result[0].Indicators.Quote) == 0 {
		c.log.Warn().Str("symbol", symbol).Msg("No historical data returned")
		return []domain.PriceBar{}, nil
	}

	chart := result.Chart.Result[0]
	q := chart.Indicators.Quote[0]

	bars := make([]domain.PriceBar, 0, len(chart.Timestamp))
	for i, ts := range chart.Timestamp {
		// Yahoo returns nulls for halted or partial sessions
		last := at(q.Close, i)
		if last == nil {
			continue
		}

		bar := domain.PriceBar{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *last,
			Open:      valueOr(at(q.Open, i), *last),
			High:      valueOr(at(q.High, i), *last),
			Low:       valueOr(at(q.Low, i), *last),
			Volume:    valueOr(at(q.Volume, i), 0),
		}
		bars = append(bars, bar)
	}

	c.log.Debug().
		Str("symbol", symbol).
		Str("period", period).
		Int("count", len(bars)).
		Msg("Fetched price bars")

	return bars, nil
}

func (c *Client) quoteInfo(ctx context.Context, symbol string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Add("symbols", symbol)
	params.Add("fields", strings.Join(quoteFields, ","))

	var result quoteResponse
	if err := c.getJSON(ctx, "/v7/finance/quote", params, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}

	if result.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("Yahoo Finance API error: %v", result.QuoteResponse.Error)
	}

	if len(result.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote data returned for symbol %s", symbol)
	}

	return result.QuoteResponse.Result[0], nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Yahoo Finance API returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func getFloat64(m map[string]interface{}, key string) *float64 {
	if val, ok := m[key]; ok && val != nil {
		switch v := val.(type) {
		case float64:
			return &v
		case int:
			f := float64(v)
			return &f
		case int64:
			f := float64(v)
			return &f
		}
	}
	return nil
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
