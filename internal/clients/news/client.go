// Package news fetches headline feeds for a symbol and scores their tone.
package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/stockdash/backend/internal/domain"
)

// DefaultFeedURL is the Yahoo Finance headline RSS feed
const DefaultFeedURL = "https://feeds.finance.yahoo.com/rss/2.0/headline"

// Sentiment classification thresholds on the average headline score
const (
	positiveThreshold = 0.1
	negativeThreshold = -0.1
)

// maxArticles caps how many feed items are scored
const maxArticles = 20

// Article is one scored headline
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Published   time.Time `json:"published"`
	Score       float64   `json:"score"`
}

// Client reads RSS headline feeds. It implements domain.SentimentProvider.
type Client struct {
	client  *http.Client
	feedURL string
	log     zerolog.Logger
}

// NewClient creates a news client. An empty feedURL uses DefaultFeedURL.
func NewClient(feedURL string, log zerolog.Logger) *Client {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	return &Client{
		client:  &http.Client{Timeout: 15 * time.Second},
		feedURL: feedURL,
		log:     log.With().Str("client", "news").Logger(),
	}
}

// GetSentiment aggregates the tone of recent headlines for symbol.
// A feed without items yields a neutral snapshot with zero articles.
func (c *Client) GetSentiment(ctx context.Context, symbol string) (*domain.SentimentSnapshot, error) {
	articles, err := c.Articles(ctx, symbol)
	if err != nil {
		return nil, err
	}

	snap := &domain.SentimentSnapshot{
		Symbol:       symbol,
		Sentiment:    domain.SentimentNeutral,
		ArticleCount: len(articles),
	}
	if len(articles) == 0 {
		return snap, nil
	}

	total := 0.0
	for _, a := range articles {
		total += a.Score
	}
	snap.AverageScore = total / float64(len(articles))
	snap.Sentiment = Classify(snap.AverageScore)

	c.log.Debug().
		Str("symbol", symbol).
		Int("articles", len(articles)).
		Float64("average", snap.AverageScore).
		Str("sentiment", string(snap.Sentiment)).
		Msg("Scored news sentiment")

	return snap, nil
}

// Articles fetches and scores the feed items for symbol
func (c *Client) Articles(ctx context.Context, symbol string) ([]Article, error) {
	params := url.Values{}
	params.Set("s", symbol)
	params.Set("region", "US")
	params.Set("lang", "en-US")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; stockdash/1.0)")
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news feed returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse news feed: %w", err)
	}

	var articles []Article
	doc.Find("item").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		title := strings.TrimSpace(item.Find("title").First().Text())
		if title == "" {
			return true
		}
		desc := strings.TrimSpace(item.Find("description").First().Text())

		a := Article{
			Title:       title,
			Description: desc,
			Score:       ScoreText(title + " " + desc),
		}
		if pub := strings.TrimSpace(item.Find("pubdate").First().Text()); pub != "" {
			if t, err := time.Parse(time.RFC1123Z, pub); err == nil {
				a.Published = t
			}
		}
		articles = append(articles, a)
		return len(articles) < maxArticles
	})

	return articles, nil
}

// Classify maps an average headline score to a sentiment
func Classify(avg float64) domain.Sentiment {
	switch {
	case avg > positiveThreshold:
		return domain.SentimentPositive
	case avg < negativeThreshold:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}
