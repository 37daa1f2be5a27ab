package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdash/backend/internal/domain"
)

const feed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>Yahoo! Finance: AAPL News</title>
<item>
  <title>Apple beats earnings estimates, shares surge</title>
  <description>Record services revenue lifts profit.</description>
  <pubDate>Thu, 27 Jun 2024 14:30:00 +0000</pubDate>
</item>
<item>
  <title>Analyst upgrade sends Apple to record high</title>
  <description></description>
  <pubDate>Wed, 26 Jun 2024 10:00:00 +0000</pubDate>
</item>
<item>
  <title>Apple schedules developer conference</title>
  <description>Keynote set for June.</description>
</item>
</channel></rss>`

func TestScoreText(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"Shares surge after earnings beat", 1},
		{"Stock plunges on lawsuit", -1},
		{"Profit beats but guidance warns", 1.0 / 3},
		{"Company holds annual meeting", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScoreText(tt.text), 1e-9)
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, domain.SentimentPositive, Classify(0.11))
	assert.Equal(t, domain.SentimentNeutral, Classify(0.1))
	assert.Equal(t, domain.SentimentNeutral, Classify(-0.1))
	assert.Equal(t, domain.SentimentNegative, Classify(-0.11))
}

func TestGetSentiment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL", r.URL.Query().Get("s"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop())

	articles, err := c.Articles(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, articles, 3)
	assert.Equal(t, "Apple beats earnings estimates, shares surge", articles[0].Title)
	assert.Equal(t, 2024, articles[0].Published.Year())
	assert.True(t, articles[2].Published.IsZero())

	snap, err := c.GetSentiment(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 3, snap.ArticleCount)
	assert.Equal(t, domain.SentimentPositive, snap.Sentiment)
	assert.InDelta(t, 2.0/3, snap.AverageScore, 1e-9)
}

func TestGetSentiment_EmptyFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<rss><channel></channel></rss>`))
	}))
	defer srv.Close()

	snap, err := NewClient(srv.URL, zerolog.Nop()).GetSentiment(context.Background(), "ZZZZ")
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentNeutral, snap.Sentiment)
	assert.Zero(t, snap.ArticleCount)
}

func TestGetSentiment_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, zerolog.Nop()).GetSentiment(context.Background(), "AAPL")
	assert.Error(t, err)
}
