package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdash/backend/internal/domain"
	"github.com/stockdash/backend/internal/modules/insights"
	testingpkg "github.com/stockdash/backend/internal/testing"
)

func setupRouter(t *testing.T) (*chi.Mux, *insights.Repository) {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "insights")
	t.Cleanup(cleanup)

	repo := insights.NewRepository(db.Conn(), zerolog.Nop())
	router := chi.NewRouter()
	NewHandler(repo, zerolog.Nop()).RegisterRoutes(router)
	return router, repo
}

type listResponse struct {
	Data []struct {
		ID     string          `json:"id"`
		Kind   string          `json:"kind"`
		Symbol string          `json:"symbol"`
		Data   json.RawMessage `json:"data"`
	} `json:"data"`
	Metadata map[string]interface{} `json:"metadata"`
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleSymbol(t *testing.T) {
	router, repo := setupRouter(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveScore(ctx, domain.ScoreResult{Symbol: "AAPL", Score: 96, Action: domain.ActionBuy, Confidence: 90, Source: domain.ScoreSourceRules}))
	require.NoError(t, repo.SaveScore(ctx, domain.ScoreResult{Symbol: "AAPL", Score: 40, Action: domain.ActionHold, Confidence: 42, Source: domain.ScoreSourceRules}))

	w := get(t, router, "/insights/aapl?limit=1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "score", resp.Data[0].Kind)
	assert.Equal(t, "AAPL", resp.Data[0].Symbol)
	assert.Equal(t, "AAPL", resp.Metadata["subject"])

	var score domain.ScoreResult
	require.NoError(t, json.Unmarshal(resp.Data[0].Data, &score))
	assert.Equal(t, domain.ActionHold, score.Action)
}

func TestHandlePortfolio(t *testing.T) {
	router, repo := setupRouter(t)
	require.NoError(t, repo.SaveRisk(context.Background(), domain.RiskAssessment{PortfolioRisk: 40, DiversificationScore: 0}))

	w := get(t, router, "/insights/portfolio/risk")
	require.Equal(t, http.StatusOK, w.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "risk", resp.Data[0].Kind)
	assert.Empty(t, resp.Data[0].Symbol)
	assert.Equal(t, float64(1), resp.Metadata["count"])
}

func TestHandlers_BadRequests(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name string
		path string
	}{
		{"unknown kind", "/insights/portfolio/trades"},
		{"bad limit", "/insights/AAPL?limit=ten"},
		{"negative limit", "/insights/AAPL?limit=-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, router, tt.path)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestHandleSymbol_Empty(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(t, router, "/insights/NVDA")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, mustField(t, w.Body.Bytes(), "data"))
}

func mustField(t *testing.T, body []byte, field string) string {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &m))
	return string(m[field])
}
