package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdash/backend/internal/domain"
	"github.com/stockdash/backend/internal/modules/optimization"
	"github.com/stockdash/backend/internal/modules/portfolio"
	testingpkg "github.com/stockdash/backend/internal/testing"
)

func newRouter(t *testing.T) (*chi.Mux, *testingpkg.MockInsightStore) {
	t.Helper()

	store := testingpkg.NewMockInsightStore()
	handler := NewHandler(
		portfolio.NewRiskService(nil, store, nil, zerolog.Nop()),
		optimization.NewService(store, nil, zerolog.Nop()),
		zerolog.Nop(),
	)

	router := chi.NewRouter()
	require.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	}, "RegisterRoutes should not panic")
	return router, store
}

func post(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleAssessRisk(t *testing.T) {
	router, store := newRouter(t)

	rec := post(t, router, "/portfolio/risk", RiskRequest{
		Holdings:     testingpkg.NewHoldingFixtures(),
		DailyChanges: map[string]float64{"aapl": 2, "MSFT": -1},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data domain.RiskAssessment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.NotEmpty(t, body.Data.RiskFactors)
	assert.Equal(t, "Concentration Risk", body.Data.RiskFactors[0].Factor)
	assert.Equal(t, domain.ImpactHigh, body.Data.RiskFactors[0].Impact)
	assert.Equal(t, 3.0, body.Data.VolatilityScore)
	assert.Len(t, store.Risks(), 1)
}

func TestHandleAssessRisk_BadRequest(t *testing.T) {
	router, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/portfolio/risk", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, router, "/portfolio/risk", RiskRequest{
		Holdings: []domain.Holding{{Symbol: "AAPL", Quantity: -1, CurrentPrice: 10}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleOptimize_FromHoldings(t *testing.T) {
	router, store := newRouter(t)

	rec := post(t, router, "/portfolio/optimize", OptimizeRequest{Holdings: testingpkg.NewHoldingFixtures()})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data domain.OptimizationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, 40.0, body.Data.CurrentAllocation["AAPL"])
	assert.Equal(t, 20.0, body.Data.RecommendedAllocation["AAPL"])
	assert.Contains(t, body.Data.Recommendations, "Reduce AAPL allocation by 20.0%")
	assert.Contains(t, body.Data.Recommendations, "Increase AMZN allocation by 10.0%")
	assert.True(t, body.Data.Placeholder)
	assert.Len(t, store.Optimizations(), 1)
}

func TestHandleOptimize_FromAllocation(t *testing.T) {
	router, _ := newRouter(t)

	rec := post(t, router, "/portfolio/optimize", OptimizeRequest{
		CurrentAllocation: map[string]float64{"aapl": 50, "MSFT": 50},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data domain.OptimizationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 50.0, body.Data.RecommendedAllocation["AAPL"])
	assert.Empty(t, body.Data.Recommendations)
}

func TestHandleOptimize_RequiresInput(t *testing.T) {
	router, _ := newRouter(t)

	rec := post(t, router, "/portfolio/optimize", OptimizeRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
