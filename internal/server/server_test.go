package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdash/backend/internal/clientdata"
	"github.com/stockdash/backend/internal/database"
	"github.com/stockdash/backend/internal/events"
	"github.com/stockdash/backend/internal/scheduler"
	testingpkg "github.com/stockdash/backend/internal/testing"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
}

type noopJob struct{}

func (noopJob) Run() error   { return nil }
func (noopJob) Name() string { return "noop" }

func newTestServer(t *testing.T) (*Server, *events.Manager) {
	t.Helper()

	cache, cleanupCache := testingpkg.NewTestDB(t, database.NameCache)
	t.Cleanup(cleanupCache)
	insights, cleanupInsights := testingpkg.NewTestDB(t, database.NameInsights)
	t.Cleanup(cleanupInsights)

	em := events.NewManager(zerolog.Nop())
	sched := scheduler.New(zerolog.Nop())
	require.NoError(t, sched.AddJob("0 0 3 * * *", noopJob{}))

	s := New(Config{
		Log:         zerolog.Nop(),
		Port:        0,
		DevMode:     true,
		CORSOrigins: []string{"http://localhost:3000"},
		Strategy:    "rules",
		Databases:   []*database.DB{cache, insights},
		Events:      em,
		Scheduler:   sched,
		Cache:       clientdata.NewRepository(cache.Conn()),
		Handlers:    []RouteRegistrar{pingHandler{}},
	})
	s.systemHandlers.cpuSampler = func() float64 { return 12.5 }

	return s, em
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	w := serve(s, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "stockdash", body["service"])
}

func TestModuleRoutesMountedUnderAPI(t *testing.T) {
	s, _ := newTestServer(t)

	w := serve(s, http.MethodGet, "/api/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	w = serve(s, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
}

func TestSystemStatus(t *testing.T) {
	s, em := newTestServer(t)
	em.Emit("clientdata", &events.CacheCleanedData{Deleted: 3})

	w := serve(s, http.MethodGet, "/api/system/status")
	require.Equal(t, http.StatusOK, w.Code)

	var status SystemStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &struct {
		*SystemStatusResponse
		RecentEvents []json.RawMessage `json:"recent_events"`
	}{SystemStatusResponse: &status}))

	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "rules", status.Strategy)
	assert.Equal(t, 12.5, status.CPUPercent)
	require.Len(t, status.Databases, 2)
	assert.Equal(t, "cache", status.Databases[0].Name)
	assert.True(t, status.Databases[0].Healthy)
	assert.Equal(t, int64(0), status.CacheRows["quotes"])
	require.Len(t, status.Jobs, 1)
	assert.Equal(t, "noop", status.Jobs[0].Name)
	assert.Contains(t, w.Body.String(), `"CACHE_CLEANED"`)
}

func TestSystemStatus_DegradedWhenDatabaseClosed(t *testing.T) {
	s, _ := newTestServer(t)
	require.NoError(t, s.systemHandlers.databases[1].Close())

	snap := s.systemHandlers.GetSystemStatusSnapshot(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.Equal(t, "degraded", snap.Status)
	assert.False(t, snap.Databases[1].Healthy)
	assert.NotEmpty(t, snap.Databases[1].Error)
}

func TestSystemEvents(t *testing.T) {
	s, em := newTestServer(t)
	em.Emit("portfolio", &events.RiskAssessedData{Holdings: 2, PortfolioRisk: 11.8})
	em.Emit("clientdata", &events.CacheCleanedData{Deleted: 1})

	w := serve(s, http.MethodGet, "/api/system/events?limit=1")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Events []struct {
			Type   string `json:"type"`
			Module string `json:"module"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Events, 1)
	assert.Equal(t, "CACHE_CLEANED", body.Events[0].Type)

	w = serve(s, http.MethodGet, "/api/system/events?limit=zero")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSystemJobs(t *testing.T) {
	s, _ := newTestServer(t)

	w := serve(s, http.MethodGet, "/api/system/jobs")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"noop"`)
	assert.Contains(t, w.Body.String(), `"schedule":"0 0 3 * * *"`)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
