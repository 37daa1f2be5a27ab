package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/stockdash/backend/internal/database"
	"github.com/stockdash/backend/internal/events"
	"github.com/stockdash/backend/internal/scheduler"
)

// defaultEventLimit is how many events the status endpoint includes
const defaultEventLimit = 10

// SystemHandlers contains system-related HTTP handlers
type SystemHandlers struct {
	log       zerolog.Logger
	strategy  string
	databases []*database.DB
	events    *events.Manager
	jobs      JobLister
	cache     CacheCounter
	startedAt time.Time

	// cpuSampler is swapped in tests to avoid the blocking sample
	cpuSampler func() float64
}

// NewSystemHandlers creates a new system handlers instance. Any dependency may be nil.
func NewSystemHandlers(
	log zerolog.Logger,
	strategy string,
	databases []*database.DB,
	eventManager *events.Manager,
	jobs JobLister,
	cache CacheCounter,
) *SystemHandlers {
	h := &SystemHandlers{
		log:       log.With().Str("service", "system").Logger(),
		strategy:  strategy,
		databases: databases,
		events:    eventManager,
		jobs:      jobs,
		cache:     cache,
		startedAt: time.Now(),
	}
	h.cpuSampler = h.sampleCPU
	return h
}

// DBInfo describes one database in the status response
type DBInfo struct {
	Name         string `json:"name"`
	Healthy      bool   `json:"healthy"`
	SizeBytes    int64  `json:"size_bytes"`
	WALSizeBytes int64  `json:"wal_size_bytes"`
	PageCount    int64  `json:"page_count"`
	Error        string `json:"error,omitempty"`
}

// SystemStatusResponse represents the system status
type SystemStatusResponse struct {
	Status        string                `json:"status"` // healthy or degraded
	Version       string                `json:"version"`
	Strategy      string                `json:"strategy"`
	UptimeSeconds int64                 `json:"uptime_seconds"`
	CPUPercent    float64               `json:"cpu_percent"`
	MemoryPercent float64               `json:"memory_percent"`
	Goroutines    int                   `json:"goroutines"`
	Databases     []DBInfo              `json:"databases"`
	CacheRows     map[string]int64      `json:"cache_rows,omitempty"`
	Jobs          []scheduler.JobStatus `json:"jobs"`
	RecentEvents  []events.Event        `json:"recent_events"`
}

// GetSystemStatusSnapshot returns a snapshot of the current system status
func (h *SystemHandlers) GetSystemStatusSnapshot(ctx context.Context) SystemStatusResponse {
	resp := SystemStatusResponse{
		Status:        "healthy",
		Version:       Version,
		Strategy:      h.strategy,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:    h.cpuSampler(),
		MemoryPercent: h.memoryPercent(),
		Goroutines:    runtime.NumGoroutine(),
		Databases:     make([]DBInfo, 0, len(h.databases)),
		Jobs:          []scheduler.JobStatus{},
		RecentEvents:  []events.Event{},
	}

	for _, db := range h.databases {
		info := DBInfo{Name: db.Name(), Healthy: true}
		if err := db.HealthCheck(ctx); err != nil {
			info.Healthy = false
			info.Error = err.Error()
			resp.Status = "degraded"
		} else if stats, err := db.GetStats(); err == nil {
			info.SizeBytes = stats.SizeBytes
			info.WALSizeBytes = stats.WALSizeBytes
			info.PageCount = stats.PageCount
		}
		resp.Databases = append(resp.Databases, info)
	}

	if h.cache != nil {
		counts, err := h.cache.CountRows()
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to count cache rows")
		}
		resp.CacheRows = counts
	}

	if h.jobs != nil {
		resp.Jobs = h.jobs.Jobs()
	}

	if h.events != nil {
		resp.RecentEvents = h.events.Recent(defaultEventLimit)
	}

	return resp
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")
	h.writeJSON(w, http.StatusOK, h.GetSystemStatusSnapshot(r.Context()))
}

// HandleJobs handles GET /api/system/jobs
func (h *SystemHandlers) HandleJobs(w http.ResponseWriter, r *http.Request) {
	jobs := []scheduler.JobStatus{}
	if h.jobs != nil {
		jobs = h.jobs.Jobs()
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

// HandleEvents handles GET /api/system/events?limit=N
func (h *SystemHandlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	list := []events.Event{}
	if h.events != nil {
		list = h.events.Recent(limit)
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"events": list})
}

// sampleCPU measures CPU usage over a short window. The 100ms interval keeps
// the status endpoint responsive.
func (h *SystemHandlers) sampleCPU() float64 {
	percent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(percent) == 0 {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		return 0
	}
	return percent[0]
}

func (h *SystemHandlers) memoryPercent() float64 {
	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0
	}
	return memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
