// Package handlers provides HTTP handlers for portfolio risk and allocation.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockdash/backend/internal/domain"
)

// RiskAssessor assesses portfolio risk
type RiskAssessor interface {
	AssessRisk(ctx context.Context, holdings []domain.Holding, dailyChanges map[string]float64) (domain.RiskAssessment, error)
}

// AllocationOptimizer recommends target allocations
type AllocationOptimizer interface {
	OptimizeHoldings(ctx context.Context, holdings []domain.Holding) (domain.OptimizationResult, error)
	OptimizeAllocation(ctx context.Context, current map[string]float64) (domain.OptimizationResult, error)
}

// Handler handles portfolio HTTP requests
type Handler struct {
	risk      RiskAssessor
	optimizer AllocationOptimizer
	log       zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(risk RiskAssessor, optimizer AllocationOptimizer, log zerolog.Logger) *Handler {
	return &Handler{
		risk:      risk,
		optimizer: optimizer,
		log:       log.With().Str("handler", "portfolio").Logger(),
	}
}

// RiskRequest is the body of POST /api/portfolio/risk
type RiskRequest struct {
	Holdings []domain.Holding `json:"holdings"`
	// DailyChanges maps symbol to today's change percent. Missing symbols are
	// looked up from market data.
	DailyChanges map[string]float64 `json:"daily_changes,omitempty"`
}

// OptimizeRequest is the body of POST /api/portfolio/optimize.
// Either holdings or a current percent allocation must be given.
type OptimizeRequest struct {
	Holdings          []domain.Holding   `json:"holdings,omitempty"`
	CurrentAllocation map[string]float64 `json:"current_allocation,omitempty"`
}

// HandleAssessRisk handles POST /api/portfolio/risk
func (h *Handler) HandleAssessRisk(w http.ResponseWriter, r *http.Request) {
	var req RiskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn().Err(err).Msg("Failed to decode risk request")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	normalizeHoldings(req.Holdings)

	assessment, err := h.risk.AssessRisk(r.Context(), req.Holdings, normalizeKeys(req.DailyChanges))
	if err != nil {
		h.fail(w, err)
		return
	}

	h.writeData(w, assessment)
}

// HandleOptimize handles POST /api/portfolio/optimize
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn().Err(err).Msg("Failed to decode optimize request")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		result domain.OptimizationResult
		err    error
	)
	switch {
	case len(req.Holdings) > 0:
		normalizeHoldings(req.Holdings)
		result, err = h.optimizer.OptimizeHoldings(r.Context(), req.Holdings)
	case len(req.CurrentAllocation) > 0:
		result, err = h.optimizer.OptimizeAllocation(r.Context(), normalizeKeys(req.CurrentAllocation))
	default:
		h.writeError(w, http.StatusBadRequest, "Holdings or current_allocation is required")
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}

	h.writeData(w, result)
}

func normalizeHoldings(holdings []domain.Holding) {
	for i := range holdings {
		holdings[i].Symbol = domain.NormalizeSymbol(holdings[i].Symbol)
	}
}

func normalizeKeys(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[domain.NormalizeSymbol(k)] += v
	}
	return out
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.Error().Err(err).Msg("Portfolio request failed")
	h.writeError(w, http.StatusInternalServerError, err.Error())
}

func (h *Handler) writeData(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
