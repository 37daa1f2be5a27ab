// Package handlers provides HTTP handlers for stored insights.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stockdash/backend/internal/domain"
	"github.com/stockdash/backend/internal/modules/insights"
)

// Reader lists stored insights
type Reader interface {
	Recent(ctx context.Context, symbol string, limit int) ([]insights.Insight, error)
	RecentByKind(ctx context.Context, kind insights.Kind, limit int) ([]insights.Insight, error)
}

// Handler handles insight HTTP requests
type Handler struct {
	reader Reader
	log    zerolog.Logger
}

// NewHandler creates a new insights handler
func NewHandler(reader Reader, log zerolog.Logger) *Handler {
	return &Handler{
		reader: reader,
		log:    log.With().Str("handler", "insights").Logger(),
	}
}

// HandleSymbol handles GET /api/insights/{symbol}
func (h *Handler) HandleSymbol(w http.ResponseWriter, r *http.Request) {
	symbol := domain.NormalizeSymbol(chi.URLParam(r, "symbol"))
	if symbol == "" {
		h.writeError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	items, err := h.reader.Recent(r.Context(), symbol, limit)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to list insights")
		h.writeError(w, http.StatusInternalServerError, "Failed to list insights")
		return
	}

	h.writeData(w, items, symbol)
}

// HandlePortfolio handles GET /api/insights/portfolio/{kind}
func (h *Handler) HandlePortfolio(w http.ResponseWriter, r *http.Request) {
	kind := insights.Kind(chi.URLParam(r, "kind"))

	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	items, err := h.reader.RecentByKind(r.Context(), kind, limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Str("kind", string(kind)).Msg("Failed to list insights")
		h.writeError(w, http.StatusInternalServerError, "Failed to list insights")
		return
	}

	h.writeData(w, items, string(kind))
}

func (h *Handler) parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		h.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return limit, true
}

func (h *Handler) writeData(w http.ResponseWriter, items []insights.Insight, subject string) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": items,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"subject":   subject,
			"count":     len(items),
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
