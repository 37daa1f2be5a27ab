// Package handlers provides HTTP handlers for scoring API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockdash/backend/internal/domain"
	"github.com/stockdash/backend/internal/modules/scoring"
	"github.com/stockdash/backend/internal/modules/scoring/signals"
)

// Handlers provides HTTP handlers for scoring module
type Handlers struct {
	strategy scoring.Strategy
	log      zerolog.Logger
}

// NewHandlers creates a new scoring handlers instance
func NewHandlers(strategy scoring.Strategy, log zerolog.Logger) *Handlers {
	return &Handlers{
		strategy: strategy,
		log:      log.With().Str("module", "scoring_handlers").Logger(),
	}
}

// ScoreRequest carries caller-supplied data to score without fetching anything
type ScoreRequest struct {
	Symbol       string                      `json:"symbol"`
	Quote        *domain.Quote               `json:"quote"`
	Fundamentals *domain.FundamentalSnapshot `json:"fundamentals,omitempty"`
	Sentiment    *domain.SentimentSnapshot   `json:"sentiment,omitempty"`
	Indicators   *domain.EnhancedIndicators  `json:"indicators,omitempty"`
	// DailyCloses are used to calculate indicators the caller did not supply
	DailyCloses []float64 `json:"daily_closes,omitempty"`
}

// IndicatorsRequest is the body of POST /api/scoring/indicators
type IndicatorsRequest struct {
	Price       float64                    `json:"price"`
	DailyCloses []float64                  `json:"daily_closes"`
	Indicators  *domain.EnhancedIndicators `json:"indicators,omitempty"`
}

// HandleScore handles POST /api/scoring/score
func (h *Handlers) HandleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode score request")
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	symbol := domain.NormalizeSymbol(req.Symbol)
	if symbol == "" {
		h.writeError(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	var indicators []domain.TechnicalIndicator
	if req.Quote != nil && req.Quote.Price != nil {
		indicators = signals.Build(req.DailyCloses, *req.Quote.Price, req.Indicators)
	}

	result, err := h.strategy.Evaluate(r.Context(), scoring.Input{
		Symbol:       symbol,
		Quote:        req.Quote,
		Fundamentals: req.Fundamentals,
		Sentiment:    req.Sentiment,
		Indicators:   indicators,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			h.writeError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Scoring failed")
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeData(w, map[string]interface{}{
		"score":      result,
		"indicators": indicators,
	})
}

// HandleIndicators handles POST /api/scoring/indicators
func (h *Handlers) HandleIndicators(w http.ResponseWriter, r *http.Request) {
	var req IndicatorsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Price <= 0 {
		h.writeError(w, "Price must be positive", http.StatusBadRequest)
		return
	}

	indicators := signals.Build(req.DailyCloses, req.Price, req.Indicators)
	if indicators == nil {
		indicators = []domain.TechnicalIndicator{}
	}

	unavailable := []UnavailableIndicator{}
	for _, err := range signals.Unavailable(indicators, len(req.DailyCloses)) {
		var ue *domain.IndicatorUnavailableError
		if errors.As(err, &ue) {
			unavailable = append(unavailable, UnavailableIndicator{Name: ue.Indicator, Reason: ue.Reason})
		}
	}

	h.writeData(w, indicators, map[string]interface{}{"unavailable": unavailable})
}

// UnavailableIndicator is reported in the indicators response metadata
type UnavailableIndicator struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func (h *Handlers) writeData(w http.ResponseWriter, data interface{}, extra ...map[string]interface{}) {
	metadata := map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
		"strategy":  h.strategy.Name(),
	}
	for _, m := range extra {
		for k, v := range m {
			metadata[k] = v
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     data,
		"metadata": metadata,
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
