package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Post("/risk", h.HandleAssessRisk)   // Diversification, volatility and risk factors
		r.Post("/optimize", h.HandleOptimize) // Equal-weight target allocation
	})
}
