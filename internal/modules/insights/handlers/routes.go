package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers insight routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/insights", func(r chi.Router) {
		r.Get("/portfolio/{kind}", h.HandlePortfolio) // Latest risk or optimization outputs
		r.Get("/{symbol}", h.HandleSymbol)            // Score history for a symbol
	})
}
