package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all scoring routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/scoring", func(r chi.Router) {
		r.Post("/score", h.HandleScore)           // Score caller-supplied data
		r.Post("/indicators", h.HandleIndicators) // Technical indicators with signals
	})
}
