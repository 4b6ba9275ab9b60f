package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers overview routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/", h.HandleOverview)
		r.Delete("/", h.HandleUnmount)
		r.Post("/refresh", h.HandleRefresh)
	})
}
