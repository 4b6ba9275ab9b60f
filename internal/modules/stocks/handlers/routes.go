package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers stock view routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stocks", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Delete("/", h.HandleUnmount)
		r.Post("/refresh", h.HandleRefresh)
		r.Get("/filters", h.HandleFilters)
		r.Get("/search", h.HandleSearchResults)
		r.Put("/search", h.HandleType)
		r.Get("/{symbol}", h.HandleGetStock)
	})
}
