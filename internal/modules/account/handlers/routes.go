package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers account routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/account", func(r chi.Router) {
		r.Get("/", h.HandleBalance)
		r.Delete("/", h.HandleUnmount)
		r.Post("/refresh", h.HandleRefresh)
		r.Get("/settings", h.HandleGetSettings)
		r.Put("/settings", h.HandleSaveSettings)
	})
}
