package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers trade history routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/trades", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Delete("/", h.HandleUnmount)
		r.Post("/refresh", h.HandleRefresh)
		r.Get("/export", h.HandleExport)
	})
}
