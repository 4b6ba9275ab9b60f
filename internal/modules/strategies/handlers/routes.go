package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers strategy view routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/strategies", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Delete("/", h.HandleUnmount)
		r.Post("/refresh", h.HandleRefreshList)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/", h.HandleUpdate)
			r.Delete("/", h.HandleDelete)
			r.Post("/activate", h.HandleActivate)
			r.Post("/deactivate", h.HandleDeactivate)
			r.Post("/execute", h.HandleExecute)
		})
	})
}
