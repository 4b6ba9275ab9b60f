package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers session routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/session", func(r chi.Router) {
		r.Get("/", h.HandleSession)
		r.Get("/me", h.HandleMe)
		r.Post("/login", h.HandleLogin)
		r.Post("/register", h.HandleRegister)
		r.Post("/logout", h.HandleLogout)
	})
}
