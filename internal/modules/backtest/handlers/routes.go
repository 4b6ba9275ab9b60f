package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers backtest routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/backtests", func(r chi.Router) {
		r.Get("/", h.HandleHistory)
		r.Post("/", h.HandleRun)
		r.Delete("/", h.HandleUnmount)
		r.Get("/defaults", h.HandleDefaults)
		r.Get("/{id}", h.HandleResult)
		r.Post("/{id}/refresh", h.HandleRefreshResult)
	})
}
