package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers watchlist routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/watchlist", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Post("/", h.HandleAdd)
		r.Post("/refresh", h.HandleRefresh)
		r.Get("/stocks", h.HandleStocks)
		r.Delete("/{symbol}", h.HandleRemove)
		r.Post("/{symbol}/toggle", h.HandleToggle)
	})
}
