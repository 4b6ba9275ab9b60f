package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers market view routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/market", func(r chi.Router) {
		r.Delete("/", h.HandleUnmount)
		r.Get("/{symbol}", h.HandleGetView)
		r.Post("/{symbol}/refresh", h.HandleRefresh)
		r.Post("/{symbol}/price/refresh", h.HandleRefreshPrice)
		r.Post("/{symbol}/collect", h.HandleCollect)
		if h.stream != nil {
			r.Get("/{symbol}/ws", h.stream.ServeHTTP)
		}
	})
}
