// Package handlers provides HTTP handlers for the watchlist.
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/modules/watchlist"
	"github.com/kquant/dashboard/internal/view"
	"github.com/rs/zerolog"
)

// Handler handles watchlist requests
type Handler struct {
	cache  *watchlist.Cache
	stocks watchlist.StockSource
	log    zerolog.Logger
}

// NewHandler creates a watchlist handler
func NewHandler(cache *watchlist.Cache, stocks watchlist.StockSource, log zerolog.Logger) *Handler {
	return &Handler{
		cache:  cache,
		stocks: stocks,
		log:    log.With().Str("handler", "watchlist").Logger(),
	}
}

type membershipResponse struct {
	Symbols []string                `json:"symbols"`
	Entries []domain.WatchlistEntry `json:"entries"`
	Total   int                     `json:"total"`
}

type toggleRequest struct {
	Name string `json:"name"`
}

type toggleResponse struct {
	Symbol  string `json:"symbol"`
	Watched bool   `json:"watched"`
}

// HandleGet handles GET /api/watchlist. Every page load re-reads the set.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Invalidate(r.Context()); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	h.writeMembership(w, http.StatusOK)
}

// HandleRefresh handles POST /api/watchlist/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Invalidate(r.Context()); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	h.writeMembership(w, http.StatusOK)
}

// HandleStocks handles GET /api/watchlist/stocks
func (h *Handler) HandleStocks(w http.ResponseWriter, r *http.Request) {
	rows, err := h.cache.Stocks(r.Context(), h.stocks)
	if err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	view.WriteData(w, http.StatusOK, map[string]interface{}{
		"stocks": rows,
		"total":  len(rows),
	}, h.log)
}

// HandleAdd handles POST /api/watchlist
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var add domain.WatchlistAdd
	if err := view.DecodeJSON(r, &add); err != nil {
		view.WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}
	entry, err := h.cache.Add(r.Context(), add)
	if err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	view.WriteData(w, http.StatusCreated, entry, h.log)
}

// HandleRemove handles DELETE /api/watchlist/{symbol}
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Remove(r.Context(), chi.URLParam(r, "symbol")); err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeMembership(w, http.StatusOK)
}

// HandleToggle handles POST /api/watchlist/{symbol}/toggle
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if r.ContentLength > 0 {
		if err := view.DecodeJSON(r, &req); err != nil {
			view.WriteError(w, http.StatusBadRequest, err.Error(), h.log)
			return
		}
	}
	symbol := chi.URLParam(r, "symbol")
	watched, err := h.cache.Toggle(r.Context(), symbol, req.Name)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	view.WriteData(w, http.StatusOK, toggleResponse{Symbol: symbol, Watched: watched}, h.log)
}

func (h *Handler) writeMembership(w http.ResponseWriter, status int) {
	entries := h.cache.Entries()
	view.WriteData(w, status, membershipResponse{
		Symbols: h.cache.Symbols(),
		Entries: entries,
		Total:   len(entries),
	}, h.log)
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	if errors.Is(err, watchlist.ErrNotInWatchlist) {
		view.WriteError(w, http.StatusNotFound, "관심종목에 없는 종목입니다", h.log)
		return
	}
	view.WriteErr(w, err, h.log)
}
