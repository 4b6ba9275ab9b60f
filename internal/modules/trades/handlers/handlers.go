// Package handlers provides HTTP handlers for the trade history.
package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kquant/dashboard/internal/events"
	"github.com/kquant/dashboard/internal/fetchstate"
	"github.com/kquant/dashboard/internal/modules/trades"
	"github.com/kquant/dashboard/internal/view"
	"github.com/rs/zerolog"
)

// Handler handles trade history requests
type Handler struct {
	history *fetchstate.Slot[*trades.Controller]
	settle  time.Duration
	log     zerolog.Logger
}

// NewHandler creates a trade history handler
func NewHandler(b trades.Backend, pageSize int, em *events.Manager, settle time.Duration, log zerolog.Logger) *Handler {
	return &Handler{
		history: fetchstate.NewSlot(func() *trades.Controller {
			return trades.NewController(b, pageSize, em, log)
		}),
		settle: settle,
		log:    log.With().Str("handler", "trades").Logger(),
	}
}

// HandleList handles GET /api/trades?symbol=&status=&date_from=&date_to=&page=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.load(w, r)
	if !ok {
		return
	}
	view.WriteData(w, http.StatusOK, ctrl.View(), h.log)
}

// HandleRefresh handles POST /api/trades/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctrl := h.history.Get()
	if err := ctrl.Refresh(); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	h.await(r, ctrl.Await)
	view.WriteData(w, http.StatusOK, ctrl.View(), h.log)
}

// HandleExport handles GET /api/trades/export, the same query as the list
// rendered as CSV
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.load(w, r)
	if !ok {
		return
	}
	snap := ctrl.Snapshot()
	if snap.Err != nil {
		view.WriteErr(w, snap.Err, h.log)
		return
	}
	if snap.Data == nil {
		view.WriteError(w, http.StatusServiceUnavailable, "trade history is still loading", h.log)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="trades.csv"`)
	if err := trades.WriteCSV(w, snap.Data.Trades); err != nil {
		h.log.Error().Err(err).Msg("Failed to write trades CSV")
	}
}

// HandleUnmount handles DELETE /api/trades
func (h *Handler) HandleUnmount(w http.ResponseWriter, r *http.Request) {
	h.Unmount()
	w.WriteHeader(http.StatusNoContent)
}

// Unmount closes the trade history
func (h *Handler) Unmount() {
	h.history.Unmount()
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*trades.Controller, bool) {
	q := r.URL.Query()
	filter, err := trades.NewFilter(q.Get("symbol"), q.Get("status"), q.Get("date_from"), q.Get("date_to"))
	if err != nil {
		view.WriteErr(w, err, h.log)
		return nil, false
	}

	ctrl := h.history.Get()
	if err := ctrl.Load(filter, pageParam(q)); err != nil {
		view.WriteErr(w, err, h.log)
		return nil, false
	}
	h.await(r, ctrl.Await)
	return ctrl, true
}

func pageParam(q url.Values) int {
	page, _ := strconv.Atoi(q.Get("page"))
	return page
}

func (h *Handler) await(r *http.Request, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.settle)
	defer cancel()
	_ = fn(ctx)
}
