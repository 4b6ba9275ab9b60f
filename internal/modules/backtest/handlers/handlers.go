// Package handlers provides HTTP handlers for the backtest views.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/events"
	"github.com/kquant/dashboard/internal/fetchstate"
	"github.com/kquant/dashboard/internal/modules/backtest"
	"github.com/kquant/dashboard/internal/view"
	"github.com/rs/zerolog"
)

// Handler handles backtest requests
type Handler struct {
	history *fetchstate.Slot[*backtest.HistoryController]
	result  *fetchstate.Slot[*backtest.ResultController]
	settle  time.Duration
	log     zerolog.Logger
}

// NewHandler creates a backtest handler
func NewHandler(
	b backtest.Backend,
	pageSize int,
	pollInterval time.Duration,
	em *events.Manager,
	settle time.Duration,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		history: fetchstate.NewSlot(func() *backtest.HistoryController {
			return backtest.NewHistoryController(b, pageSize, em, log)
		}),
		result: fetchstate.NewSlot(func() *backtest.ResultController {
			return backtest.NewResultController(b, pollInterval, em, log)
		}),
		settle: settle,
		log:    log.With().Str("handler", "backtest").Logger(),
	}
}

// HandleHistory handles GET /api/backtests?page=
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	ctrl := h.history.Get()
	if err := ctrl.Load(page); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	h.await(r, ctrl.Await)
	view.WriteData(w, http.StatusOK, ctrl.View(), h.log)
}

// HandleRun handles POST /api/backtests
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var cfg domain.BacktestConfig
	if err := view.DecodeJSON(r, &cfg); err != nil {
		view.WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	result, err := h.history.Get().Run(r.Context(), cfg)
	if err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	view.WriteData(w, http.StatusCreated, backtest.NewResultRow(*result), h.log)
}

// HandleDefaults handles GET /api/backtests/defaults
func (h *Handler) HandleDefaults(w http.ResponseWriter, r *http.Request) {
	view.WriteData(w, http.StatusOK, backtest.DefaultConfig(), h.log)
}

// HandleResult handles GET /api/backtests/{id}
func (h *Handler) HandleResult(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	ctrl := h.result.Get()
	if err := ctrl.Load(id); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	h.await(r, ctrl.Await)
	view.WriteData(w, http.StatusOK, ctrl.View(), h.log)
}

// HandleRefreshResult handles POST /api/backtests/{id}/refresh
func (h *Handler) HandleRefreshResult(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	ctrl, mounted := h.result.Peek()
	if !mounted {
		view.WriteError(w, http.StatusConflict, "backtest result is not shown", h.log)
		return
	}
	if current, loaded := ctrl.ID(); !loaded || current != id {
		view.WriteError(w, http.StatusConflict, "backtest result is not shown", h.log)
		return
	}
	if err := ctrl.Refresh(); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	h.await(r, ctrl.Await)
	view.WriteData(w, http.StatusOK, ctrl.View(), h.log)
}

// HandleUnmount handles DELETE /api/backtests
func (h *Handler) HandleUnmount(w http.ResponseWriter, r *http.Request) {
	h.Unmount()
	w.WriteHeader(http.StatusNoContent)
}

// Unmount closes both views and stops any polling
func (h *Handler) Unmount() {
	h.history.Unmount()
	h.result.Unmount()
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		view.WriteError(w, http.StatusBadRequest, "invalid backtest id", h.log)
		return 0, false
	}
	return id, true
}

func (h *Handler) await(r *http.Request, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.settle)
	defer cancel()
	_ = fn(ctx)
}
