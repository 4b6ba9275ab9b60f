// Package handlers provides HTTP handlers for the overview page.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/kquant/dashboard/internal/events"
	"github.com/kquant/dashboard/internal/fetchstate"
	"github.com/kquant/dashboard/internal/modules/dashboard"
	"github.com/kquant/dashboard/internal/view"
	"github.com/rs/zerolog"
)

// Handler handles overview requests
type Handler struct {
	overview *fetchstate.Slot[*dashboard.Controller]
	settle   time.Duration
	log      zerolog.Logger
}

// NewHandler creates an overview handler
func NewHandler(b dashboard.Backend, em *events.Manager, settle time.Duration, log zerolog.Logger) *Handler {
	return &Handler{
		overview: fetchstate.NewSlot(func() *dashboard.Controller {
			return dashboard.NewController(b, em, log)
		}),
		settle: settle,
		log:    log.With().Str("handler", "dashboard").Logger(),
	}
}

// HandleOverview handles GET /api/dashboard
func (h *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	ctrl := h.overview.Get()
	if err := ctrl.Load(); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	h.await(r, ctrl.Await)
	view.WriteData(w, http.StatusOK, ctrl.View(), h.log)
}

// HandleRefresh handles POST /api/dashboard/refresh. An unmounted
// overview is simply loaded.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctrl, mounted := h.overview.Peek()
	if !mounted {
		h.HandleOverview(w, r)
		return
	}
	if err := ctrl.Refresh(); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	h.await(r, ctrl.Await)
	view.WriteData(w, http.StatusOK, ctrl.View(), h.log)
}

// HandleUnmount handles DELETE /api/dashboard
func (h *Handler) HandleUnmount(w http.ResponseWriter, r *http.Request) {
	h.Unmount()
	w.WriteHeader(http.StatusNoContent)
}

// Unmount closes the overview
func (h *Handler) Unmount() {
	h.overview.Unmount()
}

func (h *Handler) await(r *http.Request, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.settle)
	defer cancel()
	_ = fn(ctx)
}
