// Package handlers provides HTTP handlers for the market view.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kquant/dashboard/internal/events"
	"github.com/kquant/dashboard/internal/fetchstate"
	"github.com/kquant/dashboard/internal/modules/market"
	"github.com/kquant/dashboard/internal/view"
	"github.com/rs/zerolog"
)

// Handler handles market view requests
type Handler struct {
	slot   *fetchstate.Slot[*market.Controller]
	stream http.Handler
	settle time.Duration
	log    zerolog.Logger
}

// NewHandler creates a market handler. settle bounds how long a request
// waits for in-flight fetches before returning the current state.
func NewHandler(backend market.Backend, em *events.Manager, settle time.Duration, log zerolog.Logger) *Handler {
	return &Handler{
		slot: fetchstate.NewSlot(func() *market.Controller {
			return market.NewController(backend, em, log)
		}),
		settle: settle,
		log:    log.With().Str("handler", "market").Logger(),
	}
}

// WithStream mounts a websocket price stream at /market/{symbol}/ws
func (h *Handler) WithStream(stream http.Handler) *Handler {
	h.stream = stream
	return h
}

// HandleGetView handles GET /api/market/{symbol}?interval=&days=&page=
func (h *Handler) HandleGetView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days, _ := strconv.Atoi(q.Get("days"))
	deps, err := market.NewDeps(chi.URLParam(r, "symbol"), q.Get("interval"), days)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	ctrl := h.slot.Get()
	if err := ctrl.Load(deps); err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeView(w, r, ctrl)
}

// HandleRefresh handles POST /api/market/{symbol}/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.mounted(w, r)
	if !ok {
		return
	}
	if err := ctrl.Refresh(); err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeView(w, r, ctrl)
}

// HandleRefreshPrice handles POST /api/market/{symbol}/price/refresh
func (h *Handler) HandleRefreshPrice(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.mounted(w, r)
	if !ok {
		return
	}
	if err := ctrl.RefreshPrice(); err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeView(w, r, ctrl)
}

// HandleCollect handles POST /api/market/{symbol}/collect
func (h *Handler) HandleCollect(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.mounted(w, r)
	if !ok {
		return
	}
	if _, err := ctrl.Collect(r.Context()); err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeView(w, r, ctrl)
}

// HandleUnmount handles DELETE /api/market
func (h *Handler) HandleUnmount(w http.ResponseWriter, r *http.Request) {
	h.Unmount()
	w.WriteHeader(http.StatusNoContent)
}

// Unmount closes the mounted view, aborting in-flight fetches
func (h *Handler) Unmount() {
	h.slot.Unmount()
}

// Tick refreshes the current price of the mounted view, if any
func (h *Handler) Tick() error {
	ctrl, ok := h.slot.Peek()
	if !ok {
		return nil
	}
	err := ctrl.RefreshPrice()
	if errors.Is(err, fetchstate.ErrNotMounted) || errors.Is(err, fetchstate.ErrClosed) {
		return nil
	}
	return err
}

// mounted returns the controller showing the symbol in the URL
func (h *Handler) mounted(w http.ResponseWriter, r *http.Request) (*market.Controller, bool) {
	ctrl, ok := h.slot.Peek()
	if ok {
		if deps, loaded := ctrl.Deps(); loaded && deps.Symbol == chi.URLParam(r, "symbol") {
			return ctrl, true
		}
	}
	view.WriteError(w, http.StatusConflict, "market view is not showing this symbol", h.log)
	return nil, false
}

func (h *Handler) writeView(w http.ResponseWriter, r *http.Request, ctrl *market.Controller) {
	ctx, cancel := context.WithTimeout(r.Context(), h.settle)
	defer cancel()
	_ = ctrl.Await(ctx)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	view.WriteData(w, http.StatusOK, ctrl.View(page), h.log)
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	if errors.Is(err, market.ErrNoSymbol) {
		view.WriteError(w, http.StatusBadRequest, "종목을 선택하세요", h.log)
		return
	}
	view.WriteErr(w, err, h.log)
}
