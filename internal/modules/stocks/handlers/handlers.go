// Package handlers provides HTTP handlers for the stock views.
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
	"github.com/kquant/dashboard/internal/modules/stocks"
	"github.com/kquant/dashboard/internal/view"
	"github.com/rs/zerolog"
)

// membershipLoader is a Membership that can re-read its set
type membershipLoader interface {
	Reload(ctx context.Context)
}

// Handler handles stock view requests
type Handler struct {
	list    *fetchstate.Slot[*stocks.ListController]
	box     *fetchstate.Slot[*stocks.SearchBox]
	ref     *stocks.Reference
	members stocks.Membership
	settle  time.Duration
	log     zerolog.Logger
}

// NewHandler creates a stocks handler. members may be nil.
func NewHandler(
	backend stocks.Backend,
	ref *stocks.Reference,
	members stocks.Membership,
	pageSize int,
	debounce time.Duration,
	em *events.Manager,
	settle time.Duration,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		list: fetchstate.NewSlot(func() *stocks.ListController {
			return stocks.NewListController(backend, ref, pageSize, em, log)
		}),
		box: fetchstate.NewSlot(func() *stocks.SearchBox {
			return stocks.NewSearchBox(backend, debounce, em, log)
		}),
		ref:     ref,
		members: members,
		settle:  settle,
		log:     log.With().Str("handler", "stocks").Logger(),
	}
}

// HandleList handles GET /api/stocks
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := stocks.NewFilter(
		q.Get("market_type"),
		q.Get("sector"),
		q.Get("industry"),
		q.Get("dept"),
		q.Get("sort_by"),
		q.Get("sort_order"),
	)
	if err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	page, _ := strconv.Atoi(q.Get("page"))

	// Watch badges follow the backend set, not whatever was cached before
	if loader, ok := h.members.(membershipLoader); ok {
		loader.Reload(r.Context())
	}

	ctrl := h.list.Get()
	if err := ctrl.Load(filter, page); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	if query := q.Get("q"); query != "" {
		if err := ctrl.Search(query); err != nil {
			view.WriteErr(w, err, h.log)
			return
		}
	}
	h.writeList(w, r, ctrl)
}

// HandleRefresh handles POST /api/stocks/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctrl := h.list.Get()
	if err := ctrl.Refresh(); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	h.writeList(w, r, ctrl)
}

// HandleFilters handles GET /api/stocks/filters
func (h *Handler) HandleFilters(w http.ResponseWriter, r *http.Request) {
	filters, err := h.ref.Filters(r.Context())
	if err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	view.WriteData(w, http.StatusOK, filters, h.log)
}

// HandleGetStock handles GET /api/stocks/{symbol}
func (h *Handler) HandleGetStock(w http.ResponseWriter, r *http.Request) {
	stock, err := h.ref.Stock(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		if errors.Is(err, stocks.ErrNoSymbol) {
			view.WriteError(w, http.StatusBadRequest, "종목을 선택하세요", h.log)
			return
		}
		view.WriteErr(w, err, h.log)
		return
	}
	view.WriteData(w, http.StatusOK, stocks.NewRow(*stock, h.members), h.log)
}

type typeRequest struct {
	Query string `json:"query"`
}

// HandleType handles PUT /api/stocks/search. The search fires once typing pauses.
func (h *Handler) HandleType(w http.ResponseWriter, r *http.Request) {
	var req typeRequest
	if err := view.DecodeJSON(r, &req); err != nil {
		view.WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}
	box := h.box.Get()
	if err := box.Type(req.Query); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	view.WriteData(w, http.StatusAccepted, box.View(h.members), h.log)
}

// HandleSearchResults handles GET /api/stocks/search
func (h *Handler) HandleSearchResults(w http.ResponseWriter, r *http.Request) {
	box := h.box.Get()
	ctx, cancel := context.WithTimeout(r.Context(), h.settle)
	defer cancel()
	_ = box.Await(ctx)
	view.WriteData(w, http.StatusOK, box.View(h.members), h.log)
}

// HandleUnmount handles DELETE /api/stocks
func (h *Handler) HandleUnmount(w http.ResponseWriter, r *http.Request) {
	h.Unmount()
	w.WriteHeader(http.StatusNoContent)
}

// Unmount closes the list and the search box
func (h *Handler) Unmount() {
	h.list.Unmount()
	h.box.Unmount()
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, ctrl *stocks.ListController) {
	ctx, cancel := context.WithTimeout(r.Context(), h.settle)
	defer cancel()
	_ = ctrl.Await(ctx)
	view.WriteData(w, http.StatusOK, ctrl.View(h.members), h.log)
}
