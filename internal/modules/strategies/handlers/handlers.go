// Package handlers provides HTTP handlers for the strategy views.
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
	"github.com/kquant/dashboard/internal/modules/strategies"
	"github.com/kquant/dashboard/internal/view"
	"github.com/rs/zerolog"
)

// SymbolSource supplies symbols for executions sourced from the watchlist
type SymbolSource interface {
	Symbols() []string
}

// symbolLoader is a SymbolSource that can re-read its set
type symbolLoader interface {
	Reload(ctx context.Context)
}

// Handler handles strategy view requests
type Handler struct {
	list    *fetchstate.Slot[*strategies.ListController]
	detail  *fetchstate.Slot[*strategies.DetailController]
	symbols SymbolSource
	settle  time.Duration
	log     zerolog.Logger
}

// NewHandler creates a strategies handler. symbols may be nil.
func NewHandler(
	backend strategies.Backend,
	pageSize int,
	symbols SymbolSource,
	em *events.Manager,
	settle time.Duration,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		list: fetchstate.NewSlot(func() *strategies.ListController {
			return strategies.NewListController(backend, pageSize, em, log)
		}),
		detail: fetchstate.NewSlot(func() *strategies.DetailController {
			return strategies.NewDetailController(backend, em, log)
		}),
		symbols: symbols,
		settle:  settle,
		log:     log.With().Str("handler", "strategies").Logger(),
	}
}

// HandleList handles GET /api/strategies?page=&status=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	status, err := domain.ParseStrategyStatus(r.URL.Query().Get("status"))
	if err != nil {
		view.WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	ctrl := h.list.Get()
	if err := ctrl.Load(page, status); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	h.writeList(w, r, ctrl)
}

// HandleRefreshList handles POST /api/strategies/refresh
func (h *Handler) HandleRefreshList(w http.ResponseWriter, r *http.Request) {
	ctrl := h.list.Get()
	if err := ctrl.Refresh(); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	h.writeList(w, r, ctrl)
}

// HandleCreate handles POST /api/strategies
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var form domain.StrategyForm
	if err := view.DecodeJSON(r, &form); err != nil {
		view.WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	created, err := h.list.Get().Create(r.Context(), form)
	if err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	view.WriteData(w, http.StatusCreated, strategies.NewRow(*created), h.log)
}

// HandleGet handles GET /api/strategies/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	ctrl := h.detail.Get()
	if err := ctrl.Load(id); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	h.writeDetail(w, r, ctrl)
}

// HandleUpdate handles PUT /api/strategies/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var form domain.StrategyForm
	if err := view.DecodeJSON(r, &form); err != nil {
		view.WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	updated, err := h.list.Get().Update(r.Context(), id, form)
	if err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	h.refreshDetail(id)
	view.WriteData(w, http.StatusOK, strategies.NewRow(*updated), h.log)
}

// HandleDelete handles DELETE /api/strategies/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	ctrl := h.list.Get()
	if err := ctrl.Delete(r.Context(), id); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	if loaded, ok := h.detail.Peek(); ok {
		if current, mounted := loaded.ID(); mounted && current == id {
			h.detail.Unmount()
		}
	}
	h.writeList(w, r, ctrl)
}

// HandleActivate handles POST /api/strategies/{id}/activate
func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	h.handleStatus(w, r, true)
}

// HandleDeactivate handles POST /api/strategies/{id}/deactivate
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.handleStatus(w, r, false)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	// Whichever view is showing the strategy owns the mutation
	if detail, ok := h.detail.Peek(); ok {
		if current, mounted := detail.ID(); mounted && current == id {
			var err error
			if active {
				err = detail.Activate(r.Context())
			} else {
				err = detail.Deactivate(r.Context())
			}
			if err != nil {
				view.WriteErr(w, err, h.log)
				return
			}
			h.refreshList()
			h.writeDetail(w, r, detail)
			return
		}
	}

	ctrl := h.list.Get()
	var err error
	if active {
		err = ctrl.Activate(r.Context(), id)
	} else {
		err = ctrl.Deactivate(r.Context(), id)
	}
	if err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	h.writeList(w, r, ctrl)
}

// HandleExecute handles POST /api/strategies/{id}/execute
func (h *Handler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req domain.ExecuteRequest
	if err := view.DecodeJSON(r, &req); err != nil {
		view.WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}
	if len(req.Symbols) == 0 && req.Source == "watchlist" && h.symbols != nil {
		if loader, ok := h.symbols.(symbolLoader); ok {
			loader.Reload(r.Context())
		}
		req.Symbols = h.symbols.Symbols()
	}

	var (
		result *domain.ExecuteResult
		err    error
	)
	if detail, ok := h.detail.Peek(); ok {
		if current, mounted := detail.ID(); mounted && current == id {
			result, err = detail.Execute(r.Context(), req)
		}
	}
	if result == nil && err == nil {
		result, err = h.list.Get().Execute(r.Context(), id, req)
	}
	if err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	view.WriteData(w, http.StatusOK, result, h.log)
}

// HandleUnmount handles DELETE /api/strategies
func (h *Handler) HandleUnmount(w http.ResponseWriter, r *http.Request) {
	h.Unmount()
	w.WriteHeader(http.StatusNoContent)
}

// Unmount closes both views
func (h *Handler) Unmount() {
	h.list.Unmount()
	h.detail.Unmount()
}

func (h *Handler) refreshList() {
	if list, ok := h.list.Peek(); ok {
		_ = list.Refresh()
	}
}

func (h *Handler) refreshDetail(id int64) {
	if detail, ok := h.detail.Peek(); ok {
		if current, mounted := detail.ID(); mounted && current == id {
			_ = detail.Refresh()
		}
	}
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		view.WriteError(w, http.StatusBadRequest, "invalid strategy id", h.log)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, ctrl *strategies.ListController) {
	ctx, cancel := context.WithTimeout(r.Context(), h.settle)
	defer cancel()
	_ = ctrl.Await(ctx)
	view.WriteData(w, http.StatusOK, ctrl.View(), h.log)
}

func (h *Handler) writeDetail(w http.ResponseWriter, r *http.Request, ctrl *strategies.DetailController) {
	ctx, cancel := context.WithTimeout(r.Context(), h.settle)
	defer cancel()
	_ = ctrl.Await(ctx)
	view.WriteData(w, http.StatusOK, ctrl.View(), h.log)
}
