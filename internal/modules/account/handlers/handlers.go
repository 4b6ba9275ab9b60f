// Package handlers provides HTTP handlers for the account and settings views.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/events"
	"github.com/kquant/dashboard/internal/fetchstate"
	"github.com/kquant/dashboard/internal/modules/account"
	"github.com/kquant/dashboard/internal/view"
	"github.com/rs/zerolog"
)

// Backend covers both account views
type Backend interface {
	account.BalanceBackend
	account.SettingsBackend
}

// Handler handles account requests
type Handler struct {
	balance  *fetchstate.Slot[*account.BalanceController]
	settings *account.Settings
	settle   time.Duration
	log      zerolog.Logger
}

// NewHandler creates an account handler
func NewHandler(b Backend, em *events.Manager, settle time.Duration, log zerolog.Logger) *Handler {
	return &Handler{
		balance: fetchstate.NewSlot(func() *account.BalanceController {
			return account.NewBalanceController(b, em, log)
		}),
		settings: account.NewSettings(b, log),
		settle:   settle,
		log:      log.With().Str("handler", "account").Logger(),
	}
}

// HandleBalance handles GET /api/account
func (h *Handler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	ctrl := h.balance.Get()
	if err := ctrl.Load(); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	h.writeBalance(w, r, ctrl)
}

// HandleRefresh handles POST /api/account/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctrl := h.balance.Get()
	if err := ctrl.Load(); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	if err := ctrl.Refresh(); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	h.writeBalance(w, r, ctrl)
}

// HandleGetSettings handles GET /api/account/settings
func (h *Handler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	form, err := h.settings.Load(r.Context())
	if err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	view.WriteData(w, http.StatusOK, form, h.log)
}

// HandleSaveSettings handles PUT /api/account/settings
func (h *Handler) HandleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var form domain.KISCredentialsForm
	if err := view.DecodeJSON(r, &form); err != nil {
		view.WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}
	if err := h.settings.Save(r.Context(), form); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}

	// A shown balance was likely failing for lack of credentials
	if ctrl, ok := h.balance.Peek(); ok {
		_ = ctrl.Refresh()
	}

	saved, err := h.settings.Load(r.Context())
	if err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	view.WriteData(w, http.StatusOK, saved, h.log)
}

// HandleUnmount handles DELETE /api/account
func (h *Handler) HandleUnmount(w http.ResponseWriter, r *http.Request) {
	h.Unmount()
	w.WriteHeader(http.StatusNoContent)
}

// Unmount closes the balance view
func (h *Handler) Unmount() {
	h.balance.Unmount()
}

func (h *Handler) writeBalance(w http.ResponseWriter, r *http.Request, ctrl *account.BalanceController) {
	ctx, cancel := context.WithTimeout(r.Context(), h.settle)
	defer cancel()
	_ = ctrl.Await(ctx)
	view.WriteData(w, http.StatusOK, ctrl.View(), h.log)
}
