// Package handlers provides the session endpoints. They are the only view
// routes outside the auth gate.
package handlers

import (
	"net/http"

	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/modules/auth"
	"github.com/kquant/dashboard/internal/view"
	"github.com/rs/zerolog"
)

// Handler handles session requests
type Handler struct {
	service *auth.Service
	log     zerolog.Logger
}

// NewHandler creates a session handler
func NewHandler(service *auth.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "session").Logger(),
	}
}

// HandleSession handles GET /api/session
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	view.WriteData(w, http.StatusOK, h.service.View(), h.log)
}

// HandleLogin handles POST /api/session/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := view.DecodeJSON(r, &req); err != nil {
		view.WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}
	if _, err := h.service.Login(r.Context(), req); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	view.WriteData(w, http.StatusOK, h.service.View(), h.log)
}

// HandleRegister handles POST /api/session/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := view.DecodeJSON(r, &req); err != nil {
		view.WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}
	if _, err := h.service.Register(r.Context(), req); err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	view.WriteData(w, http.StatusCreated, h.service.View(), h.log)
}

// HandleLogout handles POST /api/session/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context())
	view.WriteData(w, http.StatusOK, h.service.View(), h.log)
}

// HandleMe handles GET /api/session/me
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Me(r.Context())
	if err != nil {
		view.WriteErr(w, err, h.log)
		return
	}
	view.WriteData(w, http.StatusOK, user, h.log)
}
