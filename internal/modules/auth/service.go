// Package auth signs the gateway's single session in and out.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kquant/dashboard/internal/clients/backend"
	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/session"
	"github.com/rs/zerolog"
)

// DefaultTradingMode is used when the login form leaves the mode blank
const DefaultTradingMode = "MOCK"

// ErrNotSignedIn is returned by Me without a session
var ErrNotSignedIn = &backend.APIError{
	Kind:       backend.KindClient,
	StatusCode: http.StatusUnauthorized,
	Message:    "로그인이 필요합니다",
}

// Backend is the auth part of the resource client
type Backend interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error)
	Me(ctx context.Context) (*domain.User, error)
	Logout(ctx context.Context) error
}

// SessionStore is the session owner
type SessionStore interface {
	SignIn(resp *domain.AuthResponse, tradingMode string) domain.Session
	SignOut(reason string)
	UpdateUser(u *domain.User)
	Current() domain.Session
	IsAuthenticated() bool
	ExpiresAt() time.Time
}

// Service runs the login, register and logout flows
type Service struct {
	backend Backend
	store   SessionStore
	log     zerolog.Logger
}

// NewService creates the auth service
func NewService(b Backend, store SessionStore, log zerolog.Logger) *Service {
	return &Service{
		backend: b,
		store:   store,
		log:     log.With().Str("component", "auth").Logger(),
	}
}

// Login validates the form, exchanges it for tokens and replaces the session
func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.Session, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.KISTradingMode = strings.ToUpper(strings.TrimSpace(req.KISTradingMode))
	if req.KISTradingMode == "" {
		req.KISTradingMode = DefaultTradingMode
	}
	if err := domain.Validate(req); err != nil {
		return domain.Session{}, err
	}

	resp, err := s.backend.Login(ctx, req)
	if err != nil {
		s.log.Warn().Err(err).Str("email", req.Email).Msg("Login failed")
		return domain.Session{}, err
	}
	if err := checkResponse(resp); err != nil {
		return domain.Session{}, err
	}
	return s.store.SignIn(resp, req.KISTradingMode), nil
}

// Register creates an account and signs it in
func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (domain.Session, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := domain.Validate(req); err != nil {
		return domain.Session{}, err
	}

	resp, err := s.backend.Register(ctx, req)
	if err != nil {
		s.log.Warn().Err(err).Str("email", req.Email).Msg("Registration failed")
		return domain.Session{}, err
	}
	if err := checkResponse(resp); err != nil {
		return domain.Session{}, err
	}
	return s.store.SignIn(resp, DefaultTradingMode), nil
}

func checkResponse(resp *domain.AuthResponse) error {
	if resp == nil || resp.AccessToken == "" || resp.User == nil {
		return &backend.APIError{
			Kind:    backend.KindDecode,
			Message: "로그인 응답에 사용자 정보가 없습니다",
			Err:     fmt.Errorf("auth response without token or user"),
		}
	}
	return nil
}

// Logout tells the backend and clears the session. The backend call is
// best effort: the local session is cleared even when it fails.
func (s *Service) Logout(ctx context.Context) {
	if s.store.IsAuthenticated() {
		if err := s.backend.Logout(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Backend logout failed")
		}
	}
	s.store.SignOut(session.ReasonLogout)
}

// Me re-reads the signed-in user from the backend
func (s *Service) Me(ctx context.Context) (*domain.User, error) {
	if !s.store.IsAuthenticated() {
		return nil, ErrNotSignedIn
	}
	user, err := s.backend.Me(ctx)
	if err != nil {
		return nil, err
	}
	s.store.UpdateUser(user)
	return user, nil
}

// SessionView is what the browser sees of the session. Tokens never leave
// the process.
type SessionView struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
	TradingMode   string       `json:"trading_mode,omitempty"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
}

// View describes the current session
func (s *Service) View() SessionView {
	if !s.store.IsAuthenticated() {
		return SessionView{}
	}
	sess := s.store.Current()
	v := SessionView{
		Authenticated: true,
		User:          sess.User,
		TradingMode:   sess.TradingMode,
	}
	if exp := s.store.ExpiresAt(); !exp.IsZero() {
		v.ExpiresAt = &exp
	}
	return v
}
