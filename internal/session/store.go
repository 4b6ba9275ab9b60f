package session

import (
	"strings"
	"sync"
	"time"

	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/events"
	"github.com/rs/zerolog"
)

// Sign-out reasons carried on SESSION_CHANGED events
const (
	ReasonLogin        = "login"
	ReasonLogout       = "logout"
	ReasonUnauthorized = "unauthorized"
	ReasonExpired      = "expired"
	ReasonRestored     = "restored"
)

// Persister stores the session between restarts
type Persister interface {
	Save(sess domain.Session, expiresAt time.Time) error
	Load() (*domain.Session, error)
	Delete() error
}

// Store is the single owned session container. It satisfies
// backend.TokenSource so every request reads the current token.
type Store struct {
	mu        sync.RWMutex
	sess      domain.Session
	expiresAt time.Time

	repo      Persister
	events    *events.Manager
	log       zerolog.Logger
	ttl       time.Duration
	hooksMu   sync.Mutex
	onSignOut []func(reason string)
}

// NewStore creates an empty store. repo and em may be nil.
func NewStore(repo Persister, em *events.Manager, log zerolog.Logger) *Store {
	return &Store{
		repo:   repo,
		events: em,
		log:    log.With().Str("component", "session").Logger(),
		ttl:    DefaultTTL,
	}
}

// Hydrate restores a persisted session. A missing or expired row leaves the
// store signed out.
func (s *Store) Hydrate() error {
	if s.repo == nil {
		return nil
	}
	sess, err := s.repo.Load()
	if err != nil {
		return err
	}
	if sess == nil || sess.AccessToken == "" || sess.User == nil {
		return nil
	}

	expiresAt := TokenExpiry(sess.AccessToken, s.ttl)
	if !expiresAt.After(time.Now()) {
		return s.repo.Delete()
	}

	sess.IsAuthenticated = true
	s.mu.Lock()
	s.sess = *sess
	s.expiresAt = expiresAt
	s.mu.Unlock()

	s.log.Info().Str("email", sess.User.Email).Msg("Session restored")
	s.emit(true, sess.User.Email, ReasonRestored)
	return nil
}

// AccessToken returns the current bearer token or ""
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.AccessToken
}

// Current returns a copy of the session
func (s *Store) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := s.sess
	if sess.User != nil {
		u := *sess.User
		sess.User = &u
	}
	return sess
}

// IsAuthenticated reports whether a user and token are present and unexpired
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.IsAuthenticated && (s.expiresAt.IsZero() || s.expiresAt.After(time.Now()))
}

// ExpiresAt returns when the current token expires
func (s *Store) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// SignIn replaces the session from a login or register response
func (s *Store) SignIn(resp *domain.AuthResponse, tradingMode string) domain.Session {
	sess := domain.Session{
		User:            resp.User,
		AccessToken:     resp.AccessToken,
		RefreshToken:    resp.RefreshToken,
		IsAuthenticated: resp.User != nil && resp.AccessToken != "",
		TradingMode:     strings.ToUpper(tradingMode),
		CreatedAt:       time.Now(),
	}
	expiresAt := TokenExpiry(resp.AccessToken, s.ttl)

	s.mu.Lock()
	s.sess = sess
	s.expiresAt = expiresAt
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.Save(sess, expiresAt); err != nil {
			// The in-memory session is still valid for this process
			s.log.Warn().Err(err).Msg("Failed to persist session")
		}
	}

	email := ""
	if sess.User != nil {
		email = sess.User.Email
	}
	s.log.Info().Str("email", email).Time("expires_at", expiresAt).Msg("Signed in")
	s.emit(sess.IsAuthenticated, email, ReasonLogin)
	return s.Current()
}

// UpdateUser replaces the user record of an authenticated session
func (s *Store) UpdateUser(u *domain.User) {
	s.mu.Lock()
	if !s.sess.IsAuthenticated || u == nil {
		s.mu.Unlock()
		return
	}
	s.sess.User = u
	sess, expiresAt := s.sess, s.expiresAt
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.Save(sess, expiresAt); err != nil {
			s.log.Warn().Err(err).Msg("Failed to persist session")
		}
	}
}

// SignOut clears every field at once. Calling it while signed out is a no-op.
func (s *Store) SignOut(reason string) {
	s.mu.Lock()
	wasAuthenticated := s.sess.IsAuthenticated
	email := ""
	if s.sess.User != nil {
		email = s.sess.User.Email
	}
	s.sess = domain.Session{}
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.Delete(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to delete persisted session")
		}
	}
	if !wasAuthenticated {
		return
	}

	s.log.Info().Str("email", email).Str("reason", reason).Msg("Signed out")

	s.hooksMu.Lock()
	hooks := append([]func(string){}, s.onSignOut...)
	s.hooksMu.Unlock()
	for _, fn := range hooks {
		fn(reason)
	}
	s.emit(false, email, reason)
}

// OnSignOut registers a teardown hook run after the session is cleared
func (s *Store) OnSignOut(fn func(reason string)) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.onSignOut = append(s.onSignOut, fn)
}

// ExpireIfDue signs out when the token expiry has passed
func (s *Store) ExpireIfDue(now time.Time) bool {
	s.mu.RLock()
	due := s.sess.IsAuthenticated && !s.expiresAt.IsZero() && !s.expiresAt.After(now)
	s.mu.RUnlock()
	if due {
		s.SignOut(ReasonExpired)
	}
	return due
}

func (s *Store) emit(authenticated bool, email, reason string) {
	if s.events == nil {
		return
	}
	s.events.EmitTyped("session", &events.SessionChangedData{
		Authenticated: authenticated,
		Email:         email,
		Reason:        reason,
	})
}
