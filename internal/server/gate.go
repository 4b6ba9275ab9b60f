package server

import (
	"net/http"
	"strings"

	"github.com/kquant/dashboard/internal/view"
	"github.com/rs/zerolog"
)

// LoginPath is where unauthenticated requests are sent
const LoginPath = "/login"

// SessionChecker reports whether the gateway holds a live session
type SessionChecker interface {
	IsAuthenticated() bool
}

// RequireSession is the auth gate. Without a session, page requests are
// redirected to the login page and API requests get a 401 carrying the
// redirect target. A nil checker lets everything through.
func RequireSession(session SessionChecker, log zerolog.Logger) func(http.Handler) http.Handler {
	log = log.With().Str("component", "auth_gate").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session == nil || session.IsAuthenticated() {
				next.ServeHTTP(w, r)
				return
			}

			log.Debug().Str("path", r.URL.Path).Msg("Request without session")
			if wantsHTML(r) {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}
			view.WriteJSON(w, http.StatusUnauthorized, map[string]string{
				"error":    "로그인이 필요합니다",
				"redirect": LoginPath,
			}, log)
		})
	}
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
