package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// FakeBackend is an httptest server standing in for the trading API.
// Routes are registered on a chi router and every request is recorded.
type FakeBackend struct {
	Router chi.Router

	server   *httptest.Server
	mu       sync.Mutex
	requests []RecordedRequest
}

// RecordedRequest is one call seen by the fake backend
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
}

// NewFakeBackend starts a fake backend and closes it when the test ends
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	f := &FakeBackend{Router: chi.NewRouter()}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
		})
		f.mu.Unlock()
		f.Router.ServeHTTP(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the base URL to hand to backend.NewClient
func (f *FakeBackend) URL() string {
	return f.server.URL
}

// Requests returns a copy of the recorded requests
func (f *FakeBackend) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// Count returns how many requests hit path
func (f *FakeBackend) Count(path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Path == path {
			n++
		}
	}
	return n
}

// JSON replies with a fixed status and body
func JSON(status int, body interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, body)
	}
}

// Detail replies with a FastAPI style {"detail": msg} error
func Detail(status int, msg string) http.HandlerFunc {
	return JSON(status, map[string]string{"detail": msg})
}

// WriteJSON encodes body as the response
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
