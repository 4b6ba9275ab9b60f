package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrorKind classifies a failed call
type ErrorKind string

const (
	KindNetwork ErrorKind = "network" // no response
	KindTimeout ErrorKind = "timeout" // no response within the client timeout
	KindClient  ErrorKind = "client"  // 4xx
	KindServer  ErrorKind = "server"  // 5xx
	KindDecode  ErrorKind = "decode"  // 2xx with an unreadable body
)

// APIError is returned by every Client method on failure.
// Message is the backend's detail when present, else the call's fallback.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Detail     string
	Err        error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the same call could succeed
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout, KindServer:
		return true
	case KindClient:
		return e.StatusCode == http.StatusRequestTimeout || e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// AsAPIError unwraps err into an *APIError
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUnauthorized reports whether the backend rejected the bearer token
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsNotFound reports a 404
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsBadRequest reports a 400
func IsBadRequest(err error) bool {
	return hasStatus(err, http.StatusBadRequest)
}

// IsCanceled reports whether the call was abandoned by its caller
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

func hasStatus(err error, status int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == status
}

// extractDetail pulls a human readable message out of an error body.
// FastAPI sends either {"detail": "..."} or {"detail": [{"msg": "..."}]}.
func extractDetail(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}

	detail := gjson.GetBytes(body, "detail")
	switch {
	case detail.Type == gjson.String:
		return strings.TrimSpace(detail.String())
	case detail.IsArray():
		var msgs []string
		for _, m := range detail.Get("#.msg").Array() {
			if s := strings.TrimSpace(m.String()); s != "" {
				msgs = append(msgs, s)
			}
		}
		return strings.Join(msgs, "; ")
	case detail.IsObject():
		if m := detail.Get("message"); m.Type == gjson.String {
			return strings.TrimSpace(m.String())
		}
	}

	if m := gjson.GetBytes(body, "message"); m.Type == gjson.String {
		return strings.TrimSpace(m.String())
	}
	return ""
}
