package view

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kquant/dashboard/internal/clients/backend"
	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/fetchstate"
	"github.com/rs/zerolog"
)

const maxRequestBytes = 1 << 20

// Envelope wraps response data the way every /api route returns it
func Envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, log zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteData writes data inside the standard envelope
func WriteData(w http.ResponseWriter, status int, data interface{}, log zerolog.Logger) {
	WriteJSON(w, status, Envelope(data), log)
}

// WriteError writes {"error": message}
func WriteError(w http.ResponseWriter, status int, message string, log zerolog.Logger) {
	WriteJSON(w, status, map[string]string{"error": message}, log)
}

// WriteErr maps err to a status and writes it with its kind and field messages
func WriteErr(w http.ResponseWriter, err error, log zerolog.Logger) {
	body := map[string]interface{}{
		"error": ErrorMessage(err),
		"kind":  ErrorKind(err),
	}
	if fields := FieldErrors(err); fields != nil {
		body["fields"] = fields
	}
	WriteJSON(w, StatusOf(err), body, log)
}

// StatusOf picks the gateway status for an error
func StatusOf(err error) int {
	if domain.IsValidationError(err) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, fetchstate.ErrClosed) {
		return http.StatusConflict
	}
	if errors.Is(err, fetchstate.ErrNotMounted) {
		return http.StatusPreconditionRequired
	}
	if apiErr, ok := backend.AsAPIError(err); ok {
		switch apiErr.Kind {
		case backend.KindClient:
			return apiErr.StatusCode
		case backend.KindTimeout:
			return http.StatusGatewayTimeout
		default:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}

// DecodeJSON reads a bounded JSON request body into v
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
