// Package view turns controller snapshots into the view-state contract a
// browser renders: exactly one of loading, error (with retry), empty or
// content, plus pure formatting of row values.
package view

import (
	"errors"

	"github.com/kquant/dashboard/internal/clients/backend"
	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/fetchstate"
)

// Kind is what the view renders
type Kind string

const (
	KindLoading Kind = "loading"
	KindError   Kind = "error"
	KindEmpty   Kind = "empty"
	KindContent Kind = "content"
)

// GenericErrorMessage is shown when an error carries no message of its own
const GenericErrorMessage = "요청을 처리하지 못했습니다. 잠시 후 다시 시도해주세요."

// State is the resolved view state
type State struct {
	Kind        Kind              `json:"kind"`
	Message     string            `json:"message,omitempty"`
	ErrorKind   string            `json:"error_kind,omitempty"`
	Retryable   bool              `json:"retryable"`
	Refreshing  bool              `json:"refreshing"`
	Mutating    bool              `json:"mutating"`
	ActionError string            `json:"action_error,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
	Seq         uint64            `json:"seq"`
}

// Resolve maps a snapshot to a view state. isEmpty decides whether
// successful data has anything to show; nil means never empty.
func Resolve[T any](snap fetchstate.Snapshot[T], isEmpty func(T) bool) State {
	s := State{
		Seq:      snap.Seq,
		Mutating: snap.Mutating,
	}
	if snap.ActionErr != nil {
		s.ActionError = ErrorMessage(snap.ActionErr)
		s.FieldErrors = FieldErrors(snap.ActionErr)
	}

	switch snap.Status {
	case fetchstate.StatusIdle, fetchstate.StatusLoading:
		s.Kind = KindLoading
		return s

	case fetchstate.StatusError:
		s.Kind = KindError
		s.Message = ErrorMessage(snap.Err)
		s.ErrorKind = ErrorKind(snap.Err)
		// Every fetch failure is recoverable from the view
		s.Retryable = true
		return s
	}

	s.Refreshing = snap.Status == fetchstate.StatusRefreshing
	if snap.Data == nil || (isEmpty != nil && isEmpty(*snap.Data)) {
		s.Kind = KindEmpty
		return s
	}
	s.Kind = KindContent
	return s
}

// ErrorMessage returns the text to show for err. Backend messages are
// surfaced verbatim.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := backend.AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return "입력값을 확인해주세요"
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenericErrorMessage
}

// ErrorKind classifies err for the view
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := backend.AsAPIError(err); ok {
		return string(apiErr.Kind)
	}
	if domain.IsValidationError(err) {
		return "validation"
	}
	return "unknown"
}

// FieldErrors returns inline field messages for a validation failure
func FieldErrors(err error) map[string]string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// ErrorState builds an error view state for a one-shot action that never
// went through a controller.
func ErrorState(err error) State {
	return State{
		Kind:        KindError,
		Message:     ErrorMessage(err),
		ErrorKind:   ErrorKind(err),
		Retryable:   !domain.IsValidationError(err),
		FieldErrors: FieldErrors(err),
	}
}
