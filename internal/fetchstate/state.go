// Package fetchstate implements the per-view fetch state machine:
// idle -> loading -> success | error, with refreshing reachable only from
// success. Results are accepted last-write-wins by sequence number and a
// closed controller never mutates its state again.
package fetchstate

import (
	"errors"
	"time"
)

// Status of a controller slot
type Status string

const (
	StatusIdle       Status = "idle"
	StatusLoading    Status = "loading"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
	StatusRefreshing Status = "refreshing"
)

// ErrorPolicy decides what a failed refresh does to the last good data
type ErrorPolicy int

const (
	// ErrorClearsData drops data and moves to error. Used for primary fetches.
	ErrorClearsData ErrorPolicy = iota
	// ErrorRetainsData keeps the last good data and stays in success.
	// Used for background refreshes such as price ticks.
	ErrorRetainsData
)

func (p ErrorPolicy) String() string {
	if p == ErrorRetainsData {
		return "retain"
	}
	return "clear"
}

var (
	// ErrNotMounted is returned by Refresh before the first SetDeps
	ErrNotMounted = errors.New("controller not mounted")
	// ErrClosed is returned by every trigger after Close
	ErrClosed = errors.New("controller closed")
)

// Snapshot is an immutable copy of a controller's state
type Snapshot[T any] struct {
	Status    Status
	Data      *T
	Err       error // set only in StatusError
	LastErr   error // soft failure swallowed under ErrorRetainsData
	Seq       uint64
	UpdatedAt time.Time
	Mutating  bool
	ActionErr error // last failed mutation; data is kept
}

// Message returns the error text to show, or ""
func (s Snapshot[T]) Message() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// InFlight reports loading or refreshing
func (s Snapshot[T]) InFlight() bool {
	return s.Status == StatusLoading || s.Status == StatusRefreshing
}

// HasData reports whether there is data to render
func (s Snapshot[T]) HasData() bool {
	return s.Data != nil
}

// Transition is passed to the OnChange hook after every state change
type Transition struct {
	Name   string
	Status Status
	Seq    uint64
	Err    error

	rev uint64
}
