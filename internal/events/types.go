// Package events provides the in-process event bus used to push view state
// changes to connected browsers.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	// StateChanged fires on every fetch-state transition of a view controller
	StateChanged EventType = "STATE_CHANGED"
	// WatchlistChanged fires after the shared watchlist cache settles
	WatchlistChanged EventType = "WATCHLIST_CHANGED"
	// SessionChanged fires on login, logout and forced teardown
	SessionChanged EventType = "SESSION_CHANGED"
	// PriceTicked fires when a background price refresh succeeds
	PriceTicked EventType = "PRICE_TICKED"
	// CollectCompleted fires when a backend collection job returns
	CollectCompleted EventType = "COLLECT_COMPLETED"
	// StrategyChanged fires after a strategy mutation was applied by the backend
	StrategyChanged EventType = "STRATEGY_CHANGED"
	// BacktestFinished fires when a polled backtest reaches a terminal status
	BacktestFinished EventType = "BACKTEST_FINISHED"
	// ErrorOccurred fires for soft failures worth surfacing as a toast
	ErrorOccurred EventType = "ERROR_OCCURRED"
)

// AllTypes lists every event type, in the order streams subscribe to them
var AllTypes = []EventType{
	StateChanged,
	WatchlistChanged,
	SessionChanged,
	PriceTicked,
	CollectCompleted,
	StrategyChanged,
	BacktestFinished,
	ErrorOccurred,
}

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}
