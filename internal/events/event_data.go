package events

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// StateChangedData describes one controller transition
type StateChangedData struct {
	Controller string `json:"controller"`
	Status     string `json:"status"`
	Seq        uint64 `json:"seq"`
	Message    string `json:"message,omitempty"`
}

// EventType returns the event type for StateChangedData
func (d *StateChangedData) EventType() EventType {
	return StateChanged
}

// WatchlistChangedData carries the settled membership set
type WatchlistChangedData struct {
	Action  string   `json:"action"` // add, remove, refresh
	Symbol  string   `json:"symbol,omitempty"`
	Symbols []string `json:"symbols"`
}

// EventType returns the event type for WatchlistChangedData
func (d *WatchlistChangedData) EventType() EventType {
	return WatchlistChanged
}

// SessionChangedData contains data for SessionChanged events
type SessionChangedData struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	Reason        string `json:"reason,omitempty"` // login, logout, unauthorized, expired
}

// EventType returns the event type for SessionChangedData
func (d *SessionChangedData) EventType() EventType {
	return SessionChanged
}

// PriceTickedData contains the refreshed quote
type PriceTickedData struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        float64 `json:"volume"`
	Timestamp     string  `json:"timestamp"`
}

// EventType returns the event type for PriceTickedData
func (d *PriceTickedData) EventType() EventType {
	return PriceTicked
}

// CollectCompletedData contains data for CollectCompleted events
type CollectCompletedData struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Total    int    `json:"total"`
}

// EventType returns the event type for CollectCompletedData
func (d *CollectCompletedData) EventType() EventType {
	return CollectCompleted
}

// StrategyChangedData contains data for StrategyChanged events
type StrategyChangedData struct {
	ID     int64  `json:"id"`
	Action string `json:"action"` // create, update, delete, activate, deactivate
	Status string `json:"status,omitempty"`
}

// EventType returns the event type for StrategyChangedData
func (d *StrategyChangedData) EventType() EventType {
	return StrategyChanged
}

// BacktestFinishedData contains data for BacktestFinished events
type BacktestFinishedData struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// EventType returns the event type for BacktestFinishedData
func (d *BacktestFinishedData) EventType() EventType {
	return BacktestFinished
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
