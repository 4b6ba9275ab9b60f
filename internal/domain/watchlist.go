package domain

// WatchlistEntry is one watched symbol
type WatchlistEntry struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Symbol    string `json:"symbol"`
	Name      string `json:"name,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Watchlist is the user's full watchlist
type Watchlist struct {
	Total      int              `json:"total"`
	Watchlists []WatchlistEntry `json:"watchlists"`
}

// WatchlistAdd is the add request
type WatchlistAdd struct {
	Symbol string `json:"symbol" validate:"required"`
	Name   string `json:"name,omitempty"`
	Notes  string `json:"notes,omitempty" validate:"max=500"`
}
