package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kquant/dashboard/internal/domain"
)

// Watchlist returns every entry
func (c *Client) Watchlist(ctx context.Context) (*domain.Watchlist, error) {
	var list domain.Watchlist
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/watchlist",
		fallback: "관심종목을 불러오는데 실패했습니다",
	}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// WatchlistSymbols returns only the watched symbols
func (c *Client) WatchlistSymbols(ctx context.Context) ([]string, error) {
	var symbols []string
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/watchlist/symbols",
		fallback: "관심종목을 불러오는데 실패했습니다",
	}, &symbols); err != nil {
		return nil, err
	}
	return symbols, nil
}

// AddToWatchlist adds a symbol
func (c *Client) AddToWatchlist(ctx context.Context, add domain.WatchlistAdd) (*domain.WatchlistEntry, error) {
	var entry domain.WatchlistEntry
	if err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/watchlist",
		body:     add,
		fallback: "관심종목 추가에 실패했습니다",
	}, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// RemoveFromWatchlist deletes an entry by id
func (c *Client) RemoveFromWatchlist(ctx context.Context, id int64) error {
	return c.do(ctx, request{
		method:   http.MethodDelete,
		path:     fmt.Sprintf("/watchlist/%d", id),
		fallback: "관심종목 삭제에 실패했습니다",
	}, nil)
}
