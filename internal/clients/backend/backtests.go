package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kquant/dashboard/internal/domain"
)

// RunBacktest starts a run. The result usually comes back pending.
func (c *Client) RunBacktest(ctx context.Context, cfg domain.BacktestConfig) (*domain.BacktestResult, error) {
	var result domain.BacktestResult
	if err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/backtest/run",
		body:     cfg,
		fallback: "백테스트 실행에 실패했습니다",
	}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetBacktest returns the current state of one run
func (c *Client) GetBacktest(ctx context.Context, id int64) (*domain.BacktestResult, error) {
	var result domain.BacktestResult
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     fmt.Sprintf("/backtest/results/%d", id),
		fallback: "백테스트 결과를 불러오는데 실패했습니다",
	}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BacktestHistory returns one page of past runs
func (c *Client) BacktestHistory(ctx context.Context, page, pageSize int) (*domain.BacktestHistory, error) {
	query := url.Values{}
	setIfPositive(query, "page", page)
	setIfPositive(query, "page_size", pageSize)

	var history domain.BacktestHistory
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/backtest/history",
		query:    query,
		fallback: "백테스트 내역을 불러오는데 실패했습니다",
	}, &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// BacktestTrades returns the simulated fills of a run
func (c *Client) BacktestTrades(ctx context.Context, id int64) ([]domain.BacktestTrade, error) {
	var trades []domain.BacktestTrade
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     fmt.Sprintf("/backtest/results/%d/trades", id),
		fallback: "백테스트 거래 내역을 불러오는데 실패했습니다",
	}, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}
