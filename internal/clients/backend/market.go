package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kquant/dashboard/internal/domain"
)

const (
	// ChartFallback is shown when a chart fetch fails without a backend detail
	ChartFallback = "차트 데이터를 불러오는데 실패했습니다"
	// PriceFallback is logged when a price fetch fails
	PriceFallback = "현재가를 불러오는데 실패했습니다"
	// CollectFallback is shown when a collection job fails
	CollectFallback = "데이터 수집에 실패했습니다"
)

// Chart returns the stored series, chronologically ascending
func (c *Client) Chart(ctx context.Context, symbol string, interval domain.Interval, days int) (*domain.ChartSeries, error) {
	query := url.Values{}
	query.Set("interval", string(interval))
	setIfPositive(query, "days", days)

	var series domain.ChartSeries
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/market/chart/" + url.PathEscape(symbol),
		query:    query,
		fallback: ChartFallback,
	}, &series); err != nil {
		return nil, err
	}
	series.Days = days
	return &series, nil
}

// Price returns the live quote
func (c *Client) Price(ctx context.Context, symbol string) (*domain.Price, error) {
	var price domain.Price
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/market/price/" + url.PathEscape(symbol),
		fallback: PriceFallback,
	}, &price); err != nil {
		return nil, err
	}
	if price.Symbol == "" {
		price.Symbol = symbol
	}
	return &price, nil
}

// CollectDaily triggers a backend-side daily candle collection
func (c *Client) CollectDaily(ctx context.Context, symbol string) (*domain.CollectResult, error) {
	return c.collect(ctx, "/market/collect/daily/"+url.PathEscape(symbol), url.Values{"period": {"D"}})
}

// CollectMinute triggers a backend-side intraday collection
func (c *Client) CollectMinute(ctx context.Context, symbol string, interval domain.Interval) (*domain.CollectResult, error) {
	return c.collect(ctx, "/market/collect/minute/"+url.PathEscape(symbol), url.Values{"interval": {string(interval)}})
}

func (c *Client) collect(ctx context.Context, path string, query url.Values) (*domain.CollectResult, error) {
	var result domain.CollectResult
	if err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     path,
		query:    query,
		fallback: CollectFallback,
	}, &result); err != nil {
		return nil, err
	}
	if result.Total == 0 {
		result.Total = len(result.Data)
	}
	return &result, nil
}
