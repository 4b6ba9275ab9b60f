package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kquant/dashboard/internal/domain"
)

// SearchStocks is a one-shot name/symbol search
func (c *Client) SearchStocks(ctx context.Context, s domain.StockSearch) (*domain.StockList, error) {
	query := url.Values{}
	query.Set("query", s.Query)
	setIfNotEmpty(query, "market_type", string(s.MarketType))
	setIfPositive(query, "limit", s.Limit)

	var list domain.StockList
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/stocks/search",
		query:    query,
		fallback: "종목 검색에 실패했습니다",
	}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListStocks returns one server-side filtered, sorted page
func (c *Client) ListStocks(ctx context.Context, q domain.StockQuery) (*domain.StockList, error) {
	query := url.Values{}
	setIfNotEmpty(query, "market_type", string(q.MarketType))
	setIfNotEmpty(query, "sector", q.Sector)
	setIfNotEmpty(query, "industry", q.Industry)
	setIfNotEmpty(query, "dept", q.Dept)
	setIfNotEmpty(query, "sort_by", string(q.SortBy))
	setIfNotEmpty(query, "sort_order", string(q.SortOrder))
	query.Set("skip", strconv.Itoa(q.Skip))
	setIfPositive(query, "limit", q.Limit)

	var list domain.StockList
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/stocks",
		query:    query,
		fallback: "종목 목록을 불러오는데 실패했습니다",
	}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetStock returns one stock by symbol
func (c *Client) GetStock(ctx context.Context, symbol string) (*domain.Stock, error) {
	var stock domain.Stock
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/stocks/" + url.PathEscape(symbol),
		fallback: "종목 정보를 불러오는데 실패했습니다",
	}, &stock); err != nil {
		return nil, err
	}
	return &stock, nil
}

// StockFilters returns the selectable sector/industry/dept values
func (c *Client) StockFilters(ctx context.Context) (*domain.StockFilters, error) {
	var filters domain.StockFilters
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/stocks/filters",
		fallback: "필터 정보를 불러오는데 실패했습니다",
	}, &filters); err != nil {
		return nil, err
	}
	return &filters, nil
}
