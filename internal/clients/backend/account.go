package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kquant/dashboard/internal/domain"
)

// BalanceFallback is shown when the balance call fails without a backend detail
const BalanceFallback = "계좌 정보를 불러오는데 실패했습니다."

// Balance returns the raw broker balance
func (c *Client) Balance(ctx context.Context) (*domain.KISBalance, error) {
	var balance domain.KISBalance
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/account/balance",
		fallback: BalanceFallback,
	}, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

// KISCredentials returns the configured broker account, without secrets
func (c *Client) KISCredentials(ctx context.Context) (*domain.KISCredentials, error) {
	var creds domain.KISCredentials
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/account/kis-credentials",
		fallback: "KIS 인증 정보를 불러오는데 실패했습니다",
	}, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// UpdateKISCredentials stores broker credentials on the backend
func (c *Client) UpdateKISCredentials(ctx context.Context, update domain.KISCredentialsUpdate) error {
	return c.do(ctx, request{
		method:   http.MethodPut,
		path:     "/account/kis-credentials",
		body:     update,
		fallback: "저장에 실패했습니다.",
	}, nil)
}

// Trades returns one page of trade history
func (c *Client) Trades(ctx context.Context, q domain.TradeQuery) (*domain.TradeList, error) {
	query := url.Values{}
	setIfPositive(query, "page", q.Page)
	setIfPositive(query, "page_size", q.PageSize)
	setIfNotEmpty(query, "symbol", q.Symbol)
	setIfNotEmpty(query, "status", string(q.Status))
	setIfNotEmpty(query, "date_from", q.DateFrom)
	setIfNotEmpty(query, "date_to", q.DateTo)

	var list domain.TradeList
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/account/trades",
		query:    query,
		fallback: "거래 내역을 불러오는데 실패했습니다",
	}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}
