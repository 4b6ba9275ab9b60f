package backend

import (
	"context"
	"net/http"

	"github.com/kquant/dashboard/internal/domain"
)

// Dashboard returns the overview payload
func (c *Client) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	var d domain.Dashboard
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/dashboard",
		fallback: "대시보드 데이터를 불러오는데 실패했습니다",
	}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
