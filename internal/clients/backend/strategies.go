package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kquant/dashboard/internal/domain"
)

// strategyWire is the loose wire shape; parameters are decoded at this boundary
type strategyWire struct {
	ID                int64                  `json:"id"`
	Name              string                 `json:"name"`
	Description       string                 `json:"description"`
	StrategyType      domain.StrategyType    `json:"strategy_type"`
	Status            domain.StrategyStatus  `json:"status"`
	Parameters        map[string]interface{} `json:"parameters"`
	UserID            int64                  `json:"user_id"`
	CreatedAt         string                 `json:"created_at"`
	UpdatedAt         string                 `json:"updated_at"`
	TotalProfitLoss   *float64               `json:"total_profit_loss"`
	ProfitLossPercent *float64               `json:"profit_loss_percent"`
	TotalTrades       *int                   `json:"total_trades"`
	WinRate           *float64               `json:"win_rate"`
	SharpeRatio       *float64               `json:"sharpe_ratio"`
	MaxDrawdown       *float64               `json:"max_drawdown"`
}

func (w strategyWire) toDomain() domain.Strategy {
	return domain.Strategy{
		ID:                w.ID,
		Name:              w.Name,
		Description:       w.Description,
		Type:              w.StrategyType,
		Status:            w.Status,
		Parameters:        domain.ParseParams(w.StrategyType, w.Parameters),
		UserID:            w.UserID,
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
		TotalProfitLoss:   w.TotalProfitLoss,
		ProfitLossPercent: w.ProfitLossPercent,
		TotalTrades:       w.TotalTrades,
		WinRate:           w.WinRate,
		SharpeRatio:       w.SharpeRatio,
		MaxDrawdown:       w.MaxDrawdown,
	}
}

type strategyBody struct {
	Name         string                 `json:"name,omitempty"`
	Description  string                 `json:"description,omitempty"`
	StrategyType domain.StrategyType    `json:"strategy_type,omitempty"`
	Parameters   map[string]interface{} `json:"parameters,omitempty"`
	Status       domain.StrategyStatus  `json:"status,omitempty"`
}

func newStrategyBody(form domain.StrategyForm, params domain.StrategyParams) strategyBody {
	body := strategyBody{
		Name:         form.Name,
		Description:  form.Description,
		StrategyType: form.Type,
		Status:       form.Status,
	}
	if params != nil {
		body.Parameters = params.Map()
	}
	return body
}

// ListStrategies returns one page, optionally filtered by status
func (c *Client) ListStrategies(ctx context.Context, page, pageSize int, status domain.StrategyStatus) (*domain.StrategyList, error) {
	query := url.Values{}
	setIfPositive(query, "page", page)
	setIfPositive(query, "page_size", pageSize)
	setIfNotEmpty(query, "status", string(status))

	var wire struct {
		Strategies []strategyWire `json:"strategies"`
		Total      int            `json:"total"`
		Page       int            `json:"page"`
		PageSize   int            `json:"page_size"`
	}
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/strategies",
		query:    query,
		fallback: "전략 목록을 불러오는데 실패했습니다",
	}, &wire); err != nil {
		return nil, err
	}

	list := &domain.StrategyList{
		Strategies: make([]domain.Strategy, 0, len(wire.Strategies)),
		Total:      wire.Total,
		Page:       wire.Page,
		PageSize:   wire.PageSize,
	}
	for _, s := range wire.Strategies {
		list.Strategies = append(list.Strategies, s.toDomain())
	}
	return list, nil
}

// GetStrategy returns one strategy
func (c *Client) GetStrategy(ctx context.Context, id int64) (*domain.Strategy, error) {
	return c.strategyCall(ctx, http.MethodGet, fmt.Sprintf("/strategies/%d", id), nil, "전략을 불러오는데 실패했습니다")
}

// CreateStrategy creates a strategy from a validated form and its typed parameters
func (c *Client) CreateStrategy(ctx context.Context, form domain.StrategyForm, params domain.StrategyParams) (*domain.Strategy, error) {
	return c.strategyCall(ctx, http.MethodPost, "/strategies", newStrategyBody(form, params), "전략 생성에 실패했습니다")
}

// UpdateStrategy updates a strategy. Zero fields are omitted from the body.
func (c *Client) UpdateStrategy(ctx context.Context, id int64, form domain.StrategyForm, params domain.StrategyParams) (*domain.Strategy, error) {
	return c.strategyCall(ctx, http.MethodPut, fmt.Sprintf("/strategies/%d", id), newStrategyBody(form, params), "전략 수정에 실패했습니다")
}

// DeleteStrategy deletes a strategy
func (c *Client) DeleteStrategy(ctx context.Context, id int64) error {
	return c.do(ctx, request{
		method:   http.MethodDelete,
		path:     fmt.Sprintf("/strategies/%d", id),
		fallback: "전략 삭제에 실패했습니다",
	}, nil)
}

// ActivateStrategy requests ACTIVE. The returned status is the backend's decision.
func (c *Client) ActivateStrategy(ctx context.Context, id int64) (*domain.Strategy, error) {
	return c.strategyCall(ctx, http.MethodPost, fmt.Sprintf("/strategies/%d/activate", id), nil, "전략 활성화에 실패했습니다")
}

// DeactivateStrategy requests INACTIVE
func (c *Client) DeactivateStrategy(ctx context.Context, id int64) (*domain.Strategy, error) {
	return c.strategyCall(ctx, http.MethodPost, fmt.Sprintf("/strategies/%d/deactivate", id), nil, "전략 비활성화에 실패했습니다")
}

// ExecuteStrategy runs a strategy once over the given symbols
func (c *Client) ExecuteStrategy(ctx context.Context, id int64, req domain.ExecuteRequest) (*domain.ExecuteResult, error) {
	var result domain.ExecuteResult
	if err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     fmt.Sprintf("/strategies/%d/execute", id),
		body:     req,
		fallback: "전략 실행에 실패했습니다",
	}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) strategyCall(ctx context.Context, method, path string, body interface{}, fallback string) (*domain.Strategy, error) {
	var wire strategyWire
	if err := c.do(ctx, request{
		method:   method,
		path:     path,
		body:     body,
		fallback: fallback,
	}, &wire); err != nil {
		return nil, err
	}
	s := wire.toDomain()
	return &s, nil
}
