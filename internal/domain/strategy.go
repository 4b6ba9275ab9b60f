package domain

import "fmt"

// StrategyType identifies the strategy family and selects its parameter record
type StrategyType string

const (
	StrategyMomentum      StrategyType = "MOMENTUM"
	StrategyMeanReversion StrategyType = "MEAN_REVERSION"
	StrategyBreakout      StrategyType = "BREAKOUT"
	StrategyCustom        StrategyType = "CUSTOM"
)

// Label returns the display label for the strategy type
func (t StrategyType) Label() string {
	switch t {
	case StrategyMomentum:
		return "모멘텀 전략"
	case StrategyMeanReversion:
		return "평균회귀 전략"
	case StrategyBreakout:
		return "변동성 돌파 전략"
	case StrategyCustom:
		return "커스텀 전략"
	}
	return string(t)
}

// StrategyStatus is authoritative on the backend; the dashboard never flips it locally.
type StrategyStatus string

const (
	StatusActive      StrategyStatus = "ACTIVE"
	StatusInactive    StrategyStatus = "INACTIVE"
	StatusBacktesting StrategyStatus = "BACKTESTING"
)

// ParseStrategyStatus validates a status filter value. Empty means no filter.
func ParseStrategyStatus(s string) (StrategyStatus, error) {
	switch st := StrategyStatus(s); st {
	case "", StatusActive, StatusInactive, StatusBacktesting:
		return st, nil
	}
	return "", fmt.Errorf("unknown strategy status %q", s)
}

// Label returns the display label for the status
func (s StrategyStatus) Label() string {
	switch s {
	case StatusActive:
		return "운영중"
	case StatusInactive:
		return "비활성"
	case StatusBacktesting:
		return "백테스트중"
	}
	return string(s)
}

// Strategy is the canonical strategy shape (uppercase status, strategy_type).
// Parameters are decoded from the loose wire map into a typed variant.
type Strategy struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Type        StrategyType   `json:"strategy_type"`
	Status      StrategyStatus `json:"status"`
	Parameters  StrategyParams `json:"-"`
	UserID      int64          `json:"user_id"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`

	// Performance metrics, present only once the backend computes them
	TotalProfitLoss   *float64 `json:"total_profit_loss,omitempty"`
	ProfitLossPercent *float64 `json:"profit_loss_percent,omitempty"`
	TotalTrades       *int     `json:"total_trades,omitempty"`
	WinRate           *float64 `json:"win_rate,omitempty"`
	SharpeRatio       *float64 `json:"sharpe_ratio,omitempty"`
	MaxDrawdown       *float64 `json:"max_drawdown,omitempty"`
}

// StrategyList is one page of strategies
type StrategyList struct {
	Strategies []Strategy `json:"strategies"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
}

// StrategyForm is the create/update form. Parameters is the loose map
// submitted by the browser; it is decoded against Type before sending.
type StrategyForm struct {
	Name        string                 `json:"name" validate:"required,max=100"`
	Description string                 `json:"description" validate:"max=500"`
	Type        StrategyType           `json:"strategy_type" validate:"required,oneof=MOMENTUM MEAN_REVERSION BREAKOUT CUSTOM"`
	Parameters  map[string]interface{} `json:"parameters"`
	Status      StrategyStatus         `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE BACKTESTING"`
}

// ValidationMessages implements MessageProvider
func (StrategyForm) ValidationMessages() map[string]string {
	return map[string]string{
		"name":          "전략 이름을 입력해주세요",
		"description":   "설명은 500자 이하여야 합니다",
		"strategy_type": "전략 유형을 선택해주세요",
		"status":        "알 수 없는 상태입니다",
	}
}

// SignalType of an execution signal
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
	SignalHold SignalType = "HOLD"
)

// Signal is one trading signal produced by a strategy execution
type Signal struct {
	Timestamp  string     `json:"timestamp"`
	Symbol     string     `json:"symbol"`
	SignalType SignalType `json:"signal_type"`
	Price      float64    `json:"price"`
	Quantity   *int       `json:"quantity"`
	Reason     string     `json:"reason"`
	Confidence float64    `json:"confidence"`
}

// ExecuteRequest asks the backend to run a strategy over symbols
type ExecuteRequest struct {
	Symbols []string `json:"symbols" validate:"required,min=1,dive,required"`
	Source  string   `json:"source,omitempty" validate:"omitempty,oneof=manual watchlist screening"`
}

// ValidationMessages implements MessageProvider
func (ExecuteRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"symbols": "종목을 하나 이상 선택해주세요",
	}
}

// ExecuteResult is the result of a one-shot strategy execution
type ExecuteResult struct {
	StrategyID   int64    `json:"strategy_id"`
	StrategyName string   `json:"strategy_name"`
	Symbols      []string `json:"symbols"`
	ExecutedAt   string   `json:"executed_at"`
	Signals      []Signal `json:"signals"`
	TotalSignals int      `json:"total_signals"`
	TotalSymbols int      `json:"total_symbols"`
}
