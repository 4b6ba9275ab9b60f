package domain

// TradeStatus of an order
type TradeStatus string

const (
	TradeCompleted TradeStatus = "completed"
	TradePending   TradeStatus = "pending"
	TradeCancelled TradeStatus = "cancelled"
	TradeFailed    TradeStatus = "failed"
)

// Label returns the display label for the status
func (s TradeStatus) Label() string {
	switch s {
	case TradeCompleted:
		return "체결완료"
	case TradePending:
		return "주문중"
	case TradeCancelled:
		return "취소됨"
	case TradeFailed:
		return "실패"
	}
	return string(s)
}

// Trade is one order in the trade history
type Trade struct {
	ID                int64       `json:"id"`
	StrategyName      string      `json:"strategy_name"`
	Symbol            string      `json:"symbol"`
	Side              string      `json:"side"`
	Quantity          float64     `json:"quantity"`
	OrderPrice        float64     `json:"order_price"`
	ExecutedPrice     *float64    `json:"executed_price,omitempty"`
	Status            TradeStatus `json:"status"`
	OrderTime         string      `json:"order_time"`
	ExecutedTime      string      `json:"executed_time,omitempty"`
	ProfitLoss        *float64    `json:"profit_loss,omitempty"`
	ProfitLossPercent *float64    `json:"profit_loss_percent,omitempty"`
	Commission        float64     `json:"commission"`
	Slippage          *float64    `json:"slippage,omitempty"`
}

// TradeList is one page of trade history
type TradeList struct {
	Trades   []Trade `json:"trades"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// TradeQuery filters the trade history server-side
type TradeQuery struct {
	Page     int
	PageSize int
	Symbol   string
	Status   TradeStatus
	DateFrom string
	DateTo   string
}
