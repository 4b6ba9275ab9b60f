package domain

// DashboardStats are the headline numbers of the overview page
type DashboardStats struct {
	TotalBalance      float64 `json:"total_balance"`
	ProfitLoss        float64 `json:"profit_loss"`
	ProfitLossPercent float64 `json:"profit_loss_percent"`
	ActiveStrategies  int     `json:"active_strategies"`
	TodayTrades       int     `json:"today_trades"`
}

// ActiveStrategy is a running strategy summary
type ActiveStrategy struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Status            string  `json:"status"`
	ProfitLoss        float64 `json:"profit_loss"`
	ProfitLossPercent float64 `json:"profit_loss_percent"`
}

// RecentActivity is a recent fill
type RecentActivity struct {
	ID        int64   `json:"id"`
	Type      string  `json:"type"`
	Symbol    string  `json:"symbol"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Time      string  `json:"time"`
	CreatedAt *string `json:"created_at,omitempty"`
}

// Dashboard is the overview payload
type Dashboard struct {
	Stats            DashboardStats   `json:"stats"`
	ActiveStrategies []ActiveStrategy `json:"active_strategies"`
	RecentActivities []RecentActivity `json:"recent_activities"`
}
