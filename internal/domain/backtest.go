package domain

// BacktestStatus of a backtest run. completed and failed are terminal.
type BacktestStatus string

const (
	BacktestPending   BacktestStatus = "pending"
	BacktestRunning   BacktestStatus = "running"
	BacktestCompleted BacktestStatus = "completed"
	BacktestFailed    BacktestStatus = "failed"
)

// IsTerminal reports whether the backend will no longer change the status
func (s BacktestStatus) IsTerminal() bool {
	return s == BacktestCompleted || s == BacktestFailed
}

// Label returns the display label for the status
func (s BacktestStatus) Label() string {
	switch s {
	case BacktestPending:
		return "대기중"
	case BacktestRunning:
		return "실행중"
	case BacktestCompleted:
		return "완료"
	case BacktestFailed:
		return "실패"
	}
	return string(s)
}

// BacktestConfig is both the run form and the config echoed on results
type BacktestConfig struct {
	StrategyID     int64    `json:"strategy_id" validate:"required,gt=0"`
	StartDate      string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	InitialCapital float64  `json:"initial_capital" validate:"gte=100000"`
	CommissionRate float64  `json:"commission_rate" validate:"gte=0,lte=1"`
	SlippageRate   float64  `json:"slippage_rate" validate:"gte=0,lte=1"`
	Symbols        []string `json:"symbols,omitempty" validate:"omitempty,dive,required"`
}

// ValidationMessages implements MessageProvider
func (BacktestConfig) ValidationMessages() map[string]string {
	return map[string]string{
		"strategy_id":     "전략을 선택해주세요",
		"start_date":      "시작일을 선택해주세요",
		"end_date":        "종료일을 선택해주세요",
		"initial_capital": "최소 100,000원 이상 입력해주세요",
	}
}

// BacktestMetrics are present only when the run completed
type BacktestMetrics struct {
	TotalReturn         *float64 `json:"total_return,omitempty"`
	TotalReturnPercent  *float64 `json:"total_return_percent,omitempty"`
	AnnualizedReturn    *float64 `json:"annualized_return,omitempty"`
	SharpeRatio         *float64 `json:"sharpe_ratio,omitempty"`
	SortinoRatio        *float64 `json:"sortino_ratio,omitempty"`
	MaxDrawdown         *float64 `json:"max_drawdown,omitempty"`
	MaxDrawdownDuration *int     `json:"max_drawdown_duration,omitempty"`
	WinRate             *float64 `json:"win_rate,omitempty"`
	ProfitFactor        *float64 `json:"profit_factor,omitempty"`
	TotalTrades         *int     `json:"total_trades,omitempty"`
	WinningTrades       *int     `json:"winning_trades,omitempty"`
	LosingTrades        *int     `json:"losing_trades,omitempty"`
	AvgWin              *float64 `json:"avg_win,omitempty"`
	AvgLoss             *float64 `json:"avg_loss,omitempty"`
}

// BacktestResult mirrors the backend result. Metrics are flattened on the wire.
type BacktestResult struct {
	ID           int64          `json:"id"`
	StrategyID   int64          `json:"strategy_id"`
	StrategyName string         `json:"strategy_name"`
	Status       BacktestStatus `json:"status"`
	Config       BacktestConfig `json:"config"`
	CreatedAt    string         `json:"created_at"`
	StartedAt    string         `json:"started_at,omitempty"`
	CompletedAt  string         `json:"completed_at,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Logs         string         `json:"logs,omitempty"`
	BacktestMetrics
}

// HasMetrics reports whether metrics may be shown for this result
func (r BacktestResult) HasMetrics() bool {
	return r.Status == BacktestCompleted
}

// BacktestHistory is one page of past runs
type BacktestHistory struct {
	Results  []BacktestResult `json:"results"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// BacktestTrade is a simulated fill
type BacktestTrade struct {
	ID                int64    `json:"id"`
	BacktestID        int64    `json:"backtest_id"`
	Symbol            string   `json:"symbol"`
	Side              string   `json:"side"`
	Quantity          float64  `json:"quantity"`
	Price             float64  `json:"price"`
	ExecutedAt        string   `json:"executed_at"`
	ProfitLoss        *float64 `json:"profit_loss,omitempty"`
	ProfitLossPercent *float64 `json:"profit_loss_percent,omitempty"`
	PositionType      string   `json:"position_type"`
}
