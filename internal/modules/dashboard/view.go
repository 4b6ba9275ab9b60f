package dashboard

import (
	"strconv"

	"github.com/kquant/dashboard/internal/clients/backend"
	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/modules/account"
	"github.com/kquant/dashboard/internal/view"
)

// StatsView is the headline card row
type StatsView struct {
	domain.DashboardStats
	TotalBalanceText      string    `json:"total_balance_text"`
	ProfitLossText        string    `json:"profit_loss_text"`
	ProfitLossPercentText string    `json:"profit_loss_percent_text"`
	Tone                  view.Tone `json:"tone"`
}

// StrategyRow is one running strategy
type StrategyRow struct {
	domain.ActiveStrategy
	ProfitLossText        string    `json:"profit_loss_text"`
	ProfitLossPercentText string    `json:"profit_loss_percent_text"`
	Tone                  view.Tone `json:"tone"`
}

// ActivityRow is one recent fill
type ActivityRow struct {
	domain.RecentActivity
	SideLabel    string `json:"side_label"`
	QuantityText string `json:"quantity_text"`
	PriceText    string `json:"price_text"`
	TimeText     string `json:"time_text"`
}

// View is the overview page
type View struct {
	State            view.State           `json:"view"`
	Stats            *StatsView           `json:"stats,omitempty"`
	ActiveStrategies []StrategyRow        `json:"active_strategies"`
	RecentActivities []ActivityRow        `json:"recent_activities"`
	Account          *account.SummaryView `json:"account,omitempty"`
	AccountError     string               `json:"account_error,omitempty"`
}

func newActivityRow(a domain.RecentActivity) ActivityRow {
	row := ActivityRow{
		RecentActivity: a,
		SideLabel:      a.Type,
		QuantityText:   strconv.FormatFloat(a.Quantity, 'f', -1, 64) + "주",
		PriceText:      view.FormatKRW(a.Price),
		TimeText:       view.FormatTimestamp(a.Time, false),
	}
	switch a.Type {
	case "BUY", "buy":
		row.SideLabel = "매수"
	case "SELL", "sell":
		row.SideLabel = "매도"
	}
	if a.CreatedAt != nil && a.Time == "" {
		row.TimeText = view.FormatTimestamp(*a.CreatedAt, false)
	}
	return row
}

// View builds the overview page
func (c *Controller) View() View {
	snap := c.Snapshot()
	v := View{
		State:            view.Resolve(snap, nil),
		ActiveStrategies: []StrategyRow{},
		RecentActivities: []ActivityRow{},
	}
	if snap.Data == nil {
		return v
	}
	o := snap.Data

	v.Stats = &StatsView{
		DashboardStats:        o.Stats,
		TotalBalanceText:      view.FormatKRW(o.Stats.TotalBalance),
		ProfitLossText:        view.FormatKRW(o.Stats.ProfitLoss),
		ProfitLossPercentText: view.FormatPercent(o.Stats.ProfitLossPercent),
		Tone:                  view.ToneOf(o.Stats.ProfitLoss),
	}
	for _, s := range o.ActiveStrategies {
		v.ActiveStrategies = append(v.ActiveStrategies, StrategyRow{
			ActiveStrategy:        s,
			ProfitLossText:        view.FormatKRW(s.ProfitLoss),
			ProfitLossPercentText: view.FormatPercent(s.ProfitLossPercent),
			Tone:                  view.ToneOf(s.ProfitLoss),
		})
	}
	for _, a := range o.RecentActivities {
		v.RecentActivities = append(v.RecentActivities, newActivityRow(a))
	}

	switch {
	case backend.IsBadRequest(o.BalanceErr):
		v.AccountError = account.CredentialsMissingMessage
	case o.BalanceErr != nil:
		v.AccountError = view.ErrorMessage(o.BalanceErr)
	case o.Balance != nil && o.Balance.Summary != nil:
		summary := account.NewSummaryView(*o.Balance.Summary)
		v.Account = &summary
	}
	return v
}
