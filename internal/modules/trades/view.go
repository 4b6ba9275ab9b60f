package trades

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/view"
)

// Row is one trade as rendered in the history table
type Row struct {
	domain.Trade
	StatusLabel    string    `json:"status_label"`
	OrderTimeText  string    `json:"order_time_text"`
	PriceText      string    `json:"price_text"`
	ProfitLossText string    `json:"profit_loss_text"`
	ReturnText     string    `json:"profit_loss_percent_text,omitempty"`
	CommissionText string    `json:"commission_text"`
	Tone           view.Tone `json:"tone"`
}

// NewRow formats a trade for display. The executed price is shown when
// there is one, else the order price.
func NewRow(t domain.Trade) Row {
	price := t.OrderPrice
	if t.ExecutedPrice != nil {
		price = *t.ExecutedPrice
	}
	row := Row{
		Trade:          t,
		StatusLabel:    t.Status.Label(),
		OrderTimeText:  view.FormatTimestamp(t.OrderTime, false),
		PriceText:      view.FormatKRW(price),
		ProfitLossText: "-",
		CommissionText: view.FormatKRW(t.Commission),
		Tone:           view.ToneFlat,
	}
	if t.ProfitLoss != nil {
		row.ProfitLossText = view.FormatKRW(*t.ProfitLoss)
		row.Tone = view.ToneOf(*t.ProfitLoss)
	}
	if t.ProfitLossPercent != nil {
		row.ReturnText = view.FormatPercent(*t.ProfitLossPercent)
	}
	return row
}

// SummaryView is the summary cards above the table
type SummaryView struct {
	view.TradeSummary
	TotalProfitLossText string    `json:"total_profit_loss_text"`
	TotalCommissionText string    `json:"total_commission_text"`
	WinRateText         string    `json:"win_rate_text"`
	Tone                view.Tone `json:"tone"`
}

// View is the trade history page
type View struct {
	State   view.State    `json:"view"`
	Filter  Filter        `json:"filter"`
	Trades  []Row         `json:"trades"`
	Page    view.PageView `json:"page"`
	Summary SummaryView   `json:"summary"`
}

func tradesEmpty(l domain.TradeList) bool {
	return len(l.Trades) == 0
}

// View builds the trade history page
func (c *Controller) View() View {
	snap := c.Snapshot()
	d, _ := c.Deps()

	v := View{
		State:   view.Resolve(snap, tradesEmpty),
		Filter:  d.Filter,
		Trades:  []Row{},
		Page:    view.NewPage(d.Page, c.pageSize, 0).View(),
		Summary: summaryView(view.TradeSummary{}),
	}
	if snap.Data == nil {
		return v
	}
	for _, t := range snap.Data.Trades {
		v.Trades = append(v.Trades, NewRow(t))
	}
	v.Page = view.NewPage(d.Page, c.pageSize, snap.Data.Total).View()
	v.Summary = summaryView(view.SummarizeTrades(snap.Data.Trades))
	return v
}

func summaryView(s view.TradeSummary) SummaryView {
	return SummaryView{
		TradeSummary:        s,
		TotalProfitLossText: view.FormatKRW(s.TotalProfitLoss),
		TotalCommissionText: view.FormatKRW(s.TotalCommission),
		WinRateText:         fmt.Sprintf("%.1f%%", s.WinRate),
		Tone:                view.ToneOf(s.TotalProfitLoss),
	}
}

var csvHeader = []string{
	"order_time", "strategy", "symbol", "side", "quantity", "order_price",
	"executed_price", "status", "profit_loss", "commission",
}

// WriteCSV exports trades, one row per trade
func WriteCSV(w io.Writer, trades []domain.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range trades {
		if err := cw.Write([]string{
			t.OrderTime,
			t.StrategyName,
			t.Symbol,
			t.Side,
			formatFloat(&t.Quantity),
			formatFloat(&t.OrderPrice),
			formatFloat(t.ExecutedPrice),
			string(t.Status),
			formatFloat(t.ProfitLoss),
			formatFloat(&t.Commission),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
