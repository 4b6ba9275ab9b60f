package backtest

import (
	"fmt"

	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/view"
)

// ResultRow is a result with its display values. Metric texts are set
// only for completed runs.
type ResultRow struct {
	domain.BacktestResult
	StatusLabel        string    `json:"status_label"`
	HasMetrics         bool      `json:"has_metrics"`
	InitialCapitalText string    `json:"initial_capital_text"`
	CommissionText     string    `json:"commission_rate_text"`
	SlippageText       string    `json:"slippage_rate_text"`
	TotalReturnText    string    `json:"total_return_text,omitempty"`
	ReturnPercentText  string    `json:"total_return_percent_text,omitempty"`
	AnnualizedText     string    `json:"annualized_return_text,omitempty"`
	SharpeText         string    `json:"sharpe_ratio_text,omitempty"`
	MaxDrawdownText    string    `json:"max_drawdown_text,omitempty"`
	WinRateText        string    `json:"win_rate_text,omitempty"`
	Tone               view.Tone `json:"tone,omitempty"`
}

// NewResultRow formats a result for display
func NewResultRow(r domain.BacktestResult) ResultRow {
	row := ResultRow{
		BacktestResult:     r,
		StatusLabel:        r.Status.Label(),
		HasMetrics:         r.HasMetrics(),
		InitialCapitalText: view.FormatKRW(r.Config.InitialCapital),
		CommissionText:     fmt.Sprintf("%.3f%%", r.Config.CommissionRate*100),
		SlippageText:       fmt.Sprintf("%.3f%%", r.Config.SlippageRate*100),
	}
	if !row.HasMetrics {
		// Metrics of an unfinished or failed run are never shown
		row.BacktestMetrics = domain.BacktestMetrics{}
		return row
	}

	m := r.BacktestMetrics
	if m.TotalReturn != nil {
		row.TotalReturnText = view.FormatKRW(*m.TotalReturn)
	}
	if m.TotalReturnPercent != nil {
		row.ReturnPercentText = fmt.Sprintf("%.2f%%", *m.TotalReturnPercent)
		row.Tone = view.ToneOf(*m.TotalReturnPercent)
	}
	if m.AnnualizedReturn != nil {
		row.AnnualizedText = fmt.Sprintf("%.2f%%", *m.AnnualizedReturn)
	}
	if m.SharpeRatio != nil {
		row.SharpeText = fmt.Sprintf("%.2f", *m.SharpeRatio)
	}
	if m.MaxDrawdown != nil {
		row.MaxDrawdownText = fmt.Sprintf("%.2f%%", *m.MaxDrawdown)
	}
	if m.WinRate != nil {
		row.WinRateText = fmt.Sprintf("%.1f%%", *m.WinRate)
	}
	return row
}

// TradeRow is one simulated fill
type TradeRow struct {
	domain.BacktestTrade
	PriceText      string    `json:"price_text"`
	ProfitLossText string    `json:"profit_loss_text"`
	ReturnText     string    `json:"profit_loss_percent_text,omitempty"`
	Tone           view.Tone `json:"tone"`
	ExecutedText   string    `json:"executed_at_text"`
}

func newTradeRow(t domain.BacktestTrade) TradeRow {
	row := TradeRow{
		BacktestTrade:  t,
		PriceText:      view.FormatKRW(t.Price),
		ProfitLossText: "-",
		Tone:           view.ToneFlat,
		ExecutedText:   view.FormatTimestamp(t.ExecutedAt, false),
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

// HistoryView is the history list
type HistoryView struct {
	State   view.State            `json:"view"`
	Results []ResultRow           `json:"results"`
	Page    view.PageView         `json:"page"`
	Default domain.BacktestConfig `json:"default_config"`
}

// View builds the history list
func (c *HistoryController) View() HistoryView {
	snap := c.Snapshot()
	v := HistoryView{
		State:   view.Resolve(snap, func(h domain.BacktestHistory) bool { return len(h.Results) == 0 }),
		Results: []ResultRow{},
		Page:    view.NewPage(c.Page(), c.pageSize, 0).View(),
		Default: DefaultConfig(),
	}
	if snap.Data == nil {
		return v
	}
	for _, r := range snap.Data.Results {
		v.Results = append(v.Results, NewResultRow(r))
	}
	v.Page = view.NewPage(c.Page(), c.pageSize, snap.Data.Total).View()
	return v
}

// ResultView is one result page
type ResultView struct {
	State       view.State `json:"view"`
	Result      *ResultRow `json:"result,omitempty"`
	Polling     bool       `json:"polling"`
	TradesState view.State `json:"trades_view"`
	Trades      []TradeRow `json:"trades"`
}

// View builds the result page
func (c *ResultController) View() ResultView {
	snap := c.Snapshot()
	trades := c.TradesSnapshot()

	v := ResultView{
		State:       view.Resolve(snap, nil),
		Polling:     c.Polling(),
		TradesState: view.Resolve(trades, func(t []domain.BacktestTrade) bool { return len(t) == 0 }),
		Trades:      []TradeRow{},
	}
	if snap.Data != nil {
		row := NewResultRow(*snap.Data)
		v.Result = &row
	}
	if trades.Data != nil {
		for _, t := range *trades.Data {
			v.Trades = append(v.Trades, newTradeRow(t))
		}
	}
	return v
}
