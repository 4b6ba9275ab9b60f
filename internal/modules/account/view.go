package account

import (
	"fmt"

	"github.com/kquant/dashboard/internal/view"
)

// SummaryView is the summary card
type SummaryView struct {
	Summary
	TotalBalanceText      string    `json:"total_balance_text"`
	CashText              string    `json:"cash_balance_text"`
	AvailableText         string    `json:"available_balance_text"`
	StockValueText        string    `json:"stock_value_text"`
	ProfitLossText        string    `json:"total_profit_loss_text"`
	ProfitLossPercentText string    `json:"profit_loss_percent_text"`
	StockWeightText       string    `json:"stock_weight_text"`
	Tone                  view.Tone `json:"tone"`
}

// HoldingRow is one holdings table row
type HoldingRow struct {
	Holding
	AvgPriceText          string    `json:"avg_price_text"`
	CurrentPriceText      string    `json:"current_price_text"`
	MarketValueText       string    `json:"market_value_text"`
	ProfitLossText        string    `json:"profit_loss_text"`
	ProfitLossPercentText string    `json:"profit_loss_percent_text"`
	WeightText            string    `json:"weight_text"`
	Tone                  view.Tone `json:"tone"`
}

// BalanceView is the account page
type BalanceView struct {
	State    view.State   `json:"view"`
	Summary  *SummaryView `json:"summary,omitempty"`
	Holdings []HoldingRow `json:"holdings"`
}

func balanceEmpty(b Balance) bool {
	return b.Summary == nil && len(b.Holdings) == 0
}

// NewSummaryView formats the summary card
func NewSummaryView(s Summary) SummaryView {
	pl, _ := s.ProfitLossPercent.Float64()
	weight, _ := s.StockWeight.Float64()
	return SummaryView{
		Summary:               s,
		TotalBalanceText:      view.FormatKRWDecimal(s.TotalBalance),
		CashText:              view.FormatKRWDecimal(s.Cash),
		AvailableText:         view.FormatKRWDecimal(s.Available),
		StockValueText:        view.FormatKRWDecimal(s.StockValue),
		ProfitLossText:        view.FormatKRWDecimal(s.TotalProfitLoss),
		ProfitLossPercentText: view.FormatPercent(pl),
		StockWeightText:       fmt.Sprintf("%.1f%% 비중", weight),
		Tone:                  view.ToneOf(pl),
	}
}

// View builds the account page
func (c *BalanceController) View() BalanceView {
	snap := c.Snapshot()
	v := BalanceView{
		State:    view.Resolve(snap, balanceEmpty),
		Holdings: []HoldingRow{},
	}
	if snap.Data == nil {
		return v
	}

	if s := snap.Data.Summary; s != nil {
		summary := NewSummaryView(*s)
		v.Summary = &summary
	}

	for _, h := range snap.Data.Holdings {
		pl, _ := h.ProfitLossPercent.Float64()
		weight, _ := h.Weight.Float64()
		v.Holdings = append(v.Holdings, HoldingRow{
			Holding:               h,
			AvgPriceText:          view.FormatKRWDecimal(h.AvgPrice),
			CurrentPriceText:      view.FormatKRWDecimal(h.CurrentPrice),
			MarketValueText:       view.FormatKRWDecimal(h.MarketValue),
			ProfitLossText:        view.FormatKRWDecimal(h.ProfitLoss),
			ProfitLossPercentText: view.FormatPercent(pl),
			WeightText:            fmt.Sprintf("%.2f%%", weight),
			Tone:                  view.ToneOf(pl),
		})
	}
	return v
}
