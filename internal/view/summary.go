package view

import (
	"github.com/kquant/dashboard/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TradeSummary aggregates completed trades of the visible page
type TradeSummary struct {
	CompletedTrades int     `json:"completed_trades"`
	TotalProfitLoss float64 `json:"total_profit_loss"`
	TotalCommission float64 `json:"total_commission"`
	WinRate         float64 `json:"win_rate"`
	AvgProfitLoss   float64 `json:"avg_profit_loss"`
}

// SummarizeTrades computes totals over completed trades only. Win rate
// counts trades with a realized profit/loss.
func SummarizeTrades(trades []domain.Trade) TradeSummary {
	var (
		s           TradeSummary
		realized    []float64
		commissions []float64
		wins        int
	)
	for _, t := range trades {
		if t.Status != domain.TradeCompleted {
			continue
		}
		s.CompletedTrades++
		commissions = append(commissions, t.Commission)
		if t.ProfitLoss != nil {
			realized = append(realized, *t.ProfitLoss)
			if *t.ProfitLoss > 0 {
				wins++
			}
		}
	}

	s.TotalCommission = floats.Sum(commissions)
	if len(realized) > 0 {
		s.TotalProfitLoss = floats.Sum(realized)
		s.AvgProfitLoss = stat.Mean(realized, nil)
		s.WinRate = float64(wins) / float64(len(realized)) * 100
	}
	return s
}
