package strategies

import (
	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/view"
)

// Row is one strategy as rendered in the list or detail view
type Row struct {
	domain.Strategy
	Parameters  map[string]interface{} `json:"parameters"`
	TypeLabel   string                 `json:"type_label"`
	StatusLabel string                 `json:"status_label"`
	ReturnText  string                 `json:"return_text,omitempty"`
	ReturnTone  view.Tone              `json:"return_tone,omitempty"`
	ProfitText  string                 `json:"profit_text,omitempty"`
	CanActivate bool                   `json:"can_activate"`
}

// NewRow formats a strategy for display
func NewRow(s domain.Strategy) Row {
	row := Row{
		Strategy:    s,
		Parameters:  map[string]interface{}{},
		TypeLabel:   s.Type.Label(),
		StatusLabel: s.Status.Label(),
		CanActivate: s.Status == domain.StatusInactive,
	}
	if s.Parameters != nil {
		row.Parameters = s.Parameters.Map()
	}
	if s.ProfitLossPercent != nil {
		row.ReturnText = view.FormatPercent(*s.ProfitLossPercent)
		row.ReturnTone = view.ToneOf(*s.ProfitLossPercent)
	}
	if s.TotalProfitLoss != nil {
		row.ProfitText = view.FormatKRW(*s.TotalProfitLoss)
	}
	return row
}

// ListView is the strategy list page
type ListView struct {
	State      view.State            `json:"view"`
	Status     domain.StrategyStatus `json:"status_filter"`
	Strategies []Row                 `json:"strategies"`
	Page       view.PageView         `json:"page"`
	Execution  *domain.ExecuteResult `json:"execution,omitempty"`
}

func listEmpty(l domain.StrategyList) bool {
	return len(l.Strategies) == 0
}

// View builds the list view
func (c *ListController) View() ListView {
	snap := c.Snapshot()
	d, _ := c.Deps()

	v := ListView{
		State:      view.Resolve(snap, listEmpty),
		Status:     d.Status,
		Strategies: []Row{},
		Page:       view.NewPage(d.Page, c.pageSize, 0).View(),
		Execution:  c.LastExecution(),
	}
	if snap.Data == nil {
		return v
	}
	for _, s := range snap.Data.Strategies {
		v.Strategies = append(v.Strategies, NewRow(s))
	}
	v.Page = view.NewPage(d.Page, c.pageSize, snap.Data.Total).View()
	return v
}

// DetailView is the strategy detail page
type DetailView struct {
	State     view.State            `json:"view"`
	Strategy  *Row                  `json:"strategy,omitempty"`
	Execution *domain.ExecuteResult `json:"execution,omitempty"`
}

// View builds the detail view
func (c *DetailController) View() DetailView {
	snap := c.Snapshot()
	v := DetailView{
		State:     view.Resolve(snap, nil),
		Execution: c.LastExecution(),
	}
	if snap.Data != nil {
		row := NewRow(*snap.Data)
		v.Strategy = &row
	}
	return v
}
