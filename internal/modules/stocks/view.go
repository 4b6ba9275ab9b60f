package stocks

import (
	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/view"
)

// Membership reports watchlist membership for row badges
type Membership interface {
	Contains(symbol string) bool
}

// Row is one stock as rendered in a list
type Row struct {
	domain.Stock
	MarketCapText string `json:"market_cap_text"`
	InWatchlist   bool   `json:"in_watchlist"`
}

// NewRow formats a stock for display. members may be nil.
func NewRow(s domain.Stock, members Membership) Row {
	row := Row{
		Stock:         s,
		MarketCapText: view.FormatMarketCap(s.MarketCap),
	}
	if members != nil {
		row.InWatchlist = members.Contains(s.Symbol)
	}
	return row
}

func rows(stocks []domain.Stock, members Membership) []Row {
	out := make([]Row, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, NewRow(s, members))
	}
	return out
}

func stocksEmpty(l domain.StockList) bool {
	return len(l.Stocks) == 0
}

// ListView is the stock list page
type ListView struct {
	State   view.State           `json:"view"`
	Filter  Filter               `json:"filter"`
	Query   string               `json:"query,omitempty"`
	Stocks  []Row                `json:"stocks"`
	Total   int                  `json:"total"`
	Page    *view.PageView       `json:"page,omitempty"`
	Options *domain.StockFilters `json:"filter_options,omitempty"`
}

// View builds the list view. Search results are not paged.
func (c *ListController) View(members Membership) ListView {
	snap := c.Snapshot()
	d, _ := c.Deps()

	v := ListView{
		State:  view.Resolve(snap, stocksEmpty),
		Filter: d.Filter,
		Query:  c.Query(),
		Stocks: []Row{},
	}
	if fs := c.FiltersSnapshot(); fs.Data != nil {
		v.Options = fs.Data
	}
	if snap.Data == nil {
		return v
	}

	v.Stocks = rows(snap.Data.Stocks, members)
	v.Total = snap.Data.Total
	if v.Query == "" {
		page := view.NewPage(d.Page, c.pageSize, snap.Data.Total).View()
		v.Page = &page
	}
	return v
}

// SearchBoxView is the search box dropdown
type SearchBoxView struct {
	State   view.State `json:"view"`
	Query   string     `json:"query"`
	Pending bool       `json:"pending"`
	Results []Row      `json:"results"`
	Total   int        `json:"total"`
}

// View builds the dropdown view
func (s *SearchBox) View(members Membership) SearchBoxView {
	snap := s.Snapshot()
	v := SearchBoxView{
		State:   view.Resolve(snap, stocksEmpty),
		Query:   s.Query(),
		Pending: s.Pending(),
		Results: []Row{},
	}
	if snap.Data != nil {
		v.Results = rows(snap.Data.Stocks, members)
		v.Total = snap.Data.Total
	}
	return v
}
