package market

import (
	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/view"
)

// TablePageSize is the number of rows per page of the data table
const TablePageSize = 10

// Moving-average overlays drawn on the chart
var overlayPeriods = []int{5, 20}

// Range is the chart's y-axis
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Overlay is one moving-average line aligned with the series
type Overlay struct {
	Period int        `json:"period"`
	Values []*float64 `json:"values"`
}

// Table is one page of the latest-first data table
type Table struct {
	Rows []view.TableRow `json:"rows"`
	Page view.PageView   `json:"page"`
}

// PriceView is the current price panel
type PriceView struct {
	State      view.State    `json:"view"`
	Price      *domain.Price `json:"price,omitempty"`
	PriceText  string        `json:"price_text,omitempty"`
	ChangeText string        `json:"change_text,omitempty"`
	Tone       view.Tone     `json:"tone,omitempty"`
	Stale      bool          `json:"stale"`
}

// View is everything the market page renders
type View struct {
	State       view.State            `json:"view"`
	Symbol      string                `json:"symbol"`
	Interval    domain.Interval       `json:"interval"`
	Days        int                   `json:"days"`
	Series      []domain.OHLCV        `json:"series"`
	Range       Range                 `json:"range"`
	Overlays    []Overlay             `json:"overlays"`
	Table       Table                 `json:"table"`
	Price       PriceView             `json:"price"`
	LastCollect *domain.CollectResult `json:"last_collect,omitempty"`
}

func seriesEmpty(s domain.ChartSeries) bool {
	return len(s.Data) == 0
}

// View builds the market view. tablePage selects the data table page.
func (c *Controller) View(tablePage int) View {
	chart := c.ChartSnapshot()
	d, _ := c.Deps()

	v := View{
		State:       view.Resolve(chart, seriesEmpty),
		Symbol:      d.Symbol,
		Interval:    d.Interval,
		Days:        d.Days,
		Series:      []domain.OHLCV{},
		Overlays:    []Overlay{},
		Price:       c.priceView(),
		LastCollect: c.LastCollect(),
	}
	v.Range.Min, v.Range.Max = view.PriceRange(nil)
	v.Table.Rows = []view.TableRow{}

	if v.State.Kind != view.KindContent {
		return v
	}

	series := chart.Data.Data
	v.Series = series
	v.Range.Min, v.Range.Max = view.PriceRange(series)
	for _, period := range overlayPeriods {
		v.Overlays = append(v.Overlays, Overlay{Period: period, Values: view.MovingAverage(series, period)})
	}

	latest := view.LatestFirst(series)
	page := view.NewPage(tablePage, TablePageSize, len(latest))
	v.Table = Table{
		Rows: view.Rows(view.Paginate(latest, page.Current, TablePageSize), d.Interval.IsDaily()),
		Page: page.View(),
	}
	return v
}

func (c *Controller) priceView() PriceView {
	snap := c.PriceSnapshot()
	pv := PriceView{
		State: view.Resolve(snap, nil),
		Stale: snap.LastErr != nil,
	}
	if snap.Data == nil {
		return pv
	}
	p := *snap.Data
	pv.Price = &p
	pv.PriceText = view.FormatWon(p.Price)
	pv.ChangeText = view.FormatPercent(p.ChangePercent)
	pv.Tone = view.ToneOf(p.Change)
	return pv
}
