// Package trades runs the trade history view with its page summary.
package trades

import (
	"context"
	"strings"
	"time"

	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/events"
	"github.com/kquant/dashboard/internal/fetchstate"
	"github.com/rs/zerolog"
)

// DefaultPageSize of the trade history
const DefaultPageSize = 20

const dateLayout = "2006-01-02"

// Backend is the part of the resource client the trade history uses
type Backend interface {
	Trades(ctx context.Context, q domain.TradeQuery) (*domain.TradeList, error)
}

// Filter is the server-side trade filter. Empty fields do not filter.
type Filter struct {
	Symbol   string             `json:"symbol"`
	Status   domain.TradeStatus `json:"status"`
	DateFrom string             `json:"date_from"`
	DateTo   string             `json:"date_to"`
}

// NewFilter validates raw filter values
func NewFilter(symbol, status, from, to string) (Filter, error) {
	f := Filter{
		Symbol:   strings.TrimSpace(symbol),
		Status:   domain.TradeStatus(strings.ToLower(strings.TrimSpace(status))),
		DateFrom: strings.TrimSpace(from),
		DateTo:   strings.TrimSpace(to),
	}
	fields := map[string]string{}

	switch f.Status {
	case "", domain.TradeCompleted, domain.TradePending, domain.TradeCancelled, domain.TradeFailed:
	default:
		fields["status"] = "다음 중 하나여야 합니다: completed pending cancelled failed"
	}

	var fromT, toT time.Time
	var err error
	if f.DateFrom != "" {
		if fromT, err = time.Parse(dateLayout, f.DateFrom); err != nil {
			fields["date_from"] = "날짜 형식: YYYY-MM-DD"
		}
	}
	if f.DateTo != "" {
		if toT, err = time.Parse(dateLayout, f.DateTo); err != nil {
			fields["date_to"] = "날짜 형식: YYYY-MM-DD"
		}
	}
	if !fromT.IsZero() && !toT.IsZero() && toT.Before(fromT) {
		fields["date_to"] = "종료일은 시작일 이후여야 합니다"
	}

	if len(fields) > 0 {
		return Filter{}, &domain.ValidationError{Fields: fields}
	}
	return f, nil
}

// Deps is the history's dependency tuple
type Deps struct {
	Filter Filter
	Page   int
}

// Controller holds the trade history view
type Controller struct {
	backend  Backend
	pageSize int
	trades   *fetchstate.Controller[Deps, domain.TradeList]
}

// NewController creates an unmounted trade history controller
func NewController(b Backend, pageSize int, em *events.Manager, log zerolog.Logger) *Controller {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	c := &Controller{backend: b, pageSize: pageSize}
	c.trades = fetchstate.New(c.fetch, fetchstate.Options{
		Name:     "trades.history",
		Policy:   fetchstate.ErrorClearsData,
		Log:      log,
		OnChange: em.TransitionHook("trades"),
	})
	return c
}

func (c *Controller) fetch(ctx context.Context, d Deps) (domain.TradeList, error) {
	list, err := c.backend.Trades(ctx, domain.TradeQuery{
		Page:     d.Page,
		PageSize: c.pageSize,
		Symbol:   d.Filter.Symbol,
		Status:   d.Filter.Status,
		DateFrom: d.Filter.DateFrom,
		DateTo:   d.Filter.DateTo,
	})
	if err != nil {
		return domain.TradeList{}, err
	}
	return *list, nil
}

// Load mounts the history. A filter change goes back to page 1.
func (c *Controller) Load(filter Filter, page int) error {
	if page < 1 {
		page = 1
	}
	if current, mounted := c.trades.Deps(); mounted && current.Filter != filter {
		page = 1
	}
	_, err := c.trades.SetDeps(Deps{Filter: filter, Page: page})
	return err
}

// Deps returns the current dependency tuple
func (c *Controller) Deps() (Deps, bool) {
	return c.trades.Deps()
}

// Refresh re-fetches the current page
func (c *Controller) Refresh() error {
	return c.trades.Refresh()
}

// Snapshot returns the history state
func (c *Controller) Snapshot() fetchstate.Snapshot[domain.TradeList] {
	return c.trades.Snapshot()
}

// Await waits for the history to settle
func (c *Controller) Await(ctx context.Context) error {
	_, err := c.trades.Await(ctx)
	return err
}

// Close unmounts the view
func (c *Controller) Close() {
	c.trades.Close()
}
