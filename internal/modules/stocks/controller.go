// Package stocks runs the stock list, the search-as-you-type box and the
// cached stock reference lookups.
package stocks

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/events"
	"github.com/kquant/dashboard/internal/fetchstate"
	"github.com/rs/zerolog"
)

const (
	// DefaultPageSize of the stock list
	DefaultPageSize = 50

	// SearchLimit caps list searches
	SearchLimit = 50

	filterAll = "ALL"
)

// ErrNoSymbol is returned when a lookup has no symbol
var ErrNoSymbol = errors.New("no symbol")

// Backend is the part of the resource client the stock views use
type Backend interface {
	SearchStocks(ctx context.Context, s domain.StockSearch) (*domain.StockList, error)
	ListStocks(ctx context.Context, q domain.StockQuery) (*domain.StockList, error)
	GetStock(ctx context.Context, symbol string) (*domain.Stock, error)
	StockFilters(ctx context.Context) (*domain.StockFilters, error)
}

// Filter is the server-side filter and sort of the stock list
type Filter struct {
	MarketType domain.MarketType `json:"market_type"`
	Sector     string            `json:"sector"`
	Industry   string            `json:"industry"`
	Dept       string            `json:"dept"`
	SortBy     domain.SortKey    `json:"sort_by"`
	SortOrder  domain.SortOrder  `json:"sort_order"`
}

// DefaultFilter lists every market by market cap, largest first
func DefaultFilter() Filter {
	return Filter{
		MarketType: domain.MarketAll,
		Sector:     filterAll,
		Industry:   filterAll,
		Dept:       filterAll,
		SortBy:     domain.SortMarketCap,
		SortOrder:  domain.SortDesc,
	}
}

// NewFilter validates raw filter values. Empty values take the defaults.
func NewFilter(market, sector, industry, dept, sortBy, sortOrder string) (Filter, error) {
	f := DefaultFilter()
	fields := map[string]string{}

	m, err := domain.ParseMarketType(strings.ToUpper(strings.TrimSpace(market)))
	if err != nil {
		fields["market_type"] = "다음 중 하나여야 합니다: ALL KOSPI KOSDAQ"
	} else {
		f.MarketType = m
	}

	if s := strings.TrimSpace(sector); s != "" {
		f.Sector = s
	}
	if s := strings.TrimSpace(industry); s != "" {
		f.Industry = s
	}
	if s := strings.TrimSpace(dept); s != "" {
		f.Dept = s
	}

	switch k := domain.SortKey(sortBy); k {
	case "":
	case domain.SortMarketCap, domain.SortName, domain.SortSymbol:
		f.SortBy = k
	default:
		fields["sort_by"] = "다음 중 하나여야 합니다: market_cap name symbol"
	}

	switch o := domain.SortOrder(sortOrder); o {
	case "":
	case domain.SortAsc, domain.SortDesc:
		f.SortOrder = o
	default:
		fields["sort_order"] = "다음 중 하나여야 합니다: asc desc"
	}

	if len(fields) > 0 {
		return Filter{}, &domain.ValidationError{Fields: fields}
	}
	return f, nil
}

// query maps the filter onto the wire. ALL means no filter.
func (f Filter) query(skip, limit int) domain.StockQuery {
	return domain.StockQuery{
		MarketType: domain.MarketType(unlessAll(string(f.MarketType))),
		Sector:     unlessAll(f.Sector),
		Industry:   unlessAll(f.Industry),
		Dept:       unlessAll(f.Dept),
		SortBy:     f.SortBy,
		SortOrder:  f.SortOrder,
		Skip:       skip,
		Limit:      limit,
	}
}

func unlessAll(v string) string {
	if v == filterAll {
		return ""
	}
	return v
}

// ListDeps is the list's dependency tuple
type ListDeps struct {
	Filter Filter
	Page   int
}

// ListController holds the stock list view
type ListController struct {
	backend  Backend
	ref      *Reference
	log      zerolog.Logger
	pageSize int

	list    *fetchstate.Controller[ListDeps, domain.StockList]
	filters *fetchstate.Controller[struct{}, domain.StockFilters]

	mu    sync.Mutex
	query string
}

// NewListController creates an unmounted stock list controller
func NewListController(b Backend, ref *Reference, pageSize int, em *events.Manager, log zerolog.Logger) *ListController {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	c := &ListController{
		backend:  b,
		ref:      ref,
		log:      log.With().Str("component", "stocks").Logger(),
		pageSize: pageSize,
	}
	c.list = fetchstate.New(c.fetch, fetchstate.Options{
		Name:     "stocks.list",
		Policy:   fetchstate.ErrorClearsData,
		Log:      log,
		OnChange: em.TransitionHook("stocks"),
	})
	c.filters = fetchstate.New(func(ctx context.Context, _ struct{}) (domain.StockFilters, error) {
		f, err := ref.Filters(ctx)
		if err != nil {
			return domain.StockFilters{}, err
		}
		return *f, nil
	}, fetchstate.Options{
		Name:     "stocks.filters",
		Policy:   fetchstate.ErrorRetainsData,
		Log:      log,
		OnChange: em.TransitionHook("stocks"),
	})
	return c
}

func (c *ListController) fetch(ctx context.Context, d ListDeps) (domain.StockList, error) {
	skip := (d.Page - 1) * c.pageSize
	list, err := c.backend.ListStocks(ctx, d.Filter.query(skip, c.pageSize))
	if err != nil {
		return domain.StockList{}, err
	}
	return *list, nil
}

// Load mounts the list or moves it. Any filter or sort change goes back to
// page 1. A pending search is dropped in favor of the list.
func (c *ListController) Load(filter Filter, page int) error {
	if page < 1 {
		page = 1
	}
	if current, mounted := c.list.Deps(); mounted && current.Filter != filter {
		page = 1
	}

	// Filter options load once per mount
	if _, err := c.filters.SetDeps(struct{}{}); err != nil {
		return err
	}

	changed, err := c.list.SetDeps(ListDeps{Filter: filter, Page: page})
	if err != nil {
		return err
	}
	if c.clearQuery() && !changed {
		return c.list.Refresh()
	}
	return nil
}

// Search runs a one-shot search into the list slot. An empty query goes
// back to the filtered list.
func (c *ListController) Search(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		c.clearQuery()
		return c.list.Refresh()
	}

	d, mounted := c.list.Deps()
	if !mounted {
		d = ListDeps{Filter: DefaultFilter(), Page: 1}
	}
	search := domain.StockSearch{
		Query:      query,
		MarketType: d.Filter.MarketType,
		Limit:      SearchLimit,
	}
	if err := domain.Validate(search); err != nil {
		return err
	}
	search.MarketType = domain.MarketType(unlessAll(string(search.MarketType)))

	c.mu.Lock()
	c.query = query
	c.mu.Unlock()

	return c.list.Search(func(ctx context.Context) (domain.StockList, error) {
		list, err := c.backend.SearchStocks(ctx, search)
		if err != nil {
			return domain.StockList{}, err
		}
		return *list, nil
	})
}

// Query returns the active search query, empty when showing the list
func (c *ListController) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

func (c *ListController) clearQuery() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	had := c.query != ""
	c.query = ""
	return had
}

// Deps returns the current dependency tuple
func (c *ListController) Deps() (ListDeps, bool) {
	return c.list.Deps()
}

// Refresh re-runs the list fetch and drops any search
func (c *ListController) Refresh() error {
	c.clearQuery()
	return c.list.Refresh()
}

// Snapshot returns the list state
func (c *ListController) Snapshot() fetchstate.Snapshot[domain.StockList] {
	return c.list.Snapshot()
}

// FiltersSnapshot returns the filter options state
func (c *ListController) FiltersSnapshot() fetchstate.Snapshot[domain.StockFilters] {
	return c.filters.Snapshot()
}

// Await waits for the list and filter options to settle
func (c *ListController) Await(ctx context.Context) error {
	if _, err := c.filters.Await(ctx); err != nil {
		return err
	}
	_, err := c.list.Await(ctx)
	return err
}

// Close unmounts the view
func (c *ListController) Close() {
	c.list.Close()
	c.filters.Close()
}
