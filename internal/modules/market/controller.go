// Package market runs the market view: a chart series keyed by
// (symbol, interval, days), the current price ticking in the background,
// and on-demand data collection.
package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/events"
	"github.com/kquant/dashboard/internal/fetchstate"
	"github.com/rs/zerolog"
)

const (
	DefaultInterval = domain.Interval1d
	DefaultDays     = 30
	MaxDays         = 365
)

// ErrNoSymbol is returned by operations that need a selected symbol
var ErrNoSymbol = errors.New("no symbol selected")

// Backend is the part of the resource client the market view uses
type Backend interface {
	Chart(ctx context.Context, symbol string, interval domain.Interval, days int) (*domain.ChartSeries, error)
	Price(ctx context.Context, symbol string) (*domain.Price, error)
	CollectDaily(ctx context.Context, symbol string) (*domain.CollectResult, error)
	CollectMinute(ctx context.Context, symbol string, interval domain.Interval) (*domain.CollectResult, error)
}

// Deps is the chart's dependency tuple
type Deps struct {
	Symbol   string
	Interval domain.Interval
	Days     int
}

// NewDeps normalizes and validates a request. Empty interval and zero days
// take the defaults; days outside 1..365 fall back to the default.
func NewDeps(symbol, interval string, days int) (Deps, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Deps{}, ErrNoSymbol
	}
	iv := DefaultInterval
	if interval != "" {
		parsed, err := domain.ParseInterval(interval)
		if err != nil {
			return Deps{}, &domain.ValidationError{Fields: map[string]string{"interval": "지원하지 않는 시간 간격입니다"}}
		}
		iv = parsed
	}
	if days < 1 || days > MaxDays {
		days = DefaultDays
	}
	return Deps{Symbol: symbol, Interval: iv, Days: days}, nil
}

// Controller holds the market view state
type Controller struct {
	backend Backend
	events  *events.Manager
	log     zerolog.Logger

	chart *fetchstate.Controller[Deps, domain.ChartSeries]
	price *fetchstate.Controller[string, domain.Price]

	mu          sync.Mutex
	lastCollect *domain.CollectResult
}

// NewController creates an unmounted market controller
func NewController(b Backend, em *events.Manager, log zerolog.Logger) *Controller {
	c := &Controller{
		backend: b,
		events:  em,
		log:     log.With().Str("component", "market").Logger(),
	}
	c.chart = fetchstate.New(c.fetchChart, fetchstate.Options{
		Name:     "market.chart",
		Policy:   fetchstate.ErrorClearsData,
		Log:      log,
		OnChange: em.TransitionHook("market"),
	})
	c.price = fetchstate.New(c.fetchPrice, fetchstate.Options{
		Name:     "market.price",
		Policy:   fetchstate.ErrorRetainsData,
		Log:      log,
		OnChange: em.TransitionHook("market"),
	})
	return c
}

func (c *Controller) fetchChart(ctx context.Context, d Deps) (domain.ChartSeries, error) {
	series, err := c.backend.Chart(ctx, d.Symbol, d.Interval, d.Days)
	if err != nil {
		return domain.ChartSeries{}, err
	}
	return *series, nil
}

func (c *Controller) fetchPrice(ctx context.Context, symbol string) (domain.Price, error) {
	p, err := c.backend.Price(ctx, symbol)
	if err != nil {
		return domain.Price{}, err
	}
	if p.Symbol == "" {
		p.Symbol = symbol
	}
	c.events.EmitTyped("market", &events.PriceTickedData{
		Symbol:        p.Symbol,
		Price:         p.Price,
		Change:        p.Change,
		ChangePercent: p.ChangePercent,
		Volume:        p.Volume,
		Timestamp:     p.Timestamp,
	})
	return *p, nil
}

// Load mounts the view or changes its dependencies. The price only
// reloads when the symbol changes.
func (c *Controller) Load(d Deps) error {
	if _, err := c.chart.SetDeps(d); err != nil {
		return err
	}
	if _, err := c.price.SetDeps(d.Symbol); err != nil {
		return err
	}
	return nil
}

// Deps returns the mounted dependency tuple
func (c *Controller) Deps() (Deps, bool) {
	return c.chart.Deps()
}

// Refresh re-runs both fetches
func (c *Controller) Refresh() error {
	if err := c.chart.Refresh(); err != nil {
		return err
	}
	return c.price.Refresh()
}

// RefreshPrice re-fetches only the current price. Failures keep the last price.
func (c *Controller) RefreshPrice() error {
	return c.price.Refresh()
}

// Collect asks the backend to collect data for the current symbol, daily
// or minute by interval, then re-fetches the chart.
func (c *Controller) Collect(ctx context.Context) (*domain.CollectResult, error) {
	d, mounted := c.chart.Deps()
	if !mounted {
		return nil, ErrNoSymbol
	}

	var result *domain.CollectResult
	err := c.chart.Mutate(ctx, func(ctx context.Context) error {
		var err error
		if d.Interval.IsDaily() {
			result, err = c.backend.CollectDaily(ctx, d.Symbol)
		} else {
			result, err = c.backend.CollectMinute(ctx, d.Symbol, d.Interval)
		}
		if err != nil {
			return fmt.Errorf("collect %s %s: %w", d.Symbol, d.Interval, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.lastCollect = result
	c.mu.Unlock()

	c.log.Info().
		Str("symbol", d.Symbol).
		Str("interval", string(d.Interval)).
		Int("total", result.Total).
		Msg("Collected market data")
	c.events.EmitTyped("market", &events.CollectCompletedData{
		Symbol:   d.Symbol,
		Interval: string(d.Interval),
		Total:    result.Total,
	})
	return result, nil
}

// LastCollect returns the last successful collection report
func (c *Controller) LastCollect() *domain.CollectResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCollect
}

// ChartSnapshot returns the chart state
func (c *Controller) ChartSnapshot() fetchstate.Snapshot[domain.ChartSeries] {
	return c.chart.Snapshot()
}

// PriceSnapshot returns the price state
func (c *Controller) PriceSnapshot() fetchstate.Snapshot[domain.Price] {
	return c.price.Snapshot()
}

// Await waits for both slots to settle
func (c *Controller) Await(ctx context.Context) error {
	if _, err := c.chart.Await(ctx); err != nil {
		return err
	}
	_, err := c.price.Await(ctx)
	return err
}

// Close unmounts the view
func (c *Controller) Close() {
	c.chart.Close()
	c.price.Close()
}
