// Package backtest runs the backtest form, the history list and the
// result view. A result that is still pending or running is polled until
// the backend reports it completed or failed.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/events"
	"github.com/kquant/dashboard/internal/fetchstate"
	"github.com/rs/zerolog"
)

// DefaultPageSize of the history list
const DefaultPageSize = 10

// Backend is the part of the resource client the backtest views use
type Backend interface {
	RunBacktest(ctx context.Context, cfg domain.BacktestConfig) (*domain.BacktestResult, error)
	GetBacktest(ctx context.Context, id int64) (*domain.BacktestResult, error)
	BacktestHistory(ctx context.Context, page, pageSize int) (*domain.BacktestHistory, error)
	BacktestTrades(ctx context.Context, id int64) ([]domain.BacktestTrade, error)
}

// DefaultConfig prefills the run form
func DefaultConfig() domain.BacktestConfig {
	return domain.BacktestConfig{
		InitialCapital: 10000000,
		CommissionRate: 0.00015,
		SlippageRate:   0.0001,
	}
}

// ValidateConfig checks the run form, including the date order
func ValidateConfig(cfg domain.BacktestConfig) error {
	if err := domain.Validate(cfg); err != nil {
		return err
	}
	start, _ := time.Parse("2006-01-02", cfg.StartDate)
	end, _ := time.Parse("2006-01-02", cfg.EndDate)
	if !end.After(start) {
		return &domain.ValidationError{Fields: map[string]string{
			"end_date": "종료일은 시작일 이후여야 합니다",
		}}
	}
	return nil
}

// HistoryController holds the paged history of past runs
type HistoryController struct {
	backend  Backend
	log      zerolog.Logger
	pageSize int

	history *fetchstate.Controller[int, domain.BacktestHistory]
}

// NewHistoryController creates an unmounted history controller
func NewHistoryController(b Backend, pageSize int, em *events.Manager, log zerolog.Logger) *HistoryController {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	c := &HistoryController{
		backend:  b,
		log:      log.With().Str("component", "backtest_history").Logger(),
		pageSize: pageSize,
	}
	c.history = fetchstate.New(func(ctx context.Context, page int) (domain.BacktestHistory, error) {
		h, err := b.BacktestHistory(ctx, page, c.pageSize)
		if err != nil {
			return domain.BacktestHistory{}, err
		}
		return *h, nil
	}, fetchstate.Options{
		Name:     "backtest.history",
		Policy:   fetchstate.ErrorClearsData,
		Log:      log,
		OnChange: em.TransitionHook("backtest"),
	})
	return c
}

// Load mounts the history at a page
func (c *HistoryController) Load(page int) error {
	if page < 1 {
		page = 1
	}
	_, err := c.history.SetDeps(page)
	return err
}

// Page returns the current page, 0 when unmounted
func (c *HistoryController) Page() int {
	page, _ := c.history.Deps()
	return page
}

// Refresh re-fetches the current page
func (c *HistoryController) Refresh() error {
	return c.history.Refresh()
}

// Run validates and submits a backtest, then re-fetches the history
func (c *HistoryController) Run(ctx context.Context, cfg domain.BacktestConfig) (*domain.BacktestResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	var result *domain.BacktestResult
	err := c.history.Mutate(ctx, func(ctx context.Context) error {
		var err error
		result, err = c.backend.RunBacktest(ctx, cfg)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("run backtest: %w", err)
	}

	c.log.Info().
		Int64("backtest_id", result.ID).
		Int64("strategy_id", cfg.StrategyID).
		Str("status", string(result.Status)).
		Msg("Backtest submitted")
	return result, nil
}

// Snapshot returns the history state
func (c *HistoryController) Snapshot() fetchstate.Snapshot[domain.BacktestHistory] {
	return c.history.Snapshot()
}

// Await waits for the history to settle
func (c *HistoryController) Await(ctx context.Context) error {
	_, err := c.history.Await(ctx)
	return err
}

// Close unmounts the view
func (c *HistoryController) Close() {
	c.history.Close()
}
