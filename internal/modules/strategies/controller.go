// Package strategies runs the strategy list and detail views. Status
// changes are requested from the backend and then re-fetched; the local
// copy is never flipped optimistically.
package strategies

import (
	"context"
	"fmt"
	"sync"

	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/events"
	"github.com/kquant/dashboard/internal/fetchstate"
	"github.com/rs/zerolog"
)

// DefaultPageSize of the strategy list
const DefaultPageSize = 20

// Backend is the part of the resource client the strategy views use
type Backend interface {
	ListStrategies(ctx context.Context, page, pageSize int, status domain.StrategyStatus) (*domain.StrategyList, error)
	GetStrategy(ctx context.Context, id int64) (*domain.Strategy, error)
	CreateStrategy(ctx context.Context, form domain.StrategyForm, params domain.StrategyParams) (*domain.Strategy, error)
	UpdateStrategy(ctx context.Context, id int64, form domain.StrategyForm, params domain.StrategyParams) (*domain.Strategy, error)
	DeleteStrategy(ctx context.Context, id int64) error
	ActivateStrategy(ctx context.Context, id int64) (*domain.Strategy, error)
	DeactivateStrategy(ctx context.Context, id int64) (*domain.Strategy, error)
	ExecuteStrategy(ctx context.Context, id int64, req domain.ExecuteRequest) (*domain.ExecuteResult, error)
}

// ListDeps is the list's dependency tuple
type ListDeps struct {
	Page     int
	PageSize int
	Status   domain.StrategyStatus
}

// ListController holds the strategy list view
type ListController struct {
	backend  Backend
	events   *events.Manager
	log      zerolog.Logger
	pageSize int

	list *fetchstate.Controller[ListDeps, domain.StrategyList]

	mu         sync.Mutex
	lastResult *domain.ExecuteResult
}

// NewListController creates an unmounted list controller
func NewListController(b Backend, pageSize int, em *events.Manager, log zerolog.Logger) *ListController {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	c := &ListController{
		backend:  b,
		events:   em,
		log:      log.With().Str("component", "strategies").Logger(),
		pageSize: pageSize,
	}
	c.list = fetchstate.New(c.fetch, fetchstate.Options{
		Name:     "strategies.list",
		Policy:   fetchstate.ErrorClearsData,
		Log:      log,
		OnChange: em.TransitionHook("strategies"),
	})
	return c
}

func (c *ListController) fetch(ctx context.Context, d ListDeps) (domain.StrategyList, error) {
	list, err := c.backend.ListStrategies(ctx, d.Page, d.PageSize, d.Status)
	if err != nil {
		return domain.StrategyList{}, err
	}
	return *list, nil
}

// Load mounts the list. Changing the status filter resets to page 1.
func (c *ListController) Load(page int, status domain.StrategyStatus) error {
	if page < 1 {
		page = 1
	}
	if current, mounted := c.list.Deps(); mounted && current.Status != status {
		page = 1
	}
	_, err := c.list.SetDeps(ListDeps{Page: page, PageSize: c.pageSize, Status: status})
	return err
}

// SetFilter changes the status filter and goes back to page 1
func (c *ListController) SetFilter(status domain.StrategyStatus) error {
	_, err := c.list.SetDeps(ListDeps{Page: 1, PageSize: c.pageSize, Status: status})
	return err
}

// SetPage moves to another page under the current filter
func (c *ListController) SetPage(page int) error {
	d, _ := c.list.Deps()
	if page < 1 {
		page = 1
	}
	d.Page = page
	d.PageSize = c.pageSize
	_, err := c.list.SetDeps(d)
	return err
}

// Deps returns the current dependency tuple
func (c *ListController) Deps() (ListDeps, bool) {
	return c.list.Deps()
}

// Refresh re-fetches the current page
func (c *ListController) Refresh() error {
	return c.list.Refresh()
}

// Create validates the form, creates the strategy and re-fetches the list
func (c *ListController) Create(ctx context.Context, form domain.StrategyForm) (*domain.Strategy, error) {
	params, err := domain.ValidateStrategyForm(form)
	if err != nil {
		return nil, err
	}
	var created *domain.Strategy
	err = c.list.Mutate(ctx, func(ctx context.Context) error {
		var err error
		created, err = c.backend.CreateStrategy(ctx, form, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.changed(created.ID, "create", created.Status)
	return created, nil
}

// Update validates the form, updates the strategy and re-fetches the list
func (c *ListController) Update(ctx context.Context, id int64, form domain.StrategyForm) (*domain.Strategy, error) {
	params, err := domain.ValidateStrategyForm(form)
	if err != nil {
		return nil, err
	}
	var updated *domain.Strategy
	err = c.list.Mutate(ctx, func(ctx context.Context) error {
		var err error
		updated, err = c.backend.UpdateStrategy(ctx, id, form, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.changed(id, "update", updated.Status)
	return updated, nil
}

// Delete removes a strategy and re-fetches the list
func (c *ListController) Delete(ctx context.Context, id int64) error {
	err := c.list.Mutate(ctx, func(ctx context.Context) error {
		return c.backend.DeleteStrategy(ctx, id)
	})
	if err != nil {
		return err
	}
	c.changed(id, "delete", "")
	return nil
}

// Activate requests ACTIVE and re-fetches
func (c *ListController) Activate(ctx context.Context, id int64) error {
	return c.setStatus(ctx, id, true)
}

// Deactivate requests INACTIVE and re-fetches
func (c *ListController) Deactivate(ctx context.Context, id int64) error {
	return c.setStatus(ctx, id, false)
}

func (c *ListController) setStatus(ctx context.Context, id int64, active bool) error {
	var s *domain.Strategy
	err := c.list.Mutate(ctx, func(ctx context.Context) error {
		var err error
		if active {
			s, err = c.backend.ActivateStrategy(ctx, id)
		} else {
			s, err = c.backend.DeactivateStrategy(ctx, id)
		}
		return err
	})
	if err != nil {
		return err
	}
	action := "deactivate"
	if active {
		action = "activate"
	}
	c.changed(id, action, s.Status)
	return nil
}

// Execute runs a strategy once over the given symbols. The list state is
// not touched; the result is kept for display until the next execution.
func (c *ListController) Execute(ctx context.Context, id int64, req domain.ExecuteRequest) (*domain.ExecuteResult, error) {
	return execute(ctx, c.backend, c.log, &c.mu, &c.lastResult, id, req)
}

// LastExecution returns the most recent execution result
func (c *ListController) LastExecution() *domain.ExecuteResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// Snapshot returns the list state
func (c *ListController) Snapshot() fetchstate.Snapshot[domain.StrategyList] {
	return c.list.Snapshot()
}

// Await waits for the list to settle
func (c *ListController) Await(ctx context.Context) error {
	_, err := c.list.Await(ctx)
	return err
}

// Close unmounts the view
func (c *ListController) Close() {
	c.list.Close()
}

func (c *ListController) changed(id int64, action string, status domain.StrategyStatus) {
	c.log.Info().Int64("strategy_id", id).Str("action", action).Msg("Strategy changed")
	c.events.EmitTyped("strategies", &events.StrategyChangedData{
		ID:     id,
		Action: action,
		Status: string(status),
	})
}

func execute(
	ctx context.Context,
	b Backend,
	log zerolog.Logger,
	mu *sync.Mutex,
	last **domain.ExecuteResult,
	id int64,
	req domain.ExecuteRequest,
) (*domain.ExecuteResult, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	result, err := b.ExecuteStrategy(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("execute strategy %d: %w", id, err)
	}

	mu.Lock()
	*last = result
	mu.Unlock()

	log.Info().
		Int64("strategy_id", id).
		Int("symbols", result.TotalSymbols).
		Int("signals", result.TotalSignals).
		Msg("Strategy executed")
	return result, nil
}
