package strategies

import (
	"context"
	"sync"

	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/events"
	"github.com/kquant/dashboard/internal/fetchstate"
	"github.com/rs/zerolog"
)

// DetailController holds one strategy's detail view
type DetailController struct {
	backend Backend
	events  *events.Manager
	log     zerolog.Logger

	detail *fetchstate.Controller[int64, domain.Strategy]

	mu         sync.Mutex
	lastResult *domain.ExecuteResult
}

// NewDetailController creates an unmounted detail controller
func NewDetailController(b Backend, em *events.Manager, log zerolog.Logger) *DetailController {
	c := &DetailController{
		backend: b,
		events:  em,
		log:     log.With().Str("component", "strategy_detail").Logger(),
	}
	c.detail = fetchstate.New(func(ctx context.Context, id int64) (domain.Strategy, error) {
		s, err := b.GetStrategy(ctx, id)
		if err != nil {
			return domain.Strategy{}, err
		}
		return *s, nil
	}, fetchstate.Options{
		Name:     "strategies.detail",
		Policy:   fetchstate.ErrorClearsData,
		Log:      log,
		OnChange: em.TransitionHook("strategies"),
	})
	return c
}

// Load mounts the view for a strategy id
func (c *DetailController) Load(id int64) error {
	_, err := c.detail.SetDeps(id)
	return err
}

// ID returns the loaded strategy id
func (c *DetailController) ID() (int64, bool) {
	return c.detail.Deps()
}

// Refresh re-fetches the strategy
func (c *DetailController) Refresh() error {
	return c.detail.Refresh()
}

// Activate requests ACTIVE and re-fetches
func (c *DetailController) Activate(ctx context.Context) error {
	return c.setStatus(ctx, true)
}

// Deactivate requests INACTIVE and re-fetches
func (c *DetailController) Deactivate(ctx context.Context) error {
	return c.setStatus(ctx, false)
}

func (c *DetailController) setStatus(ctx context.Context, active bool) error {
	id, mounted := c.detail.Deps()
	if !mounted {
		return fetchstate.ErrNotMounted
	}
	var s *domain.Strategy
	err := c.detail.Mutate(ctx, func(ctx context.Context) error {
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
	c.events.EmitTyped("strategies", &events.StrategyChangedData{ID: id, Action: action, Status: string(s.Status)})
	return nil
}

// Execute runs the loaded strategy once
func (c *DetailController) Execute(ctx context.Context, req domain.ExecuteRequest) (*domain.ExecuteResult, error) {
	id, mounted := c.detail.Deps()
	if !mounted {
		return nil, fetchstate.ErrNotMounted
	}
	return execute(ctx, c.backend, c.log, &c.mu, &c.lastResult, id, req)
}

// LastExecution returns the most recent execution result
func (c *DetailController) LastExecution() *domain.ExecuteResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// Snapshot returns the detail state
func (c *DetailController) Snapshot() fetchstate.Snapshot[domain.Strategy] {
	return c.detail.Snapshot()
}

// Await waits for the detail to settle
func (c *DetailController) Await(ctx context.Context) error {
	_, err := c.detail.Await(ctx)
	return err
}

// Close unmounts the view
func (c *DetailController) Close() {
	c.detail.Close()
}
