// Package dashboard runs the overview page.
package dashboard

import (
	"context"

	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/events"
	"github.com/kquant/dashboard/internal/fetchstate"
	"github.com/kquant/dashboard/internal/modules/account"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Backend is the part of the resource client the overview uses
type Backend interface {
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
	Balance(ctx context.Context) (*domain.KISBalance, error)
}

// Overview is the overview payload plus the account card. The account
// card is optional: a balance failure only blanks it.
type Overview struct {
	domain.Dashboard
	Balance    *account.Balance
	BalanceErr error
}

// Controller holds the overview page
type Controller struct {
	backend  Backend
	overview *fetchstate.Controller[struct{}, Overview]
	log      zerolog.Logger
}

// NewController creates an unmounted overview controller
func NewController(b Backend, em *events.Manager, log zerolog.Logger) *Controller {
	c := &Controller{
		backend: b,
		log:     log.With().Str("component", "dashboard").Logger(),
	}
	c.overview = fetchstate.New(c.fetch, fetchstate.Options{
		Name:     "dashboard.overview",
		Policy:   fetchstate.ErrorClearsData,
		Log:      log,
		OnChange: em.TransitionHook("dashboard"),
	})
	return c
}

func (c *Controller) fetch(ctx context.Context, _ struct{}) (Overview, error) {
	var (
		dash    *domain.Dashboard
		balance *domain.KISBalance
		balErr  error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := c.backend.Dashboard(gctx)
		dash = d
		return err
	})
	g.Go(func() error {
		balance, balErr = c.backend.Balance(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	out := Overview{Dashboard: *dash}
	switch {
	case balErr != nil:
		c.log.Warn().Err(balErr).Msg("Balance unavailable for overview")
		out.BalanceErr = balErr
	case balance != nil:
		parsed := account.ParseBalance(*balance)
		out.Balance = &parsed
	}
	return out, nil
}

// Load mounts the overview
func (c *Controller) Load() error {
	_, err := c.overview.SetDeps(struct{}{})
	return err
}

// Refresh re-fetches the overview
func (c *Controller) Refresh() error {
	return c.overview.Refresh()
}

// Snapshot returns the overview state
func (c *Controller) Snapshot() fetchstate.Snapshot[Overview] {
	return c.overview.Snapshot()
}

// Await waits for the overview to settle
func (c *Controller) Await(ctx context.Context) error {
	_, err := c.overview.Await(ctx)
	return err
}

// Close unmounts the overview
func (c *Controller) Close() {
	c.overview.Close()
}
