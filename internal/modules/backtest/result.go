package backtest

import (
	"context"
	"sync"
	"time"

	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/events"
	"github.com/kquant/dashboard/internal/fetchstate"
	"github.com/rs/zerolog"
)

// DefaultPollInterval between result polls while a run is in progress
const DefaultPollInterval = 3 * time.Second

// ResultController holds one backtest result. While the result is pending
// or running it is re-fetched every interval; polling ends at a terminal
// status, on Close, or when another result is loaded.
type ResultController struct {
	backend  Backend
	events   *events.Manager
	log      zerolog.Logger
	interval time.Duration

	result *fetchstate.Controller[int64, domain.BacktestResult]
	trades *fetchstate.Controller[int64, []domain.BacktestTrade]

	base       context.Context
	cancelBase context.CancelFunc

	mu       sync.Mutex
	stopPoll context.CancelFunc
	polling  bool
	running  map[int64]bool
	finished map[int64]bool
}

// NewResultController creates an unmounted result controller
func NewResultController(b Backend, interval time.Duration, em *events.Manager, log zerolog.Logger) *ResultController {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	base, cancel := context.WithCancel(context.Background())
	c := &ResultController{
		backend:    b,
		events:     em,
		log:        log.With().Str("component", "backtest_result").Logger(),
		interval:   interval,
		base:       base,
		cancelBase: cancel,
		running:    make(map[int64]bool),
		finished:   make(map[int64]bool),
	}

	stateHook := em.TransitionHook("backtest")
	c.result = fetchstate.New(func(ctx context.Context, id int64) (domain.BacktestResult, error) {
		r, err := b.GetBacktest(ctx, id)
		if err != nil {
			return domain.BacktestResult{}, err
		}
		return *r, nil
	}, fetchstate.Options{
		Name: "backtest.result",
		// A failed poll keeps the last known status on screen
		Policy: fetchstate.ErrorRetainsData,
		Log:    log,
		OnChange: func(t fetchstate.Transition) {
			if stateHook != nil {
				stateHook(t)
			}
			c.observe(t)
		},
	})
	c.trades = fetchstate.New(func(ctx context.Context, id int64) ([]domain.BacktestTrade, error) {
		trades, err := b.BacktestTrades(ctx, id)
		if err != nil {
			return nil, err
		}
		if trades == nil {
			trades = []domain.BacktestTrade{}
		}
		return trades, nil
	}, fetchstate.Options{
		Name:     "backtest.trades",
		Policy:   fetchstate.ErrorClearsData,
		Log:      log,
		OnChange: stateHook,
	})
	return c
}

// Load mounts the view for a result id and starts polling it
func (c *ResultController) Load(id int64) error {
	changed, err := c.result.SetDeps(id)
	if err != nil || !changed {
		return err
	}

	c.mu.Lock()
	if c.stopPoll != nil {
		c.stopPoll()
	}
	ctx, cancel := context.WithCancel(c.base)
	c.stopPoll = cancel
	c.polling = true
	c.mu.Unlock()

	go c.poll(ctx, id)
	return nil
}

// ID returns the loaded result id
func (c *ResultController) ID() (int64, bool) {
	return c.result.Deps()
}

// Refresh re-fetches the result now
func (c *ResultController) Refresh() error {
	return c.result.Refresh()
}

// Polling reports whether the result is still being polled
func (c *ResultController) Polling() bool {
	c.mu.Lock()
	polling := c.polling
	c.mu.Unlock()
	if !polling {
		return false
	}
	snap := c.result.Snapshot()
	return snap.Data == nil || !snap.Data.Status.IsTerminal()
}

func (c *ResultController) poll(ctx context.Context, id int64) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer func() {
		c.mu.Lock()
		if ctx.Err() == nil {
			c.polling = false
		}
		c.mu.Unlock()
	}()

	var backoffSeq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if current, _ := c.result.Deps(); current != id {
			return
		}
		snap := c.result.Snapshot()
		if snap.Data != nil && snap.Data.Status.IsTerminal() {
			return
		}
		// Skip while a fetch is in flight or after a failed first load
		if snap.Status != fetchstate.StatusSuccess {
			continue
		}
		// A failed poll keeps the last data and backs off for one tick
		if snap.LastErr != nil && snap.Seq != backoffSeq {
			backoffSeq = snap.Seq
			c.log.Debug().Err(snap.LastErr).Int64("backtest_id", id).Msg("Skipping poll after failure")
			continue
		}
		if err := c.result.Refresh(); err != nil {
			return
		}
	}
}

// observe reacts to settled results: a run seen in progress that reaches a
// terminal status is announced once, and completed runs load their trades.
func (c *ResultController) observe(t fetchstate.Transition) {
	if t.Status != fetchstate.StatusSuccess {
		return
	}
	snap := c.result.Snapshot()
	if snap.Data == nil {
		return
	}
	r := snap.Data

	if !r.Status.IsTerminal() {
		c.mu.Lock()
		c.running[r.ID] = true
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	announce := c.running[r.ID] && !c.finished[r.ID]
	c.finished[r.ID] = true
	c.polling = false
	c.mu.Unlock()

	if announce {
		c.log.Info().Int64("backtest_id", r.ID).Str("status", string(r.Status)).Msg("Backtest finished")
		c.events.EmitTyped("backtest", &events.BacktestFinishedData{ID: r.ID, Status: string(r.Status)})
	}
	if r.Status == domain.BacktestCompleted {
		if _, err := c.trades.SetDeps(r.ID); err != nil {
			c.log.Debug().Err(err).Msg("Trades not loaded")
		}
	}
}

// Snapshot returns the result state
func (c *ResultController) Snapshot() fetchstate.Snapshot[domain.BacktestResult] {
	return c.result.Snapshot()
}

// TradesSnapshot returns the trades state. Idle until the run completes.
func (c *ResultController) TradesSnapshot() fetchstate.Snapshot[[]domain.BacktestTrade] {
	return c.trades.Snapshot()
}

// Await waits for the result and, if loading, its trades
func (c *ResultController) Await(ctx context.Context) error {
	if _, err := c.result.Await(ctx); err != nil {
		return err
	}
	_, err := c.trades.Await(ctx)
	return err
}

// Close stops polling and unmounts the view
func (c *ResultController) Close() {
	c.cancelBase()
	c.mu.Lock()
	c.polling = false
	c.mu.Unlock()
	c.result.Close()
	c.trades.Close()
}
