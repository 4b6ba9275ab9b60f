package fetchstate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FetchFunc performs the primary fetch for a dependency tuple
type FetchFunc[D comparable, T any] func(ctx context.Context, deps D) (T, error)

// Options configure a controller
type Options struct {
	Name   string
	Policy ErrorPolicy
	Log    zerolog.Logger
	// OnChange receives transitions one at a time in state order. A
	// transition overtaken by a newer one before delivery is dropped.
	// The hook must not trigger the same controller.
	OnChange func(Transition)
}

// Controller holds the fetch state of one view slot
type Controller[D comparable, T any] struct {
	name     string
	policy   ErrorPolicy
	fetch    FetchFunc[D, T]
	log      zerolog.Logger
	onChange func(Transition)

	base       context.Context
	cancelBase context.CancelFunc

	mu      sync.Mutex
	deps    D
	mounted bool
	closed  bool
	seq     uint64
	cancel  context.CancelFunc
	settled chan struct{}
	state   Snapshot[T]
	rev     uint64

	notifyMu  sync.Mutex
	delivered uint64

	mutateMu sync.Mutex
}

// New creates an idle controller
func New[D comparable, T any](fetch FetchFunc[D, T], opts Options) *Controller[D, T] {
	base, cancel := context.WithCancel(context.Background())
	return &Controller[D, T]{
		name:       opts.Name,
		policy:     opts.Policy,
		fetch:      fetch,
		log:        opts.Log.With().Str("controller", opts.Name).Logger(),
		onChange:   opts.OnChange,
		base:       base,
		cancelBase: cancel,
		state:      Snapshot[T]{Status: StatusIdle},
	}
}

// Name returns the controller name
func (c *Controller[D, T]) Name() string {
	return c.name
}

// Policy returns the error policy
func (c *Controller[D, T]) Policy() ErrorPolicy {
	return c.policy
}

// Snapshot returns a copy of the current state
func (c *Controller[D, T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Deps returns the current dependency tuple and whether the controller is mounted
func (c *Controller[D, T]) Deps() (D, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deps, c.mounted
}

// SetDeps mounts the controller or changes its dependencies. A change
// cancels any in-flight fetch, clears data and starts a fresh load.
// Setting the same tuple again is a no-op; it returns false in that case.
func (c *Controller[D, T]) SetDeps(deps D) (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrClosed
	}
	if c.mounted && c.deps == deps {
		c.mu.Unlock()
		return false, nil
	}
	c.deps = deps
	c.mounted = true
	fetch := c.fetch
	t, launch := c.startLocked(false, func(ctx context.Context) (T, error) {
		return fetch(ctx, deps)
	})
	c.mu.Unlock()

	c.notify(t)
	launch()
	return true, nil
}

// Refresh re-runs the primary fetch with the current dependencies.
// From success it enters refreshing and keeps the data on screen.
func (c *Controller[D, T]) Refresh() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.mounted {
		c.mu.Unlock()
		return ErrNotMounted
	}
	deps := c.deps
	fetch := c.fetch
	t, launch := c.startLocked(true, func(ctx context.Context) (T, error) {
		return fetch(ctx, deps)
	})
	c.mu.Unlock()

	c.notify(t)
	launch()
	return nil
}

// Search runs a one-shot fetch with different parameters into the same
// slot. It supersedes any in-flight fetch and is itself superseded by the
// next dependency change or refresh.
func (c *Controller[D, T]) Search(fn func(ctx context.Context) (T, error)) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	t, launch := c.startLocked(true, fn)
	c.mu.Unlock()

	c.notify(t)
	launch()
	return nil
}

// Mutate runs a mutating call and, on success, re-runs the primary fetch so
// the view shows the backend's authoritative state. Mutations on one
// controller are serialized. A failed mutation keeps the data and records
// the error in ActionErr.
func (c *Controller[D, T]) Mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	c.mutateMu.Lock()
	defer c.mutateMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.state.Mutating = true
	c.state.ActionErr = nil
	t := c.transitionLocked()
	c.mu.Unlock()
	c.notify(t)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.base, cancel)
	defer stop()

	err := fn(ctx)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		if err != nil {
			return err
		}
		return ErrClosed
	}
	c.state.Mutating = false
	c.state.ActionErr = err
	t = c.transitionLocked()
	c.mu.Unlock()
	c.notify(t)

	if err != nil {
		c.log.Warn().Err(err).Msg("Mutation failed")
		return err
	}

	if refreshErr := c.Refresh(); refreshErr != nil && !errors.Is(refreshErr, ErrNotMounted) {
		return refreshErr
	}
	return nil
}

// Await blocks until no fetch is in flight, following supersessions,
// and returns the settled snapshot.
func (c *Controller[D, T]) Await(ctx context.Context) (Snapshot[T], error) {
	for {
		c.mu.Lock()
		ch := c.settled
		snap := c.state
		c.mu.Unlock()

		if ch == nil {
			return snap, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

// Close unmounts the controller. In-flight work is aborted and no later
// result can change the state.
func (c *Controller[D, T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.settled != nil {
		close(c.settled)
		c.settled = nil
	}
	c.mu.Unlock()

	c.cancelBase()
	c.log.Debug().Msg("Controller closed")
}

// Closed reports whether Close was called
func (c *Controller[D, T]) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// startLocked begins a new generation. Caller holds c.mu and calls the
// returned launch func after releasing it and notifying, so the loading
// transition is always observed before the result.
func (c *Controller[D, T]) startLocked(keepData bool, fn func(ctx context.Context) (T, error)) (Transition, func()) {
	c.seq++
	seq := c.seq

	if c.cancel != nil {
		c.cancel()
	}
	if c.settled != nil {
		close(c.settled)
	}
	ctx, cancel := context.WithCancel(c.base)
	c.cancel = cancel
	c.settled = make(chan struct{})

	if keepData && c.state.Data != nil && (c.state.Status == StatusSuccess || c.state.Status == StatusRefreshing) {
		c.state.Status = StatusRefreshing
	} else {
		c.state.Status = StatusLoading
		c.state.Data = nil
	}
	c.state.Err = nil
	c.state.Seq = seq

	return c.transitionLocked(), func() {
		go c.run(ctx, seq, fn)
	}
}

func (c *Controller[D, T]) run(ctx context.Context, seq uint64, fn func(ctx context.Context) (T, error)) {
	result, err := fn(ctx)
	c.finish(seq, result, err)
}

func (c *Controller[D, T]) finish(seq uint64, result T, err error) {
	c.mu.Lock()
	if c.closed || seq != c.seq {
		closed := c.closed
		c.mu.Unlock()
		c.log.Debug().
			Uint64("seq", seq).
			Bool("closed", closed).
			Msg("Discarding stale result")
		return
	}

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	now := time.Now()
	switch {
	case err == nil:
		c.state.Status = StatusSuccess
		c.state.Data = &result
		c.state.Err = nil
		c.state.LastErr = nil
		c.state.UpdatedAt = now

	case c.policy == ErrorRetainsData && c.state.Data != nil:
		c.state.Status = StatusSuccess
		c.state.LastErr = err
		c.log.Warn().Err(err).Msg("Background refresh failed, keeping last data")

	default:
		c.state.Status = StatusError
		c.state.Data = nil
		c.state.Err = err
		c.state.UpdatedAt = now
		c.log.Warn().Err(err).Str("policy", c.policy.String()).Msg("Fetch failed")
	}

	if c.settled != nil {
		close(c.settled)
		c.settled = nil
	}
	t := c.transitionLocked()
	c.mu.Unlock()

	c.notify(t)
}

func (c *Controller[D, T]) transitionLocked() Transition {
	c.rev++
	return Transition{
		Name:   c.name,
		Status: c.state.Status,
		Seq:    c.state.Seq,
		Err:    c.state.Err,
		rev:    c.rev,
	}
}

// notify is always called after c.mu is released. Two goroutines can race
// here with transitions taken in one order; the older one is dropped.
func (c *Controller[D, T]) notify(t Transition) {
	if c.onChange == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if t.rev <= c.delivered {
		return
	}
	c.delivered = t.rev
	c.onChange(t)
}
