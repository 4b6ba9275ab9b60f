package fetchstate

import (
	"context"
	"sync"
	"time"
)

// Debouncer schedules a deferred action. Each Schedule invalidates the
// pending one by bumping a generation counter and cancelling its context.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	closed bool
}

// NewDebouncer creates a debouncer with the given delay
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule runs fn after the delay unless superseded first. fn's context
// is cancelled when a later Schedule, Cancel or Close happens, so work
// already started can abandon itself too. Returns the generation.
func (d *Debouncer) Schedule(fn func(ctx context.Context)) uint64 {
	d.mu.Lock()
	if d.closed {
		gen := d.gen
		d.mu.Unlock()
		return gen
	}
	d.gen++
	gen := d.gen
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.mu.Unlock()

	go func() {
		timer := time.NewTimer(d.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if !d.IsCurrent(gen) {
			return
		}
		fn(ctx)
	}()

	return gen
}

// IsCurrent reports whether gen is still the latest scheduled generation
func (d *Debouncer) IsCurrent(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed && d.gen == gen
}

// Cancel drops the pending action, if any
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Close cancels the pending action and rejects future schedules
func (d *Debouncer) Close() {
	d.Cancel()
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}
