package fetchstate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_OnlyLastRuns(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Close()

	var mu sync.Mutex
	var ran []string
	for _, q := range []string{"삼", "삼성", "삼성전"} {
		q := q
		d.Schedule(func(ctx context.Context) {
			mu.Lock()
			ran = append(ran, q)
			mu.Unlock()
		})
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ran) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"삼성전"}, ran)
}

func TestDebouncer_CancelDropsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Close()

	ran := make(chan struct{}, 1)
	gen := d.Schedule(func(ctx context.Context) { ran <- struct{}{} })
	assert.True(t, d.IsCurrent(gen))

	d.Cancel()
	assert.False(t, d.IsCurrent(gen))

	select {
	case <-ran:
		t.Fatal("cancelled action ran")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebouncer_SupersededContextIsCancelled(t *testing.T) {
	d := NewDebouncer(time.Millisecond)
	defer d.Close()

	started := make(chan context.Context, 1)
	d.Schedule(func(ctx context.Context) { started <- ctx })

	var ctx context.Context
	select {
	case ctx = <-started:
	case <-time.After(time.Second):
		t.Fatal("action never ran")
	}

	d.Schedule(func(context.Context) {})
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("superseded context not cancelled")
	}
}

func TestDebouncer_ClosedRejectsSchedule(t *testing.T) {
	d := NewDebouncer(time.Millisecond)
	d.Close()

	ran := make(chan struct{}, 1)
	d.Schedule(func(ctx context.Context) { ran <- struct{}{} })

	select {
	case <-ran:
		t.Fatal("closed debouncer ran an action")
	case <-time.After(20 * time.Millisecond):
	}
}
