package fetchstate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chartDeps struct {
	Symbol   string
	Interval string
	Days     int
}

func awaitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestController_InitialLoad(t *testing.T) {
	c := New(func(ctx context.Context, d chartDeps) (string, error) {
		return d.Symbol + "/" + d.Interval, nil
	}, Options{Name: "chart", Log: zerolog.Nop()})
	defer c.Close()

	assert.Equal(t, StatusIdle, c.Snapshot().Status)
	assert.ErrorIs(t, c.Refresh(), ErrNotMounted)

	changed, err := c.SetDeps(chartDeps{"005930", "1d", 30})
	require.NoError(t, err)
	assert.True(t, changed)

	snap, err := c.Await(awaitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, snap.Status)
	require.True(t, snap.HasData())
	assert.Equal(t, "005930/1d", *snap.Data)
	assert.NoError(t, snap.Err)
}

func TestController_SameDepsIsNoop(t *testing.T) {
	var calls int32
	c := New(func(ctx context.Context, d chartDeps) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}, Options{Name: "chart", Log: zerolog.Nop()})
	defer c.Close()

	deps := chartDeps{"005930", "1d", 30}
	_, _ = c.SetDeps(deps)
	_, _ = c.Await(awaitCtx(t))

	changed, err := c.SetDeps(deps)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestController_LaterRequestWins(t *testing.T) {
	release := make(chan struct{})
	firstStarted := make(chan struct{})
	var calls int32

	c := New(func(ctx context.Context, d chartDeps) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(firstStarted)
			<-release // slow, ignores cancellation
			return "first", nil
		}
		return "second", nil
	}, Options{Name: "chart", Log: zerolog.Nop()})
	defer c.Close()

	_, _ = c.SetDeps(chartDeps{"005930", "1d", 30})
	<-firstStarted
	require.NoError(t, c.Refresh())

	snap, err := c.Await(awaitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "second", *snap.Data)

	close(release)
	time.Sleep(20 * time.Millisecond)

	snap = c.Snapshot()
	assert.Equal(t, StatusSuccess, snap.Status)
	assert.Equal(t, "second", *snap.Data)
}

func TestController_DepsChangeClearsOldRows(t *testing.T) {
	block := make(chan struct{})
	c := New(func(ctx context.Context, status string) ([]string, error) {
		if status == "INACTIVE" {
			select {
			case <-block:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return []string{status + "-row"}, nil
	}, Options{Name: "strategies", Log: zerolog.Nop()})
	defer c.Close()

	_, _ = c.SetDeps("ACTIVE")
	snap, _ := c.Await(awaitCtx(t))
	assert.Equal(t, []string{"ACTIVE-row"}, *snap.Data)

	_, _ = c.SetDeps("INACTIVE")
	snap = c.Snapshot()
	assert.Equal(t, StatusLoading, snap.Status)
	assert.Nil(t, snap.Data, "rows of the previous filter must not be shown")

	close(block)
	snap, _ = c.Await(awaitCtx(t))
	assert.Equal(t, []string{"INACTIVE-row"}, *snap.Data)
}

func TestController_RefreshingKeepsData(t *testing.T) {
	var fail atomic.Bool
	block := make(chan struct{})
	c := New(func(ctx context.Context, d chartDeps) (string, error) {
		if fail.Load() {
			<-block
			return "", errors.New("차트 데이터를 불러오는데 실패했습니다")
		}
		return "ok", nil
	}, Options{Name: "chart", Log: zerolog.Nop()})
	defer c.Close()

	_, _ = c.SetDeps(chartDeps{"005930", "1d", 30})
	_, _ = c.Await(awaitCtx(t))

	fail.Store(true)
	require.NoError(t, c.Refresh())

	snap := c.Snapshot()
	assert.Equal(t, StatusRefreshing, snap.Status)
	assert.Equal(t, "ok", *snap.Data)

	close(block)
	snap, _ = c.Await(awaitCtx(t))
	assert.Equal(t, StatusError, snap.Status)
	assert.Nil(t, snap.Data)
	assert.Equal(t, "차트 데이터를 불러오는데 실패했습니다", snap.Message())
}

func TestController_RetainPolicyKeepsDataOnFailure(t *testing.T) {
	var fail atomic.Bool
	c := New(func(ctx context.Context, symbol string) (float64, error) {
		if fail.Load() {
			return 0, errors.New("현재가를 불러오는데 실패했습니다")
		}
		return 71000, nil
	}, Options{Name: "price", Policy: ErrorRetainsData, Log: zerolog.Nop()})
	defer c.Close()

	_, _ = c.SetDeps("005930")
	_, _ = c.Await(awaitCtx(t))

	fail.Store(true)
	require.NoError(t, c.Refresh())
	snap, _ := c.Await(awaitCtx(t))

	assert.Equal(t, StatusSuccess, snap.Status)
	assert.Equal(t, 71000.0, *snap.Data)
	assert.NoError(t, snap.Err)
	assert.EqualError(t, snap.LastErr, "현재가를 불러오는데 실패했습니다")
}

func TestController_InitialErrorClearsEvenWithRetainPolicy(t *testing.T) {
	c := New(func(ctx context.Context, symbol string) (float64, error) {
		return 0, errors.New("down")
	}, Options{Name: "price", Policy: ErrorRetainsData, Log: zerolog.Nop()})
	defer c.Close()

	_, _ = c.SetDeps("005930")
	snap, _ := c.Await(awaitCtx(t))
	assert.Equal(t, StatusError, snap.Status)
	assert.Nil(t, snap.Data)
}

func TestController_CloseAbortsInFlight(t *testing.T) {
	aborted := make(chan struct{})
	c := New(func(ctx context.Context, d chartDeps) (string, error) {
		<-ctx.Done()
		close(aborted)
		return "late", nil
	}, Options{Name: "chart", Log: zerolog.Nop()})

	_, _ = c.SetDeps(chartDeps{"005930", "1d", 30})
	c.Close()

	select {
	case <-aborted:
	case <-time.After(time.Second):
		t.Fatal("in-flight fetch was not cancelled")
	}
	time.Sleep(10 * time.Millisecond)

	snap := c.Snapshot()
	assert.Equal(t, StatusLoading, snap.Status)
	assert.Nil(t, snap.Data)

	assert.ErrorIs(t, c.Refresh(), ErrClosed)
	_, err := c.SetDeps(chartDeps{"000660", "1d", 30})
	assert.ErrorIs(t, err, ErrClosed)

	// Await returns immediately once closed
	_, err = c.Await(awaitCtx(t))
	assert.NoError(t, err)
}

func TestController_MutateSerializesAndRefetches(t *testing.T) {
	var fetches int32
	c := New(func(ctx context.Context, page int) (int32, error) {
		return atomic.AddInt32(&fetches, 1), nil
	}, Options{Name: "strategies", Log: zerolog.Nop()})
	defer c.Close()

	_, _ = c.SetDeps(1)
	_, _ = c.Await(awaitCtx(t))

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.Mutate(context.Background(), func(ctx context.Context) error {
				n := atomic.AddInt32(&active, 1)
				for {
					m := atomic.LoadInt32(&maxActive)
					if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, _ := c.Await(awaitCtx(t))
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxActive))
	assert.Equal(t, StatusSuccess, snap.Status)
	assert.False(t, snap.Mutating)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&fetches), int32(2))
}

func TestController_MutateFailureKeepsData(t *testing.T) {
	var fetches int32
	c := New(func(ctx context.Context, page int) (string, error) {
		atomic.AddInt32(&fetches, 1)
		return "rows", nil
	}, Options{Name: "strategies", Log: zerolog.Nop()})
	defer c.Close()

	_, _ = c.SetDeps(1)
	_, _ = c.Await(awaitCtx(t))

	boom := errors.New("전략 활성화에 실패했습니다")
	err := c.Mutate(context.Background(), func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	snap := c.Snapshot()
	assert.Equal(t, StatusSuccess, snap.Status)
	assert.Equal(t, "rows", *snap.Data)
	assert.ErrorIs(t, snap.ActionErr, boom)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))
}

func TestController_SearchIsOneShot(t *testing.T) {
	c := New(func(ctx context.Context, page int) ([]string, error) {
		return []string{"page"}, nil
	}, Options{Name: "stocks", Log: zerolog.Nop()})
	defer c.Close()

	_, _ = c.SetDeps(1)
	_, _ = c.Await(awaitCtx(t))

	require.NoError(t, c.Search(func(ctx context.Context) ([]string, error) {
		return []string{"삼성전자"}, nil
	}))
	snap, _ := c.Await(awaitCtx(t))
	assert.Equal(t, []string{"삼성전자"}, *snap.Data)

	// Dependencies are untouched by a search
	deps, mounted := c.Deps()
	assert.True(t, mounted)
	assert.Equal(t, 1, deps)

	_, _ = c.SetDeps(2)
	snap, _ = c.Await(awaitCtx(t))
	assert.Equal(t, []string{"page"}, *snap.Data)
}

func TestController_OnChangeSeesTransitions(t *testing.T) {
	var mu sync.Mutex
	var seen []Status
	c := New(func(ctx context.Context, page int) (int, error) {
		return page, nil
	}, Options{Name: "trades", Log: zerolog.Nop(), OnChange: func(tr Transition) {
		mu.Lock()
		seen = append(seen, tr.Status)
		mu.Unlock()
		assert.Equal(t, "trades", tr.Name)
	}})
	defer c.Close()

	_, _ = c.SetDeps(1)
	_, _ = c.Await(awaitCtx(t))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{StatusLoading, StatusSuccess}, seen)
}

func TestController_CloseDuringFetchDiscardsResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := New(func(ctx context.Context, page int) (int, error) {
		close(started)
		<-release
		return page, nil
	}, Options{Name: "trades", Log: zerolog.Nop()})

	_, _ = c.SetDeps(1)
	<-started

	c.Close()
	close(release)

	assert.Never(t, func() bool { return c.Snapshot().HasData() }, 100*time.Millisecond, 5*time.Millisecond)
	assert.True(t, c.Closed())
	assert.ErrorIs(t, c.Refresh(), ErrClosed)
}

func TestController_StaleTransitionNotDelivered(t *testing.T) {
	var seen []uint64
	c := New(func(ctx context.Context, page int) (int, error) {
		return page, nil
	}, Options{Name: "trades", Log: zerolog.Nop(), OnChange: func(tr Transition) {
		seen = append(seen, tr.Seq)
	}})
	defer c.Close()

	c.notify(Transition{Name: "trades", Status: StatusSuccess, Seq: 2, rev: 4})
	c.notify(Transition{Name: "trades", Status: StatusLoading, Seq: 2, rev: 3})
	c.notify(Transition{Name: "trades", Status: StatusLoading, Seq: 3, rev: 5})

	assert.Equal(t, []uint64{2, 3}, seen)
}

func TestController_ConcurrentTriggersDeliverInOrder(t *testing.T) {
	var mu sync.Mutex
	var revs []uint64
	var last Transition
	c := New(func(ctx context.Context, page int) (int, error) {
		return page, nil
	}, Options{Name: "trades", Log: zerolog.Nop(), OnChange: func(tr Transition) {
		mu.Lock()
		revs = append(revs, tr.rev)
		last = tr
		mu.Unlock()
	}})
	defer c.Close()

	_, _ = c.SetDeps(1)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Refresh()
		}()
	}
	wg.Wait()
	snap, err := c.Await(awaitCtx(t))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return last.Seq == snap.Seq && last.Status == StatusSuccess
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(revs); i++ {
		assert.Greater(t, revs[i], revs[i-1])
	}
}
