package watchlist

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu      sync.Mutex
	entries []domain.WatchlistEntry
	nextID  int64
	fetches int32
	removed []int64
	gate    chan struct{}
	err     error
}

func newFakeBackend(symbols ...string) *fakeBackend {
	f := &fakeBackend{}
	for _, s := range symbols {
		f.nextID++
		f.entries = append(f.entries, domain.WatchlistEntry{ID: f.nextID, Symbol: s})
	}
	return f
}

func (f *fakeBackend) Watchlist(ctx context.Context) (*domain.Watchlist, error) {
	atomic.AddInt32(&f.fetches, 1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := append([]domain.WatchlistEntry(nil), f.entries...)
	return &domain.Watchlist{Total: len(out), Watchlists: out}, nil
}

func (f *fakeBackend) AddToWatchlist(ctx context.Context, add domain.WatchlistAdd) (*domain.WatchlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e := domain.WatchlistEntry{ID: f.nextID, Symbol: add.Symbol, Name: add.Name}
	f.entries = append(f.entries, e)
	return &e, nil
}

func (f *fakeBackend) RemoveFromWatchlist(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	for i, e := range f.entries {
		if e.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

type stockSource struct {
	failing string
}

func (s stockSource) Stock(ctx context.Context, symbol string) (*domain.Stock, error) {
	if symbol == s.failing {
		return nil, errors.New("lookup failed")
	}
	return &domain.Stock{Symbol: symbol, Name: "name-" + symbol}, nil
}

func TestCache_AddThenRemoveLeavesSymbolAbsent(t *testing.T) {
	fb := newFakeBackend("000660")
	c := NewCache(fb, nil, zerolog.Nop())
	ctx := context.Background()

	_, err := c.Add(ctx, domain.WatchlistAdd{Symbol: "005930", Name: "삼성전자"})
	require.NoError(t, err)
	assert.True(t, c.Contains("005930"))

	require.NoError(t, c.Remove(ctx, "005930"))
	assert.False(t, c.Contains("005930"))
	assert.True(t, c.Contains("000660"), "remove fetched the set first")
	assert.Equal(t, []string{"000660"}, c.Symbols())
	assert.Equal(t, []int64{2}, fb.removed)
}

func TestCache_RemoveUsesCurrentEntryID(t *testing.T) {
	fb := &fakeBackend{entries: []domain.WatchlistEntry{{ID: 7, Symbol: "005930"}}, nextID: 7}
	c := NewCache(fb, nil, zerolog.Nop())
	ctx := context.Background()
	require.NoError(t, c.Invalidate(ctx))

	// The entry is re-created from another tab
	fb.mu.Lock()
	fb.entries = []domain.WatchlistEntry{{ID: 9, Symbol: "005930"}}
	fb.mu.Unlock()

	require.NoError(t, c.Remove(ctx, "005930"))
	assert.False(t, c.Contains("005930"))
	assert.Equal(t, []int64{9}, fb.removed)
}

func TestCache_ToggleUsesCurrentSet(t *testing.T) {
	fb := newFakeBackend()
	c := NewCache(fb, nil, zerolog.Nop())
	ctx := context.Background()
	require.NoError(t, c.Invalidate(ctx))

	fb.mu.Lock()
	fb.entries = []domain.WatchlistEntry{{ID: 3, Symbol: "035420"}}
	fb.mu.Unlock()

	watched, err := c.Toggle(ctx, "035420", "NAVER")
	require.NoError(t, err)
	assert.False(t, watched)
	assert.Equal(t, []int64{3}, fb.removed)
}

func TestCache_ReloadPicksUpRemoteChanges(t *testing.T) {
	fb := newFakeBackend("005930")
	c := NewCache(fb, nil, zerolog.Nop())
	ctx := context.Background()

	c.Reload(ctx)
	assert.True(t, c.Contains("005930"))

	fb.mu.Lock()
	fb.entries = append(fb.entries, domain.WatchlistEntry{ID: 2, Symbol: "000660"})
	fb.mu.Unlock()

	c.Reload(ctx)
	assert.Equal(t, []string{"000660", "005930"}, c.Symbols())
	assert.EqualValues(t, 2, atomic.LoadInt32(&fb.fetches))
}

func TestCache_ReloadFailureKeepsSet(t *testing.T) {
	fb := newFakeBackend("005930")
	c := NewCache(fb, nil, zerolog.Nop())
	c.Reload(context.Background())

	fb.mu.Lock()
	fb.err = errors.New("backend down")
	fb.mu.Unlock()

	c.Reload(context.Background())
	assert.True(t, c.Contains("005930"))
	assert.True(t, c.Loaded())
}

func TestCache_RemoveUnknown(t *testing.T) {
	c := NewCache(newFakeBackend("000660"), nil, zerolog.Nop())
	assert.ErrorIs(t, c.Remove(context.Background(), "005930"), ErrNotInWatchlist)
}

func TestCache_AddValidates(t *testing.T) {
	fb := newFakeBackend()
	c := NewCache(fb, nil, zerolog.Nop())

	_, err := c.Add(context.Background(), domain.WatchlistAdd{Symbol: "  "})
	assert.True(t, domain.IsValidationError(err))
	assert.Empty(t, fb.entries)
}

func TestCache_Toggle(t *testing.T) {
	c := NewCache(newFakeBackend(), nil, zerolog.Nop())
	ctx := context.Background()

	watched, err := c.Toggle(ctx, "035420", "NAVER")
	require.NoError(t, err)
	assert.True(t, watched)

	watched, err = c.Toggle(ctx, "035420", "NAVER")
	require.NoError(t, err)
	assert.False(t, watched)
	assert.False(t, c.Contains("035420"))
}

func TestCache_InvalidateIsShared(t *testing.T) {
	fb := newFakeBackend("005930")
	fb.gate = make(chan struct{})
	c := NewCache(fb, nil, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Invalidate(context.Background()))
		}()
	}
	// Let every caller join the in-flight request before releasing it
	require.Eventually(t, func() bool { return atomic.LoadInt32(&fb.fetches) == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(fb.gate)
	wg.Wait()

	assert.True(t, c.Contains("005930"))
	assert.LessOrEqual(t, atomic.LoadInt32(&fb.fetches), int32(5))
	assert.True(t, c.Loaded())
}

func TestCache_StaleFetchDropped(t *testing.T) {
	fb := newFakeBackend("005930")
	fb.gate = make(chan struct{})
	c := NewCache(fb, nil, zerolog.Nop())

	done := make(chan error, 1)
	go func() { done <- c.Invalidate(context.Background()) }()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&fb.fetches) == 1 }, time.Second, time.Millisecond)

	// A sign-out lands while the fetch is in flight
	c.Clear()
	close(fb.gate)
	require.NoError(t, <-done)

	assert.False(t, c.Contains("005930"))
	assert.False(t, c.Loaded())
}

func TestCache_ClearEmitsNothingAndEmpties(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	var actions []string
	bus.Subscribe(events.WatchlistChanged, func(e *events.Event) {
		actions = append(actions, e.Data["action"].(string))
	})
	c := NewCache(newFakeBackend("005930"), events.NewManager(bus, zerolog.Nop()), zerolog.Nop())

	require.NoError(t, c.EnsureLoaded(context.Background()))
	require.NoError(t, c.EnsureLoaded(context.Background()))
	c.Clear()

	assert.Empty(t, c.Symbols())
	assert.Equal(t, []string{"refresh"}, actions)
}

func TestCache_StocksKeepsOrderAndSoftFails(t *testing.T) {
	c := NewCache(newFakeBackend("035720", "005930", "000660"), nil, zerolog.Nop())

	rows, err := c.Stocks(context.Background(), stockSource{failing: "035720"})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "000660", rows[0].Symbol)
	assert.Equal(t, "name-000660", rows[0].Stock.Name)
	assert.Equal(t, "005930", rows[1].Symbol)
	assert.Nil(t, rows[2].Stock)
	assert.Equal(t, "lookup failed", rows[2].Error)
}
