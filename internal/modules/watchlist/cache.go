// Package watchlist keeps the shared watchlist membership set. Every view
// that shows a watch toggle reads Contains from the same Cache, so a
// toggle in one view is visible everywhere without a refetch.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/events"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// detailConcurrency bounds parallel stock lookups in Stocks
const detailConcurrency = 4

// ErrNotInWatchlist is returned when removing a symbol that is not watched
var ErrNotInWatchlist = errors.New("symbol is not in the watchlist")

// Backend is the part of the resource client the cache uses
type Backend interface {
	Watchlist(ctx context.Context) (*domain.Watchlist, error)
	AddToWatchlist(ctx context.Context, add domain.WatchlistAdd) (*domain.WatchlistEntry, error)
	RemoveFromWatchlist(ctx context.Context, id int64) error
}

// StockSource resolves stock details for watched symbols
type StockSource interface {
	Stock(ctx context.Context, symbol string) (*domain.Stock, error)
}

// Cache is the watchlist membership set
type Cache struct {
	backend Backend
	events  *events.Manager
	log     zerolog.Logger

	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]domain.WatchlistEntry
	loaded  bool
	gen     uint64
}

// NewCache creates an empty cache
func NewCache(b Backend, em *events.Manager, log zerolog.Logger) *Cache {
	return &Cache{
		backend: b,
		events:  em,
		log:     log.With().Str("component", "watchlist").Logger(),
		entries: make(map[string]domain.WatchlistEntry),
	}
}

// Contains reports whether symbol is watched
func (c *Cache) Contains(symbol string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[symbol]
	return ok
}

// Loaded reports whether the set has been fetched since the last Clear
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Symbols returns the watched symbols in order
func (c *Cache) Symbols() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.entries))
	for s := range c.entries {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Entries returns the watched entries ordered by symbol
func (c *Cache) Entries() []domain.WatchlistEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.WatchlistEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Invalidate re-fetches the set. Concurrent callers share one request. A
// result that started before a local mutation is dropped.
func (c *Cache) Invalidate(ctx context.Context) error {
	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	applied, err, shared := c.group.Do("watchlist", func() (interface{}, error) {
		list, err := c.backend.Watchlist(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen != gen {
			c.log.Debug().Msg("Discarding watchlist fetched before a local change")
			return false, nil
		}
		entries := make(map[string]domain.WatchlistEntry, len(list.Watchlists))
		for _, e := range list.Watchlists {
			entries[e.Symbol] = e
		}
		c.entries = entries
		c.loaded = true
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("refresh watchlist: %w", err)
	}
	if ok, _ := applied.(bool); ok && !shared {
		c.emit("refresh", "")
	}
	return nil
}

// EnsureLoaded fetches the set if it has not been fetched yet
func (c *Cache) EnsureLoaded(ctx context.Context) error {
	if c.Loaded() {
		return nil
	}
	return c.Invalidate(ctx)
}

// Add watches a symbol
func (c *Cache) Add(ctx context.Context, add domain.WatchlistAdd) (*domain.WatchlistEntry, error) {
	add.Symbol = strings.TrimSpace(add.Symbol)
	if err := domain.Validate(add); err != nil {
		return nil, err
	}

	entry, err := c.backend.AddToWatchlist(ctx, add)
	if err != nil {
		return nil, err
	}
	if entry.Symbol == "" {
		entry.Symbol = add.Symbol
	}

	c.mu.Lock()
	c.entries[entry.Symbol] = *entry
	c.gen++
	c.mu.Unlock()
	c.group.Forget("watchlist")

	c.log.Info().Str("symbol", entry.Symbol).Msg("Added to watchlist")
	c.emit("add", entry.Symbol)
	return entry, nil
}

// Reload re-fetches the set when a page showing membership loads. A
// failure keeps the previous set and is only logged.
func (c *Cache) Reload(ctx context.Context) {
	if err := c.Invalidate(ctx); err != nil {
		c.log.Warn().Err(err).Msg("Failed to reload watchlist")
	}
}

// Remove unwatches a symbol. The entry id is resolved from a fresh fetch
// so an entry re-created elsewhere is removed by its current id.
func (c *Cache) Remove(ctx context.Context, symbol string) error {
	symbol = strings.TrimSpace(symbol)
	if err := c.Invalidate(ctx); err != nil {
		return err
	}
	return c.remove(ctx, symbol)
}

func (c *Cache) remove(ctx context.Context, symbol string) error {
	c.mu.RLock()
	entry, ok := c.entries[symbol]
	c.mu.RUnlock()
	if !ok {
		return ErrNotInWatchlist
	}

	if err := c.backend.RemoveFromWatchlist(ctx, entry.ID); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.entries, symbol)
	c.gen++
	c.mu.Unlock()
	c.group.Forget("watchlist")

	c.log.Info().Str("symbol", symbol).Msg("Removed from watchlist")
	c.emit("remove", symbol)
	return nil
}

// Toggle adds the symbol if it is not watched, else removes it. Reports
// whether the symbol is watched afterwards.
func (c *Cache) Toggle(ctx context.Context, symbol, name string) (bool, error) {
	symbol = strings.TrimSpace(symbol)
	if err := c.Invalidate(ctx); err != nil {
		return false, err
	}
	if c.Contains(symbol) {
		return false, c.remove(ctx, symbol)
	}
	if _, err := c.Add(ctx, domain.WatchlistAdd{Symbol: symbol, Name: name}); err != nil {
		return false, err
	}
	return true, nil
}

// Clear drops the set, on sign-out
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]domain.WatchlistEntry)
	c.loaded = false
	c.gen++
	c.mu.Unlock()
	c.group.Forget("watchlist")
}

// WatchedStock is a watched entry with its resolved stock details
type WatchedStock struct {
	domain.WatchlistEntry
	Stock *domain.Stock `json:"stock,omitempty"`
	Error string        `json:"error,omitempty"`
}

// Stocks resolves every watched entry's stock details in parallel. A
// failed lookup is reported on its row and does not fail the rest.
func (c *Cache) Stocks(ctx context.Context, src StockSource) ([]WatchedStock, error) {
	if err := c.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	entries := c.Entries()
	out := make([]WatchedStock, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailConcurrency)
	for i, e := range entries {
		i, e := i, e
		out[i].WatchlistEntry = e
		g.Go(func() error {
			stock, err := src.Stock(gctx, e.Symbol)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.log.Warn().Err(err).Str("symbol", e.Symbol).Msg("Stock lookup failed")
				out[i].Error = err.Error()
				return nil
			}
			out[i].Stock = stock
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Cache) emit(action, symbol string) {
	c.events.EmitTyped("watchlist", &events.WatchlistChangedData{
		Action:  action,
		Symbol:  symbol,
		Symbols: c.Symbols(),
	})
}
