package stocks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kquant/dashboard/internal/clientdata"
	"github.com/kquant/dashboard/internal/domain"
	"github.com/rs/zerolog"
)

const filtersScope = "all"

// Reference serves stock details and filter options cache-first. When the
// backend fails, an expired cache row is served instead of the error.
type Reference struct {
	backend Backend
	repo    *clientdata.Repository
	log     zerolog.Logger
}

// NewReference creates a reference reader. repo may be nil to disable caching.
func NewReference(b Backend, repo *clientdata.Repository, log zerolog.Logger) *Reference {
	return &Reference{
		backend: b,
		repo:    repo,
		log:     log.With().Str("component", "stock_reference").Logger(),
	}
}

// Stock returns one stock by symbol
func (r *Reference) Stock(ctx context.Context, symbol string) (*domain.Stock, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, ErrNoSymbol
	}

	var cached domain.Stock
	if r.load(clientdata.TableStockDetail, symbol, true, &cached) {
		return &cached, nil
	}

	stock, err := r.backend.GetStock(ctx, symbol)
	if err != nil {
		if r.load(clientdata.TableStockDetail, symbol, false, &cached) {
			r.log.Warn().Err(err).Str("symbol", symbol).Msg("Backend unavailable, serving stale stock")
			return &cached, nil
		}
		return nil, fmt.Errorf("get stock %s: %w", symbol, err)
	}

	r.store(clientdata.TableStockDetail, symbol, stock, clientdata.TTLStockDetail)
	return stock, nil
}

// Filters returns the selectable sector, industry and dept values
func (r *Reference) Filters(ctx context.Context) (*domain.StockFilters, error) {
	var cached domain.StockFilters
	if r.load(clientdata.TableStockFilters, filtersScope, true, &cached) {
		return &cached, nil
	}

	filters, err := r.backend.StockFilters(ctx)
	if err != nil {
		if r.load(clientdata.TableStockFilters, filtersScope, false, &cached) {
			r.log.Warn().Err(err).Msg("Backend unavailable, serving stale filters")
			return &cached, nil
		}
		return nil, err
	}

	r.store(clientdata.TableStockFilters, filtersScope, filters, clientdata.TTLStockFilters)
	return filters, nil
}

func (r *Reference) load(table, key string, fresh bool, out interface{}) bool {
	if r.repo == nil {
		return false
	}
	found, err := r.repo.Load(table, key, fresh, out)
	if err != nil {
		r.log.Warn().Err(err).Str("table", table).Str("key", key).Msg("Cache read failed")
		return false
	}
	return found
}

func (r *Reference) store(table, key string, data interface{}, ttl time.Duration) {
	if r.repo == nil {
		return
	}
	if err := r.repo.Store(table, key, data, ttl); err != nil {
		r.log.Warn().Err(err).Str("table", table).Str("key", key).Msg("Cache write failed")
	}
}
