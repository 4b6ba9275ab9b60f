package stocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/events"
	"github.com/kquant/dashboard/internal/fetchstate"
	"github.com/rs/zerolog"
)

// SearchBoxLimit caps search-as-you-type results
const SearchBoxLimit = 20

// SearchBox is the search-as-you-type stock picker. Keystrokes are
// debounced; a result for an older query never replaces a newer one.
type SearchBox struct {
	debounce *fetchstate.Debouncer
	results  *fetchstate.Controller[string, domain.StockList]
	log      zerolog.Logger

	mu    sync.Mutex
	query string
}

// NewSearchBox creates a search box firing delay after the last keystroke
func NewSearchBox(b Backend, delay time.Duration, em *events.Manager, log zerolog.Logger) *SearchBox {
	return &SearchBox{
		debounce: fetchstate.NewDebouncer(delay),
		results: fetchstate.New(func(ctx context.Context, q string) (domain.StockList, error) {
			if q == "" {
				return domain.StockList{Stocks: []domain.Stock{}}, nil
			}
			list, err := b.SearchStocks(ctx, domain.StockSearch{Query: q, Limit: SearchBoxLimit})
			if err != nil {
				return domain.StockList{}, err
			}
			return *list, nil
		}, fetchstate.Options{
			Name:     "stocks.search_box",
			Policy:   fetchstate.ErrorClearsData,
			Log:      log,
			OnChange: em.TransitionHook("stocks"),
		}),
		log: log.With().Str("component", "stock_search_box").Logger(),
	}
}

// Type records the current input. Clearing the input empties the results
// immediately; anything else is searched once typing pauses.
func (s *SearchBox) Type(query string) error {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	s.query = query
	s.mu.Unlock()

	if query == "" {
		s.debounce.Cancel()
		_, err := s.results.SetDeps("")
		return err
	}

	s.debounce.Schedule(func(ctx context.Context) {
		if _, err := s.results.SetDeps(query); err != nil {
			s.log.Debug().Err(err).Str("query", query).Msg("Search dropped")
		}
	})
	return nil
}

// Query returns the latest input
func (s *SearchBox) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Pending reports whether the latest input has not been searched yet
func (s *SearchBox) Pending() bool {
	searched, _ := s.results.Deps()
	return searched != s.Query()
}

// Snapshot returns the results state
func (s *SearchBox) Snapshot() fetchstate.Snapshot[domain.StockList] {
	return s.results.Snapshot()
}

// Await waits for the current search to settle
func (s *SearchBox) Await(ctx context.Context) error {
	_, err := s.results.Await(ctx)
	return err
}

// Close drops any pending search and unmounts the box
func (s *SearchBox) Close() {
	s.debounce.Close()
	s.results.Close()
}
