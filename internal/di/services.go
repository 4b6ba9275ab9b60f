package di

import (
	"fmt"

	"github.com/kquant/dashboard/internal/clientdata"
	"github.com/kquant/dashboard/internal/clients/backend"
	"github.com/kquant/dashboard/internal/config"
	"github.com/kquant/dashboard/internal/events"
	accounthandlers "github.com/kquant/dashboard/internal/modules/account/handlers"
	"github.com/kquant/dashboard/internal/modules/auth"
	authhandlers "github.com/kquant/dashboard/internal/modules/auth/handlers"
	backtesthandlers "github.com/kquant/dashboard/internal/modules/backtest/handlers"
	dashboardhandlers "github.com/kquant/dashboard/internal/modules/dashboard/handlers"
	markethandlers "github.com/kquant/dashboard/internal/modules/market/handlers"
	"github.com/kquant/dashboard/internal/modules/stocks"
	stockshandlers "github.com/kquant/dashboard/internal/modules/stocks/handlers"
	strategieshandlers "github.com/kquant/dashboard/internal/modules/strategies/handlers"
	tradeshandlers "github.com/kquant/dashboard/internal/modules/trades/handlers"
	"github.com/kquant/dashboard/internal/modules/watchlist"
	watchlisthandlers "github.com/kquant/dashboard/internal/modules/watchlist/handlers"
	"github.com/kquant/dashboard/internal/session"
	"github.com/rs/zerolog"
)

// InitializeServices builds the session, the backend client, the shared
// caches and every view handler on top of the opened databases.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	// Events
	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)
	em := container.EventManager

	// Session
	container.SessionRepo = session.NewRepository(container.SessionDB.Conn())
	container.SessionStore = session.NewStore(container.SessionRepo, em, log)
	store := container.SessionStore

	// Backend
	container.BackendClient = backend.NewClient(cfg.APIBaseURL, cfg.APITimeout, store, log)
	b := container.BackendClient
	b.OnUnauthorized(func() {
		store.SignOut(session.ReasonUnauthorized)
	})

	// Shared caches
	container.ClientDataRepo = clientdata.NewRepository(container.CacheDB.Conn())
	container.Watchlist = watchlist.NewCache(b, em, log)
	container.StockReference = stocks.NewReference(b, container.ClientDataRepo, log)

	// Views
	settle := cfg.APITimeout
	container.AuthService = auth.NewService(b, store, log)
	container.SessionHandler = authhandlers.NewHandler(container.AuthService, log)
	container.DashboardHandler = dashboardhandlers.NewHandler(b, em, settle, log)
	container.MarketHandler = markethandlers.NewHandler(b, em, settle, log).
		WithStream(markethandlers.NewPriceStream(container.EventBus, cfg.AllowedOrigins, log))
	container.StocksHandler = stockshandlers.NewHandler(
		b,
		container.StockReference,
		container.Watchlist,
		cfg.StockPageSize,
		cfg.SearchDebounce,
		em,
		settle,
		log,
	)
	container.WatchlistHandler = watchlisthandlers.NewHandler(container.Watchlist, container.StockReference, log)
	container.StrategiesHandler = strategieshandlers.NewHandler(b, cfg.StrategyPageSize, container.Watchlist, em, settle, log)
	container.BacktestHandler = backtesthandlers.NewHandler(b, cfg.BacktestPageSize, cfg.BacktestPollInterval, em, settle, log)
	container.AccountHandler = accounthandlers.NewHandler(b, em, settle, log)
	container.TradesHandler = tradeshandlers.NewHandler(b, cfg.TradePageSize, em, settle, log)

	// Signing out drops everything fetched under the old token
	store.OnSignOut(func(reason string) {
		container.Watchlist.Clear()
		for _, v := range container.Views() {
			v.Unmount()
		}
		log.Info().Str("reason", reason).Msg("Cleared views after sign-out")
	})

	if err := store.Hydrate(); err != nil {
		// A corrupt row only costs a fresh login
		log.Warn().Err(err).Msg("Failed to restore session")
	}

	log.Info().Bool("authenticated", store.IsAuthenticated()).Msg("Services initialized")
	return nil
}
