package di

import (
	"github.com/kquant/dashboard/internal/clientdata"
	"github.com/kquant/dashboard/internal/clients/backend"
	"github.com/kquant/dashboard/internal/database"
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
	"github.com/kquant/dashboard/internal/scheduler"
	"github.com/kquant/dashboard/internal/session"
)

// Container holds every long-lived dependency of the gateway. It is
// created by Wire and handed to the server and scheduler.
type Container struct {
	// Databases
	SessionDB *database.DB
	CacheDB   *database.DB

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Session
	SessionRepo  *session.Repository
	SessionStore *session.Store

	// Clients and shared caches
	BackendClient  *backend.Client
	ClientDataRepo *clientdata.Repository
	Watchlist      *watchlist.Cache
	StockReference *stocks.Reference
	AuthService    *auth.Service

	// View handlers
	SessionHandler    *authhandlers.Handler
	DashboardHandler  *dashboardhandlers.Handler
	MarketHandler     *markethandlers.Handler
	StocksHandler     *stockshandlers.Handler
	WatchlistHandler  *watchlisthandlers.Handler
	StrategiesHandler *strategieshandlers.Handler
	BacktestHandler   *backtesthandlers.Handler
	AccountHandler    *accounthandlers.Handler
	TradesHandler     *tradeshandlers.Handler
}

// Unmounter is a view that can drop its mounted controllers
type Unmounter interface {
	Unmount()
}

// Views lists every handler holding per-view controllers
func (c *Container) Views() []Unmounter {
	return []Unmounter{
		c.DashboardHandler,
		c.MarketHandler,
		c.StocksHandler,
		c.StrategiesHandler,
		c.BacktestHandler,
		c.AccountHandler,
		c.TradesHandler,
	}
}

// Close releases the databases
func (c *Container) Close() {
	for _, v := range c.Views() {
		v.Unmount()
	}
	if c.SessionDB != nil {
		c.SessionDB.Close()
	}
	if c.CacheDB != nil {
		c.CacheDB.Close()
	}
}

// JobInstances holds the scheduled jobs for manual triggering
type JobInstances struct {
	PriceTick     *scheduler.PriceTickJob
	SessionExpiry *session.ExpiryJob
	CacheCleanup  *clientdata.CleanupJob
}
