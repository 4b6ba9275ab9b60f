package di

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/kquant/dashboard/internal/config"
	"github.com/kquant/dashboard/internal/session"
	testingpkg "github.com/kquant/dashboard/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(dataDir, baseURL string) *config.Config {
	return &config.Config{
		DataDir:              dataDir,
		APIBaseURL:           baseURL,
		APITimeout:           2 * time.Second,
		LogLevel:             "error",
		Port:                 0,
		AllowedOrigins:       []string{"http://localhost:3000"},
		PriceTickSchedule:    "@every 10s",
		SearchDebounce:       10 * time.Millisecond,
		StockPageSize:        50,
		StrategyPageSize:     20,
		TradePageSize:        20,
		BacktestPageSize:     10,
		BacktestPollInterval: time.Second,
	}
}

// localConfig points at a port nothing listens on
func localConfig(dir string) *config.Config {
	return testConfig(dir, "http://127.0.0.1:1")
}

func wire(t *testing.T, cfg *config.Config) (*Container, *JobInstances) {
	t.Helper()
	container, sched, jobs, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, sched)
	t.Cleanup(container.Close)
	return container, jobs
}

func signIn(c *Container) {
	c.SessionStore.SignIn(testingpkg.NewAuthResponseFixture(), "mock")
}

func TestWire(t *testing.T) {
	tmpDir := t.TempDir()
	container, jobs := wire(t, localConfig(tmpDir))

	assert.NotNil(t, container.SessionDB)
	assert.NotNil(t, container.CacheDB)
	assert.NotNil(t, container.BackendClient)
	assert.NotNil(t, container.SessionHandler)
	assert.NotNil(t, container.DashboardHandler)
	assert.NotNil(t, container.MarketHandler)
	assert.NotNil(t, container.StocksHandler)
	assert.NotNil(t, container.WatchlistHandler)
	assert.NotNil(t, container.StrategiesHandler)
	assert.NotNil(t, container.BacktestHandler)
	assert.NotNil(t, container.AccountHandler)
	assert.NotNil(t, container.TradesHandler)
	assert.Len(t, container.Views(), 7)

	require.NotNil(t, jobs)
	assert.Equal(t, "price_tick", jobs.PriceTick.Name())
	assert.Equal(t, "session_expiry", jobs.SessionExpiry.Name())
	assert.NotNil(t, jobs.CacheCleanup)

	assert.FileExists(t, localConfig(tmpDir).SessionDBPath())
	assert.FileExists(t, filepath.Join(tmpDir, "cache.db"))
	assert.False(t, container.SessionStore.IsAuthenticated())
}

func TestWire_InvalidSchedule(t *testing.T) {
	c := localConfig(t.TempDir())
	c.PriceTickSchedule = "not a schedule"

	container, _, _, err := Wire(c, zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, container)
}

func TestWire_RestoresPersistedSession(t *testing.T) {
	tmpDir := t.TempDir()

	first, _, _, err := Wire(localConfig(tmpDir), zerolog.Nop())
	require.NoError(t, err)
	signIn(first)
	require.True(t, first.SessionStore.IsAuthenticated())
	first.Close()

	second, _ := wire(t, localConfig(tmpDir))
	assert.True(t, second.SessionStore.IsAuthenticated())
	assert.Equal(t, "token-123", second.SessionStore.AccessToken())
	assert.Equal(t, "MOCK", second.SessionStore.Current().TradingMode)
}

func TestWire_UnauthorizedSignsOut(t *testing.T) {
	fb := testingpkg.NewFakeBackend(t)
	fb.Router.Get("/auth/me", testingpkg.Detail(http.StatusUnauthorized, "Could not validate credentials"))

	container, _ := wire(t, testConfig(t.TempDir(), fb.URL()))

	var reasons []string
	container.SessionStore.OnSignOut(func(reason string) {
		reasons = append(reasons, reason)
	})
	signIn(container)

	_, err := container.AuthService.Me(context.Background())
	require.Error(t, err)

	assert.False(t, container.SessionStore.IsAuthenticated())
	assert.Equal(t, []string{session.ReasonUnauthorized}, reasons)
	assert.False(t, container.Watchlist.Loaded())

	reqs := fb.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer token-123", reqs[0].Authorization)
}

func TestWire_MeRefreshesUser(t *testing.T) {
	user := testingpkg.NewUserFixture()
	user.FullName = "김철수"

	fb := testingpkg.NewFakeBackend(t)
	fb.Router.Get("/auth/me", testingpkg.JSON(http.StatusOK, user))

	container, _ := wire(t, testConfig(t.TempDir(), fb.URL()))
	signIn(container)

	got, err := container.AuthService.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "김철수", got.FullName)
	assert.Equal(t, "김철수", container.SessionStore.Current().User.FullName)
	assert.Equal(t, 1, fb.Count("/auth/me"))
}

func TestWire_SignOutUnmountsViews(t *testing.T) {
	container, _ := wire(t, localConfig(t.TempDir()))
	signIn(container)

	container.SessionStore.SignOut(session.ReasonLogout)

	assert.False(t, container.SessionStore.IsAuthenticated())
	assert.Empty(t, container.Watchlist.Symbols())
}
