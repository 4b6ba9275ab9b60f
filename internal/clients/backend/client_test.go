package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kquant/dashboard/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func newTestClient(t *testing.T, router http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/api/v1", 2*time.Second, staticToken("tok-123"), zerolog.Nop())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_AttachesBearerAndRequestID(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/dashboard", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeJSON(w, http.StatusOK, domain.Dashboard{Stats: domain.DashboardStats{TotalBalance: 1000000, ActiveStrategies: 2}})
	})

	d, err := newTestClient(t, r).Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1000000.0, d.Stats.TotalBalance)
	assert.Equal(t, 2, d.Stats.ActiveStrategies)
}

func TestClient_SurfacesBackendDetailVerbatim(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/account/balance", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "계좌 정보를 불러오는데 실패했습니다"})
	})

	_, err := newTestClient(t, r).Balance(context.Background())
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindServer, apiErr.Kind)
	assert.Equal(t, "계좌 정보를 불러오는데 실패했습니다", apiErr.Error())
	assert.True(t, apiErr.Retryable())
}

func TestClient_FallbackWhenNoDetail(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/market/chart/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := newTestClient(t, r).Chart(context.Background(), "005930", domain.Interval1d, 30)
	require.Error(t, err)
	assert.Equal(t, ChartFallback, err.Error())
}

func TestClient_ValidationDetailList(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/strategies", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"detail": []map[string]interface{}{
				{"loc": []string{"body", "name"}, "msg": "field required"},
				{"loc": []string{"body", "strategy_type"}, "msg": "invalid enum"},
			},
		})
	})

	_, err := newTestClient(t, r).CreateStrategy(context.Background(), domain.StrategyForm{Name: "x"}, nil)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindClient, apiErr.Kind)
	assert.Equal(t, "field required; invalid enum", apiErr.Message)
	assert.False(t, apiErr.Retryable())
}

func TestClient_TimeoutKind(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/market/price/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	server := httptest.NewServer(r)
	defer server.Close()

	client := NewClient(server.URL+"/api/v1", 50*time.Millisecond, nil, zerolog.Nop())
	_, err := client.Price(context.Background(), "005930")

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindTimeout, apiErr.Kind)
	assert.Equal(t, PriceFallback, apiErr.Message)
}

func TestClient_NetworkKind(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(url, time.Second, nil, zerolog.Nop())
	_, err := client.WatchlistSymbols(context.Background())

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetwork, apiErr.Kind)
}

func TestClient_CanceledContext(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/dashboard", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, r).Dashboard(ctx)
	require.Error(t, err)
	assert.True(t, IsCanceled(err))
}

func TestClient_UnauthorizedHook(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
	})
	r.Post("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
	})

	client := newTestClient(t, r)
	var calls int32
	client.OnUnauthorized(func() { atomic.AddInt32(&calls, 1) })

	_, err := client.Me(context.Background())
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	_, err = client.Login(context.Background(), domain.LoginRequest{Email: "a@b.c", Password: "password1"})
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Incorrect email or password", err.Error())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "anonymous calls never tear down the session")
}

func TestClient_DecodeError(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/watchlist/symbols", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	})

	_, err := newTestClient(t, r).WatchlistSymbols(context.Background())
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindDecode, apiErr.Kind)
	assert.Error(t, apiErr.Unwrap())
}

func TestClient_ListStrategiesDecodesParams(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/strategies", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ACTIVE", r.URL.Query().Get("status"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("page_size"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"strategies": []map[string]interface{}{{
				"id":            7,
				"name":          "모멘텀 A",
				"strategy_type": "MOMENTUM",
				"status":        "ACTIVE",
				"parameters":    map[string]interface{}{"short_window": 5, "long_window": 20},
			}},
			"total":     21,
			"page":      2,
			"page_size": 20,
		})
	})

	list, err := newTestClient(t, r).ListStrategies(context.Background(), 2, 20, domain.StatusActive)
	require.NoError(t, err)
	require.Len(t, list.Strategies, 1)
	assert.Equal(t, 21, list.Total)

	params, ok := list.Strategies[0].Parameters.(domain.MomentumParams)
	require.True(t, ok)
	assert.Equal(t, 5, params.FastPeriod)
	assert.Equal(t, 20, params.SlowPeriod)
}

func TestClient_CreateStrategySendsTypedParams(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/strategies", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "BREAKOUT", body["strategy_type"])
		params := body["parameters"].(map[string]interface{})
		assert.Equal(t, 0.5, params["k"])
		body["id"] = 3
		body["status"] = "INACTIVE"
		writeJSON(w, http.StatusCreated, body)
	})

	form := domain.StrategyForm{Name: "돌파", Type: domain.StrategyBreakout}
	s, err := newTestClient(t, r).CreateStrategy(context.Background(), form, domain.BreakoutParams{K: 0.5})
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.ID)
	assert.Equal(t, domain.StatusInactive, s.Status)
	assert.Equal(t, domain.BreakoutParams{K: 0.5}, s.Parameters)
}

func TestClient_ListStocksQuery(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/stocks", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "KOSPI", q.Get("market_type"))
		assert.Equal(t, "", q.Get("sector"))
		assert.Equal(t, "market_cap", q.Get("sort_by"))
		assert.Equal(t, "desc", q.Get("sort_order"))
		assert.Equal(t, "100", q.Get("skip"))
		assert.Equal(t, "50", q.Get("limit"))
		writeJSON(w, http.StatusOK, domain.StockList{Stocks: []domain.Stock{{Symbol: "005930", Name: "삼성전자"}}, Total: 2500})
	})

	list, err := newTestClient(t, r).ListStocks(context.Background(), domain.StockQuery{
		MarketType: domain.MarketKOSPI,
		SortBy:     domain.SortMarketCap,
		SortOrder:  domain.SortDesc,
		Skip:       100,
		Limit:      50,
	})
	require.NoError(t, err)
	assert.Equal(t, 2500, list.Total)
}

func TestClient_CollectEndpoints(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/market/collect/daily/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "D", r.URL.Query().Get("period"))
		writeJSON(w, http.StatusOK, domain.CollectResult{Symbol: chi.URLParam(r, "symbol"), Data: make([]domain.OHLCV, 3)})
	})
	r.Post("/api/v1/market/collect/minute/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5m", r.URL.Query().Get("interval"))
		writeJSON(w, http.StatusOK, domain.CollectResult{Symbol: chi.URLParam(r, "symbol"), Total: 10})
	})

	client := newTestClient(t, r)

	daily, err := client.CollectDaily(context.Background(), "005930")
	require.NoError(t, err)
	assert.Equal(t, 3, daily.Total)

	minute, err := client.CollectMinute(context.Background(), "005930", domain.Interval5m)
	require.NoError(t, err)
	assert.Equal(t, 10, minute.Total)
}

func TestClient_RemoveFromWatchlistNoContent(t *testing.T) {
	r := chi.NewRouter()
	r.Delete("/api/v1/watchlist/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, newTestClient(t, r).RemoveFromWatchlist(context.Background(), 42))
}

func TestExtractDetail(t *testing.T) {
	assert.Equal(t, "boom", extractDetail([]byte(`{"detail":"boom"}`)))
	assert.Equal(t, "a; b", extractDetail([]byte(`{"detail":[{"msg":"a"},{"msg":"b"}]}`)))
	assert.Equal(t, "nested", extractDetail([]byte(`{"detail":{"message":"nested"}}`)))
	assert.Equal(t, "top", extractDetail([]byte(`{"message":"top"}`)))
	assert.Equal(t, "", extractDetail([]byte(`not json`)))
	assert.Equal(t, "", extractDetail(nil))
}
