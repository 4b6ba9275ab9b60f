package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kquant/dashboard/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct{}

func (stubBackend) Chart(ctx context.Context, symbol string, interval domain.Interval, days int) (*domain.ChartSeries, error) {
	return &domain.ChartSeries{Symbol: symbol, Interval: interval, Data: []domain.OHLCV{
		{Timestamp: "2024-01-01", Open: 100, High: 110, Low: 90, Close: 105},
	}}, nil
}

func (stubBackend) Price(ctx context.Context, symbol string) (*domain.Price, error) {
	return &domain.Price{Symbol: symbol, Price: 105}, nil
}

func (stubBackend) CollectDaily(ctx context.Context, symbol string) (*domain.CollectResult, error) {
	return &domain.CollectResult{Symbol: symbol, Total: 1}, nil
}

func (stubBackend) CollectMinute(ctx context.Context, symbol string, interval domain.Interval) (*domain.CollectResult, error) {
	return &domain.CollectResult{Symbol: symbol, Total: 1}, nil
}

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok, rec.Body.String())
	return data
}

func TestRegisterRoutes(t *testing.T) {
	h := NewHandler(stubBackend{}, nil, time.Second, zerolog.Nop())
	router := chi.NewRouter()

	assert.NotPanics(t, func() {
		h.RegisterRoutes(router)
	})
}

func TestHandleGetView(t *testing.T) {
	h := NewHandler(stubBackend{}, nil, time.Second, zerolog.Nop())
	defer h.Unmount()
	router := newRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/market/005930?interval=1d&days=30", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, "005930", data["symbol"])
	assert.Equal(t, "content", data["view"].(map[string]interface{})["kind"])
}

func TestHandleGetView_BadInterval(t *testing.T) {
	h := NewHandler(stubBackend{}, nil, time.Second, zerolog.Nop())
	router := newRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/market/005930?interval=2h", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleCollect_RequiresMountedSymbol(t *testing.T) {
	h := NewHandler(stubBackend{}, nil, time.Second, zerolog.Nop())
	router := newRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/market/005930/collect", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/market/005930", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/market/005930/collect", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.NotNil(t, data["last_collect"])
}

func TestHandleUnmount(t *testing.T) {
	h := NewHandler(stubBackend{}, nil, time.Second, zerolog.Nop())
	router := newRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/market/005930", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/market/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, mounted := h.slot.Peek()
	assert.False(t, mounted)
	assert.NoError(t, h.Tick())
}
