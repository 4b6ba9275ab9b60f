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

func (stubBackend) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	return &domain.Dashboard{Stats: domain.DashboardStats{TotalBalance: 1000000, TodayTrades: 2}}, nil
}

func (stubBackend) Balance(ctx context.Context) (*domain.KISBalance, error) {
	return &domain.KISBalance{}, nil
}

func serve(router http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleOverview(t *testing.T) {
	h := NewHandler(stubBackend{}, nil, time.Second, zerolog.Nop())
	t.Cleanup(h.Unmount)
	router := chi.NewRouter()
	h.RegisterRoutes(router)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/dashboard"},
		{http.MethodPost, "/dashboard/refresh"},
	} {
		rec := serve(router, tc.method, tc.path)
		require.Equal(t, http.StatusOK, rec.Code, tc.path)

		var body struct {
			Data struct {
				View  map[string]interface{} `json:"view"`
				Stats map[string]interface{} `json:"stats"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "content", body.Data.View["kind"])
		assert.Equal(t, "₩1,000,000", body.Data.Stats["total_balance_text"])
		assert.EqualValues(t, 2, body.Data.Stats["today_trades"])
	}

	rec := serve(router, http.MethodDelete, "/dashboard")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
