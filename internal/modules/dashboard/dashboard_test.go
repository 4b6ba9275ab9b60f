package dashboard

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/kquant/dashboard/internal/clients/backend"
	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/modules/account"
	"github.com/kquant/dashboard/internal/view"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu         sync.Mutex
	dashErr    error
	balanceErr error
	calls      int
}

func (f *fakeBackend) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.dashErr != nil {
		return nil, f.dashErr
	}
	created := "2024-01-05T10:15:00"
	return &domain.Dashboard{
		Stats: domain.DashboardStats{
			TotalBalance:      12500000,
			ProfitLoss:        -250000,
			ProfitLossPercent: -1.96,
			ActiveStrategies:  1,
			TodayTrades:       3,
		},
		ActiveStrategies: []domain.ActiveStrategy{
			{ID: 1, Name: "골든크로스", Status: "active", ProfitLoss: 120000, ProfitLossPercent: 2.4},
		},
		RecentActivities: []domain.RecentActivity{
			{ID: 7, Type: "BUY", Symbol: "005930", Quantity: 10, Price: 71000, Time: "2024-01-05T10:15:00"},
			{ID: 8, Type: "SELL", Symbol: "000660", Quantity: 2, Price: 130000, CreatedAt: &created},
		},
	}, nil
}

func (f *fakeBackend) Balance(ctx context.Context) (*domain.KISBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return &domain.KISBalance{
		Output2: []domain.KISBalanceSummary{{
			TotalEvalAmount:     "12500000",
			Deposit:             "2500000",
			Withdrawable:        "2400000",
			StockEvalAmount:     "10000000",
			EvalProfitLossTotal: "-250000",
			PurchaseAmountTotal: "10250000",
		}},
	}, nil
}

func awaitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func load(t *testing.T, b Backend) *Controller {
	c := NewController(b, nil, zerolog.Nop())
	t.Cleanup(c.Close)
	require.NoError(t, c.Load())
	_ = c.Await(awaitCtx(t))
	return c
}

func TestController_Overview(t *testing.T) {
	c := load(t, &fakeBackend{})

	v := c.View()
	assert.Equal(t, view.KindContent, v.State.Kind)
	require.NotNil(t, v.Stats)
	assert.Equal(t, "₩12,500,000", v.Stats.TotalBalanceText)
	assert.Equal(t, "-1.96%", v.Stats.ProfitLossPercentText)
	assert.Equal(t, view.ToneDown, v.Stats.Tone)

	require.Len(t, v.ActiveStrategies, 1)
	assert.Equal(t, "+2.40%", v.ActiveStrategies[0].ProfitLossPercentText)

	require.Len(t, v.RecentActivities, 2)
	assert.Equal(t, "매수", v.RecentActivities[0].SideLabel)
	assert.Equal(t, "10주", v.RecentActivities[0].QuantityText)
	assert.Equal(t, "매도", v.RecentActivities[1].SideLabel)
	assert.NotEmpty(t, v.RecentActivities[1].TimeText)

	require.NotNil(t, v.Account)
	assert.Equal(t, "₩10,000,000", v.Account.StockValueText)
	assert.Empty(t, v.AccountError)
}

func TestController_BalanceFailureIsSoft(t *testing.T) {
	c := load(t, &fakeBackend{balanceErr: &backend.APIError{Kind: backend.KindServer, StatusCode: 502, Message: "잔고 조회 실패"}})

	v := c.View()
	assert.Equal(t, view.KindContent, v.State.Kind)
	assert.NotNil(t, v.Stats)
	assert.Nil(t, v.Account)
	assert.Equal(t, "잔고 조회 실패", v.AccountError)
}

func TestController_MissingCredentials(t *testing.T) {
	c := load(t, &fakeBackend{balanceErr: &backend.APIError{Kind: backend.KindClient, StatusCode: http.StatusBadRequest, Message: "bad request"}})

	assert.Equal(t, account.CredentialsMissingMessage, c.View().AccountError)
}

func TestController_DashboardFailureIsPrimary(t *testing.T) {
	c := load(t, &fakeBackend{dashErr: &backend.APIError{Kind: backend.KindServer, StatusCode: 500, Message: "대시보드 데이터를 불러오지 못했습니다"}})

	v := c.View()
	assert.Equal(t, view.KindError, v.State.Kind)
	assert.Equal(t, "대시보드 데이터를 불러오지 못했습니다", v.State.Message)
	assert.True(t, v.State.Retryable)
	assert.Nil(t, v.Stats)
	assert.Empty(t, v.RecentActivities)
}

func TestController_Refresh(t *testing.T) {
	b := &fakeBackend{}
	c := load(t, b)

	require.NoError(t, c.Refresh())
	require.NoError(t, c.Await(awaitCtx(t)))

	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Equal(t, 2, b.calls)
}
