package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/kquant/dashboard/internal/clients/backend"
	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu        sync.Mutex
	logins    []domain.LoginRequest
	loginErr  error
	logoutErr error
	logouts   int
	user      *domain.User
}

func (f *fakeBackend) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, req)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &domain.AuthResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         &domain.User{ID: 1, Email: req.Email, FullName: "Trader"},
	}, nil
}

func (f *fakeBackend) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	return &domain.AuthResponse{
		AccessToken: "access",
		User:        &domain.User{ID: 2, Email: req.Email, FullName: req.FullName},
	}, nil
}

func (f *fakeBackend) Me(ctx context.Context) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user, nil
}

func (f *fakeBackend) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	return f.logoutErr
}

func newService(b Backend) (*Service, *session.Store) {
	store := session.NewStore(nil, nil, zerolog.Nop())
	return NewService(b, store, zerolog.Nop()), store
}

func TestLogin_DefaultsTradingMode(t *testing.T) {
	b := &fakeBackend{}
	svc, store := newService(b)

	sess, err := svc.Login(context.Background(), domain.LoginRequest{Email: " trader@example.com ", Password: "password123"})
	require.NoError(t, err)
	assert.True(t, sess.IsAuthenticated)
	assert.Equal(t, "MOCK", sess.TradingMode)
	assert.Equal(t, "access", store.AccessToken())

	require.Len(t, b.logins, 1)
	assert.Equal(t, "trader@example.com", b.logins[0].Email)
	assert.Equal(t, "MOCK", b.logins[0].KISTradingMode)
}

func TestLogin_ValidationNeverCallsBackend(t *testing.T) {
	b := &fakeBackend{}
	svc, store := newService(b)

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "nope", Password: "short", KISTradingMode: "paper"})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "유효한 이메일을 입력해주세요", ve.Fields["email"])
	assert.Equal(t, "비밀번호는 최소 8자 이상이어야 합니다", ve.Fields["password"])
	assert.Contains(t, ve.Fields, "kis_trading_mode")
	assert.Empty(t, b.logins)
	assert.False(t, store.IsAuthenticated())
}

func TestLogin_BackendRejection(t *testing.T) {
	b := &fakeBackend{loginErr: &backend.APIError{Kind: backend.KindClient, StatusCode: http.StatusUnauthorized, Message: "Incorrect email or password"}}
	svc, store := newService(b)

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "trader@example.com", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", err.Error())
	assert.False(t, store.IsAuthenticated())
}

func TestRegister_SignsIn(t *testing.T) {
	svc, _ := newService(&fakeBackend{})

	_, err := svc.Register(context.Background(), domain.RegisterRequest{Email: "new@example.com", Password: "password123"})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "full_name")

	sess, err := svc.Register(context.Background(), domain.RegisterRequest{Email: "new@example.com", Password: "password123", FullName: " 홍길동 "})
	require.NoError(t, err)
	assert.Equal(t, "홍길동", sess.User.FullName)

	v := svc.View()
	assert.True(t, v.Authenticated)
	assert.Equal(t, "MOCK", v.TradingMode)
	assert.NotNil(t, v.ExpiresAt)
}

func TestLogout_ClearsEvenWhenBackendFails(t *testing.T) {
	b := &fakeBackend{logoutErr: errors.New("connection refused")}
	svc, store := newService(b)

	var reasons []string
	store.OnSignOut(func(reason string) { reasons = append(reasons, reason) })

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "trader@example.com", Password: "password123"})
	require.NoError(t, err)

	svc.Logout(context.Background())
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.AccessToken())
	assert.Equal(t, []string{session.ReasonLogout}, reasons)
	assert.Equal(t, 1, b.logouts)

	// Signed out already: no backend call
	svc.Logout(context.Background())
	assert.Equal(t, 1, b.logouts)
	assert.Equal(t, SessionView{}, svc.View())
}

func TestMe(t *testing.T) {
	b := &fakeBackend{user: &domain.User{ID: 1, Email: "trader@example.com", HasKISCredentials: true}}
	svc, store := newService(b)

	_, err := svc.Me(context.Background())
	assert.ErrorIs(t, err, ErrNotSignedIn)

	_, err = svc.Login(context.Background(), domain.LoginRequest{Email: "trader@example.com", Password: "password123"})
	require.NoError(t, err)

	user, err := svc.Me(context.Background())
	require.NoError(t, err)
	assert.True(t, user.HasKISCredentials)
	assert.True(t, store.Current().User.HasKISCredentials)
}
