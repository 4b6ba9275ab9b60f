package session

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kquant/dashboard/internal/domain"
	"github.com/kquant/dashboard/internal/events"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE session (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    data BLOB NOT NULL,
    expires_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
`

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func signedToken(t *testing.T, exp time.Time) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func authResponse(t *testing.T, exp time.Time) *domain.AuthResponse {
	return &domain.AuthResponse{
		AccessToken:  signedToken(t, exp),
		RefreshToken: "refresh",
		TokenType:    "bearer",
		User:         &domain.User{ID: 7, Email: "trader@example.com", FullName: "Trader"},
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	assert.Equal(t, exp.Unix(), TokenExpiry(signedToken(t, exp), time.Minute).Unix())

	fallback := TokenExpiry("not-a-jwt", time.Hour)
	assert.WithinDuration(t, time.Now().Add(time.Hour), fallback, 5*time.Second)
}

func TestRepository_SaveLoadDelete(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	sess := domain.Session{
		User:            &domain.User{ID: 1, Email: "a@b.com"},
		AccessToken:     "access",
		RefreshToken:    "refresh",
		IsAuthenticated: true,
		TradingMode:     "MOCK",
	}
	require.NoError(t, repo.Save(sess, time.Now().Add(time.Hour)))

	loaded, err = repo.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.Equal(t, "a@b.com", loaded.User.Email)
	assert.Equal(t, "MOCK", loaded.TradingMode)

	require.NoError(t, repo.Delete())
	loaded, err = repo.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRepository_ExpiredRowIsInvisibleAndDeleted(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	require.NoError(t, repo.Save(domain.Session{AccessToken: "x"}, time.Now().Add(-time.Minute)))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	deleted, err := repo.DeleteExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	exp, err := repo.ExpiresAt()
	require.NoError(t, err)
	assert.True(t, exp.IsZero())
}

func TestStore_SignInPersistsAndEmits(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	bus := events.NewBus(zerolog.Nop())
	var got []map[string]interface{}
	bus.Subscribe(events.SessionChanged, func(e *events.Event) { got = append(got, e.Data) })

	store := NewStore(repo, events.NewManager(bus, zerolog.Nop()), zerolog.Nop())
	sess := store.SignIn(authResponse(t, time.Now().Add(time.Hour)), "mock")

	assert.True(t, sess.IsAuthenticated)
	assert.Equal(t, "MOCK", sess.TradingMode)
	assert.True(t, store.IsAuthenticated())
	assert.NotEmpty(t, store.AccessToken())

	persisted, err := repo.Load()
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, store.AccessToken(), persisted.AccessToken)

	require.Len(t, got, 1)
	assert.Equal(t, true, got[0]["authenticated"])
	assert.Equal(t, ReasonLogin, got[0]["reason"])
}

func TestStore_SignOutClearsEverything(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	store := NewStore(repo, nil, zerolog.Nop())
	store.SignIn(authResponse(t, time.Now().Add(time.Hour)), "")

	var reasons []string
	store.OnSignOut(func(reason string) { reasons = append(reasons, reason) })

	store.SignOut(ReasonLogout)
	store.SignOut(ReasonLogout)

	sess := store.Current()
	assert.False(t, sess.IsAuthenticated)
	assert.Nil(t, sess.User)
	assert.Empty(t, sess.AccessToken)
	assert.Empty(t, sess.RefreshToken)
	assert.Equal(t, []string{ReasonLogout}, reasons)

	persisted, err := repo.Load()
	require.NoError(t, err)
	assert.Nil(t, persisted)
}

func TestStore_HydrateRestoresSession(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	first := NewStore(repo, nil, zerolog.Nop())
	first.SignIn(authResponse(t, time.Now().Add(time.Hour)), "REAL")

	second := NewStore(repo, nil, zerolog.Nop())
	require.NoError(t, second.Hydrate())

	assert.True(t, second.IsAuthenticated())
	assert.Equal(t, first.AccessToken(), second.AccessToken())
	assert.Equal(t, "trader@example.com", second.Current().User.Email)
}

func TestStore_HydrateDropsExpiredToken(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	// Row outlives the token itself
	sess := domain.Session{
		User:            &domain.User{Email: "a@b.com"},
		AccessToken:     signedToken(t, time.Now().Add(-time.Minute)),
		IsAuthenticated: true,
	}
	require.NoError(t, repo.Save(sess, time.Now().Add(time.Hour)))

	store := NewStore(repo, nil, zerolog.Nop())
	require.NoError(t, store.Hydrate())

	assert.False(t, store.IsAuthenticated())
	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_CurrentReturnsCopy(t *testing.T) {
	store := NewStore(nil, nil, zerolog.Nop())
	store.SignIn(authResponse(t, time.Now().Add(time.Hour)), "")

	sess := store.Current()
	sess.User.Email = "changed@example.com"

	assert.Equal(t, "trader@example.com", store.Current().User.Email)
}

func TestExpiryJob_SignsOutExpiredSession(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	store := NewStore(repo, nil, zerolog.Nop())
	store.SignIn(authResponse(t, time.Now().Add(time.Hour)), "")

	job := NewExpiryJob(store, repo, zerolog.Nop())
	require.NoError(t, job.Run())
	assert.True(t, store.IsAuthenticated())

	job.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	require.NoError(t, job.Run())
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, "session_expiry", job.Name())
}

func TestStore_ConcurrentReaders(t *testing.T) {
	store := NewStore(nil, nil, zerolog.Nop())
	resp := authResponse(t, time.Now().Add(time.Hour))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.SignIn(resp, "")
		}()
		go func() {
			defer wg.Done()
			sess := store.Current()
			// A reader sees either nothing or a full session
			if sess.IsAuthenticated {
				assert.NotEmpty(t, sess.AccessToken)
				assert.NotNil(t, sess.User)
			}
		}()
	}
	wg.Wait()
}
