package session

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog/internal/db"
	"blog/internal/log"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(context.Background(), db.DriverSQLite, filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(conn, db.DriverSQLite, log.Nop()))
	_, err = conn.Exec(`INSERT INTO user_table (username, email, password) VALUES ('alice', 'alice@example.com', 'x')`)
	require.NoError(t, err)
	return conn
}

func TestSQLStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(newTestDB(t), db.DriverSQLite, time.Hour)

	token, err := store.Create(ctx, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	id, err := store.Lookup(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.NoError(t, store.Delete(ctx, token))
	_, err = store.Lookup(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Lookup(ctx, "no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(newTestDB(t), db.DriverSQLite, time.Hour)
	now := time.Now()
	store.now = func() time.Time { return now }

	stale, err := store.Create(ctx, 1)
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	fresh, err := store.Create(ctx, 1)
	require.NoError(t, err)

	now = now.Add(45 * time.Minute)
	_, err = store.Lookup(ctx, stale)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Lookup(ctx, fresh)
	assert.NoError(t, err)

	n, err := store.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCookiesSessionRoundTrip(t *testing.T) {
	c := NewCookies("test-secret", time.Hour, false)

	rec := httptest.NewRecorder()
	require.NoError(t, c.SetSession(rec, "tok-123"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	token, ok := c.SessionToken(req)
	assert.True(t, ok)
	assert.Equal(t, "tok-123", token)

	ck := rec.Result().Cookies()[0]
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
}

func TestCookiesRejectForgedSession(t *testing.T) {
	signer := NewCookies("secret-a", time.Hour, false)
	verifier := NewCookies("secret-b", time.Hour, false)

	rec := httptest.NewRecorder()
	require.NoError(t, signer.SetSession(rec, "tok"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])

	_, ok := verifier.SessionToken(req)
	assert.False(t, ok)

	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	plain.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tok"})
	_, ok = signer.SessionToken(plain)
	assert.False(t, ok)
}

func TestFlashes(t *testing.T) {
	c := NewCookies("test-secret", time.Hour, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	require.NoError(t, c.AddFlash(rec, req, "first"))
	require.NoError(t, c.AddFlash(rec, req, "second"))

	// Next request carries the last flash cookie written.
	cookies := rec.Result().Cookies()
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[len(cookies)-1])

	rec2 := httptest.NewRecorder()
	assert.Equal(t, []string{"first", "second"}, c.PopFlashes(rec2, next))

	cleared := rec2.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)

	assert.Empty(t, c.PopFlashes(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestManager(t *testing.T) {
	m := NewManager(NewSQLStore(newTestDB(t), db.DriverSQLite, time.Hour), NewCookies("s", time.Hour, false))

	anon := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok, err := m.UserID(anon)
	require.NoError(t, err)
	assert.False(t, ok)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Login(context.Background(), rec, anon, 1))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	id, ok, err := m.UserID(req)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)

	require.NoError(t, m.Logout(context.Background(), httptest.NewRecorder(), req))
	_, ok, err = m.UserID(req)
	require.NoError(t, err)
	assert.False(t, ok, "server-side session is gone after logout")
}

func TestManagerLoginRevokesCarriedSession(t *testing.T) {
	m := NewManager(NewSQLStore(newTestDB(t), db.DriverSQLite, time.Hour), NewCookies("s", time.Hour, false))
	ctx := context.Background()

	first := httptest.NewRecorder()
	require.NoError(t, m.Login(ctx, first, httptest.NewRequest(http.MethodGet, "/", nil), 1))
	carried := httptest.NewRequest(http.MethodPost, "/login", nil)
	carried.AddCookie(first.Result().Cookies()[0])
	oldToken, ok := m.Cookies.SessionToken(carried)
	require.True(t, ok)

	second := httptest.NewRecorder()
	require.NoError(t, m.Login(ctx, second, carried, 1))

	_, err := m.Store.Lookup(ctx, oldToken)
	assert.ErrorIs(t, err, ErrNotFound)

	fresh := httptest.NewRequest(http.MethodGet, "/", nil)
	fresh.AddCookie(second.Result().Cookies()[0])
	newToken, ok := m.Cookies.SessionToken(fresh)
	require.True(t, ok)
	assert.NotEqual(t, oldToken, newToken)
	_, err = m.Store.Lookup(ctx, newToken)
	assert.NoError(t, err)
}

func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("BLOG_TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("BLOG_TEST_REDIS_URL not set, skipping redis tests")
	}
	ctx := context.Background()
	store, err := NewRedisStore(ctx, redisURL, time.Minute)
	require.NoError(t, err)
	defer store.Close()

	token, err := store.Create(ctx, 7)
	require.NoError(t, err)
	id, err := store.Lookup(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	require.NoError(t, store.Delete(ctx, token))
	_, err = store.Lookup(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}
