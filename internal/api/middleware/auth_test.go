package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Chorus/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T) (*AuthMiddleware, *auth.Tokens) {
	t.Helper()
	tokens := auth.NewTokens([]byte("test-secret-test-secret-32bytes!"), time.Hour)
	return NewAuthMiddleware(tokens), tokens
}

func protected(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := GetIdentity(r)
		require.True(t, ok)
		w.Write([]byte(identity.Username))
	})
}

func TestRequireAuth_ValidToken(t *testing.T) {
	mw, tokens := newTestAuth(t)
	token, err := tokens.Issue(auth.Identity{UserID: "u1", Username: "alice", Role: auth.RoleUser})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw.RequireAuth(protected(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	mw, _ := newTestAuth(t)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	rec := httptest.NewRecorder()

	mw.RequireAuth(protected(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AuthRequired")
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	mw, tokens := newTestAuth(t)
	token, _ := tokens.Issue(auth.Identity{UserID: "u1", Username: "alice", Role: auth.RoleUser})

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", token) // missing Bearer prefix
	rec := httptest.NewRecorder()

	mw.RequireAuth(protected(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_BadToken(t *testing.T) {
	mw, _ := newTestAuth(t)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()

	mw.RequireAuth(protected(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_WrongSecret(t *testing.T) {
	mw, _ := newTestAuth(t)
	other := auth.NewTokens([]byte("another-secret-another-secret-32"), time.Hour)
	token, err := other.Issue(auth.Identity{UserID: "u1", Username: "alice", Role: auth.RoleUser})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw.RequireAuth(protected(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetIdentity_AbsentWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)

	_, ok := GetIdentity(req)
	assert.False(t, ok)
}

func TestRateLimiter_BlocksPastLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := rl.Middleware(next)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different client is unaffected
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
