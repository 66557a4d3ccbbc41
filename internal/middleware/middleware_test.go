package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"uniscout-backend/internal/auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	now = now.Add(time.Minute + time.Second)
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiterMiddleware(t *testing.T) {
	h := NewRateLimiter(1, time.Minute).Middleware(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/contact", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/contact", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message"`)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	id := uuid.NewString()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, id, seen)
}

func TestAdminAuth(t *testing.T) {
	manager := &auth.Manager{Secret: []byte("s"), AccessTTL: time.Minute, RefreshTTL: time.Hour, Issuer: "test"}
	h := AdminAuth("key-1", manager)(okHandler)

	serve := func(mutate func(*http.Request)) int {
		req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
		mutate(req)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(func(r *http.Request) {}))
	assert.Equal(t, http.StatusUnauthorized, serve(func(r *http.Request) { r.Header.Set("X-Admin-Key", "wrong") }))
	assert.Equal(t, http.StatusOK, serve(func(r *http.Request) { r.Header.Set("X-Admin-Key", "key-1") }))

	access, err := manager.NewAccessToken("u1", auth.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, serve(func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+access) }))
	assert.Equal(t, http.StatusOK, serve(func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessCookie, Value: access}) }))

	refresh, err := manager.NewRefreshToken("u1", auth.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+refresh) }))

	viewer, err := manager.NewAccessToken("u2", "viewer")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+viewer) }))
}

func TestAdminAuthNotConfigured(t *testing.T) {
	rec := httptest.NewRecorder()
	AdminAuth("", nil)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"https://uniscout.example"})(okHandler)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/contact", nil)
	req.Header.Set("Origin", "https://uniscout.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://uniscout.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
