package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"uniscout-backend/internal/auth"
	"uniscout-backend/internal/config"
	"uniscout-backend/internal/middleware"
	"uniscout-backend/internal/models"
	"uniscout-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[string]models.User{}}
}

func (m *memoryUsers) FindByLogin(ctx context.Context, login string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == login || (u.Email != "" && u.Email == login) {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (m *memoryUsers) Create(ctx context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || (user.Email != "" && u.Email == user.Email) {
			return ErrUserExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memoryUsers) UpdatePassword(ctx context.Context, id, hash string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = updatedAt
	m.users[id] = u
	return nil
}

func newTestServer(users UserStore) *Server {
	return &Server{
		Cfg: &config.Config{
			AdminUser:     "admin",
			AdminPassword: "env-secret",
			Timezone:      time.UTC,
		},
		Users: users,
		Val:   validation.New(),
		Log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Auth: &auth.Manager{
			Secret:     []byte("test-secret"),
			AccessTTL:  time.Minute,
			RefreshTTL: time.Hour,
			Issuer:     "uniscout-backend",
		},
	}
}

func newAdminRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Post("/admin/login", s.AdminLogin)
	r.Post("/admin/refresh", s.AdminRefresh)
	r.Post("/admin/logout", s.AdminLogout)
	r.Post("/admin/users", s.AdminCreateUser)
	r.Patch("/admin/users/{id}/password", s.AdminUpdateUserPassword)
	return r
}

func do(h http.Handler, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAdminLoginWithEnvironmentAccount(t *testing.T) {
	s := newTestServer(nil)
	h := newAdminRouter(s)

	rec := do(h, http.MethodPost, "/admin/login", `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodPost, "/admin/login", `{"username":" admin ","password":"env-secret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AdminLoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	claims, err := s.Auth.Parse(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, envAdminID, claims.Subject)
	assert.Equal(t, auth.RoleAdmin, claims.Role)

	access := cookieNamed(rec, middleware.AccessCookie)
	require.NotNil(t, access)
	assert.True(t, access.HttpOnly)
	require.NotNil(t, cookieNamed(rec, RefreshCookie))
}

func TestAdminLoginRequiresFields(t *testing.T) {
	h := newAdminRouter(newTestServer(nil))

	rec := do(h, http.MethodPost, "/admin/login", `{"username":"  ","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "username")

	rec = do(h, http.MethodPost, "/admin/login", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid json")
}

func TestAdminLoginNotConfigured(t *testing.T) {
	s := newTestServer(nil)
	s.Auth = nil
	rec := do(newAdminRouter(s), http.MethodPost, "/admin/login", `{"username":"admin","password":"env-secret"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminUserLifecycle(t *testing.T) {
	users := newMemoryUsers()
	s := newTestServer(users)
	h := newAdminRouter(s)

	rec := do(h, http.MethodPost, "/admin/users", `{"username":"Scout@Example.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/admin/users", `{"username":"scout","email":"Scout@Example.com","password":"first-password"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "scout@example.com", created.Email)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	rec = do(h, http.MethodPost, "/admin/users", `{"username":"scout","password":"another-password"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(h, http.MethodPost, "/admin/login", `{"username":"scout@example.com","password":"first-password"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp AdminLoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	claims, err := s.Auth.Parse(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.Subject)

	rec = do(h, http.MethodPatch, "/admin/users/"+created.ID+"/password", `{"password":"second-password"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodPost, "/admin/login", `{"username":"scout","password":"first-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = do(h, http.MethodPost, "/admin/login", `{"username":"scout","password":"second-password"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodPatch, "/admin/users/missing/password", `{"password":"second-password"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRefreshAndLogout(t *testing.T) {
	s := newTestServer(nil)
	h := newAdminRouter(s)

	rec := do(h, http.MethodPost, "/admin/refresh", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	access, err := s.Auth.NewAccessToken(envAdminID, auth.RoleAdmin)
	require.NoError(t, err)
	rec = do(h, http.MethodPost, "/admin/refresh", "", &http.Cookie{Name: RefreshCookie, Value: access})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "access tokens must not refresh")

	refresh, err := s.Auth.NewRefreshToken(envAdminID, auth.RoleAdmin)
	require.NoError(t, err)
	rec = do(h, http.MethodPost, "/admin/refresh", "", &http.Cookie{Name: RefreshCookie, Value: refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, cookieNamed(rec, middleware.AccessCookie))

	rec = do(h, http.MethodPost, "/admin/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := cookieNamed(rec, RefreshCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)
}
