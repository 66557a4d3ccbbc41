package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"uniscout-backend/internal/auth"
	"uniscout-backend/internal/httpx"
	"uniscout-backend/internal/middleware"
	"uniscout-backend/internal/transport"
)

const (
	RefreshCookie = "uniscout_refresh"
	refreshPath   = "/api/v1/admin"

	// envAdminID is the token subject for the account configured through
	// ADMIN_USER and ADMIN_PASSWORD.
	envAdminID = "env-admin"
)

var errInvalidCredentials = errors.New("invalid credentials")

type AdminLoginRequest struct {
	Username string `json:"username" validate:"trimmed_required"`
	Password string `json:"password" validate:"required"`
}

type AdminLoginResponse struct {
	Status       string `json:"status"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

func (s *Server) AdminLogin(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req AdminLoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		log.Warn("admin login: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Username, _ = normalizeAdminUserIdentity(req.Username, "")
	if err := s.Val.Struct(req); err != nil {
		log.Warn("admin login: validation error")
		details := httpx.ValidationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}
	if s.Auth == nil {
		log.Warn("admin login: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	subject, err := s.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errInvalidCredentials) {
			log.Warn("admin login: invalid credentials", slog.String("username", req.Username))
			transport.WriteError(w, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		log.Error("admin login: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	resp, err := s.issueAdminSession(w, subject)
	if err != nil {
		log.Error("admin login: token error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "token error", nil)
		return
	}
	log.Info("admin login: ok", slog.String("username", req.Username), slog.String("subject", subject))
	transport.WriteJSON(w, http.StatusOK, resp)
}

// authenticate checks stored admin accounts first and falls back to the
// environment-configured account. It returns the token subject.
func (s *Server) authenticate(ctx context.Context, username, password string) (string, error) {
	if s.Users != nil {
		user, err := s.Users.FindByLogin(ctx, username)
		switch {
		case err == nil:
			if auth.ComparePassword(user.PasswordHash, password) != nil {
				return "", errInvalidCredentials
			}
			return user.ID, nil
		case !errors.Is(err, ErrUserNotFound):
			return "", err
		}
	}

	if s.Cfg.AdminPassword == "" {
		return "", errInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.Cfg.AdminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.Cfg.AdminPassword)) == 1
	if !userOK || !passOK {
		return "", errInvalidCredentials
	}
	return envAdminID, nil
}

func (s *Server) AdminRefresh(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	if s.Auth == nil {
		log.Warn("admin refresh: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
		return
	}

	refreshCookie, err := r.Cookie(RefreshCookie)
	if err != nil || refreshCookie.Value == "" {
		log.Warn("admin refresh: missing refresh token")
		transport.WriteError(w, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}

	claims, err := s.Auth.ParseRefresh(refreshCookie.Value)
	if err != nil || claims.Role != auth.RoleAdmin {
		log.Warn("admin refresh: invalid refresh token")
		transport.WriteError(w, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}

	resp, err := s.issueAdminSession(w, claims.Subject)
	if err != nil {
		log.Error("admin refresh: token error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "token error", nil)
		return
	}
	log.Info("admin refresh: ok", slog.String("subject", claims.Subject))
	transport.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) AdminLogout(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	clearAuthCookies(w, s.Cfg.CookieSecure)
	log.Info("admin logout: ok")
	transport.WriteJSON(w, http.StatusOK, AdminLoginResponse{Status: "ok"})
}

func (s *Server) issueAdminSession(w http.ResponseWriter, subject string) (AdminLoginResponse, error) {
	accessToken, err := s.Auth.NewAccessToken(subject, auth.RoleAdmin)
	if err != nil {
		return AdminLoginResponse{}, err
	}
	refreshToken, err := s.Auth.NewRefreshToken(subject, auth.RoleAdmin)
	if err != nil {
		return AdminLoginResponse{}, err
	}
	setAuthCookies(w, accessToken, refreshToken, s.Auth.AccessTTL, s.Auth.RefreshTTL, s.Cfg.CookieSecure)
	return AdminLoginResponse{
		Status:       "ok",
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func setAuthCookies(w http.ResponseWriter, access, refresh string, accessTTL, refreshTTL time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    access,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(accessTTL.Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    refresh,
		Path:     refreshPath,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(refreshTTL.Seconds()),
	})
}

func clearAuthCookies(w http.ResponseWriter, secure bool) {
	expire := time.Now().Add(-1 * time.Hour)
	for name, path := range map[string]string{middleware.AccessCookie: "/", RefreshCookie: refreshPath} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     path,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
			Expires:  expire,
			MaxAge:   -1,
		})
	}
}
