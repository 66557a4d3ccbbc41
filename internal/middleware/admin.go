package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"uniscout-backend/internal/auth"
	"uniscout-backend/internal/transport"
)

const AccessCookie = "uniscout_access"

// AdminAuth accepts the static X-Admin-Key, or an admin access token from the
// access cookie or an Authorization bearer header.
func AdminAuth(adminKey string, manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" && manager == nil {
				transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
				return
			}

			if key := r.Header.Get("X-Admin-Key"); adminKey != "" && key != "" &&
				subtle.ConstantTimeCompare([]byte(key), []byte(adminKey)) == 1 {
				next.ServeHTTP(w, r)
				return
			}

			if manager != nil {
				if token := accessToken(r); token != "" {
					claims, err := manager.Parse(token)
					if err == nil && claims.Role == auth.RoleAdmin {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		})
	}
}

func accessToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := r.Cookie(AccessCookie); err == nil {
		return cookie.Value
	}
	return ""
}
