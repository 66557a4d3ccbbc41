package handlers

import (
	"log/slog"
	"net/http"

	"uniscout-backend/internal/auth"
	"uniscout-backend/internal/config"
	"uniscout-backend/internal/middleware"
	"uniscout-backend/internal/validation"
)

// Server holds the admin account endpoints. Auth is nil when JWT_SECRET is
// not configured; Users is nil when accounts live only in the environment.
type Server struct {
	Cfg   *config.Config
	Users UserStore
	Val   *validation.Validator
	Log   *slog.Logger
	Auth  *auth.Manager
}

func (s *Server) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return s.Log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return s.Log.With(slog.String("request_id", id))
	}
	return s.Log
}
