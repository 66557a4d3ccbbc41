package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"uniscout-backend/internal/auth"
	"uniscout-backend/internal/httpx"
	"uniscout-backend/internal/models"
	"uniscout-backend/internal/transport"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminUserCreateRequest struct {
	Username string `json:"username" validate:"trimmed_required"`
	Email    string `json:"email" validate:"omitempty,email_address"`
	Password string `json:"password" validate:"required"`
}

type AdminUserPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

func (s *Server) AdminCreateUser(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req AdminUserCreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		log.Warn("admin users create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Username, req.Email = normalizeAdminUserIdentity(req.Username, req.Email)
	if err := s.Val.Struct(req); err != nil {
		log.Warn("admin users create: validation error")
		details := httpx.ValidationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}
	if s.Users == nil {
		log.Warn("admin users create: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "admin users not configured", nil)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"password": "min"})
			return
		}
		log.Error("admin users create: hash error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "password error", nil)
		return
	}

	now := time.Now().In(s.Cfg.Timezone)
	user := models.User{
		ID:           primitive.NewObjectID().Hex(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUserExists) {
			log.Warn("admin users create: duplicate", slog.String("username", req.Username))
			transport.WriteError(w, http.StatusConflict, err.Error(), nil)
			return
		}
		log.Error("admin users create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin users create: ok", slog.String("user_id", user.ID), slog.String("username", user.Username))
	transport.WriteJSON(w, http.StatusCreated, user)
}

func (s *Server) AdminUpdateUserPassword(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		log.Warn("admin users password: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req AdminUserPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		log.Warn("admin users password: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("admin users password: validation error")
		details := httpx.ValidationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}
	if s.Users == nil {
		log.Warn("admin users password: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "admin users not configured", nil)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"password": "min"})
			return
		}
		log.Error("admin users password: hash error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "password error", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.Users.UpdatePassword(ctx, id, hash, time.Now().In(s.Cfg.Timezone)); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Warn("admin users password: not found", slog.String("user_id", id))
			transport.WriteError(w, http.StatusNotFound, "user not found", nil)
			return
		}
		log.Error("admin users password: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin users password: ok", slog.String("user_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func normalizeAdminUserIdentity(username, email string) (string, string) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if strings.Contains(username, "@") {
		username = strings.ToLower(username)
	}
	email = strings.ToLower(email)
	return username, email
}
