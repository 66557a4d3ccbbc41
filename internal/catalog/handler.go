package catalog

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"uniscout-backend/internal/httpx"
	"uniscout-backend/internal/middleware"
	"uniscout-backend/internal/transport"
	"uniscout-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

// RegisterRules adds the catalog validation tags to v.
func RegisterRules(v *validation.Validator) {
	v.RegisterString("academic_field", IsField)
}

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		val:     val,
		log:     log,
	}
}

type listResponse struct {
	Data       []University `json:"data"`
	TotalCount int          `json:"totalCount"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	spec, err := ParseFilterSpec(r.URL.Query())
	if err != nil {
		log.Warn("universities list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.service.Search(ctx, spec)
	if err != nil {
		log.Error("universities list: load error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("universities list: ok",
		slog.Int("count", len(res.Items)),
		slog.Int("total", res.TotalCount),
		slog.String("sort", spec.SortKey),
	)
	transport.WriteJSON(w, http.StatusOK, listResponse{
		Data:       res.Items,
		TotalCount: res.TotalCount,
		Page:       spec.Page,
		Limit:      spec.PageSize,
	})
}

func (h *Handler) Filters(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts, err := h.service.Options(ctx)
	if err != nil {
		log.Error("universities filters: load error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, opts)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing slug", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Get(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("universities get: not found", slog.String("slug", slug))
			transport.WriteError(w, http.StatusNotFound, "university not found", nil)
			return
		}
		log.Error("universities get: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) decodeUpsert(w http.ResponseWriter, r *http.Request, action string) (UpsertRequest, bool) {
	log := h.logWithRequest(r)
	var req UpsertRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		log.Warn("admin universities " + action + ": invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return req, false
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin universities " + action + ": validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return req, false
	}
	return req, true
}

func (h *Handler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	req, ok := h.decodeUpsert(w, r, "create")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.service.Create(ctx, req)
	if err != nil {
		if errors.Is(err, ErrSlugExists) {
			transport.WriteError(w, http.StatusConflict, "slug already exists", nil)
			return
		}
		log.Error("admin universities create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin universities create: ok", slog.String("university_id", item.ID))
	transport.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}
	req, ok := h.decodeUpsert(w, r, "update")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.service.Update(ctx, id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			log.Warn("admin universities update: not found", slog.String("university_id", id))
			transport.WriteError(w, http.StatusNotFound, "university not found", nil)
		case errors.Is(err, ErrSlugExists):
			transport.WriteError(w, http.StatusConflict, "slug already exists", nil)
		default:
			log.Error("admin universities update: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	log.Info("admin universities update: ok", slog.String("university_id", id))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("admin universities delete: not found", slog.String("university_id", id))
			transport.WriteError(w, http.StatusNotFound, "university not found", nil)
			return
		}
		log.Error("admin universities delete: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin universities delete: ok", slog.String("university_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
