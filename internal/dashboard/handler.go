package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"uniscout-backend/internal/cache"
	"uniscout-backend/internal/catalog"
	"uniscout-backend/internal/contact"
	"uniscout-backend/internal/middleware"
	"uniscout-backend/internal/transport"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = time.Minute
)

type CatalogSource interface {
	Snapshot(ctx context.Context) ([]catalog.University, error)
}

type ContactCounter interface {
	Counts(ctx context.Context) (contact.Counts, error)
}

type Handler struct {
	catalog  CatalogSource
	contacts ContactCounter
	cache    cache.Cache
	log      *slog.Logger
}

func NewHandler(catalog CatalogSource, contacts ContactCounter, c cache.Cache, log *slog.Logger) *Handler {
	if c == nil {
		c = cache.NewNoop()
	}
	return &Handler{
		catalog:  catalog,
		contacts: contacts,
		cache:    c,
		log:      log,
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	if cached, ok, err := h.cache.Get(ctx, statsCacheKey); err == nil && ok {
		log.Info("admin dashboard: cache hit")
		transport.WriteRaw(w, http.StatusOK, cached)
		return
	}

	records, err := h.catalog.Snapshot(ctx)
	if err != nil {
		log.Error("admin dashboard: catalog error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	counts, err := h.contacts.Counts(ctx)
	if err != nil {
		log.Error("admin dashboard: contacts error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	stats := Compute(records, counts)
	payload, err := json.Marshal(stats)
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "encode error", nil)
		return
	}
	if err := h.cache.Set(ctx, statsCacheKey, payload, statsCacheTTL); err != nil {
		log.Warn("admin dashboard: cache set failed", slog.String("error", err.Error()))
	}

	log.Info("admin dashboard: ok", slog.Int("universities", stats.Universities))
	transport.WriteRaw(w, http.StatusOK, payload)
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
