package contact

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"uniscout-backend/internal/httpx"
	"uniscout-backend/internal/middleware"
	"uniscout-backend/internal/transport"
	"uniscout-backend/internal/validation"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
)

const (
	maxRequestBody = MaxFiles*MaxFileSize + 1<<20
	maxFormMemory  = 8 << 20
)

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

// Create accepts the multipart contact form. Every error body is
// {"message": "...; ..."} so the form can split it back onto its fields.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("contact create: body too large")
			transport.WriteMessage(w, http.StatusRequestEntityTooLarge, "Uploaded files exceed the allowed total size.", nil)
			return
		}
		log.Warn("contact create: invalid form", slog.String("error", err.Error()))
		transport.WriteMessage(w, http.StatusBadRequest, "Invalid form data.", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	draft, files, err := draftFromForm(r.MultipartForm)
	defer closeAll(files)
	if err != nil {
		log.Warn("contact create: unreadable attachment", slog.String("error", err.Error()))
		transport.WriteMessage(w, http.StatusBadRequest, "Could not read uploaded file.", nil)
		return
	}

	if fe := Validate(draft); len(fe) > 0 {
		log.Warn("contact create: validation error", slog.Int("fields", len(fe)))
		transport.WriteMessage(w, http.StatusBadRequest, fe.Message(), fe)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	item, err := h.service.Create(ctx, draft)
	if err != nil {
		log.Error("contact create: store error", slog.String("error", err.Error()))
		transport.WriteMessage(w, http.StatusInternalServerError, "Could not save your request. Please try again later.", nil)
		return
	}

	go func(created Submission) {
		notifyCtx, notifyCancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer notifyCancel()
		if err := h.service.NotifyNew(notifyCtx, created); err != nil {
			h.log.Warn("contact create: notification failed",
				slog.String("contact_id", created.ID),
				slog.String("error", err.Error()),
			)
		}
	}(item)

	log.Info("contact create: ok",
		slog.String("contact_id", item.ID),
		slog.String("request_type", string(item.RequestType)),
		slog.Int("attachments", len(item.Attachments)),
	)
	transport.WriteJSON(w, http.StatusCreated, item)
}

func draftFromForm(form *multipart.Form) (Draft, []multipart.File, error) {
	get := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	d := Draft{
		RequestType:        get(WireRequestType),
		UniversityName:     get(WireUniversityName),
		RepresentativeName: get(WireName),
		Country:            get(WireCountry),
		PhoneNumber:        get(WirePhoneNumber),
		Email:              get(WireEmail),
		Message:            get(WireMessage),
	}

	headers := form.File[WireFiles]
	files := make([]multipart.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return d, files, err
		}
		files = append(files, f)
		d.Attachments = append(d.Attachments, Attachment{
			Name:     fh.Filename,
			MimeType: sniffMIME(f, fh.Header.Get("Content-Type")),
			Size:     fh.Size,
			Content:  f,
		})
	}
	return d, files, nil
}

// sniffMIME trusts the file content over the declared type. f is rewound.
func sniffMIME(f multipart.File, declared string) string {
	detected, err := mimetype.DetectReader(f)
	if _, seekErr := f.Seek(0, io.SeekStart); seekErr != nil || err != nil {
		return declared
	}
	for _, allowed := range AllowedMIMETypes {
		if detected.Is(allowed) {
			return allowed
		}
	}
	return detected.String()
}

func closeAll(files []multipart.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 20, 100)
	if err != nil {
		log.Warn("admin contacts list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	filter := ListFilter{
		RequestType: strings.TrimSpace(r.URL.Query().Get("requestType")),
		Status:      strings.TrimSpace(r.URL.Query().Get("status")),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, total, err := h.service.ListAdmin(ctx, filter, limit, offset)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			transport.WriteError(w, http.StatusBadRequest, "invalid query", map[string]string{"status": "oneof"})
			return
		}
		if errors.Is(err, ErrInvalidType) {
			transport.WriteError(w, http.StatusBadRequest, "invalid query", map[string]string{"requestType": "oneof"})
			return
		}
		log.Error("admin contacts list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin contacts list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (h *Handler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		log.Warn("admin contacts status: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req StatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		log.Warn("admin contacts status: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin contacts status: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"status": "oneof"})
			return
		}
		if errors.Is(err, ErrNotFound) {
			log.Warn("admin contacts status: not found", slog.String("contact_id", id))
			transport.WriteError(w, http.StatusNotFound, "contact request not found", nil)
			return
		}
		log.Error("admin contacts status: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin contacts status: ok", slog.String("contact_id", id), slog.String("status", item.Status))
	transport.WriteJSON(w, http.StatusOK, item)
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
