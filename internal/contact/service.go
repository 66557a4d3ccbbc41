package contact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound      = errors.New("contact request not found")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidType   = errors.New("invalid request type")
)

type Notifier interface {
	SendContactNotification(ctx context.Context, item Submission) (string, error)
}

type Service struct {
	repo     Repository
	store    AttachmentStore
	location *time.Location
	notifier Notifier
}

func NewService(repo Repository, store AttachmentStore, location *time.Location, notifier Notifier) *Service {
	if store == nil {
		store = DiscardStore{}
	}
	if location == nil {
		location = time.UTC
	}
	return &Service{
		repo:     repo,
		store:    store,
		location: location,
		notifier: notifier,
	}
}

// Create stores the attachments of an already validated draft and records
// the submission.
func (s *Service) Create(ctx context.Context, d Draft) (Submission, error) {
	rt, ok := ParseRequestType(d.RequestType)
	if !ok {
		return Submission{}, ErrInvalidType
	}

	now := time.Now().In(s.location)
	item := Submission{
		ID:                 primitive.NewObjectID().Hex(),
		RequestType:        rt,
		UniversityName:     strings.TrimSpace(d.UniversityName),
		RepresentativeName: strings.TrimSpace(d.RepresentativeName),
		Country:            strings.TrimSpace(d.Country),
		PhoneNumber:        strings.TrimSpace(d.PhoneNumber),
		Email:              strings.TrimSpace(d.Email),
		Message:            strings.TrimSpace(d.Message),
		Attachments:        make([]StoredAttachment, 0, len(d.Attachments)),
		Status:             StatusNew,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	keys := make([]string, 0, len(d.Attachments))
	for _, a := range d.Attachments {
		key := attachmentKey(item.ID, a.Name)
		location, err := s.store.Put(ctx, key, seekable(a.Content), a.MimeType)
		if err != nil {
			return Submission{}, s.rollback(keys, fmt.Errorf("store attachment %s: %w", a.Name, err))
		}
		keys = append(keys, key)
		item.Attachments = append(item.Attachments, StoredAttachment{
			Name:     a.Name,
			MimeType: a.MimeType,
			Size:     a.Size,
			Location: location,
		})
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return Submission{}, s.rollback(keys, err)
	}
	return item, nil
}

// rollback removes attachments already uploaded for a submission that failed.
// It runs on a fresh context because the request context may be the reason
// for the failure.
func (s *Service) rollback(keys []string, cause error) error {
	if len(keys) == 0 {
		return cause
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	errs := []error{cause}
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("remove orphaned attachment: %w", err))
		}
	}
	return errors.Join(errs...)
}

func seekable(r io.Reader) io.ReadSeeker {
	if r == nil {
		return bytes.NewReader(nil)
	}
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs
	}
	data, _ := io.ReadAll(r)
	return bytes.NewReader(data)
}

func (s *Service) ListAdmin(ctx context.Context, filter ListFilter, limit, offset int64) ([]Submission, int64, error) {
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	if filter.Status != "" && !IsValidStatus(filter.Status) {
		return nil, 0, ErrInvalidStatus
	}
	if raw := strings.TrimSpace(filter.RequestType); raw != "" {
		rt, ok := ParseRequestType(raw)
		if !ok {
			return nil, 0, ErrInvalidType
		}
		filter.RequestType = string(rt)
	}

	items, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (Submission, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !IsValidStatus(status) {
		return Submission{}, ErrInvalidStatus
	}

	updated, err := s.repo.UpdateStatus(ctx, strings.TrimSpace(id), status, time.Now().In(s.location))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Submission{}, ErrNotFound
		}
		return Submission{}, err
	}
	return updated, nil
}

// Counts summarises stored submissions for the admin dashboard.
type Counts struct {
	Total         int            `json:"total"`
	ByStatus      map[string]int `json:"byStatus"`
	ByRequestType map[string]int `json:"byRequestType"`
}

func (s *Service) Counts(ctx context.Context) (Counts, error) {
	byStatus, err := s.repo.CountBy(ctx, "status")
	if err != nil {
		return Counts{}, err
	}
	byType, err := s.repo.CountBy(ctx, "request_type")
	if err != nil {
		return Counts{}, err
	}

	total := 0
	for _, n := range byStatus {
		total += n
	}
	return Counts{Total: total, ByStatus: byStatus, ByRequestType: byType}, nil
}

func (s *Service) NotifyNew(ctx context.Context, item Submission) error {
	if s.notifier == nil {
		return nil
	}
	_, err := s.notifier.SendContactNotification(ctx, item)
	return err
}
