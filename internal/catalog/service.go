package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"uniscout-backend/internal/cache"
	"uniscout-backend/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound   = errors.New("university not found")
	ErrSlugExists = errors.New("slug already exists")
)

const snapshotCacheKey = "catalog:snapshot"

// Service owns the in-process catalog snapshot. The snapshot slice is
// replaced wholesale on reload and never mutated, so readers can share it.
type Service struct {
	repo     Repository
	cache    cache.Cache
	cacheTTL time.Duration
	location *time.Location
	log      *slog.Logger

	group singleflight.Group

	mu       sync.RWMutex
	snapshot []University
	loaded   bool
	// reads numbers each snapshot read as it starts; stored is the number of
	// the read currently held. An older read never replaces a newer one.
	reads  uint64
	stored uint64
}

func NewService(repo Repository, c cache.Cache, cacheTTL time.Duration, location *time.Location, log *slog.Logger) *Service {
	if c == nil {
		c = cache.NewNoop()
	}
	if location == nil {
		location = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:     repo,
		cache:    c,
		cacheTTL: cacheTTL,
		location: location,
		log:      log,
	}
}

// Load fills the snapshot, preferring the shared cache over the database.
func (s *Service) Load(ctx context.Context) error {
	read := s.nextRead()
	if cached, ok, err := s.cache.Get(ctx, snapshotCacheKey); err == nil && ok {
		var items []University
		if err := json.Unmarshal(cached, &items); err == nil {
			s.store(items, read)
			s.log.Info("catalog load: cache hit", slog.Int("count", len(items)))
			return nil
		}
	}
	return s.Refresh(ctx)
}

// Refresh reloads the snapshot from the repository. Concurrent callers share
// one database read.
func (s *Service) Refresh(ctx context.Context) error {
	_, err, _ := s.group.Do("refresh", func() (interface{}, error) {
		read := s.nextRead()
		items, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		if !s.store(items, read) {
			s.log.Info("catalog refresh: superseded", slog.Int("count", len(items)))
			return nil, nil
		}
		if payload, err := json.Marshal(items); err == nil {
			_ = s.cache.Set(ctx, snapshotCacheKey, payload, s.cacheTTL)
		}
		s.log.Info("catalog refresh: ok", slog.Int("count", len(items)))
		return nil, nil
	})
	return err
}

func (s *Service) nextRead() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return s.reads
}

func (s *Service) store(items []University, read uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if read < s.stored {
		return false
	}
	s.stored = read
	s.snapshot = items
	s.loaded = true
	return true
}

// Snapshot returns the current catalog. Callers must not modify it.
func (s *Service) Snapshot(ctx context.Context) ([]University, error) {
	s.mu.RLock()
	items, loaded := s.snapshot, s.loaded
	s.mu.RUnlock()
	if loaded {
		return items, nil
	}

	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, nil
}

func (s *Service) Search(ctx context.Context, spec FilterSpec) (Result, error) {
	items, err := s.Snapshot(ctx)
	if err != nil {
		return Result{}, err
	}
	return Query(items, spec)
}

func (s *Service) Options(ctx context.Context) (Options, error) {
	items, err := s.Snapshot(ctx)
	if err != nil {
		return Options{}, err
	}
	return FilterOptions(items), nil
}

func (s *Service) Get(ctx context.Context, slug string) (University, error) {
	slug = strings.TrimSpace(slug)
	items, err := s.Snapshot(ctx)
	if err != nil {
		return University{}, err
	}
	for _, u := range items {
		if u.Slug == slug || u.ID == slug {
			return u, nil
		}
	}

	// the snapshot may lag behind a write made by another instance
	u, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return University{}, ErrNotFound
		}
		return University{}, err
	}
	return u, nil
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (University, error) {
	now := time.Now().In(s.location)
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	item := fromUpsert(req)
	item.ID = primitive.NewObjectID().Hex()
	item.Slug = slug
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.repo.Create(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return University{}, ErrSlugExists
		}
		return University{}, err
	}
	s.invalidate(ctx)
	return item, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (University, error) {
	item := fromUpsert(req)
	set := bson.M{
		"name":         item.Name,
		"country":      item.Country,
		"region":       item.Region,
		"description":  item.Description,
		"website":      item.Website,
		"logo_url":     item.LogoURL,
		"type":         item.Type,
		"size":         item.Size,
		"ranking":      item.Ranking,
		"rating":       item.Rating,
		"students":     item.Students,
		"partnerships": item.Partnerships,
		"fields":       item.Fields,
		"location":     item.Location,
		"updated_at":   time.Now().In(s.location),
	}
	if slug := strings.TrimSpace(req.Slug); slug != "" {
		set["slug"] = slug
	}

	updated, err := s.repo.Update(ctx, strings.TrimSpace(id), set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return University{}, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return University{}, ErrSlugExists
		}
		return University{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.invalidate(ctx)
	return nil
}

// invalidate reloads after a write. An in-flight refresh may have read before
// the write, so the write starts its own read instead of joining it.
func (s *Service) invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, snapshotCacheKey)
	s.group.Forget("refresh")
	if err := s.Refresh(ctx); err != nil {
		s.log.Warn("catalog refresh: failed after write", slog.String("error", err.Error()))
	}
}

func fromUpsert(req UpsertRequest) University {
	fields := make([]string, 0, len(req.Fields))
	seen := make(map[string]struct{}, len(req.Fields))
	for _, f := range req.Fields {
		f = strings.TrimSpace(f)
		if _, dup := seen[f]; dup || f == "" {
			continue
		}
		seen[f] = struct{}{}
		fields = append(fields, f)
	}

	return University{
		Name:         strings.TrimSpace(req.Name),
		Country:      strings.TrimSpace(req.Country),
		Region:       strings.TrimSpace(req.Region),
		Description:  strings.TrimSpace(req.Description),
		Website:      strings.TrimSpace(req.Website),
		LogoURL:      strings.TrimSpace(req.LogoURL),
		Type:         req.Type,
		Size:         req.Size,
		Ranking:      req.Ranking,
		Rating:       req.Rating,
		Students:     req.Students,
		Partnerships: req.Partnerships,
		Fields:       fields,
		Location:     req.Location,
	}
}
