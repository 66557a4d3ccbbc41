package contact

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

type memoryRepo struct {
	mu        sync.Mutex
	items     []Submission
	createErr error
}

func (r *memoryRepo) Create(ctx context.Context, item Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.items = append(r.items, item)
	return nil
}

func (r *memoryRepo) matching(filter ListFilter) []Submission {
	out := make([]Submission, 0)
	for _, it := range r.items {
		if filter.RequestType != "" && string(it.RequestType) != filter.RequestType {
			continue
		}
		if filter.Status != "" && it.Status != filter.Status {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.matching(filter)
	if offset >= int64(len(items)) {
		return []Submission{}, nil
	}
	end := min(offset+limit, int64(len(items)))
	return items[offset:end], nil
}

func (r *memoryRepo) Count(ctx context.Context, filter ListFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.matching(filter))), nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) (Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Status = status
			r.items[i].UpdatedAt = updatedAt
			return r.items[i], nil
		}
	}
	return Submission{}, mongo.ErrNoDocuments
}

func (r *memoryRepo) CountBy(ctx context.Context, field string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int{}
	for _, it := range r.items {
		switch field {
		case "status":
			out[it.Status]++
		case "request_type":
			out[string(it.RequestType)]++
		}
	}
	return out, nil
}

type storedObject struct {
	key         string
	contentType string
	data        []byte
}

type memoryStore struct {
	mu      sync.Mutex
	objects []storedObject
	putErr  error
	puts    int
}

func (s *memoryStore) Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErr != nil && s.puts > 1 {
		return "", s.putErr
	}
	s.objects = append(s.objects, storedObject{key: key, contentType: contentType, data: data})
	return "mem://" + key, nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, obj := range s.objects {
		if obj.key == key {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			return nil
		}
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
