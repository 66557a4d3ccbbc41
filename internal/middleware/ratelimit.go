package middleware

import (
	"net/http"
	"sync"
	"time"

	"uniscout-backend/internal/httpx"
	"uniscout-backend/internal/transport"
)

// RateLimiter is a fixed-window counter keyed by client IP and path.
type RateLimiter struct {
	limit   int
	window  time.Duration
	now     func() time.Time
	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	count int
	reset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	if rl.limit <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok || now.After(b.reset) {
		if !ok && len(rl.buckets) > 10000 {
			rl.sweep(now)
		}
		rl.buckets[key] = &bucket{count: 1, reset: now.Add(rl.window)}
		return true
	}

	if b.count >= rl.limit {
		return false
	}

	b.count++
	return true
}

// sweep drops expired buckets; callers hold mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for k, b := range rl.buckets {
		if now.After(b.reset) {
			delete(rl.buckets, k)
		}
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := httpx.ClientIP(r) + ":" + r.URL.Path
		if !rl.Allow(key) {
			w.Header().Set("Retry-After", "60")
			transport.WriteMessage(w, http.StatusTooManyRequests, "Too many requests. Please try again later.", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
