package middleware

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	apperrors "equiprent/pkg/errors"
	httputil "equiprent/pkg/http"
)

const (
	IdempotencyKeyHeader     = "Idempotency-Key"
	IdempotentReplayedHeader = "Idempotent-Replayed"
)

type IdempotencyStore interface {
	Get(key string) (*CachedResponse, bool)
	// Begin marks key as in flight; false means another request holds it.
	Begin(key string) bool
	// Finish clears the in-flight mark and caches response when non-nil.
	Finish(key string, response *CachedResponse)
	Stop()
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	CreatedAt  time.Time
}

type InMemoryIdempotencyStore struct {
	mu       sync.Mutex
	store    map[string]*CachedResponse
	inFlight map[string]struct{}
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		store:    make(map[string]*CachedResponse),
		inFlight: make(map[string]struct{}),
		ttl:      ttl,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}

	go store.cleanup()

	return store
}

func (s *InMemoryIdempotencyStore) Get(key string) (*CachedResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	response, exists := s.store[key]
	if !exists {
		return nil, false
	}
	if s.now().Sub(response.CreatedAt) > s.ttl {
		delete(s.store, key)
		return nil, false
	}
	return response, true
}

func (s *InMemoryIdempotencyStore) Begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *InMemoryIdempotencyStore) Finish(key string, response *CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight, key)
	if response != nil {
		response.CreatedAt = s.now()
		s.store[key] = response
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictExpired()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, response := range s.store {
		if s.now().Sub(response.CreatedAt) > s.ttl {
			delete(s.store, key)
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the stored 2xx response for a repeated Idempotency-Key
// on the same method and path. A concurrent duplicate gets 409.
func Idempotency(store IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey := r.Header.Get(IdempotencyKeyHeader)
			if idempotencyKey == "" || !requiresContentType(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Method + " " + r.URL.Path + " " + idempotencyKey

			if cached, found := store.Get(key); found {
				replayCachedResponse(w, cached)
				return
			}

			if !store.Begin(key) {
				_ = httputil.WriteError(w, apperrors.Conflict("A request with this Idempotency-Key is already in progress"))
				return
			}

			capture := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK, body: &bytes.Buffer{}}
			var cached *CachedResponse
			defer func() { store.Finish(key, cached) }()

			next.ServeHTTP(capture, r)

			if shouldCacheResponse(capture.statusCode) {
				cached = &CachedResponse{
					StatusCode: capture.statusCode,
					Headers:    w.Header().Clone(),
					Body:       capture.body.Bytes(),
				}
			}
		})
	}
}

func replayCachedResponse(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		if key == RequestIDHeader {
			continue
		}
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set(IdempotentReplayedHeader, "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}

func shouldCacheResponse(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
