package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore remembers processed event ids.
type IdempotencyStore interface {
	Contains(ctx context.Context, eventID string) (bool, error)
	Add(ctx context.Context, eventID string) error
}

// MemoryIdempotencyStore keeps ids in process memory until ttl elapses.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{entries: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

func (s *MemoryIdempotencyStore) Contains(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.entries[id]
	if ok && s.now().Sub(ts) > s.ttl {
		delete(s.entries, id)
		return false, nil
	}
	return ok, nil
}

func (s *MemoryIdempotencyStore) Add(_ context.Context, id string) error {
	s.mu.Lock()
	s.entries[id] = s.now()
	s.mu.Unlock()
	return nil
}

// RedisIdempotencyStore shares processed ids across consumer replicas.
type RedisIdempotencyStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisIdempotencyStore(client redis.Cmdable, prefix string, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisIdempotencyStore) Contains(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+id).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *RedisIdempotencyStore) Add(ctx context.Context, id string) error {
	return s.client.Set(ctx, s.prefix+id, 1, s.ttl).Err()
}

// Idempotent skips events already recorded in store. Ids are recorded only
// after inner succeeds; a store outage falls through to processing.
func Idempotent(store IdempotencyStore, inner Handler, l *slog.Logger) Handler {
	return func(ctx context.Context, e *Event) error {
		if e.EventID == "" {
			return inner(ctx, e)
		}
		seen, err := store.Contains(ctx, e.EventID)
		if err != nil {
			l.WarnContext(ctx, "idempotency lookup failed", slog.String("event_id", e.EventID), slog.String("error", err.Error()))
		}
		if seen {
			return ErrDuplicate
		}
		if err := inner(ctx, e); err != nil {
			return err
		}
		if err := store.Add(ctx, e.EventID); err != nil {
			l.WarnContext(ctx, "idempotency record failed", slog.String("event_id", e.EventID), slog.String("error", err.Error()))
		}
		return nil
	}
}
