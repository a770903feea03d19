// Package store holds the client's observable state containers. Each Store is
// independent; a Store may persist a subset of its fields through a Persister.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Listener is called with the new and previous state after every Set.
type Listener[T any] func(next, prev T)

type Option[T any] func(*Store[T])

// WithPersistence saves partialize(state) under key after every Set and
// restores it on Rehydrate. A nil partialize persists the whole state.
func WithPersistence[T any](key string, p Persister, partialize func(T) any) Option[T] {
	return func(s *Store[T]) {
		if partialize == nil {
			partialize = func(v T) any { return v }
		}
		s.persist = &persistence{name: s.name, key: key, persister: p, logger: s.logger}
		s.partialize = partialize
	}
}

func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(s *Store[T]) { s.logger = l }
}

// Store is a mutex-guarded value with synchronous listeners. Set calls apply in
// call order and each call notifies every listener exactly once.
type Store[T any] struct {
	name string

	mu        sync.Mutex
	state     T
	listeners map[int]Listener[T]
	nextID    int

	persist    *persistence
	partialize func(T) any
	logger     *slog.Logger
}

// New creates a store named name holding initial.
func New[T any](name string, initial T, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		name:      name,
		state:     initial,
		listeners: make(map[int]Listener[T]),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.persist != nil {
		s.persist.logger = s.logger
	}
	return s
}

func (s *Store[T]) Name() string { return s.name }

// Get returns the current state. Slices and pointers inside T are shared, so
// callers must treat the snapshot as read-only.
func (s *Store[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Set applies mutate to a copy of the state, swaps it in, notifies listeners
// and schedules a background write when the store is persisted. Mutators must
// replace slices instead of writing into them.
func (s *Store[T]) Set(mutate func(*T)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	next := prev
	mutate(&next)
	s.state = next

	s.scheduleSaveLocked()
	for _, l := range s.listeners {
		l(next, prev)
	}
}

// Subscribe registers l. Listeners run with the store locked and must not call
// Set on the same store.
func (s *Store[T]) Subscribe(l Listener[T]) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Rehydrate merges the persisted fields into the current state. A store
// without persistence, or with nothing saved yet, is left untouched.
func (s *Store[T]) Rehydrate(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	data, err := s.persist.persister.Load(ctx, s.persist.key)
	if errors.Is(err, ErrNoValue) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("rehydrate %s: %w", s.name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state
	next := prev
	if err := json.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("rehydrate %s: decode: %w", s.name, err)
	}
	s.state = next
	for _, l := range s.listeners {
		l(next, prev)
	}
	s.logger.DebugContext(ctx, "store rehydrated", slog.String("store", s.name))
	return nil
}

// Flush waits until every scheduled write has been attempted.
func (s *Store[T]) Flush(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	return s.persist.flush(ctx)
}

func (s *Store[T]) scheduleSaveLocked() {
	if s.persist == nil {
		return
	}
	data, err := json.Marshal(s.partialize(s.state))
	if err != nil {
		writeFailures.WithLabelValues(s.name).Inc()
		s.logger.Error("store: encode state", slog.String("store", s.name), slog.String("error", err.Error()))
		return
	}
	s.persist.schedule(data)
}
