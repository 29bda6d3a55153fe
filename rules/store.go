package rules

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rizwana27/psa/db"
)

// ErrNotFound is returned by Get when a notification id is unknown.
var ErrNotFound = errors.New("notification not found")

// Filter narrows a List call. Zero values match everything.
type Filter struct {
	Category   string
	Type       string
	Priority   string
	UnreadOnly bool
	Limit      int
}

// Store holds emitted notifications. The evaluator only depends on this
// interface, so session-scoped in-memory storage and durable Postgres
// storage are interchangeable.
//
// Lifecycle of a notification: unread -> read (MarkRead, idempotent),
// unread|read -> dismissed (Dismiss removes the record, terminal). MarkRead
// and Dismiss on an unknown id are silent no-ops: dismissal must never
// resurrect or error.
type Store interface {
	Append(ctx context.Context, n *db.SmartNotification) error
	Get(ctx context.Context, id string) (*db.SmartNotification, error)
	List(ctx context.Context, f Filter) ([]db.SmartNotification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Dismiss(ctx context.Context, id string) error
	UnreadCount(ctx context.Context) (int, error)
}

// MemoryStore is the session-scoped Store used when no database is wired in.
// Concurrent appends, read-state toggles and removals are serialized by a
// single mutex with last-writer-wins semantics per notification id.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*db.SmartNotification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*db.SmartNotification)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Append(ctx context.Context, n *db.SmartNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *n
	s.items[n.ID] = &clone
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*db.SmartNotification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *n
	return &clone, nil
}

func (s *MemoryStore) List(ctx context.Context, f Filter) ([]db.SmartNotification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]db.SmartNotification, 0, len(s.items))
	for _, n := range s.items {
		if f.Category != "" && n.Category != f.Category {
			continue
		}
		if f.Type != "" && n.Type != f.Type {
			continue
		}
		if f.Priority != "" && n.Priority != f.Priority {
			continue
		}
		if f.UnreadOnly && n.Read {
			continue
		}
		result = append(result, *n)
	}

	// newest first
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})

	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}
	return result, nil
}

func (s *MemoryStore) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.items[id]; ok {
		n.Read = true
	}
	return nil
}

func (s *MemoryStore) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.items {
		n.Read = true
	}
	return nil
}

func (s *MemoryStore) Dismiss(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) UnreadCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.items {
		if !n.Read {
			count++
		}
	}
	return count, nil
}
