package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fiffu/ligawatch/lib/models"
)

// Store wraps a Backend with the read-modify-write discipline shared by the
// HTTP surface and the poller. A process-local mutex serializes the mutating
// paths; across processes writes are last-writer-wins, which is acceptable
// because the poll job runs as a single scheduled invocation at a time.
type Store struct {
	mu      sync.Mutex
	backend Backend
	now     func() time.Time
}

func New(backend Backend) *Store {
	return &Store{
		backend: backend,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source. Tests use a fixed clock.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Read returns the current durable snapshot, or an empty default Store on
// first run. Backend failures propagate; proceeding with a guessed-empty
// document would risk mass duplicate notifications.
func (s *Store) Read(ctx context.Context) (*models.Store, error) {
	doc, err := s.backend.Read(ctx)
	if errors.Is(err, ErrNoDocument) {
		return models.NewStore(), nil
	}
	if err != nil {
		return nil, err
	}
	doc.Normalize()
	return doc, nil
}

// WriteAll replaces the durable snapshot. Derived state is pruned on the way
// out so removed subscriptions never leave orphans behind.
func (s *Store) WriteAll(ctx context.Context, doc *models.Store) error {
	doc.Prune()
	return s.backend.Write(ctx, doc)
}

// mutate runs one read snapshot → clone → mutate → persist cycle.
func (s *Store) mutate(ctx context.Context, fn func(doc *models.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Read(ctx)
	if err != nil {
		return err
	}
	working := current.Clone()
	if err := fn(working); err != nil {
		return err
	}
	return s.WriteAll(ctx, working)
}

// Upsert inserts or replaces the subscription with the same identity.
// Re-subscribing refreshes keys and updatedAt but preserves createdAt.
func (s *Store) Upsert(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	now := s.now()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	err := s.mutate(ctx, func(doc *models.Store) error {
		if prev := doc.Find(sub.Identity()); prev != nil {
			sub.CreatedAt = prev.CreatedAt
			*prev = sub
			return nil
		}
		doc.Subscriptions = append(doc.Subscriptions, sub)
		return nil
	})
	return sub, err
}

// Remove deletes the subscription and its derived state. Reports whether a
// matching record existed.
func (s *Store) Remove(ctx context.Context, id models.Identity) (bool, error) {
	var removed bool
	err := s.mutate(ctx, func(doc *models.Store) error {
		removed = doc.Remove(id)
		return nil
	})
	return removed, err
}

// Status is the read-only projection clients poll for.
type Status struct {
	Subscribed    bool     `json:"subscribed"`
	ActiveGameIDs []string `json:"activeGameIds"`
}

func (s *Store) StatusOf(ctx context.Context, id models.Identity) (Status, error) {
	doc, err := s.Read(ctx)
	if err != nil {
		return Status{}, err
	}
	status := Status{ActiveGameIDs: []string{}}
	if doc.Find(id) != nil {
		status.Subscribed = true
	}
	if ids, ok := doc.ActiveGameIDs[id]; ok {
		status.ActiveGameIDs = ids
	}
	return status, nil
}
