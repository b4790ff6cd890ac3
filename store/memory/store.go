// Package memory provides an in-process record store. Records are returned as
// copies, so callers never alias stored state.
package memory

import (
	"context"
	"sync"

	"github.com/xraph/directory"
	"github.com/xraph/directory/id"
	dirstore "github.com/xraph/directory/store"
	"github.com/xraph/directory/subscription"
	"github.com/xraph/directory/types"
)

// compile-time interface check
var _ dirstore.Store = (*Store)(nil)

type Store struct {
	mu     sync.RWMutex
	closed bool

	subscriptions map[id.SubscriptionID]*subscription.Subscription
	// order keeps insertion order so FindAll is stable.
	order []id.SubscriptionID
}

func New() *Store {
	return &Store{
		subscriptions: make(map[id.SubscriptionID]*subscription.Subscription),
	}
}

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return directory.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// Insert stores a copy of sub under a fresh ID. sub receives its ID and
// timestamps only once the record is stored.
func (s *Store) Insert(_ context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return directory.ErrStoreClosed
	}

	rec := sub.Clone()
	rec.ID = id.New()
	rec.Entity = types.NewEntity()

	if _, exists := s.subscriptions[rec.ID]; exists {
		return directory.ErrAlreadyExists
	}
	s.subscriptions[rec.ID] = rec
	s.order = append(s.order, rec.ID)

	sub.ID, sub.Entity = rec.ID, rec.Entity
	return nil
}

func (s *Store) FindAll(ctx context.Context) ([]*subscription.Subscription, error) {
	return s.FindByFilter(ctx, subscription.Filter{})
}

func (s *Store) FindByID(_ context.Context, subID id.SubscriptionID) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, directory.ErrStoreClosed
	}
	if sub, ok := s.subscriptions[subID]; ok {
		return sub.Clone(), nil
	}
	return nil, directory.ErrSubscriptionNotFound
}

func (s *Store) FindByFilter(_ context.Context, f subscription.Filter) ([]*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, directory.ErrStoreClosed
	}

	result := make([]*subscription.Subscription, 0)
	for _, subID := range s.order {
		sub := s.subscriptions[subID]
		if f.Matches(sub) {
			result = append(result, sub.Clone())
		}
	}
	return result, nil
}

func (s *Store) UpdateByID(_ context.Context, subID id.SubscriptionID, p subscription.Patch) (*subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, directory.ErrStoreClosed
	}

	sub, ok := s.subscriptions[subID]
	if !ok {
		return nil, directory.ErrSubscriptionNotFound
	}
	p.Apply(sub)
	sub.Touch()
	return sub.Clone(), nil
}

func (s *Store) DeleteByID(_ context.Context, subID id.SubscriptionID) (*subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, directory.ErrStoreClosed
	}

	sub, ok := s.subscriptions[subID]
	if !ok {
		return nil, directory.ErrSubscriptionNotFound
	}
	s.remove(subscription.Filter{}, subID)
	return sub, nil
}

func (s *Store) DeleteByFilter(_ context.Context, f subscription.Filter) (subscription.DeleteSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return subscription.DeleteSummary{}, directory.ErrStoreClosed
	}
	return subscription.DeleteSummary{DeletedCount: s.remove(f, id.Nil)}, nil
}

func (s *Store) DeleteAll(ctx context.Context) (subscription.DeleteSummary, error) {
	return s.DeleteByFilter(ctx, subscription.Filter{})
}

// remove deletes the record keyed by only when it is set, otherwise every
// record matching f. The caller holds the write lock.
func (s *Store) remove(f subscription.Filter, only id.SubscriptionID) int64 {
	var deleted int64
	kept := s.order[:0]
	for _, subID := range s.order {
		sub := s.subscriptions[subID]
		match := f.Matches(sub)
		if !only.IsNil() {
			match = subID == only
		}
		if match {
			delete(s.subscriptions, subID)
			deleted++
			continue
		}
		kept = append(kept, subID)
	}
	s.order = kept
	return deleted
}
