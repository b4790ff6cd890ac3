package subscription

import (
	"context"

	"github.com/xraph/directory/id"
)

// Store is the record store holding subscription documents.
//
// Lookups by id report absence with directory.ErrSubscriptionNotFound; they
// never return a nil record with a nil error. Any other error is a store
// failure and is passed through to callers unchanged.
type Store interface {
	// Insert assigns a new ID and timestamps to s and persists it.
	Insert(ctx context.Context, s *Subscription) error
	FindAll(ctx context.Context) ([]*Subscription, error)
	FindByID(ctx context.Context, subID id.SubscriptionID) (*Subscription, error)
	FindByFilter(ctx context.Context, f Filter) ([]*Subscription, error)
	// UpdateByID applies p and returns the post-update record.
	UpdateByID(ctx context.Context, subID id.SubscriptionID, p Patch) (*Subscription, error)
	// DeleteByID removes the record and returns it as it was before deletion.
	DeleteByID(ctx context.Context, subID id.SubscriptionID) (*Subscription, error)
	DeleteByFilter(ctx context.Context, f Filter) (DeleteSummary, error)
	DeleteAll(ctx context.Context) (DeleteSummary, error)
}
