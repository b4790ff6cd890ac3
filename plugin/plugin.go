// Package plugin provides lifecycle hooks for the subscription directory.
// A plugin implements Plugin plus any subset of the hook interfaces below.
package plugin

import (
	"context"

	"github.com/xraph/directory/subscription"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the directory starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context) error
}

// OnShutdown is called when the directory stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Subscription hooks
// ──────────────────────────────────────────────────

// OnSubscriptionCreated is called after a subscription is stored.
type OnSubscriptionCreated interface {
	Plugin
	OnSubscriptionCreated(ctx context.Context, sub *subscription.Subscription) error
}

// OnSubscriptionUpdated is called with the post-update record.
type OnSubscriptionUpdated interface {
	Plugin
	OnSubscriptionUpdated(ctx context.Context, sub *subscription.Subscription, patch subscription.Patch) error
}

// OnSubscriptionDeleted is called with the record as it was before deletion.
type OnSubscriptionDeleted interface {
	Plugin
	OnSubscriptionDeleted(ctx context.Context, sub *subscription.Subscription) error
}

// OnSubscriptionsPurged is called after a bulk delete. A zero filter means
// every subscription was targeted.
type OnSubscriptionsPurged interface {
	Plugin
	OnSubscriptionsPurged(ctx context.Context, filter subscription.Filter, deleted int64) error
}
