package directory

import (
	"github.com/xraph/directory/subscription"
	"github.com/xraph/directory/types"
)

// Re-export common types so callers don't have to import the subpackages.

// Subscription is re-exported from the subscription package.
type Subscription = subscription.Subscription

// Patch is re-exported from the subscription package.
type Patch = subscription.Patch

// DeleteSummary is re-exported from the subscription package.
type DeleteSummary = subscription.DeleteSummary

// Entity is re-exported from the types package.
type Entity = types.Entity
