package audithook

// Action constants for audit events.
const (
	ActionSubscriptionCreated = "subscription.created"
	ActionSubscriptionUpdated = "subscription.updated"
	ActionSubscriptionDeleted = "subscription.deleted"

	// Bulk deletes
	ActionSubscriptionsPurgedByPlan  = "subscriptions.purged_by_plan"
	ActionSubscriptionsPurgedByBrand = "subscriptions.purged_by_brand"
	ActionSubscriptionsPurgedAll     = "subscriptions.purged_all"
)

// Resource constants for audit events.
const (
	ResourceSubscription = "subscription"
	ResourcePlan         = "plan"
	ResourceBrand        = "brand"
)

// Category constants for audit events.
const (
	CategorySubscription  = "subscription"
	CategoryDataRetention = "data_retention"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// OutcomeSuccess is the outcome of every recorded event. Hooks run only
// after the store call succeeded.
const OutcomeSuccess = "success"
