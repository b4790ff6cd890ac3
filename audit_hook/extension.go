// Package audithook bridges directory lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular audit store. Callers inject a RecorderFunc adapter, or use
// LogRecorder to write events to a slog.Logger.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/directory/id"
	"github.com/xraph/directory/plugin"
	"github.com/xraph/directory/subscription"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                = (*Extension)(nil)
	_ plugin.OnSubscriptionCreated = (*Extension)(nil)
	_ plugin.OnSubscriptionUpdated = (*Extension)(nil)
	_ plugin.OnSubscriptionDeleted = (*Extension)(nil)
	_ plugin.OnSubscriptionsPurged = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a single audit trail entry. ID is a K-sortable "audit_" type ID.
type AuditEvent struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// LogRecorder returns a Recorder that writes each event to logger at Info.
func LogRecorder(logger *slog.Logger) Recorder {
	return RecorderFunc(func(ctx context.Context, evt *AuditEvent) error {
		logger.InfoContext(ctx, "audit",
			"id", evt.ID,
			"action", evt.Action,
			"resource", evt.Resource,
			"resource_id", evt.ResourceID,
			"outcome", evt.Outcome,
			"severity", evt.Severity,
			"metadata", evt.Metadata,
		)
		return nil
	})
}

// Extension bridges directory lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Subscription lifecycle hooks
// ──────────────────────────────────────────────────

// OnSubscriptionCreated implements plugin.OnSubscriptionCreated.
func (e *Extension) OnSubscriptionCreated(ctx context.Context, sub *subscription.Subscription) error {
	return e.record(ctx, ActionSubscriptionCreated, SeverityInfo,
		ResourceSubscription, sub.ID.String(), CategorySubscription,
		"plan_id", sub.PlanID,
		"brand_id", sub.BrandID,
		"status", string(sub.Status),
	)
}

// OnSubscriptionUpdated implements plugin.OnSubscriptionUpdated.
func (e *Extension) OnSubscriptionUpdated(ctx context.Context, sub *subscription.Subscription, patch subscription.Patch) error {
	return e.record(ctx, ActionSubscriptionUpdated, SeverityInfo,
		ResourceSubscription, sub.ID.String(), CategorySubscription,
		"plan_id", sub.PlanID,
		"brand_id", sub.BrandID,
		"fields", changedFields(patch),
	)
}

// OnSubscriptionDeleted implements plugin.OnSubscriptionDeleted.
func (e *Extension) OnSubscriptionDeleted(ctx context.Context, sub *subscription.Subscription) error {
	return e.record(ctx, ActionSubscriptionDeleted, SeverityWarning,
		ResourceSubscription, sub.ID.String(), CategorySubscription,
		"plan_id", sub.PlanID,
		"brand_id", sub.BrandID,
	)
}

// OnSubscriptionsPurged implements plugin.OnSubscriptionsPurged. An
// unconditional purge is recorded as critical.
func (e *Extension) OnSubscriptionsPurged(ctx context.Context, filter subscription.Filter, deleted int64) error {
	switch {
	case filter.BrandID != nil:
		return e.record(ctx, ActionSubscriptionsPurgedByBrand, SeverityWarning,
			ResourceBrand, *filter.BrandID, CategoryDataRetention,
			"deleted", deleted,
		)
	case filter.PlanID != nil:
		return e.record(ctx, ActionSubscriptionsPurgedByPlan, SeverityWarning,
			ResourcePlan, *filter.PlanID, CategoryDataRetention,
			"deleted", deleted,
		)
	default:
		return e.record(ctx, ActionSubscriptionsPurgedAll, SeverityCritical,
			ResourceSubscription, "", CategoryDataRetention,
			"deleted", deleted,
		)
	}
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity string,
	resource, resourceID, category string,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	evt := &AuditEvent{
		ID:         id.NewEventID(id.PrefixAudit),
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    OutcomeSuccess,
		Severity:   severity,
		OccurredAt: time.Now().UTC(),
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}

// changedFields lists the document fields a patch touches.
func changedFields(p subscription.Patch) []string {
	var fields []string
	if p.PlanID != nil {
		fields = append(fields, "planId")
	}
	if p.BrandID != nil {
		fields = append(fields, "brandId")
	}
	if p.Status != nil {
		fields = append(fields, "status")
	}
	if p.StartDate != nil {
		fields = append(fields, "startDate")
	}
	if p.EndDate != nil {
		fields = append(fields, "endDate")
	}
	if len(p.Metadata) > 0 {
		fields = append(fields, "metadata")
	}
	return fields
}
