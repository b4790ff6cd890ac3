// Package observability provides a metrics extension for the directory that
// records subscription lifecycle counts via a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/directory/plugin"
	"github.com/xraph/directory/subscription"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                = (*MetricsExtension)(nil)
	_ plugin.OnSubscriptionCreated = (*MetricsExtension)(nil)
	_ plugin.OnSubscriptionUpdated = (*MetricsExtension)(nil)
	_ plugin.OnSubscriptionDeleted = (*MetricsExtension)(nil)
	_ plugin.OnSubscriptionsPurged = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records directory lifecycle metrics.
// Register it with directory.WithPlugin.
type MetricsExtension struct {
	factory MetricFactory

	// Single-record metrics
	SubscriptionCreated  Counter
	SubscriptionUpdated  Counter
	SubscriptionCanceled Counter
	SubscriptionDeleted  Counter

	// Bulk delete metrics
	PurgeByPlan         Counter
	PurgeByBrand        Counter
	PurgeAll            Counter
	SubscriptionsPurged Counter
	PurgeBatchSize      Histogram
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		SubscriptionCreated:  factory.Counter("directory.subscription.created"),
		SubscriptionUpdated:  factory.Counter("directory.subscription.updated"),
		SubscriptionCanceled: factory.Counter("directory.subscription.canceled"),
		SubscriptionDeleted:  factory.Counter("directory.subscription.deleted"),

		PurgeByPlan:         factory.Counter("directory.purge.by_plan"),
		PurgeByBrand:        factory.Counter("directory.purge.by_brand"),
		PurgeAll:            factory.Counter("directory.purge.all"),
		SubscriptionsPurged: factory.Counter("directory.subscription.purged"),
		PurgeBatchSize:      factory.Histogram("directory.purge.batch_size"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnSubscriptionCreated implements plugin.OnSubscriptionCreated.
func (m *MetricsExtension) OnSubscriptionCreated(_ context.Context, _ *subscription.Subscription) error {
	m.SubscriptionCreated.Inc()
	return nil
}

// OnSubscriptionUpdated implements plugin.OnSubscriptionUpdated.
func (m *MetricsExtension) OnSubscriptionUpdated(_ context.Context, _ *subscription.Subscription, patch subscription.Patch) error {
	m.SubscriptionUpdated.Inc()
	if patch.Status != nil && *patch.Status == subscription.StatusCanceled {
		m.SubscriptionCanceled.Inc()
	}
	return nil
}

// OnSubscriptionDeleted implements plugin.OnSubscriptionDeleted.
func (m *MetricsExtension) OnSubscriptionDeleted(_ context.Context, _ *subscription.Subscription) error {
	m.SubscriptionDeleted.Inc()
	return nil
}

// OnSubscriptionsPurged implements plugin.OnSubscriptionsPurged.
func (m *MetricsExtension) OnSubscriptionsPurged(_ context.Context, filter subscription.Filter, deleted int64) error {
	switch {
	case filter.BrandID != nil:
		m.PurgeByBrand.Inc()
	case filter.PlanID != nil:
		m.PurgeByPlan.Inc()
	default:
		m.PurgeAll.Inc()
	}

	count := float64(deleted)
	m.SubscriptionsPurged.Add(count)
	m.PurgeBatchSize.Observe(count)
	return nil
}
