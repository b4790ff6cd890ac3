package observability_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/directory"
	"github.com/xraph/directory/observability"
	"github.com/xraph/directory/store/memory"
	"github.com/xraph/directory/subscription"
)

func value(t *testing.T, c observability.Counter) float64 {
	t.Helper()
	pc, ok := c.(prometheus.Counter)
	require.True(t, ok)
	return testutil.ToFloat64(pc)
}

func TestMetricsExtensionCountsLifecycle(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	metrics := observability.NewMetricsExtension(observability.NewPrometheusFactory(reg, "marketplace"))

	d := directory.New(memory.New(),
		directory.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		directory.WithPlugin(metrics),
	)
	ctx := context.Background()
	require.NoError(t, d.Start(ctx))

	var last *subscription.Subscription
	for _, brand := range []string{"B1", "B1", "B2"} {
		sub, err := d.Create(ctx, &subscription.Subscription{PlanID: "P1", BrandID: brand})
		require.NoError(t, err)
		last = sub
	}

	canceled := subscription.StatusCanceled
	_, err := d.UpdateByID(ctx, last.ID.String(), subscription.Patch{Status: &canceled})
	require.NoError(t, err)

	_, err = d.DeleteByID(ctx, last.ID.String())
	require.NoError(t, err)

	_, err = d.DeleteByBrandID(ctx, "B1")
	require.NoError(t, err)
	_, err = d.DeleteAll(ctx, "", "")
	require.NoError(t, err)

	assert.Equal(t, 3.0, value(t, metrics.SubscriptionCreated))
	assert.Equal(t, 1.0, value(t, metrics.SubscriptionUpdated))
	assert.Equal(t, 1.0, value(t, metrics.SubscriptionCanceled))
	assert.Equal(t, 1.0, value(t, metrics.SubscriptionDeleted))
	assert.Equal(t, 1.0, value(t, metrics.PurgeByBrand))
	assert.Equal(t, 0.0, value(t, metrics.PurgeByPlan))
	assert.Equal(t, 1.0, value(t, metrics.PurgeAll))
	assert.Equal(t, 2.0, value(t, metrics.SubscriptionsPurged))

	count, err := testutil.GatherAndCount(reg, "marketplace_directory_purge_batch_size")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPrometheusFactoryReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := observability.NewPrometheusFactory(reg, "")

	a := f.Counter("directory.subscription.created")
	b := f.Counter("directory.subscription.created")
	a.Inc()
	b.Inc()

	assert.Equal(t, 2.0, value(t, a))
	assert.NotPanics(t, func() {
		observability.NewMetricsExtension(f)
		observability.NewMetricsExtension(f)
	})
}
