package audithook_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/directory"
	audithook "github.com/xraph/directory/audit_hook"
	"github.com/xraph/directory/id"
	"github.com/xraph/directory/store/memory"
	"github.com/xraph/directory/subscription"
)

type captured struct {
	events []*audithook.AuditEvent
}

func (c *captured) Record(_ context.Context, evt *audithook.AuditEvent) error {
	c.events = append(c.events, evt)
	return nil
}

func (c *captured) actions() []string {
	out := make([]string, len(c.events))
	for i, e := range c.events {
		out[i] = e.Action
	}
	return out
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newDirectory(t *testing.T, ext *audithook.Extension) *directory.Directory {
	t.Helper()
	d := directory.New(memory.New(), directory.WithLogger(quiet()), directory.WithPlugin(ext))
	require.NoError(t, d.Start(context.Background()))
	return d
}

func TestExtensionRecordsLifecycle(t *testing.T) {
	rec := &captured{}
	d := newDirectory(t, audithook.New(rec, audithook.WithLogger(quiet())))
	ctx := context.Background()

	sub, err := d.Create(ctx, &subscription.Subscription{PlanID: "P1", BrandID: "B1"})
	require.NoError(t, err)

	status := subscription.StatusPaused
	_, err = d.UpdateByID(ctx, sub.ID.String(), subscription.Patch{Status: &status})
	require.NoError(t, err)
	_, err = d.DeleteByID(ctx, sub.ID.String())
	require.NoError(t, err)
	_, err = d.DeleteByPlanID(ctx, "P1")
	require.NoError(t, err)
	_, err = d.DeleteAll(ctx, "", "B1")
	require.NoError(t, err)
	_, err = d.DeleteAll(ctx, "", "")
	require.NoError(t, err)

	assert.Equal(t, []string{
		audithook.ActionSubscriptionCreated,
		audithook.ActionSubscriptionUpdated,
		audithook.ActionSubscriptionDeleted,
		audithook.ActionSubscriptionsPurgedByPlan,
		audithook.ActionSubscriptionsPurgedByBrand,
		audithook.ActionSubscriptionsPurgedAll,
	}, rec.actions())

	created := rec.events[0]
	assert.Equal(t, sub.ID.String(), created.ResourceID)
	assert.Equal(t, "B1", created.Metadata["brand_id"])
	prefix, err := id.ParseEventID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, id.PrefixAudit, prefix)

	assert.Equal(t, []string{"status"}, rec.events[1].Metadata["fields"])

	byPlan := rec.events[3]
	assert.Equal(t, audithook.ResourcePlan, byPlan.Resource)
	assert.Equal(t, "P1", byPlan.ResourceID)
	assert.Equal(t, int64(0), byPlan.Metadata["deleted"])

	assert.Equal(t, audithook.SeverityCritical, rec.events[5].Severity)

	for _, evt := range rec.events {
		assert.Equal(t, audithook.OutcomeSuccess, evt.Outcome, evt.Action)
		assert.NotContains(t, evt.Metadata, "error", evt.Action)
	}
}

func TestExtensionActionFilters(t *testing.T) {
	sub := &subscription.Subscription{ID: id.New(), PlanID: "P1", BrandID: "B1"}

	t.Run("enabled", func(t *testing.T) {
		rec := &captured{}
		ext := audithook.New(rec, audithook.WithEnabledActions(audithook.ActionSubscriptionDeleted))
		require.NoError(t, ext.OnSubscriptionCreated(context.Background(), sub))
		require.NoError(t, ext.OnSubscriptionDeleted(context.Background(), sub))
		assert.Equal(t, []string{audithook.ActionSubscriptionDeleted}, rec.actions())
	})

	t.Run("disabled", func(t *testing.T) {
		rec := &captured{}
		ext := audithook.New(rec, audithook.WithDisabledActions(audithook.ActionSubscriptionCreated))
		require.NoError(t, ext.OnSubscriptionCreated(context.Background(), sub))
		require.NoError(t, ext.OnSubscriptionDeleted(context.Background(), sub))
		assert.Equal(t, []string{audithook.ActionSubscriptionDeleted}, rec.actions())
	})
}

func TestRecorderFailureIsSwallowed(t *testing.T) {
	var logs bytes.Buffer
	failing := audithook.RecorderFunc(func(context.Context, *audithook.AuditEvent) error {
		return errors.New("audit backend down")
	})
	ext := audithook.New(failing, audithook.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	err := ext.OnSubscriptionCreated(context.Background(), &subscription.Subscription{ID: id.New()})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "audit backend down")
}

func TestLogRecorder(t *testing.T) {
	var logs bytes.Buffer
	ext := audithook.New(audithook.LogRecorder(slog.New(slog.NewJSONHandler(&logs, nil))))

	require.NoError(t, ext.OnSubscriptionsPurged(context.Background(), subscription.ByBrand("B7"), 3))

	line := logs.String()
	assert.True(t, strings.Contains(line, `"action":"subscriptions.purged_by_brand"`), line)
	assert.Contains(t, line, `"resource_id":"B7"`)
	assert.Contains(t, line, `"id":"audit_`)
}
