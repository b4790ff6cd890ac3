package plugin_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/directory/plugin"
	"github.com/xraph/directory/subscription"
)

type recorder struct {
	name string
	err  error

	mu      sync.Mutex
	created []*subscription.Subscription
	purged  []int64
	inits   int
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) OnInit(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inits++
	return nil
}

func (r *recorder) OnSubscriptionCreated(_ context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, sub)
	return r.err
}

func (r *recorder) OnSubscriptionsPurged(_ context.Context, _ subscription.Filter, deleted int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purged = append(r.purged, deleted)
	return r.err
}

type slowPlugin struct{ release chan struct{} }

func (s *slowPlugin) Name() string { return "slow" }

func (s *slowPlugin) OnSubscriptionDeleted(context.Context, *subscription.Subscription) error {
	<-s.release
	return nil
}

func quietRegistry() *plugin.Registry {
	return plugin.NewRegistry().WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := quietRegistry()
	require.NoError(t, r.Register(&recorder{name: "a"}))
	require.Error(t, r.Register(&recorder{name: "a"}))
	require.NoError(t, r.Register(&recorder{name: "b"}))

	assert.Equal(t, 2, r.Count())
	assert.Equal(t, "b", r.Get("b").Name())
	assert.Nil(t, r.Get("missing"))
	assert.Len(t, r.List(), 2)
}

func TestEmitDispatchesOnlyToImplementers(t *testing.T) {
	r := quietRegistry()
	rec := &recorder{name: "rec"}
	require.NoError(t, r.Register(rec))

	sub := &subscription.Subscription{PlanID: "P1", BrandID: "B1"}
	r.EmitInit(context.Background())
	r.EmitSubscriptionCreated(context.Background(), sub)
	r.EmitSubscriptionsPurged(context.Background(), subscription.ByPlan("P1"), 3)
	r.EmitSubscriptionDeleted(context.Background(), sub)

	assert.Equal(t, 1, rec.inits)
	require.Len(t, rec.created, 1)
	assert.Same(t, sub, rec.created[0])
	assert.Equal(t, []int64{3}, rec.purged)
}

func TestHookErrorsAreSwallowed(t *testing.T) {
	r := quietRegistry()
	failing := &recorder{name: "failing", err: errors.New("boom")}
	healthy := &recorder{name: "healthy"}
	require.NoError(t, r.Register(failing))
	require.NoError(t, r.Register(healthy))

	r.EmitSubscriptionCreated(context.Background(), &subscription.Subscription{})

	assert.Len(t, failing.created, 1)
	assert.Len(t, healthy.created, 1, "a failing plugin does not stop dispatch")
}

func TestSlowHookTimesOut(t *testing.T) {
	r := quietRegistry().WithTimeout(20 * time.Millisecond)
	slow := &slowPlugin{release: make(chan struct{})}
	defer close(slow.release)
	require.NoError(t, r.Register(slow))

	start := time.Now()
	r.EmitSubscriptionDeleted(context.Background(), &subscription.Subscription{})
	assert.Less(t, time.Since(start), time.Second)
}
