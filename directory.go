package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xraph/directory/id"
	"github.com/xraph/directory/plugin"
	"github.com/xraph/directory/store"
	"github.com/xraph/directory/subscription"
)

// Directory owns all read and write access to subscription records.
type Directory struct {
	store   store.Store
	codec   id.Codec
	plugins *plugin.Registry
	logger  *slog.Logger

	disableMigrate bool
}

// New creates a Directory over s. The store handle is kept for the lifetime
// of the Directory.
func New(s store.Store, opts ...Option) *Directory {
	d := &Directory{
		store:   s,
		codec:   id.ObjectIDCodec,
		plugins: plugin.NewRegistry(),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Option configures a Directory instance.
type Option func(*Directory)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Directory) {
		d.logger = logger
		d.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(d *Directory) {
		_ = d.plugins.Register(p) //nolint:errcheck // duplicate names are logged by the registry
	}
}

// WithCodec replaces the identifier validator.
func WithCodec(c id.Codec) Option {
	return func(d *Directory) {
		d.codec = c
	}
}

// WithoutMigrate skips store migration in Start.
func WithoutMigrate() Option {
	return func(d *Directory) {
		d.disableMigrate = true
	}
}

// Plugins returns the plugin registry.
func (d *Directory) Plugins() *plugin.Registry { return d.plugins }

// Start migrates the store and initialises plugins.
func (d *Directory) Start(ctx context.Context) error {
	if !d.disableMigrate {
		if err := d.store.Migrate(ctx); err != nil {
			return err
		}
	}

	d.plugins.EmitInit(ctx)

	d.logger.Info("directory started",
		"plugins", d.plugins.Count(),
		"migrate", !d.disableMigrate,
	)
	return nil
}

// Stop notifies plugins and closes the store.
func (d *Directory) Stop() error {
	d.plugins.EmitShutdown(context.Background())
	return d.store.Close()
}

// Health pings the store. A failed ping of an open store wraps
// ErrStoreNotReady, so IsRetryable reports true for it.
func (d *Directory) Health(ctx context.Context) error {
	err := d.store.Ping(ctx)
	if err == nil || errors.Is(err, ErrStoreClosed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreNotReady, err)
}

// ──────────────────────────────────────────────────
// Writes
// ──────────────────────────────────────────────────

// Create stores a new subscription and returns it with its assigned ID.
// A brand may hold any number of subscriptions to the same plan.
func (d *Directory) Create(ctx context.Context, sub *subscription.Subscription) (*subscription.Subscription, error) {
	switch {
	case sub == nil:
		return nil, &ValidationError{Field: "subscription", Message: "is required"}
	case blank(sub.PlanID):
		return nil, &ValidationError{Field: "planId", Message: "is required"}
	case blank(sub.BrandID):
		return nil, &ValidationError{Field: "brandId", Message: "is required"}
	}
	if err := validateMetadata(sub.Metadata); err != nil {
		return nil, err
	}

	if err := d.store.Insert(ctx, sub); err != nil {
		return nil, err
	}

	d.plugins.EmitSubscriptionCreated(ctx, sub)
	return sub, nil
}

// UpdateByID merges patch into the record and returns its post-update state.
// A patch may not clear either reference.
func (d *Directory) UpdateByID(ctx context.Context, subID string, patch subscription.Patch) (*subscription.Subscription, error) {
	switch {
	case patch.PlanID != nil && blank(*patch.PlanID):
		return nil, &ValidationError{Field: "planId", Message: "cannot be empty"}
	case patch.BrandID != nil && blank(*patch.BrandID):
		return nil, &ValidationError{Field: "brandId", Message: "cannot be empty"}
	}
	if err := validateMetadata(patch.Metadata); err != nil {
		return nil, err
	}

	key, ok := d.parse(subID)
	if !ok {
		return nil, newNotFound(subID, "subscription %q not found, nothing to update", subID)
	}

	updated, err := d.store.UpdateByID(ctx, key, patch)
	if err != nil {
		if IsNotFound(err) {
			return nil, newNotFound(subID, "subscription %q not found, nothing to update", subID)
		}
		return nil, err
	}

	d.plugins.EmitSubscriptionUpdated(ctx, updated, patch)
	return updated, nil
}

// ──────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────

// List returns subscriptions scoped by at most one of planID and brandID.
// Supplying both is rejected before the store is touched. A scoped lookup
// may return an empty slice; an unscoped lookup over an empty collection
// fails with a NotFoundError.
func (d *Directory) List(ctx context.Context, planID, brandID string) ([]*subscription.Subscription, error) {
	criteria := 0
	for _, c := range []string{planID, brandID} {
		if c != "" {
			criteria++
		}
	}
	if criteria > 1 {
		return nil, &ValidationError{Field: "filter", Message: "use only one search criterion: planId or brandId"}
	}

	if planID != "" {
		return d.GetByPlanID(ctx, planID)
	}
	if brandID != "" {
		return d.GetByBrandID(ctx, brandID)
	}

	subs, err := d.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, newNotFound("", "no subscriptions found")
	}
	return subs, nil
}

// GetByID returns the subscription with the given ID. Malformed IDs are
// reported as not found.
func (d *Directory) GetByID(ctx context.Context, subID string) (*subscription.Subscription, error) {
	key, ok := d.parse(subID)
	if !ok {
		return nil, newNotFound(subID, "subscription %q not found", subID)
	}

	sub, err := d.store.FindByID(ctx, key)
	if err != nil {
		if IsNotFound(err) {
			return nil, newNotFound(subID, "subscription %q not found", subID)
		}
		return nil, err
	}
	return sub, nil
}

// GetByPlanID returns every subscription to planID, possibly none.
func (d *Directory) GetByPlanID(ctx context.Context, planID string) ([]*subscription.Subscription, error) {
	return d.find(ctx, subscription.ByPlan(planID))
}

// GetByBrandID returns every subscription held by brandID, possibly none.
func (d *Directory) GetByBrandID(ctx context.Context, brandID string) ([]*subscription.Subscription, error) {
	return d.find(ctx, subscription.ByBrand(brandID))
}

func (d *Directory) find(ctx context.Context, f subscription.Filter) ([]*subscription.Subscription, error) {
	subs, err := d.store.FindByFilter(ctx, f)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []*subscription.Subscription{}
	}
	return subs, nil
}

// ──────────────────────────────────────────────────
// Deletes
// ──────────────────────────────────────────────────

// DeleteAll deletes by brandID if given, else by planID if given, else
// every subscription. When both keys are supplied brandID wins.
func (d *Directory) DeleteAll(ctx context.Context, planID, brandID string) (subscription.DeleteSummary, error) {
	if brandID != "" {
		if planID != "" {
			d.logger.Warn("directory: delete with both keys, planId ignored",
				"plan_id", planID,
				"brand_id", brandID,
			)
		}
		return d.DeleteByBrandID(ctx, brandID)
	}
	if planID != "" {
		return d.DeleteByPlanID(ctx, planID)
	}

	res, err := d.store.DeleteAll(ctx)
	if err != nil {
		return subscription.DeleteSummary{}, err
	}

	d.purged(ctx, subscription.Filter{}, res)
	return res, nil
}

// DeleteByID deletes one subscription and returns it as it was.
func (d *Directory) DeleteByID(ctx context.Context, subID string) (*subscription.Subscription, error) {
	key, ok := d.parse(subID)
	if !ok {
		return nil, newNotFound(subID, "subscription %q not found, nothing to delete", subID)
	}

	removed, err := d.store.DeleteByID(ctx, key)
	if err != nil {
		if IsNotFound(err) {
			return nil, newNotFound(subID, "subscription %q not found, nothing to delete", subID)
		}
		return nil, err
	}

	d.plugins.EmitSubscriptionDeleted(ctx, removed)
	return removed, nil
}

// DeleteByPlanID deletes every subscription to planID.
func (d *Directory) DeleteByPlanID(ctx context.Context, planID string) (subscription.DeleteSummary, error) {
	return d.deleteWhere(ctx, subscription.ByPlan(planID))
}

// DeleteByBrandID deletes every subscription held by brandID.
func (d *Directory) DeleteByBrandID(ctx context.Context, brandID string) (subscription.DeleteSummary, error) {
	return d.deleteWhere(ctx, subscription.ByBrand(brandID))
}

func (d *Directory) deleteWhere(ctx context.Context, f subscription.Filter) (subscription.DeleteSummary, error) {
	res, err := d.store.DeleteByFilter(ctx, f)
	if err != nil {
		return subscription.DeleteSummary{}, err
	}

	d.purged(ctx, f, res)
	return res, nil
}

func (d *Directory) purged(ctx context.Context, f subscription.Filter, res subscription.DeleteSummary) {
	attrs := []any{"deleted", res.DeletedCount}
	if f.PlanID != nil {
		attrs = append(attrs, "plan_id", *f.PlanID)
	}
	if f.BrandID != nil {
		attrs = append(attrs, "brand_id", *f.BrandID)
	}
	d.logger.Debug("subscriptions deleted", attrs...)
	d.plugins.EmitSubscriptionsPurged(ctx, f, res.DeletedCount)
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// validateMetadata rejects keys that MongoDB would read as a path or an
// operator.
func validateMetadata(m map[string]any) error {
	if key, ok := subscription.InvalidMetadataKey(m); ok {
		return &ValidationError{Field: "metadata", Message: fmt.Sprintf("key %q must not contain '.' or start with '$'", key)}
	}
	return nil
}

func (d *Directory) parse(subID string) (id.SubscriptionID, bool) {
	if !d.codec.IsValid(subID) {
		return id.Nil, false
	}
	key, err := id.Parse(subID)
	if err != nil {
		return id.Nil, false
	}
	return key, true
}
