package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/directory"
	"github.com/xraph/directory/id"
	dirstore "github.com/xraph/directory/store"
	"github.com/xraph/directory/subscription"
	"github.com/xraph/directory/types"
)

// DefaultCollection is the collection name Mongoose derives for the
// Suscripcion model, so existing data is read in place.
const DefaultCollection = "suscripcions"

// compile-time interface check
var _ dirstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db         *grove.DB
	mdb        *mongodriver.MongoDB
	collection string
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	collection string
}

// WithCollection overrides the collection name.
func WithCollection(name string) Option {
	return func(o *storeOptions) {
		if name != "" {
			o.collection = name
		}
	}
}

// New creates a store over a grove database opened with the mongo driver.
// The handle is kept for the lifetime of the store; Close closes it.
func New(db *grove.DB, opts ...Option) *Store {
	o := &storeOptions{collection: DefaultCollection}
	for _, opt := range opts {
		opt(o)
	}
	return &Store{
		db:         db,
		mdb:        mongodriver.Unwrap(db),
		collection: o.collection,
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// CollectionName returns the name of the subscription collection.
func (s *Store) CollectionName() string { return s.collection }

// Migrate creates the lookup indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.mdb.Collection(s.collection).Indexes().CreateMany(ctx, migrationIndexes()); err != nil {
		return fmt.Errorf("directory/mongo: migrate %s indexes: %w: %w", s.collection, directory.ErrMigrationFailed, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		if errors.Is(err, grove.ErrDriverClosed) {
			return directory.ErrStoreClosed
		}
		return err
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Subscription Store ====================

// Insert stores sub under a fresh ID. sub receives its ID and timestamps
// only once the insert succeeds.
func (s *Store) Insert(ctx context.Context, sub *subscription.Subscription) error {
	rec := sub.Clone()
	rec.ID = id.New()
	rec.Entity = types.NewEntity()

	if _, err := s.mdb.NewInsert(insertModel(rec)).Collection(s.collection).Exec(ctx); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("directory/mongo: insert subscription: %w", directory.ErrAlreadyExists)
		}
		return fmt.Errorf("directory/mongo: insert subscription: %w", err)
	}

	sub.ID, sub.Entity = rec.ID, rec.Entity
	return nil
}

func (s *Store) FindAll(ctx context.Context) ([]*subscription.Subscription, error) {
	return s.find(ctx, subscription.Filter{}, "find subscriptions")
}

func (s *Store) FindByID(ctx context.Context, subID id.SubscriptionID) (*subscription.Subscription, error) {
	var m subscriptionModel
	err := s.mdb.NewFind(&m).
		Collection(s.collection).
		Filter(bson.M{fieldID: subID.ObjectID()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, directory.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("directory/mongo: find subscription: %w", err)
	}
	return fromSubscriptionModel(&m), nil
}

func (s *Store) FindByFilter(ctx context.Context, f subscription.Filter) ([]*subscription.Subscription, error) {
	return s.find(ctx, f, "find subscriptions by filter")
}

func (s *Store) find(ctx context.Context, f subscription.Filter, op string) ([]*subscription.Subscription, error) {
	var models []subscriptionModel
	if err := s.findQuery(&models, f).Scan(ctx); err != nil {
		return nil, fmt.Errorf("directory/mongo: %s: %w", op, err)
	}
	return fromSubscriptionModels(models), nil
}

// findQuery returns the ordered find for f, decoding into dest.
func (s *Store) findQuery(dest *[]subscriptionModel, f subscription.Filter) *mongodriver.FindQuery {
	return s.mdb.NewFind(dest).
		Collection(s.collection).
		Filter(filterDoc(f)).
		Sort(bson.D{{Key: fieldCreatedAt, Value: 1}, {Key: fieldID, Value: 1}})
}

// UpdateByID applies p atomically and returns the post-update document.
// Grove has no find-and-modify query, so this goes to the collection.
func (s *Store) UpdateByID(ctx context.Context, subID id.SubscriptionID, p subscription.Patch) (*subscription.Subscription, error) {
	update, err := updateDoc(p, now())
	if err != nil {
		return nil, fmt.Errorf("directory/mongo: update subscription: %w", err)
	}

	var m subscriptionModel
	err = s.mdb.Collection(s.collection).FindOneAndUpdate(ctx,
		bson.M{fieldID: subID.ObjectID()},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, directory.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("directory/mongo: update subscription: %w", err)
	}
	return fromSubscriptionModel(&m), nil
}

// DeleteByID removes one document and returns it as it was.
func (s *Store) DeleteByID(ctx context.Context, subID id.SubscriptionID) (*subscription.Subscription, error) {
	var m subscriptionModel
	err := s.mdb.Collection(s.collection).FindOneAndDelete(ctx, bson.M{fieldID: subID.ObjectID()}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, directory.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("directory/mongo: delete subscription: %w", err)
	}
	return fromSubscriptionModel(&m), nil
}

func (s *Store) DeleteByFilter(ctx context.Context, f subscription.Filter) (subscription.DeleteSummary, error) {
	res, err := s.deleteQuery(f).Exec(ctx)
	if err != nil {
		return subscription.DeleteSummary{}, fmt.Errorf("directory/mongo: delete subscriptions: %w", err)
	}
	return subscription.DeleteSummary{DeletedCount: res.DeletedCount()}, nil
}

func (s *Store) DeleteAll(ctx context.Context) (subscription.DeleteSummary, error) {
	return s.DeleteByFilter(ctx, subscription.Filter{})
}

func (s *Store) deleteQuery(f subscription.Filter) *mongodriver.DeleteQuery {
	return s.mdb.NewDelete((*subscriptionModel)(nil)).
		Collection(s.collection).
		Filter(filterDoc(f)).
		Many()
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for the subscription collection.
func migrationIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: fieldPlanID, Value: 1}}},
		{Keys: bson.D{{Key: fieldBrandID, Value: 1}}},
		{Keys: bson.D{{Key: fieldCreatedAt, Value: 1}}},
	}
}
