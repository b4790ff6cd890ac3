// Package store defines the storage interface backing the directory.
package store

import (
	"context"

	"github.com/xraph/directory/subscription"
)

// Store is the record store plus the lifecycle methods every backend provides.
type Store interface {
	subscription.Store

	// Migrate prepares collections and indexes.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
