// Package directory provides the subscription directory of a plan
// marketplace: the single owner of reads and writes over subscription
// records, each linking a brand to a plan.
//
// The directory is a library. It holds one record store handle, passed at
// construction, and performs no caching or locking of its own.
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/directory"
//	    "github.com/xraph/directory/store/mongo"
//	)
//
//	db, err := mongo.Open(ctx, mongo.DefaultConfig(), "marketplace")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	d := directory.New(mongo.New(db), directory.WithLogger(logger))
//	if err := d.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Stop()
//
// # Filters
//
// List accepts at most one scoping key:
//
//	subs, err := d.List(ctx, "", brandID)   // by brand
//	subs, err := d.List(ctx, planID, "")    // by plan
//	subs, err := d.List(ctx, planID, brandID) // *ValidationError
//
// Scoped lookups return an empty slice when nothing matches. An unscoped
// List over an empty collection returns a *NotFoundError.
//
// # Cascading deletes
//
// DeleteByPlanID and DeleteByBrandID remove every subscription referencing
// the key and report the count; zero is a successful outcome. The key is
// matched exactly, so an empty key deletes nothing. DeleteAll
// dispatches on brandID, then planID, then deletes everything.
//
// # Errors
//
// Operations return *ValidationError for disallowed input combinations and
// *NotFoundError for missing records, malformed identifiers included. Store
// failures are returned unchanged. Use IsNotFound and IsValidation, or
// errors.As, to tell them apart.
package directory
