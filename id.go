package directory

import "github.com/xraph/directory/id"

// ID is the record identifier type for subscriptions.
type ID = id.ID
