// Package subscription defines the subscription record, the partial-update and
// filter shapes, and the record store contract the directory is built on.
package subscription

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/xraph/directory/id"
	"github.com/xraph/directory/types"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

// Subscription links a brand to a plan. PlanID and BrandID are opaque
// references; nothing checks that the referenced records exist.
type Subscription struct {
	types.Entity
	ID        id.SubscriptionID `json:"id"`
	PlanID    string            `json:"planId"`
	BrandID   string            `json:"brandId"`
	Status    Status            `json:"status,omitempty"`
	StartDate time.Time         `json:"startDate"`
	EndDate   *time.Time        `json:"endDate,omitempty"`
	Metadata  map[string]any    `json:"metadata,omitempty"`
}

// Clone returns a copy that shares no mutable state with s.
func (s *Subscription) Clone() *Subscription {
	c := *s
	if s.EndDate != nil {
		end := *s.EndDate
		c.EndDate = &end
	}
	c.Metadata = maps.Clone(s.Metadata)
	return &c
}

// Patch is a partial update. Nil fields are left untouched; Metadata keys
// are merged into the stored map.
type Patch struct {
	PlanID    *string        `json:"planId,omitempty"`
	BrandID   *string        `json:"brandId,omitempty"`
	Status    *Status        `json:"status,omitempty"`
	StartDate *time.Time     `json:"startDate,omitempty"`
	EndDate   *time.Time     `json:"endDate,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// IsEmpty reports whether the patch changes no descriptive field.
func (p Patch) IsEmpty() bool {
	return p.PlanID == nil && p.BrandID == nil && p.Status == nil &&
		p.StartDate == nil && p.EndDate == nil && len(p.Metadata) == 0
}

// Apply merges the patch into s. Timestamps are the caller's concern.
func (p Patch) Apply(s *Subscription) {
	if p.PlanID != nil {
		s.PlanID = *p.PlanID
	}
	if p.BrandID != nil {
		s.BrandID = *p.BrandID
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.StartDate != nil {
		s.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		end := *p.EndDate
		s.EndDate = &end
	}
	if len(p.Metadata) > 0 {
		if s.Metadata == nil {
			s.Metadata = make(map[string]any, len(p.Metadata))
		}
		maps.Copy(s.Metadata, p.Metadata)
	}
}

// InvalidMetadataKey returns the first key of m, in sorted order, that is
// empty, contains a '.' or starts with '$'. Such keys cannot be addressed as
// a single metadata field.
func InvalidMetadataKey(m map[string]any) (string, bool) {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if k == "" || strings.Contains(k, ".") || strings.HasPrefix(k, "$") {
			return k, true
		}
	}
	return "", false
}

// Filter scopes finds and deletes by foreign key. A nil field does not
// constrain; a set field matches its value exactly, the empty string
// included. Build scoped filters with ByPlan and ByBrand.
type Filter struct {
	PlanID  *string
	BrandID *string
}

// ByPlan returns a filter matching subscriptions to planID.
func ByPlan(planID string) Filter {
	return Filter{PlanID: &planID}
}

// ByBrand returns a filter matching subscriptions held by brandID.
func ByBrand(brandID string) Filter {
	return Filter{BrandID: &brandID}
}

// IsZero reports whether the filter matches every record.
func (f Filter) IsZero() bool {
	return f.PlanID == nil && f.BrandID == nil
}

// Matches reports whether s satisfies every set field of f.
func (f Filter) Matches(s *Subscription) bool {
	if f.PlanID != nil && s.PlanID != *f.PlanID {
		return false
	}
	if f.BrandID != nil && s.BrandID != *f.BrandID {
		return false
	}
	return true
}

// DeleteSummary reports the outcome of a bulk delete. Zero is a valid count.
type DeleteSummary struct {
	DeletedCount int64 `json:"deletedCount"`
}
