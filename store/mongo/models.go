package mongo

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/xraph/grove"

	"github.com/xraph/directory"
	"github.com/xraph/directory/id"
	"github.com/xraph/directory/subscription"
	"github.com/xraph/directory/types"
)

// Document field names.
const (
	fieldID        = "_id"
	fieldPlanID    = "planId"
	fieldBrandID   = "brandId"
	fieldStatus    = "status"
	fieldStartDate = "startDate"
	fieldEndDate   = "endDate"
	fieldMetadata  = "metadata"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

type subscriptionModel struct {
	grove.BaseModel `grove:"table:suscripcions"`

	ID        bson.ObjectID  `grove:"id,pk"     bson:"_id"`
	PlanID    string         `grove:"planId"    bson:"planId"`
	BrandID   string         `grove:"brandId"   bson:"brandId"`
	Status    string         `grove:"status"    bson:"status,omitempty"`
	StartDate time.Time      `grove:"startDate" bson:"startDate"`
	EndDate   *time.Time     `grove:"endDate"   bson:"endDate,omitempty"`
	Metadata  map[string]any `grove:"metadata"  bson:"metadata,omitempty"`
	CreatedAt time.Time      `grove:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time      `grove:"updatedAt" bson:"updatedAt"`
}

func toSubscriptionModel(s *subscription.Subscription) *subscriptionModel {
	return &subscriptionModel{
		ID:        s.ID.ObjectID(),
		PlanID:    s.PlanID,
		BrandID:   s.BrandID,
		Status:    string(s.Status),
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Metadata:  s.Metadata,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// insertModel returns the document written for a new record. grove writes
// every column, so Metadata is stored as an empty document rather than null
// for metadata.<key> updates to extend.
func insertModel(s *subscription.Subscription) *subscriptionModel {
	m := toSubscriptionModel(s)
	if m.Metadata == nil {
		m.Metadata = map[string]any{}
	}
	return m
}

func fromSubscriptionModel(m *subscriptionModel) *subscription.Subscription {
	return &subscription.Subscription{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        id.FromObjectID(m.ID),
		PlanID:    m.PlanID,
		BrandID:   m.BrandID,
		Status:    subscription.Status(m.Status),
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		Metadata:  m.Metadata,
	}
}

func fromSubscriptionModels(models []subscriptionModel) []*subscription.Subscription {
	result := make([]*subscription.Subscription, len(models))
	for i := range models {
		result[i] = fromSubscriptionModel(&models[i])
	}
	return result
}

// filterDoc translates f into an equality match on every set key. A zero
// filter matches every document.
func filterDoc(f subscription.Filter) bson.M {
	doc := bson.M{}
	if f.PlanID != nil {
		doc[fieldPlanID] = *f.PlanID
	}
	if f.BrandID != nil {
		doc[fieldBrandID] = *f.BrandID
	}
	return doc
}

// updateDoc builds the $set document for p. Metadata keys are set
// individually so unrelated keys survive the update; a key that would be
// read as a path or an operator is rejected.
func updateDoc(p subscription.Patch, at time.Time) (bson.M, error) {
	if key, bad := subscription.InvalidMetadataKey(p.Metadata); bad {
		return nil, fmt.Errorf("%w: metadata key %q", directory.ErrInvalidInput, key)
	}

	set := bson.M{fieldUpdatedAt: at}
	if p.PlanID != nil {
		set[fieldPlanID] = *p.PlanID
	}
	if p.BrandID != nil {
		set[fieldBrandID] = *p.BrandID
	}
	if p.Status != nil {
		set[fieldStatus] = string(*p.Status)
	}
	if p.StartDate != nil {
		set[fieldStartDate] = *p.StartDate
	}
	if p.EndDate != nil {
		set[fieldEndDate] = *p.EndDate
	}
	for k, v := range p.Metadata {
		set[fieldMetadata+"."+k] = v
	}
	return bson.M{"$set": set}, nil
}
