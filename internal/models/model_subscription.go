package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/subloop/reconciler/pkg/types"
)

// Subscription stores one account's subscription state.
// Use Valid() to determine whether the subscription is currently valid.
type Subscription struct {
	ID        string                   `gorm:"column:id;type:uuid;primary_key" json:"id"`
	AccountID string                   `gorm:"column:account_id;type:varchar(64);not null;uniqueIndex" json:"account_id"`
	Status    types.SubscriptionStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	// PlanID is the plan of the most recent settled purchase.
	PlanID string `gorm:"column:plan_id;type:varchar(64)" json:"plan_id"`
	// ExpireAt is the subscription end time.
	ExpireAt *time.Time `gorm:"column:expire_at;default:null" json:"expire_at"`
	// Extra stores additional JSON data (for example the last settlement
	// amount and currency).
	Extra     datatypes.JSON `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

func (s *Subscription) Valid() bool {
	return s != nil &&
		s.Status == types.SubscriptionStatusActive &&
		s.ExpireAt != nil &&
		s.ExpireAt.After(time.Now())
}

// Info reduces the stored row to the API-facing subscription view. Lapsed
// subscriptions are reported as inactive regardless of the stored status.
func (s *Subscription) Info() *types.SubscriptionInfo {
	if s == nil {
		return &types.SubscriptionInfo{Status: types.SubscriptionStatusInactive}
	}
	status := s.Status
	if !s.Valid() {
		status = types.SubscriptionStatusInactive
	}
	return &types.SubscriptionInfo{Status: status, PlanID: s.PlanID, ExpireAt: s.ExpireAt}
}
