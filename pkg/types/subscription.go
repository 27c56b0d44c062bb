package types

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
)

type SubscriptionInfo struct {
	Status   SubscriptionStatus `json:"status"`
	PlanID   string             `json:"plan_id"`
	ExpireAt *time.Time         `json:"expire_at"`
}
