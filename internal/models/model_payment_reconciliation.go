package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/subloop/reconciler/pkg/types"
)

// PaymentReconciliationExtra carries display-only notification fields. They
// never influence verification or classification, only operator views.
type PaymentReconciliationExtra struct {
	Method         string `json:"method,omitempty"`
	StatusMessage  string `json:"status_message,omitempty"`
	CardHolderName string `json:"card_holder_name,omitempty"`
	CardLast4      string `json:"card_last4,omitempty"`
	// RawStatusCode is the wire value the outcome was classified from.
	RawStatusCode string `json:"raw_status_code,omitempty"`
}

// PaymentReconciliation is the durable record of one gateway order's
// outcome. The unique index on order_id is the idempotency mechanism:
// concurrent or repeated deliveries of the same order collapse onto one row.
type PaymentReconciliation struct {
	ID        string               `gorm:"column:id;primary_key;type:uuid" json:"id"`
	OrderID   string               `gorm:"column:order_id;type:varchar(128);not null;uniqueIndex:unique_order_id" json:"order_id"`
	PaymentID string               `gorm:"column:payment_id;type:varchar(128)" json:"payment_id"`
	AccountID string               `gorm:"column:account_id;type:varchar(64);index" json:"account_id"`
	PlanID    string               `gorm:"column:plan_id;type:varchar(64)" json:"plan_id"`
	Outcome   types.PaymentOutcome `gorm:"column:outcome;type:varchar(32);not null" json:"outcome"`
	// AmountCents is the settlement amount in minor units of Currency.
	AmountCents int64  `gorm:"column:amount_cents;type:bigint;not null" json:"amount_cents"`
	Currency    string `gorm:"column:currency;type:varchar(8)" json:"currency"`
	// AppliedAt is when the recorded outcome was last applied.
	AppliedAt time.Time `gorm:"column:applied_at;not null" json:"applied_at"`

	Extra     datatypes.JSONType[*PaymentReconciliationExtra] `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time                                       `json:"created_at"`
	UpdatedAt time.Time                                       `json:"updated_at"`
}

func (PaymentReconciliation) TableName() string {
	return "payment_reconciliation"
}
