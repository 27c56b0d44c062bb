package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationLogStatus string

const (
	NotificationLogStatusReceived     NotificationLogStatus = "received"
	NotificationLogStatusHandled      NotificationLogStatus = "handled"
	NotificationLogStatusHandleFailed NotificationLogStatus = "handle_failed"
)

// NotificationLog is the audit trail of gateway deliveries: one "received"
// row per delivery, then one "handled"/"handle_failed" row with the result.
// Signature material is redacted before Data is stored.
type NotificationLog struct {
	ID               string                `gorm:"column:id;type:uuid;primary_key" json:"id"`
	OrderID          string                `gorm:"column:order_id;type:varchar(128);index" json:"order_id"`
	AccountID        *string               `gorm:"column:account_id;type:varchar(64)" json:"account_id"`
	TraceID          string                `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	NotificationTime time.Time             `gorm:"column:notification_time" json:"notification_time"`
	Data             datatypes.JSON        `gorm:"column:data;type:jsonb" json:"data"`
	Result           *datatypes.JSON       `gorm:"column:result;type:jsonb" json:"result"`
	Status           NotificationLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

func (NotificationLog) TableName() string { return "notification_log" }
