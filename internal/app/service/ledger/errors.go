package ledger

import "errors"

var (
	// ErrUnavailable wraps storage failures. Callers treat it as transient:
	// the gateway's redelivery loop will retry the notification.
	ErrUnavailable = errors.New("ledger unavailable")

	// ErrPlanNotFound means the correlation fields reference a plan missing
	// from the merchant catalog. Permanent: redelivery cannot fix it.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrInvalidRequest means the reconciliation request is structurally
	// unusable (for example an empty order id). Permanent.
	ErrInvalidRequest = errors.New("invalid reconciliation request")
)
