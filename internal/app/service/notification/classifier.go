package notification

import (
	"github.com/subloop/reconciler/pkg/types"
)

// Gateway status codes as they appear on the wire.
const (
	StatusCodeSuccess     = "2"
	StatusCodePending     = "0"
	StatusCodeCancelled   = "-1"
	StatusCodeFailed      = "-2"
	StatusCodeChargedBack = "-3"
)

// Classify maps a wire status code onto its canonical outcome. The mapping
// is total: every input classifies, and codes outside the documented set
// classify as Unknown rather than being coerced into another bucket.
// Classification depends on the status code alone.
func Classify(statusCode string) types.PaymentOutcome {
	switch statusCode {
	case StatusCodeSuccess:
		return types.PaymentOutcomeSuccess
	case StatusCodePending:
		return types.PaymentOutcomePending
	case StatusCodeCancelled:
		return types.PaymentOutcomeCancelled
	case StatusCodeFailed:
		return types.PaymentOutcomeFailed
	case StatusCodeChargedBack:
		return types.PaymentOutcomeChargedBack
	default:
		return types.PaymentOutcomeUnknown
	}
}
