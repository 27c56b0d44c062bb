package types

// PaymentOutcome is the canonical classification of a gateway payment
// result, decoupled from the wire-level status code. Each value is terminal
// for a notification instance; there is no ordering between them.
type PaymentOutcome string

const (
	PaymentOutcomeSuccess     PaymentOutcome = "success"
	PaymentOutcomePending     PaymentOutcome = "pending"
	PaymentOutcomeCancelled   PaymentOutcome = "cancelled"
	PaymentOutcomeFailed      PaymentOutcome = "failed"
	PaymentOutcomeChargedBack PaymentOutcome = "charged_back"
	PaymentOutcomeUnknown     PaymentOutcome = "unknown"
)

// Settled reports whether the outcome represents money that moved and was
// kept. Only settled outcomes may touch subscription state.
func (o PaymentOutcome) Settled() bool {
	return o == PaymentOutcomeSuccess
}
