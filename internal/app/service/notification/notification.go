package notification

// Wire field names, fixed by the gateway's notification contract.
const (
	FieldMerchantID     = "merchant_id"
	FieldOrderID        = "order_id"
	FieldPaymentID      = "payment_id"
	FieldAmount         = "payhere_amount"
	FieldCurrency       = "payhere_currency"
	FieldStatusCode     = "status_code"
	FieldSignature      = "md5sig"
	FieldMethod         = "method"
	FieldStatusMessage  = "status_message"
	FieldCardHolderName = "card_holder_name"
	FieldCardNo         = "card_no"
	FieldCustom1        = "custom_1"
	FieldCustom2        = "custom_2"
)

// Notification is one parsed gateway delivery. It is immutable once parsed:
// the pipeline classifies and forwards it, never mutates it.
//
// Amount, Currency and StatusCode keep their raw wire strings. The gateway
// signs the exact bytes it sent, so the verifier must recompute over the
// originals rather than any normalized form.
type Notification struct {
	MerchantID string
	OrderID    string
	PaymentID  string

	Amount      string
	AmountCents int64
	Currency    string
	StatusCode  string
	Signature   string

	// Display-only fields. Never used in verification or classification.
	Method         string
	StatusMessage  string
	CardHolderName string
	CardLast4      string

	// Opaque merchant correlation fields: custom_1 carries the purchasing
	// account id, custom_2 the requested plan id.
	AccountID string
	PlanID    string
}
