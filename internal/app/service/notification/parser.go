package notification

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var requiredFields = []string{FieldMerchantID, FieldOrderID, FieldStatusCode}

// Parse extracts a Notification from a form-encoded gateway payload.
// Required fields must be present and non-empty; every missing one is
// reported in the returned ParseError. Optional fields default to empty and
// never fail the parse. Pure: no I/O, no side effects.
func Parse(form url.Values) (*Notification, error) {
	perr := &ParseError{}
	for _, f := range requiredFields {
		if strings.TrimSpace(form.Get(f)) == "" {
			perr.MissingFields = append(perr.MissingFields, f)
		}
	}
	if len(perr.MissingFields) > 0 {
		return nil, perr
	}

	n := &Notification{
		MerchantID:     form.Get(FieldMerchantID),
		OrderID:        form.Get(FieldOrderID),
		PaymentID:      form.Get(FieldPaymentID),
		Amount:         form.Get(FieldAmount),
		Currency:       form.Get(FieldCurrency),
		StatusCode:     strings.TrimSpace(form.Get(FieldStatusCode)),
		Signature:      form.Get(FieldSignature),
		Method:         form.Get(FieldMethod),
		StatusMessage:  form.Get(FieldStatusMessage),
		CardHolderName: form.Get(FieldCardHolderName),
		CardLast4:      cardLast4(form.Get(FieldCardNo)),
		AccountID:      form.Get(FieldCustom1),
		PlanID:         form.Get(FieldCustom2),
	}

	if n.Amount != "" {
		cents, err := parseAmountCents(n.Amount)
		if err != nil {
			perr.MalformedFields = append(perr.MalformedFields, FieldAmount)
			return nil, perr
		}
		n.AmountCents = cents
	}

	return n, nil
}

// cardLast4 reduces the masked card number from the wire (for example
// "************1234") to its visible tail.
func cardLast4(masked string) string {
	digits := strings.TrimLeft(masked, "*Xx ")
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return digits
}

// parseAmountCents converts a gateway decimal amount string such as
// "1500.00" into minor units. The fraction must be one or two plain digits;
// anything else is rejected rather than silently rounded, since the amount
// participates in the signature and reconciliation record.
func parseAmountCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	whole, frac, hasFrac := strings.Cut(s, ".")

	wholeVal, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, err
	}
	if !hasFrac {
		return wholeVal * 100, nil
	}

	if len(frac) == 0 || len(frac) > 2 {
		return 0, fmt.Errorf("amount fraction %q is not 1-2 digits", frac)
	}
	for _, r := range frac {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("amount fraction %q is not 1-2 digits", frac)
		}
	}
	if len(frac) == 1 {
		frac += "0"
	}
	fracVal, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, err
	}
	if strings.HasPrefix(whole, "-") {
		return wholeVal*100 - fracVal, nil
	}
	return wholeVal*100 + fracVal, nil
}
