package notification

import (
	"fmt"
	"strings"
)

// ParseError reports an unusable payload. It names every offending field,
// not just the first, so the gateway's operator can fix them in one pass.
// Parse errors are permanent: redelivery of the same payload cannot succeed.
type ParseError struct {
	MissingFields   []string
	MalformedFields []string
}

func (e *ParseError) Error() string {
	var parts []string
	if len(e.MissingFields) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.MissingFields, ", "))
	}
	if len(e.MalformedFields) > 0 {
		parts = append(parts, "malformed fields: "+strings.Join(e.MalformedFields, ", "))
	}
	if len(parts) == 0 {
		return "invalid notification payload"
	}
	return strings.Join(parts, "; ")
}

// AuthenticityError reports a signature mismatch. The notification must be
// treated as a potential forgery: it never reaches the classifier or the
// ledger, and the error text never echoes signature material.
type AuthenticityError struct {
	OrderID string
}

func (e *AuthenticityError) Error() string {
	return fmt.Sprintf("notification signature mismatch for order %q", e.OrderID)
}
