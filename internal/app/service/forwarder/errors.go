package forwarder

import (
	"errors"
	"fmt"
)

// ForwardingError wraps a failed ledger call. Transient failures (timeouts,
// storage unavailable) are eligible for the gateway's redelivery retry;
// permanent ones are not and surface as an Error outcome instead.
type ForwardingError struct {
	Transient bool
	Err       error
}

func (e *ForwardingError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("forwarding failed (%s): %v", kind, e.Err)
}

func (e *ForwardingError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a transient ForwardingError.
func IsTransient(err error) bool {
	var fe *ForwardingError
	return errors.As(err, &fe) && fe.Transient
}
