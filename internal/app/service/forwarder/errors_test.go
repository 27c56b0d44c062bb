package forwarder

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/subloop/reconciler/internal/app/service/ledger"
)

func TestForwardingError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("%w: dial tcp", ledger.ErrUnavailable)
	err := error(&ForwardingError{Transient: true, Err: cause})

	require.True(t, errors.Is(err, ledger.ErrUnavailable))

	var fe *ForwardingError
	require.True(t, errors.As(err, &fe))
	require.True(t, fe.Transient)
}

func TestIsTransient(t *testing.T) {
	require.True(t, IsTransient(&ForwardingError{Transient: true, Err: context.DeadlineExceeded}))
	require.False(t, IsTransient(&ForwardingError{Err: ledger.ErrInvalidRequest}))
	require.False(t, IsTransient(errors.New("plain error")))
	require.False(t, IsTransient(nil))

	wrapped := fmt.Errorf("handle delivery: %w", &ForwardingError{Transient: true, Err: context.DeadlineExceeded})
	require.True(t, IsTransient(wrapped))
}
