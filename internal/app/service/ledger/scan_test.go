package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/subloop/reconciler/pkg/types"
)

func TestScanReconciliations_RejectsUnknownFilterField(t *testing.T) {
	s := newValidationService()

	_, err := s.ScanReconciliations(context.Background(), &ScanReconciliationsRequest{
		Filters: []*types.CommonFilter{{
			Field:    "merchant_secret",
			Operator: types.CommonFilterOperatorEq,
			Values:   []any{"x"},
		}},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidRequest))
	require.Contains(t, err.Error(), "merchant_secret")
}

func TestScanReconciliations_RejectsUnknownSortField(t *testing.T) {
	s := newValidationService()

	_, err := s.ScanReconciliations(context.Background(), &ScanReconciliationsRequest{
		SortBy: "extra",
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidRequest))
}
