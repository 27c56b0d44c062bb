package notification

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/subloop/reconciler/pkg/types"
)

func TestClassify_DocumentedCodes(t *testing.T) {
	cases := map[string]types.PaymentOutcome{
		"2":  types.PaymentOutcomeSuccess,
		"0":  types.PaymentOutcomePending,
		"-1": types.PaymentOutcomeCancelled,
		"-2": types.PaymentOutcomeFailed,
		"-3": types.PaymentOutcomeChargedBack,
	}
	for code, want := range cases {
		require.Equal(t, want, Classify(code), "code %s", code)
	}
}

func TestClassify_UnmappedCodesAreUnknown(t *testing.T) {
	for _, code := range []string{"7", "1", "3", "-4", "200", "", "success", " 2"} {
		require.Equal(t, types.PaymentOutcomeUnknown, Classify(code), "code %q", code)
	}
}

// Every integer status code classifies to exactly one of the six outcomes.
func TestClassify_TotalOverIntegers(t *testing.T) {
	known := map[types.PaymentOutcome]bool{
		types.PaymentOutcomeSuccess:     true,
		types.PaymentOutcomePending:     true,
		types.PaymentOutcomeCancelled:   true,
		types.PaymentOutcomeFailed:      true,
		types.PaymentOutcomeChargedBack: true,
		types.PaymentOutcomeUnknown:     true,
	}
	for i := -50; i <= 50; i++ {
		out := Classify(strconv.Itoa(i))
		require.True(t, known[out], "code %d classified as %q", i, out)
	}
}
