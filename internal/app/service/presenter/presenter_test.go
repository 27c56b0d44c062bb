package presenter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/subloop/reconciler/pkg/config"
	"github.com/subloop/reconciler/pkg/types"
)

var testRoutes = config.CheckoutRoutes{
	Success: "/checkout/complete",
	Retry:   "/checkout/retry",
	Return:  "/account/subscription",
}

type recordingNavigator struct {
	mu     sync.Mutex
	calls  int
	route  string
	params map[string]string
	done   chan struct{}
}

func newRecordingNavigator() *recordingNavigator {
	return &recordingNavigator{done: make(chan struct{}, 4)}
}

func (r *recordingNavigator) NavigateTo(route string, params map[string]string) {
	r.mu.Lock()
	r.calls++
	r.route = route
	r.params = params
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *recordingNavigator) snapshot() (int, string, map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls, r.route, r.params
}

func waitNavigation(t *testing.T, nav *recordingNavigator) {
	t.Helper()
	select {
	case <-nav.done:
	case <-time.After(time.Second):
		t.Fatal("navigation did not fire")
	}
}

func TestPresenter_SuccessNavigatesToSuccessRoute(t *testing.T) {
	nav := newRecordingNavigator()
	p := New("O1", "plan-monthly", nav, testRoutes, 5*time.Millisecond)
	require.Equal(t, StateProcessing, p.State())

	p.Resolve(types.PaymentOutcomeSuccess)
	require.Equal(t, StateSuccess, p.State())

	waitNavigation(t, nav)
	calls, route, params := nav.snapshot()
	require.Equal(t, 1, calls)
	require.Equal(t, testRoutes.Success, route)
	require.Equal(t, "O1", params["order_id"])
	require.Equal(t, "plan-monthly", params["plan_id"])
}

func TestPresenter_CancelledAndFailedShareRetryRoute(t *testing.T) {
	for _, outcome := range []types.PaymentOutcome{types.PaymentOutcomeCancelled, types.PaymentOutcomeFailed} {
		nav := newRecordingNavigator()
		p := New("O2", "", nav, testRoutes, 5*time.Millisecond)
		p.Resolve(outcome)

		waitNavigation(t, nav)
		_, route, params := nav.snapshot()
		require.Equal(t, testRoutes.Retry, route, "outcome %s", outcome)
		require.Equal(t, "O2", params["order_id"])
	}
}

func TestPresenter_FailNavigatesToRetryRoute(t *testing.T) {
	nav := newRecordingNavigator()
	p := New("O3", "", nav, testRoutes, 5*time.Millisecond)
	p.Fail("payment could not be verified")

	require.Equal(t, StateError, p.State())
	waitNavigation(t, nav)
	_, route, _ := nav.snapshot()
	require.Equal(t, testRoutes.Retry, route)

	snap := p.Snapshot()
	require.Equal(t, "payment could not be verified", snap.Reason)
	require.True(t, snap.RedirectFired)
}

func TestPresenter_NonSettledOutcomesDoNotNavigate(t *testing.T) {
	for _, tc := range []struct {
		outcome types.PaymentOutcome
		state   State
	}{
		{types.PaymentOutcomePending, StatePending},
		{types.PaymentOutcomeChargedBack, StateChargedBack},
		{types.PaymentOutcomeUnknown, StateUnknown},
	} {
		nav := newRecordingNavigator()
		p := New("O4", "", nav, testRoutes, time.Millisecond)
		p.Resolve(tc.outcome)
		require.Equal(t, tc.state, p.State())

		time.Sleep(20 * time.Millisecond)
		calls, _, _ := nav.snapshot()
		require.Zero(t, calls, "outcome %s must not navigate", tc.outcome)

		snap := p.Snapshot()
		require.Empty(t, snap.RedirectRoute)
		require.Equal(t, testRoutes.Return, snap.ReturnRoute)
	}
}

func TestPresenter_CloseCancelsPendingNavigation(t *testing.T) {
	nav := newRecordingNavigator()
	p := New("O5", "", nav, testRoutes, 20*time.Millisecond)
	p.Resolve(types.PaymentOutcomeSuccess)
	p.Close()

	time.Sleep(60 * time.Millisecond)
	calls, _, _ := nav.snapshot()
	require.Zero(t, calls)
}

func TestPresenter_TerminalStatesIgnoreFurtherTransitions(t *testing.T) {
	nav := newRecordingNavigator()
	p := New("O6", "", nav, testRoutes, 5*time.Millisecond)
	p.Resolve(types.PaymentOutcomeCancelled)
	p.Resolve(types.PaymentOutcomeSuccess)
	p.Fail("too late")

	require.Equal(t, StateCancelled, p.State())
	waitNavigation(t, nav)
	time.Sleep(20 * time.Millisecond)
	calls, route, _ := nav.snapshot()
	require.Equal(t, 1, calls)
	require.Equal(t, testRoutes.Retry, route)
}
