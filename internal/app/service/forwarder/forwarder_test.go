package forwarder

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/subloop/reconciler/internal/app/service/ledger"
	"github.com/subloop/reconciler/internal/app/service/notification"
	"github.com/subloop/reconciler/pkg/types"
)

type fakeLedger struct {
	calls   int
	lastReq *ledger.ReconcileRequest
	res     *ledger.ReconciliationResult
	err     error
	// block makes the call wait for context cancellation, simulating an
	// unresponsive ledger.
	block bool
}

func (f *fakeLedger) ReconcilePayment(ctx context.Context, req *ledger.ReconcileRequest) (*ledger.ReconciliationResult, error) {
	f.calls++
	f.lastReq = req
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

func testNotification() *notification.Notification {
	return &notification.Notification{
		MerchantID:  "M1",
		OrderID:     "O1",
		PaymentID:   "P1",
		Amount:      "1500.00",
		AmountCents: 150000,
		Currency:    "LKR",
		StatusCode:  "2",
		AccountID:   "acct-42",
		PlanID:      "plan-monthly",
	}
}

func TestForward_PassesNotificationThrough(t *testing.T) {
	fl := &fakeLedger{res: &ledger.ReconciliationResult{
		Outcome: types.PaymentOutcomeSuccess, OrderID: "O1", AppliedAt: time.Now(),
	}}
	f := New(fl, time.Second, zap.NewNop().Sugar())

	res, err := f.Forward(context.Background(), testNotification(), types.PaymentOutcomeSuccess)
	require.NoError(t, err)
	require.Equal(t, types.PaymentOutcomeSuccess, res.Outcome)
	require.Equal(t, 1, fl.calls)
	require.Equal(t, "O1", fl.lastReq.OrderID)
	require.Equal(t, int64(150000), fl.lastReq.AmountCents)
	require.Equal(t, "acct-42", fl.lastReq.AccountID)
	require.Equal(t, "plan-monthly", fl.lastReq.PlanID)
	require.Equal(t, "2", fl.lastReq.RawStatusCode)
}

func TestForward_UnknownOutcomeNeverReachesLedger(t *testing.T) {
	fl := &fakeLedger{}
	f := New(fl, time.Second, zap.NewNop().Sugar())

	_, err := f.Forward(context.Background(), testNotification(), types.PaymentOutcomeUnknown)
	require.Error(t, err)
	require.False(t, IsTransient(err))
	require.Zero(t, fl.calls)
}

func TestForward_TimeoutIsTransient(t *testing.T) {
	fl := &fakeLedger{block: true}
	f := New(fl, 10*time.Millisecond, zap.NewNop().Sugar())

	start := time.Now()
	_, err := f.Forward(context.Background(), testNotification(), types.PaymentOutcomeSuccess)
	require.Error(t, err)
	require.True(t, IsTransient(err))
	require.Less(t, time.Since(start), time.Second, "must fail fast instead of hanging")
}

func TestForward_LedgerUnavailableIsTransient(t *testing.T) {
	fl := &fakeLedger{err: fmt.Errorf("%w: connection refused", ledger.ErrUnavailable)}
	f := New(fl, time.Second, zap.NewNop().Sugar())

	_, err := f.Forward(context.Background(), testNotification(), types.PaymentOutcomePending)
	require.Error(t, err)
	require.True(t, IsTransient(err))
}

func TestForward_LedgerRejectionIsPermanent(t *testing.T) {
	fl := &fakeLedger{err: fmt.Errorf("%w: %q", ledger.ErrPlanNotFound, "plan-x")}
	f := New(fl, time.Second, zap.NewNop().Sugar())

	_, err := f.Forward(context.Background(), testNotification(), types.PaymentOutcomeSuccess)
	require.Error(t, err)
	require.False(t, IsTransient(err))
	require.True(t, errors.Is(err, ledger.ErrPlanNotFound))
}
