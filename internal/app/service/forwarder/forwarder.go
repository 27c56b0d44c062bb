package forwarder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/subloop/reconciler/internal/app/service/ledger"
	"github.com/subloop/reconciler/internal/app/service/notification"
	"github.com/subloop/reconciler/pkg/config"
	"github.com/subloop/reconciler/pkg/logctx"
	"github.com/subloop/reconciler/pkg/types"
)

// Ledger is the subscription ledger collaborator. The call must be safely
// repeatable for the same order id.
type Ledger interface {
	ReconcilePayment(ctx context.Context, req *ledger.ReconcileRequest) (*ledger.ReconciliationResult, error)
}

// Forwarder relays one verified, classified notification to the ledger
// under a bounded timeout. It never retries by itself: transient failures
// are reported as such and left to the gateway's redelivery loop.
type Forwarder struct {
	ledger  Ledger
	timeout time.Duration
	log     *zap.SugaredLogger
}

func New(l Ledger, timeout time.Duration, log *zap.SugaredLogger) *Forwarder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Forwarder{ledger: l, timeout: timeout, log: log}
}

func NewFromConfig(svc *ledger.Service, cfg *config.Config, log *zap.SugaredLogger) *Forwarder {
	return New(svc, cfg.ForwardTimeout(), log)
}

// Forward issues the single synchronous ledger call for n. The call fails
// with a transient ForwardingError on timeout rather than hanging.
func (f *Forwarder) Forward(ctx context.Context, n *notification.Notification, outcome types.PaymentOutcome) (*ledger.ReconciliationResult, error) {
	if outcome == types.PaymentOutcomeUnknown {
		return nil, &ForwardingError{Err: fmt.Errorf("unknown outcome for order %s is never forwarded", n.OrderID)}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	res, err := f.ledger.ReconcilePayment(ctx, &ledger.ReconcileRequest{
		OrderID:        n.OrderID,
		PaymentID:      n.PaymentID,
		Outcome:        outcome,
		AmountCents:    n.AmountCents,
		Currency:       n.Currency,
		AccountID:      n.AccountID,
		PlanID:         n.PlanID,
		Method:         n.Method,
		StatusMessage:  n.StatusMessage,
		CardHolderName: n.CardHolderName,
		CardLast4:      n.CardLast4,
		RawStatusCode:  n.StatusCode,
	})
	if err != nil {
		transient := errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, context.Canceled) ||
			errors.Is(err, ledger.ErrUnavailable)
		logctx.FromCtx(ctx, f.log).Errorw("ledger reconcile failed",
			"order_id", n.OrderID, "outcome", outcome, "transient", transient, "error", err.Error())
		return nil, &ForwardingError{Transient: transient, Err: err}
	}

	if res.AlreadyApplied {
		logctx.FromCtx(ctx, f.log).Infow("reconciliation replayed",
			"order_id", res.OrderID, "outcome", res.Outcome)
	}
	return res, nil
}
