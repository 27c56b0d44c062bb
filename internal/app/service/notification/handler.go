package notification

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/subloop/reconciler/internal/app/service/ledger"
	"github.com/subloop/reconciler/internal/app/service/presenter"
	"github.com/subloop/reconciler/internal/models"
	"github.com/subloop/reconciler/pkg/config"
	"github.com/subloop/reconciler/pkg/logctx"
	"github.com/subloop/reconciler/pkg/metrics"
	"github.com/subloop/reconciler/pkg/types"
)

// User-facing failure labels. Deliberately opaque: diagnostics go to logs
// and the audit trail, never to the checkout page.
const (
	failReasonVerification = "payment could not be verified"
	failReasonProcessing   = "payment could not be processed"
)

// AuditTrail records delivery audit rows. Implementations are best effort
// and must never fail the delivery being handled.
type AuditTrail interface {
	Save(ctx context.Context, log *models.NotificationLog)
}

// Forwarder is the ledger-forwarding collaborator of the pipeline.
type Forwarder interface {
	Forward(ctx context.Context, n *Notification, outcome types.PaymentOutcome) (*ledger.ReconciliationResult, error)
}

// Handler runs one gateway delivery through the reconciliation pipeline:
// parse, verify, classify, forward, present. Data flows strictly one way;
// the presenter never re-invokes the forwarder.
type Handler struct {
	cfg        *config.Config
	fwd        Forwarder
	audit      AuditTrail
	presenters *presenter.Registry
	factory    *presenter.Factory
	Logger     *zap.SugaredLogger
}

func NewHandler(cfg *config.Config, fwd Forwarder, audit AuditTrail, reg *presenter.Registry, factory *presenter.Factory, log *zap.SugaredLogger) *Handler {
	return &Handler{cfg: cfg, fwd: fwd, audit: audit, presenters: reg, factory: factory, Logger: log}
}

// DeliveryResult is what one handled delivery produced.
type DeliveryResult struct {
	Notification *Notification
	Outcome      types.PaymentOutcome
	// Reconciliation is nil for Unknown outcomes, which never reach the
	// ledger.
	Reconciliation *ledger.ReconciliationResult
}

// HandleDelivery processes one inbound gateway delivery. Each invocation is
// independent: all state is scoped to this one reconciliation attempt, and
// duplicate-delivery races are resolved by the ledger, not here.
func (h *Handler) HandleDelivery(ctx context.Context, form url.Values) (res *DeliveryResult, resErr error) {
	log := logctx.FromCtx(ctx, h.Logger)

	var traceID string
	if v, ok := ctx.Value("traceID").(string); ok {
		traceID = v
	}

	dataBytes, _ := json.Marshal(redactForm(form))
	orderID := form.Get(FieldOrderID)
	accountID := form.Get(FieldCustom1)

	h.audit.Save(ctx, &models.NotificationLog{
		OrderID: orderID,
		AccountID: func() *string {
			if accountID == "" {
				return nil
			}
			return lo.ToPtr(accountID)
		}(),
		TraceID:          traceID,
		NotificationTime: time.Now(),
		Data:             datatypes.JSON(dataBytes),
		Status:           models.NotificationLogStatusReceived,
	})

	defer func() {
		resMap := map[string]any{}
		status := models.NotificationLogStatusHandled
		if resErr != nil {
			resMap["error"] = resErr.Error()
			status = models.NotificationLogStatusHandleFailed
		}
		if res != nil {
			resMap["outcome"] = res.Outcome
			if res.Reconciliation != nil {
				resMap["already_applied"] = res.Reconciliation.AlreadyApplied
			}
		}
		resBytes, _ := json.Marshal(resMap)
		h.audit.Save(ctx, &models.NotificationLog{
			OrderID: orderID,
			AccountID: func() *string {
				if accountID == "" {
					return nil
				}
				return lo.ToPtr(accountID)
			}(),
			TraceID:          traceID,
			NotificationTime: time.Now(),
			Data:             datatypes.JSON(dataBytes),
			Result:           func() *datatypes.JSON { j := datatypes.JSON(resBytes); return &j }(),
			Status:           status,
		})
	}()

	n, err := Parse(form)
	if err != nil {
		log.Errorw("notification_parse_failed", "error", err.Error())
		return nil, err
	}

	p := h.factory.New(n.OrderID, n.PlanID)

	if err := Verify(n, h.cfg.Gateway.MerchantSecret); err != nil {
		// Potential forgery: loud for operators, opaque for the user. The
		// failure is presented only while nothing verified has resolved the
		// order, so a forged POST cannot tear down a settled checkout.
		log.Errorw("notification_signature_mismatch", "order_id", n.OrderID, "merchant_id", n.MerchantID)
		if h.presenters.TrackProvisional(n.OrderID, p) {
			p.Fail(failReasonVerification)
		}
		return nil, err
	}

	// The presenter owns the user-visible side from here on. A verified
	// redelivery replaces any presenter left over from a previous attempt.
	h.presenters.Track(n.OrderID, p)

	outcome := Classify(n.StatusCode)
	if outcome == types.PaymentOutcomeUnknown {
		// Recognized delivery, unmapped code. Surfaced to operators and to
		// the user without touching the ledger.
		log.Warnw("notification_status_unmapped", "order_id", n.OrderID, "status_code", n.StatusCode)
		p.Resolve(outcome)
		metrics.CountOutcome(string(outcome), false)
		return &DeliveryResult{Notification: n, Outcome: outcome}, nil
	}

	recRes, err := h.fwd.Forward(ctx, n, outcome)
	if err != nil {
		p.Fail(failReasonProcessing)
		return nil, err
	}

	// Present the classifier's outcome, not a re-derived one.
	p.Resolve(outcome)
	metrics.CountOutcome(string(outcome), recRes.AlreadyApplied)

	log.Infow("notification_handled",
		"order_id", n.OrderID, "outcome", outcome, "already_applied", recRes.AlreadyApplied)

	return &DeliveryResult{Notification: n, Outcome: outcome, Reconciliation: recRes}, nil
}

// redactForm strips authenticity and card material before the payload is
// persisted to the audit trail.
func redactForm(form url.Values) map[string]string {
	out := make(map[string]string, len(form))
	for k := range form {
		switch k {
		case FieldSignature:
			out[k] = "[redacted]"
		case FieldCardNo:
			out[k] = cardLast4(form.Get(k))
		default:
			out[k] = form.Get(k)
		}
	}
	return out
}
