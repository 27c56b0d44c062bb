package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/subloop/reconciler/internal/models"
	"github.com/subloop/reconciler/pkg/config"
	"github.com/subloop/reconciler/pkg/logctx"
	"github.com/subloop/reconciler/pkg/tool"
	"github.com/subloop/reconciler/pkg/types"
)

// ReconcileRequest carries one verified, classified notification into the
// ledger, keyed by OrderID.
type ReconcileRequest struct {
	OrderID     string
	PaymentID   string
	Outcome     types.PaymentOutcome
	AmountCents int64
	Currency    string
	// AccountID/PlanID are the merchant correlation fields.
	AccountID string
	PlanID    string
	// Display-only metadata kept for operator views.
	Method         string
	StatusMessage  string
	CardHolderName string
	CardLast4      string
	RawStatusCode  string
}

type ReconciliationResult struct {
	Outcome   types.PaymentOutcome `json:"outcome"`
	OrderID   string               `json:"order_id"`
	AppliedAt time.Time            `json:"applied_at"`
	// AlreadyApplied marks a replay: the ledger recognized the order from a
	// prior delivery and performed no new mutation.
	AlreadyApplied bool `json:"already_applied"`
	// SubscriptionExpireAt is set when this call activated or extended a
	// subscription.
	SubscriptionExpireAt *time.Time `json:"subscription_expire_at,omitempty"`
}

type Service struct {
	db  *gorm.DB
	cfg *config.Config
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, cfg *config.Config, log *zap.SugaredLogger) *Service {
	return &Service{db: db, cfg: cfg, log: log}
}

// ReconcilePayment durably applies one payment outcome at most once.
//
// Within a single database transaction it loads the reconciliation row for
// the order, and either reports a replay (same outcome seen before), applies
// an outcome change (gateways deliver out of order, e.g. Pending before
// Success), or records the order for the first time. Only a Success outcome
// touches subscription state. Concurrent deliveries of the same order are
// serialized twice over: redeliveries of a recorded order queue on the row
// lock taken by the initial load, and racing first deliveries collapse on
// the unique index, where the losing insert re-reads the winner's row and
// reports AlreadyApplied.
func (s *Service) ReconcilePayment(ctx context.Context, req *ReconcileRequest) (*ReconciliationResult, error) {
	if req == nil || req.OrderID == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrInvalidRequest)
	}
	if req.Outcome == types.PaymentOutcomeUnknown {
		return nil, fmt.Errorf("%w: unclassified outcome for order %s", ErrInvalidRequest, req.OrderID)
	}

	var res *ReconciliationResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.PaymentReconciliation
		err := reconciliationByOrder(tx, req.OrderID).First(&existing).Error
		switch {
		case err == nil:
			if existing.Outcome == req.Outcome {
				res = replayedResult(&existing)
				return nil
			}
			return s.applyOutcomeChange(ctx, tx, &existing, req, &res)
		case errors.Is(err, gorm.ErrRecordNotFound):
			return s.applyFirstDelivery(ctx, tx, req, &res)
		default:
			return fmt.Errorf("%w: load reconciliation: %v", ErrUnavailable, err)
		}
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// reconciliationByOrder scopes a query to one order's reconciliation row and
// takes a row lock. Concurrent redeliveries of the same order serialize on
// the lock, so a second Success delivery always sees the first one's commit
// instead of a stale Pending row.
func reconciliationByOrder(tx *gorm.DB, orderID string) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("order_id = ?", orderID)
}

// replayedResult reports an order whose recorded outcome already covers the
// incoming delivery. Used both for plain replays and for the loser of a
// concurrent first-delivery race.
func replayedResult(row *models.PaymentReconciliation) *ReconciliationResult {
	return &ReconciliationResult{
		Outcome:        row.Outcome,
		OrderID:        row.OrderID,
		AppliedAt:      row.AppliedAt,
		AlreadyApplied: true,
	}
}

func (s *Service) applyFirstDelivery(ctx context.Context, tx *gorm.DB, req *ReconcileRequest, res **ReconciliationResult) error {
	now := time.Now()
	row := &models.PaymentReconciliation{
		ID:          tool.GenerateUUIDV7(),
		OrderID:     req.OrderID,
		PaymentID:   req.PaymentID,
		AccountID:   req.AccountID,
		PlanID:      req.PlanID,
		Outcome:     req.Outcome,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		AppliedAt:   now,
		Extra: datatypes.NewJSONType(&models.PaymentReconciliationExtra{
			Method:         req.Method,
			StatusMessage:  req.StatusMessage,
			CardHolderName: req.CardHolderName,
			CardLast4:      req.CardLast4,
			RawStatusCode:  req.RawStatusCode,
		}),
	}

	// Claim the order before touching subscription state. A concurrent
	// delivery of the same order blocks on the unique index until the
	// winner commits, then inserts nothing.
	claim := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoNothing: true,
	}).Create(row)
	if claim.Error != nil {
		return fmt.Errorf("%w: create reconciliation: %v", ErrUnavailable, claim.Error)
	}
	if claim.RowsAffected == 0 {
		// Lost the race. The winner's row is authoritative.
		var winner models.PaymentReconciliation
		if err := reconciliationByOrder(tx, req.OrderID).First(&winner).Error; err != nil {
			return fmt.Errorf("%w: reload after duplicate: %v", ErrUnavailable, err)
		}
		*res = replayedResult(&winner)
		return nil
	}

	var expireAt *time.Time
	if req.Outcome.Settled() {
		var err error
		if expireAt, err = s.activateSubscription(ctx, tx, req); err != nil {
			return err
		}
	}

	logctx.FromCtx(ctx, s.log).Infow("reconciliation recorded",
		"order_id", req.OrderID, "outcome", req.Outcome, "account_id", req.AccountID)

	*res = &ReconciliationResult{
		Outcome:              req.Outcome,
		OrderID:              req.OrderID,
		AppliedAt:            now,
		SubscriptionExpireAt: expireAt,
	}
	return nil
}

// applyOutcomeChange handles a redelivery that carries a different outcome
// for a known order. The new outcome replaces the recorded one; activation
// happens when the order settles for the first time (Pending -> Success).
// A charged-back order keeps its subscription until product decides
// otherwise; the outcome change alone is operator-visible.
func (s *Service) applyOutcomeChange(ctx context.Context, tx *gorm.DB, existing *models.PaymentReconciliation, req *ReconcileRequest, res **ReconciliationResult) error {
	previous := existing.Outcome
	now := time.Now()

	var expireAt *time.Time
	if outcomeChangeActivates(previous, req.Outcome) {
		var err error
		if expireAt, err = s.activateSubscription(ctx, tx, req); err != nil {
			return err
		}
	}

	existing.Outcome = req.Outcome
	existing.AmountCents = req.AmountCents
	existing.Currency = req.Currency
	existing.AppliedAt = now
	if extra := existing.Extra.Data(); extra != nil {
		extra.RawStatusCode = req.RawStatusCode
		extra.StatusMessage = req.StatusMessage
		existing.Extra = datatypes.NewJSONType(extra)
	}
	if err := tx.Save(existing).Error; err != nil {
		return fmt.Errorf("%w: update reconciliation: %v", ErrUnavailable, err)
	}

	logctx.FromCtx(ctx, s.log).Warnw("reconciliation outcome changed on redelivery",
		"order_id", req.OrderID, "previous", previous, "outcome", req.Outcome)

	*res = &ReconciliationResult{
		Outcome:              req.Outcome,
		OrderID:              req.OrderID,
		AppliedAt:            now,
		SubscriptionExpireAt: expireAt,
	}
	return nil
}

// outcomeChangeActivates reports whether replacing the recorded outcome
// settles the order for the first time. Out-of-order gateways deliver
// Pending before Success; a change away from Success never reverses the
// activation it caused.
func outcomeChangeActivates(previous, next types.PaymentOutcome) bool {
	return next.Settled() && !previous.Settled()
}

// activateSubscription extends the account's subscription by the purchased
// plan's duration, from its current expiry when still valid or from now
// otherwise, and records the settlement amount and currency.
func (s *Service) activateSubscription(ctx context.Context, tx *gorm.DB, req *ReconcileRequest) (*time.Time, error) {
	plan := s.cfg.GetPlanByID(req.PlanID)
	if plan == nil {
		return nil, fmt.Errorf("%w: %q", ErrPlanNotFound, req.PlanID)
	}
	if req.AccountID == "" {
		return nil, fmt.Errorf("%w: settled order %s carries no account id", ErrInvalidRequest, req.OrderID)
	}

	var sub models.Subscription
	err := tx.Where("account_id = ?", req.AccountID).First(&sub).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: load subscription: %v", ErrUnavailable, err)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sub = models.Subscription{
			ID:        tool.GenerateUUIDV7(),
			AccountID: req.AccountID,
		}
	}

	expireAt := extensionBase(&sub, time.Now()).Add(plan.Duration())

	sub.Status = types.SubscriptionStatusActive
	sub.PlanID = plan.ID
	sub.ExpireAt = &expireAt
	sub.Extra = datatypes.JSON(fmt.Sprintf(
		`{"last_order_id":%q,"last_amount_cents":%d,"last_currency":%q}`,
		req.OrderID, req.AmountCents, req.Currency,
	))

	if err := tx.Save(&sub).Error; err != nil {
		return nil, fmt.Errorf("%w: upsert subscription: %v", ErrUnavailable, err)
	}

	logctx.FromCtx(ctx, s.log).Infow("subscription activated",
		"account_id", req.AccountID, "plan_id", plan.ID, "expire_at", expireAt)

	return &expireAt, nil
}

// extensionBase is the instant a new purchase extends from: the current
// expiry while the subscription is still valid, otherwise now. A lapsed
// subscriber never gets back-dated time.
func extensionBase(sub *models.Subscription, now time.Time) time.Time {
	if sub.Valid() && sub.ExpireAt.After(now) {
		return *sub.ExpireAt
	}
	return now
}

// GetSubscription returns the stored subscription state for an account, or
// nil when the account has never subscribed.
func (s *Service) GetSubscription(ctx context.Context, accountID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Where("account_id = ?", accountID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load subscription: %v", ErrUnavailable, err)
	}
	return &sub, nil
}
