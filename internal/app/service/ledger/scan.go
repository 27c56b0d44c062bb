package ledger

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"

	"github.com/subloop/reconciler/internal/models"
	"github.com/subloop/reconciler/pkg/types"
)

// Scan request/response for admin list pages.
type ScanReconciliationsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanReconciliationsResponse struct {
	Items []*models.PaymentReconciliation `json:"items"`
	Total int64                           `json:"total"`
}

var scanFilterFields = []string{
	"order_id", "payment_id", "account_id", "plan_id", "outcome",
	"currency", "amount_cents", "applied_at", "created_at",
}

var scanSortFields = []string{"applied_at", "created_at", "amount_cents", "order_id"}

// filtersWhere wraps a list of filters into a single clause.Expression.
type filtersWhere struct{ filters []*types.CommonFilter }

func (w filtersWhere) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	for i, f := range w.filters {
		if i > 0 {
			builder.WriteString(" AND ")
		}
		f.Build(builder)
	}
}

// ScanReconciliations lists reconciliation rows for admin pages. Filter and
// sort fields are validated against allow-lists before touching SQL.
func (s *Service) ScanReconciliations(ctx context.Context, req *ScanReconciliationsRequest) (*ScanReconciliationsResponse, error) {
	if req == nil {
		req = &ScanReconciliationsRequest{}
	}
	for _, f := range req.Filters {
		if !lo.Contains(scanFilterFields, f.Field) {
			return nil, fmt.Errorf("%w: unsupported filter field %q", ErrInvalidRequest, f.Field)
		}
	}

	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = "applied_at"
	}
	if !lo.Contains(scanSortFields, sortBy) {
		return nil, fmt.Errorf("%w: unsupported sort field %q", ErrInvalidRequest, sortBy)
	}
	order := "desc"
	if req.SortOrder == "asc" {
		order = "asc"
	}

	size := req.Size
	if size <= 0 || size > 200 {
		size = 50
	}

	q := s.db.WithContext(ctx).Model(&models.PaymentReconciliation{}).
		Clauses(clause.Where{Exprs: []clause.Expression{filtersWhere{filters: req.Filters}}})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("%w: count reconciliations: %v", ErrUnavailable, err)
	}

	var items []*models.PaymentReconciliation
	if err := q.Order(sortBy + " " + order).Offset(req.From).Limit(size).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("%w: scan reconciliations: %v", ErrUnavailable, err)
	}

	return &ScanReconciliationsResponse{Items: items, Total: total}, nil
}

type OutcomeStatistic struct {
	Outcome types.PaymentOutcome `json:"outcome"`
	Count   int64                `json:"count"`
	// SettledCents sums amount_cents over rows with this outcome. Only the
	// success bucket represents kept money; other buckets are informational.
	SettledCents int64 `json:"settled_cents"`
}

// OutcomeStatistics aggregates reconciliation counts and amounts per
// outcome for the operator dashboard.
func (s *Service) OutcomeStatistics(ctx context.Context) ([]*OutcomeStatistic, error) {
	var stats []*OutcomeStatistic
	err := s.db.WithContext(ctx).Model(&models.PaymentReconciliation{}).
		Select("outcome, count(*) as count, coalesce(sum(amount_cents), 0) as settled_cents").
		Group("outcome").
		Order("outcome").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("%w: outcome statistics: %v", ErrUnavailable, err)
	}
	return stats, nil
}
