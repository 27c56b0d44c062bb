package notification_log

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/subloop/reconciler/internal/app/service/notification"
	"github.com/subloop/reconciler/internal/models"
	"github.com/subloop/reconciler/pkg/logctx"
	"github.com/subloop/reconciler/pkg/tool"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a notification audit row. Best effort: a
// failed write is logged, never surfaced to the delivery being handled.
// Nil input is ignored.
func (s *Service) Save(ctx context.Context, log *models.NotificationLog) {
	go func() {
		if log == nil {
			return
		}
		if log.ID == "" {
			log.ID = tool.GenerateUUIDV7()
		}
		if err := s.db.Save(log).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save notification log: %v", err)
		}
	}()
}

// Module exposes the notification log service via Fx as the pipeline's
// audit trail.
var Module = fx.Options(
	fx.Provide(fx.Annotate(New, fx.As(new(notification.AuditTrail)))),
)
