package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/subloop/reconciler/internal/app/api/server"
	"github.com/subloop/reconciler/internal/app/service/forwarder"
	"github.com/subloop/reconciler/internal/app/service/ledger"
	"github.com/subloop/reconciler/internal/app/service/notification"
	notificationlog "github.com/subloop/reconciler/internal/app/service/notification_log"
	"github.com/subloop/reconciler/internal/app/service/presenter"
	"github.com/subloop/reconciler/internal/platform/db"
	"github.com/subloop/reconciler/pkg/config"
	"github.com/subloop/reconciler/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	ledger.Module,
	forwarder.Module,
	presenter.Module,
	notificationlog.Module,
	notification.Module,
)
