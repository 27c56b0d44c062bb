package forwarder

import (
	"go.uber.org/fx"

	"github.com/subloop/reconciler/internal/app/service/notification"
)

// Module exposes the forwarder via Fx, bound to the gorm-backed ledger.
var Module = fx.Options(
	fx.Provide(NewFromConfig),
	fx.Provide(func(f *Forwarder) notification.Forwarder { return f }),
)
