package notification

import "go.uber.org/fx"

// Module exposes the notification pipeline handler via Fx.
var Module = fx.Options(
	fx.Provide(NewHandler),
)
