package presenter

import "go.uber.org/fx"

// Module exposes the presenter factory and registry via Fx.
var Module = fx.Options(
	fx.Provide(NewFactory),
	fx.Provide(NewRegistry),
)
