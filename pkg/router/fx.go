package router

import "go.uber.org/fx"

// Module provides the interaction router for fx.
var Module = fx.Module("router",
	fx.Provide(New),
)
