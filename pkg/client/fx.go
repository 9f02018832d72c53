package client

import (
	"go.uber.org/fx"
)

// Module provides the shared *Client built from *config.Config.
var Module = fx.Module("client",
	fx.Provide(FromConfig),
)
