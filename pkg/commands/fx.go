package commands

import (
	"go.uber.org/fx"

	"interactbot/pkg/client"
	"interactbot/pkg/config"
	"interactbot/pkg/logger"
)

// Module provides the command registry.
var Module = fx.Module("commands",
	fx.Provide(ProvideRegistry),
)

// ProvideRegistry creates the registry bound to the shared client.
func ProvideRegistry(c *client.Client, cfg *config.Config, log *logger.Logger) *Registry {
	return NewRegistry(c, cfg.Commands.GuildID, log)
}
