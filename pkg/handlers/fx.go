package handlers

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"interactbot/pkg/commands"
	"interactbot/pkg/logger"
	"interactbot/pkg/router"
)

// Module registers the built-in commands and handlers.
var Module = fx.Module("handlers",
	fx.Invoke(registerBuiltins),
)

func registerBuiltins(registry *commands.Registry, r *router.Router, log *logger.Logger) error {
	if err := Register(registry, r); err != nil {
		return err
	}
	log.Info("Built-in commands registered", zap.Int("commands", len(registry.List())), zap.Int("handlers", r.Len()))
	return nil
}
