package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"interactbot/pkg/client"
	"interactbot/pkg/commands"
	"interactbot/pkg/config"
	"interactbot/pkg/gateway"
	"interactbot/pkg/guard"
	"interactbot/pkg/handlers"
	"interactbot/pkg/logger"
	"interactbot/pkg/router"
)

var pushCommands bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interactions endpoint in the foreground",
	Long: `Run the interactions endpoint in the foreground.

Examples:
  # Serve with the default config search path
  interactbot serve

  # Replace the platform's command list before listening
  interactbot serve --push-commands

  # Use an explicit config file
  interactbot -c ./config.yaml serve`,
	Run: func(cmd *cobra.Command, args []string) {
		newApp("foreground", pushCommands).Run()
	},
}

func init() {
	serveCmd.Flags().BoolVarP(&pushCommands, "push-commands", "p", false, "push registered commands to the platform at start-up")
}

// coreModules builds everything except the HTTP server.
func coreModules() fx.Option {
	return fx.Options(
		fx.Supply(config.Path(configPath)),
		config.Module,
		logger.Module,
		client.Module,
		guard.Module,
		commands.Module,
		router.Module,
		handlers.Module,
	)
}

// newApp assembles the serving application. Commands are pushed before the
// server starts listening when push is set or commands.push_on_start is true.
func newApp(mode string, push bool, extra ...fx.Option) *fx.App {
	return fx.New(
		coreModules(),
		// Module invokes run in declaration order, so the push hook
		// precedes the server's start hook.
		fx.Module("push", fx.Invoke(func(lc fx.Lifecycle, registry *commands.Registry, cfg *config.Config, log *logger.Logger) {
			if !push && !cfg.Commands.PushOnStart {
				return
			}
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					if err := registry.Push(ctx); err != nil {
						log.Error("Command push failed, serving anyway", zap.Error(err))
					}
					return nil
				},
			})
		})),
		gateway.Module,
		fx.Invoke(func(lc fx.Lifecycle, log *logger.Logger, cfg *config.Config, loader *config.Loader) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					log.Info("interactbot started",
						zap.String("mode", mode),
						zap.String("config_file", loader.ConfigFileUsed()),
						zap.String("path", cfg.Server.Path),
						zap.Int("port", cfg.Server.Port))
					return nil
				},
				OnStop: func(ctx context.Context) error {
					log.Info("interactbot stopped")
					return nil
				},
			})
		}),
		fx.WithLogger(fxLogger),
		fx.Options(extra...),
	)
}

func fxLogger(log *logger.Logger) fxevent.Logger {
	l := &fxevent.ZapLogger{Logger: log.Named("fx").Logger}
	l.UseLogLevel(zapcore.DebugLevel)
	return l
}
