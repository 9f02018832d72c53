// Package handlers holds the built-in commands and their handlers.
package handlers

import (
	"context"
	"fmt"

	"interactbot/pkg/commands"
	"interactbot/pkg/interaction"
	"interactbot/pkg/router"
)

// TestCommand checks that the endpoint is wired up end to end.
var TestCommand = commands.New("test", "Test command.").SetDMAllowed(true)

// ExampleCommand is the same check answered privately.
var ExampleCommand = commands.New("example", "Example command.").SetDMAllowed(true)

// Test answers TestCommand.
func Test(ctx context.Context, in *interaction.Command) error {
	in.Respond(ctx, "Success!", false)
	return nil
}

// Example answers ExampleCommand with an ephemeral message.
func Example(ctx context.Context, in *interaction.Command) error {
	in.Respond(ctx, "Success!", true)
	return nil
}

// Register adds every built-in command definition and its handler.
func Register(registry *commands.Registry, r *router.Router) error {
	builtins := []struct {
		cmd *commands.Command
		fn  func(context.Context, *interaction.Command) error
	}{
		{TestCommand, Test},
		{ExampleCommand, Example},
	}

	for _, b := range builtins {
		if err := registry.Register(b.cmd); err != nil {
			return fmt.Errorf("failed to register %s: %w", b.cmd.Name, err)
		}
		r.Register(router.ForCommand(b.cmd, b.fn))
	}
	return nil
}
