package router

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"interactbot/pkg/commands"
	"interactbot/pkg/interaction"
	"interactbot/pkg/logger"
)

func newRouter() (*Router, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(logger.FromZap(zap.New(core))), logs
}

func command(name string) *interaction.Command {
	return &interaction.Command{
		Base: interaction.Base{ID: "1", Type: discordgo.InteractionApplicationCommand},
		Data: &interaction.CommandData{Name: name, Type: discordgo.ChatApplicationCommand},
	}
}

func component(customID string) *interaction.Component {
	return &interaction.Component{
		Base: interaction.Base{ID: "2", Type: discordgo.InteractionMessageComponent},
		Data: &interaction.ComponentData{CustomID: customID, ComponentType: discordgo.ButtonComponent},
	}
}

func TestRouteSelectsMatchingHandlerOnce(t *testing.T) {
	r, _ := newRouter()
	calls := map[string]int{}
	for _, name := range []string{"alpha", "test", "omega"} {
		r.Register(Command(name, func(context.Context, *interaction.Command) error {
			calls[name]++
			return nil
		}))
	}

	if err := r.Route(context.Background(), command("test")); err != nil {
		t.Fatalf("Route: %v", err)
	}
	if calls["test"] != 1 || calls["alpha"] != 0 || calls["omega"] != 0 {
		t.Fatalf("unexpected calls %v", calls)
	}
}

func TestRouteMatchesKindAndKey(t *testing.T) {
	r, _ := newRouter()
	var got string
	r.Register(
		Command("x", func(context.Context, *interaction.Command) error { got = "command"; return nil }),
		Autocomplete("x", func(context.Context, *interaction.Autocomplete) error { got = "autocomplete"; return nil }),
		Component("x", func(context.Context, *interaction.Component) error { got = "component"; return nil }),
		Modal("x", func(context.Context, *interaction.ModalSubmit) error { got = "modal"; return nil }),
	)

	cases := []struct {
		in   interaction.Interaction
		want string
	}{
		{command("x"), "command"},
		{&interaction.Autocomplete{Data: &interaction.CommandData{Name: "x"}}, "autocomplete"},
		{component("x"), "component"},
		{&interaction.ModalSubmit{Data: &interaction.ModalSubmitData{CustomID: "x"}}, "modal"},
	}
	for _, tc := range cases {
		got = ""
		if err := r.Route(context.Background(), tc.in); err != nil {
			t.Fatalf("%s: %v", tc.want, err)
		}
		if got != tc.want {
			t.Fatalf("expected %s handler, got %q", tc.want, got)
		}
	}
}

func TestDuplicateRegistrationFirstWins(t *testing.T) {
	r, logs := newRouter()
	var winner string
	r.Register(
		Command("dup", func(context.Context, *interaction.Command) error { winner = "first"; return nil }),
		Command("dup", func(context.Context, *interaction.Command) error { winner = "second"; return nil }),
	)

	if logs.FilterMessage("Duplicate handler registered, earlier registration wins").Len() != 1 {
		t.Fatal("expected duplicate warning")
	}
	if r.Len() != 2 {
		t.Fatalf("expected both handlers kept, got %d", r.Len())
	}
	for i := 0; i < 3; i++ {
		if err := r.Route(context.Background(), command("dup")); err != nil {
			t.Fatalf("Route: %v", err)
		}
		if winner != "first" {
			t.Fatalf("expected first handler, got %s", winner)
		}
	}
}

func TestRouteNoHandler(t *testing.T) {
	r, _ := newRouter()
	r.Register(Command("x", func(context.Context, *interaction.Command) error { return nil }))

	err := r.Route(context.Background(), component("x"))
	if !errors.Is(err, ErrNoHandler) {
		t.Fatalf("expected ErrNoHandler, got %v", err)
	}

	// A miss leaves the router usable.
	if err := r.Route(context.Background(), command("x")); err != nil {
		t.Fatalf("Route after miss: %v", err)
	}
}

func TestRouteUnknownInteractionType(t *testing.T) {
	r, _ := newRouter()
	err := r.Route(context.Background(), &interaction.Base{Type: 99})
	if !errors.Is(err, ErrNoHandler) {
		t.Fatalf("expected ErrNoHandler, got %v", err)
	}
	if err := r.Route(context.Background(), &interaction.Ping{}); !errors.Is(err, ErrNoHandler) {
		t.Fatalf("pings are never routed, got %v", err)
	}
}

func TestRouteWrapsHandlerError(t *testing.T) {
	r, _ := newRouter()
	boom := errors.New("boom")
	r.Register(Command("x", func(context.Context, *interaction.Command) error { return boom }))

	err := r.Route(context.Background(), command("x"))
	var herr *HandlerError
	if !errors.As(err, &herr) {
		t.Fatalf("expected HandlerError, got %v", err)
	}
	if herr.Kind != KindCommand || herr.Key != "x" || herr.Panicked {
		t.Fatalf("unexpected handler error %+v", herr)
	}
	if !errors.Is(err, boom) {
		t.Fatal("expected handler error to unwrap to the cause")
	}
}

func TestRouteRecoversPanics(t *testing.T) {
	r, _ := newRouter()
	r.Register(Component("x", func(context.Context, *interaction.Component) error { panic("nil map") }))

	err := r.Route(context.Background(), component("x"))
	var herr *HandlerError
	if !errors.As(err, &herr) || !herr.Panicked {
		t.Fatalf("expected recovered panic, got %v", err)
	}
}

func TestForCommandUsesCommandName(t *testing.T) {
	h := ForCommand(commands.New("ping", "Replies with pong."), func(context.Context, *interaction.Command) error { return nil })
	if h.Kind() != KindCommand || h.Key() != "ping" {
		t.Fatalf("unexpected handler %s %q", h.Kind(), h.Key())
	}
}

func TestKindString(t *testing.T) {
	if KindModal.String() != "modal" || Kind(0).String() != "unknown" {
		t.Fatal("unexpected kind labels")
	}
}
