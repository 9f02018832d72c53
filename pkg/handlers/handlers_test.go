package handlers

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"

	"interactbot/pkg/commands"
	"interactbot/pkg/endpoint"
	"interactbot/pkg/guard"
	"interactbot/pkg/interaction"
	"interactbot/pkg/logger"
	"interactbot/pkg/router"
	"interactbot/pkg/status"
)

type recordingSender struct {
	responses []*discordgo.InteractionResponse
}

func (s *recordingSender) Send(_ context.Context, _, _ string, payload any) (status.Code, error) {
	if resp, ok := payload.(*discordgo.InteractionResponse); ok {
		s.responses = append(s.responses, resp)
	}
	return status.NoContent, nil
}

func (s *recordingSender) Endpoint() endpoint.Endpoint { return endpoint.Latest() }
func (s *recordingSender) ApplicationID() string       { return "42" }

func setup(t *testing.T) (*commands.Registry, *router.Router) {
	t.Helper()
	registry := commands.NewRegistry(nil, "", logger.Nop())
	r := router.New(logger.Nop())
	if err := Register(registry, r); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return registry, r
}

func TestRegisterDefinesBuiltins(t *testing.T) {
	registry, r := setup(t)

	raw := registry.RawCommands()
	if len(raw) != 2 || raw[0].Name != "test" || raw[1].Name != "example" {
		t.Fatalf("unexpected commands %+v", raw)
	}
	if raw[0].Description != "Test command." {
		t.Fatalf("unexpected description %q", raw[0].Description)
	}
	if raw[0].DMPermission == nil || !*raw[0].DMPermission {
		t.Fatal("expected test command to be allowed in DMs")
	}
	if r.Len() != 2 {
		t.Fatalf("expected two handlers, got %d", r.Len())
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	registry, r := setup(t)
	if err := Register(registry, r); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func route(t *testing.T, name string) *discordgo.InteractionResponse {
	t.Helper()
	_, r := setup(t)
	sender := &recordingSender{}
	decoder := interaction.NewDecoder(sender, guard.Nop{}, logger.Nop())

	in, err := decoder.Decode([]byte(`{"id":"1","type":2,"token":"t","data":{"name":"` + name + `","type":1}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := r.Route(context.Background(), in); err != nil {
		t.Fatalf("Route: %v", err)
	}
	if len(sender.responses) != 1 {
		t.Fatalf("expected one response, got %d", len(sender.responses))
	}
	return sender.responses[0]
}

func TestTestCommandResponds(t *testing.T) {
	resp := route(t, "test")
	if resp.Data.Content != "Success!" || resp.Data.Flags&discordgo.MessageFlagsEphemeral != 0 {
		t.Fatalf("unexpected response %+v", resp.Data)
	}
}

func TestExampleCommandRespondsEphemerally(t *testing.T) {
	resp := route(t, "example")
	if resp.Data.Content != "Success!" || resp.Data.Flags&discordgo.MessageFlagsEphemeral == 0 {
		t.Fatalf("unexpected response %+v", resp.Data)
	}
}
