package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"interactbot/pkg/endpoint"
	"interactbot/pkg/logger"
	"interactbot/pkg/status"
)

// ErrPushFailed is returned when the platform rejects a command push.
var ErrPushFailed = errors.New("command push failed")

// Sender performs outbound platform calls. *client.Client implements it.
type Sender interface {
	Send(ctx context.Context, method, url string, payload any) (status.Code, error)
	ApplicationEndpoint() endpoint.Endpoint
}

type commandKey struct {
	name string
	typ  discordgo.ApplicationCommandType
}

// Registry keeps registered commands in registration order.
type Registry struct {
	commands []*Command
	index    map[commandKey]struct{}
	mu       sync.RWMutex

	sender  Sender
	guildID string
	log     *logger.Logger
}

// NewRegistry creates a command registry. sender may be nil when the registry
// is only used for inspection; Push then fails.
func NewRegistry(sender Sender, guildID string, log *logger.Logger) *Registry {
	return &Registry{
		index:   make(map[commandKey]struct{}),
		sender:  sender,
		guildID: guildID,
		log:     log,
	}
}

// Register validates and appends commands. Nothing is registered if any command is invalid.
func (r *Registry) Register(cmds ...*Command) error {
	for _, cmd := range cmds {
		if err := cmd.Validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pending := make(map[commandKey]struct{}, len(cmds))
	for _, cmd := range cmds {
		key := keyOf(cmd)
		if _, exists := r.index[key]; exists {
			return fmt.Errorf("command %s already registered", cmd.Name)
		}
		if _, exists := pending[key]; exists {
			return fmt.Errorf("command %s registered twice", cmd.Name)
		}
		pending[key] = struct{}{}
	}

	for _, cmd := range cmds {
		r.index[keyOf(cmd)] = struct{}{}
		r.commands = append(r.commands, cmd)
	}
	return nil
}

func keyOf(cmd *Command) commandKey {
	typ := cmd.Type
	if typ == 0 {
		typ = ChatInput
	}
	return commandKey{name: cmd.Name, typ: typ}
}

// Get returns the chat-input command called name.
func (r *Registry) Get(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cmd := range r.commands {
		if cmd.Name == name && keyOf(cmd).typ == ChatInput {
			return cmd, true
		}
	}
	return nil, false
}

// List returns registered commands in registration order.
func (r *Registry) List() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// RawCommands returns the wire shape of every registered command.
func (r *Registry) RawCommands() []RawCommand {
	cmds := r.List()
	out := make([]RawCommand, 0, len(cmds))
	for _, cmd := range cmds {
		out = append(out, cmd.Raw())
	}
	return out
}

// PushURL is where Push sends the command list.
func (r *Registry) PushURL() (string, error) {
	if r.sender == nil {
		return "", errors.New("no platform client configured")
	}
	app := r.sender.ApplicationEndpoint()
	if r.guildID != "" {
		return app.Guild(r.guildID).Commands().URL(), nil
	}
	return app.Commands().URL(), nil
}

// Push replaces the platform's command list with the registered commands in
// one bulk-overwrite call. It is not retried.
func (r *Registry) Push(ctx context.Context) error {
	url, err := r.PushURL()
	if err != nil {
		return err
	}
	raw := r.RawCommands()
	scope := "global"
	if r.guildID != "" {
		scope = "guild:" + r.guildID
	}

	code, err := r.sender.Send(ctx, http.MethodPut, url, raw)
	if err != nil {
		r.log.Error("Failed to push commands",
			zap.String("scope", scope),
			zap.Error(err))
		return fmt.Errorf("pushing commands: %w", err)
	}

	if !code.IsSuccess() {
		r.log.Error("Platform rejected command push",
			zap.String("scope", scope),
			zap.Int("count", len(raw)),
			code.Field(),
			zap.Stringer("error_class", status.Conflict))
		return fmt.Errorf("%w: %s", ErrPushFailed, code)
	}

	r.log.Info("Commands pushed",
		zap.String("scope", scope),
		zap.Int("count", len(raw)),
		code.Field())
	return nil
}
