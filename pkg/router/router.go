// Package router matches interactions to registered handlers.
package router

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"interactbot/pkg/commands"
	"interactbot/pkg/interaction"
	"interactbot/pkg/logger"
)

// ErrNoHandler is returned when no registered handler matches an interaction.
var ErrNoHandler = errors.New("no handler registered")

// Kind is the class of interaction a handler reacts to.
type Kind int

const (
	KindCommand Kind = iota + 1
	KindAutocomplete
	KindComponent
	KindModal
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindAutocomplete:
		return "autocomplete"
	case KindComponent:
		return "component"
	case KindModal:
		return "modal"
	default:
		return "unknown"
	}
}

// Handler reacts to interactions of one kind carrying one key. The key is
// the command name for command and autocomplete handlers and the custom id
// for component and modal handlers.
type Handler interface {
	Kind() Kind
	Key() string
	Handle(ctx context.Context, in interaction.Interaction) error
}

type handler[T interaction.Interaction] struct {
	kind Kind
	key  string
	fn   func(context.Context, T) error
}

func (h *handler[T]) Kind() Kind  { return h.kind }
func (h *handler[T]) Key() string { return h.key }

func (h *handler[T]) Handle(ctx context.Context, in interaction.Interaction) error {
	typed, ok := in.(T)
	if !ok {
		return fmt.Errorf("%s handler %q cannot handle %T", h.kind, h.key, in)
	}
	return h.fn(ctx, typed)
}

// Command handles the chat-input or context-menu command called name.
func Command(name string, fn func(context.Context, *interaction.Command) error) Handler {
	return &handler[*interaction.Command]{kind: KindCommand, key: name, fn: fn}
}

// ForCommand handles cmd, keyed by its name.
func ForCommand(cmd *commands.Command, fn func(context.Context, *interaction.Command) error) Handler {
	return Command(cmd.Name, fn)
}

// Autocomplete answers autocomplete requests for the command called name.
func Autocomplete(name string, fn func(context.Context, *interaction.Autocomplete) error) Handler {
	return &handler[*interaction.Autocomplete]{kind: KindAutocomplete, key: name, fn: fn}
}

// Component handles buttons and select menus with the given custom id.
func Component(customID string, fn func(context.Context, *interaction.Component) error) Handler {
	return &handler[*interaction.Component]{kind: KindComponent, key: customID, fn: fn}
}

// Modal handles submissions of the modal with the given custom id.
func Modal(customID string, fn func(context.Context, *interaction.ModalSubmit) error) Handler {
	return &handler[*interaction.ModalSubmit]{kind: KindModal, key: customID, fn: fn}
}

// KeyOf returns the kind and key an interaction is matched by. Pings and
// unknown interaction types have none.
func KeyOf(in interaction.Interaction) (Kind, string, bool) {
	switch v := in.(type) {
	case *interaction.Command:
		return KindCommand, v.Data.Name, true
	case *interaction.Autocomplete:
		return KindAutocomplete, v.Data.Name, true
	case *interaction.Component:
		return KindComponent, v.Data.CustomID, true
	case *interaction.ModalSubmit:
		return KindModal, v.Data.CustomID, true
	default:
		return 0, "", false
	}
}

// HandlerError wraps a failure raised by a matched handler.
type HandlerError struct {
	Kind Kind
	Key  string
	Err  error
	// Panicked is set when the handler panicked instead of returning.
	Panicked bool
}

func (e *HandlerError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("%s handler %q panicked: %v", e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("%s handler %q: %v", e.Kind, e.Key, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// Router holds handlers in registration order.
type Router struct {
	mu       sync.RWMutex
	handlers []Handler
	log      *logger.Logger
}

// New creates an empty router.
func New(log *logger.Logger) *Router {
	return &Router{log: log}
}

// Register appends handlers. A handler whose kind and key are already taken
// is kept but never reached, since the first registration wins.
func (r *Router) Register(handlers ...Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range handlers {
		if r.find(h.Kind(), h.Key()) != nil {
			r.log.Warn("Duplicate handler registered, earlier registration wins",
				zap.Stringer("kind", h.Kind()),
				zap.String("key", h.Key()))
		}
		r.handlers = append(r.handlers, h)
	}
}

// Len returns the number of registered handlers.
func (r *Router) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

func (r *Router) find(kind Kind, key string) Handler {
	for _, h := range r.handlers {
		if h.Kind() == kind && h.Key() == key {
			return h
		}
	}
	return nil
}

// Route runs the first handler matching in. It returns an error wrapping
// ErrNoHandler when nothing matches and a *HandlerError when the handler
// fails or panics.
func (r *Router) Route(ctx context.Context, in interaction.Interaction) error {
	kind, key, ok := KeyOf(in)
	if !ok {
		return fmt.Errorf("%w: %s interaction", ErrNoHandler, interaction.TypeName(in.Info().Type))
	}

	r.mu.RLock()
	h := r.find(kind, key)
	r.mu.RUnlock()
	if h == nil {
		return fmt.Errorf("%w: %s %q", ErrNoHandler, kind, key)
	}

	return invoke(ctx, h, in)
}

func invoke(ctx context.Context, h Handler, in interaction.Interaction) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &HandlerError{Kind: h.Kind(), Key: h.Key(), Err: fmt.Errorf("%v", rec), Panicked: true}
		}
	}()

	if herr := h.Handle(ctx, in); herr != nil {
		return &HandlerError{Kind: h.Kind(), Key: h.Key(), Err: herr}
	}
	return nil
}
