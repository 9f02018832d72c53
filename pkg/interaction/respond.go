package interaction

import (
	"context"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"interactbot/pkg/endpoint"
	"interactbot/pkg/guard"
	"interactbot/pkg/logger"
	"interactbot/pkg/status"
)

// Sender performs outbound platform calls. *client.Client implements it.
type Sender interface {
	Send(ctx context.Context, method, url string, payload any) (status.Code, error)
	Endpoint() endpoint.Endpoint
	ApplicationID() string
}

// Modal is the content of a modal dialog.
type Modal struct {
	CustomID   string
	Title      string
	Components []discordgo.MessageComponent
}

// core performs the calls shared by every responder. Outcomes are logged,
// never returned: responders are fire-and-forget.
type core struct {
	sender Sender
	guard  guard.Guard
	log    *logger.Logger
	id     string
	token  string
}

func newCore(sender Sender, g guard.Guard, log *logger.Logger, id, token string) *core {
	return &core{sender: sender, guard: g, log: log, id: id, token: token}
}

// callback sends the primary response. Only the first primary response per
// interaction is sent; later ones are logged and dropped. A claim whose call
// never reached the platform is released so a later response can go out.
func (c *core) callback(ctx context.Context, op string, resp *discordgo.InteractionResponse) {
	claimed, err := c.guard.Claim(ctx, c.token)
	if err != nil {
		c.log.Warn("Response guard unavailable, sending anyway",
			zap.String("op", op),
			zap.Error(err))
	} else if !claimed {
		c.log.Warn("Interaction already acknowledged, dropping response",
			zap.String("op", op))
		return
	}

	url := c.sender.Endpoint().Interaction(c.id, c.token).Callback().URL()
	if err := c.send(ctx, op, http.MethodPost, url, resp); err != nil && claimed {
		if rerr := c.guard.Release(ctx, c.token); rerr != nil {
			c.log.Warn("Failed to release response claim", zap.String("op", op), zap.Error(rerr))
		}
	}
}

func (c *core) webhook() endpoint.Endpoint {
	return c.sender.Endpoint().Webhook(c.sender.ApplicationID(), c.token)
}

// send logs the outcome of one call and returns only transport errors.
func (c *core) send(ctx context.Context, op, method, url string, payload any) error {
	code, err := c.sender.Send(ctx, method, url, payload)
	if err != nil {
		c.log.Error("Interaction call failed",
			zap.String("op", op),
			zap.Error(err))
		return err
	}
	if !code.IsSuccess() {
		c.log.Error("Interaction call rejected",
			zap.String("op", op),
			code.Field(),
			zap.String("status", code.String()))
		return nil
	}
	c.log.Debug("Interaction call sent", zap.String("op", op), code.Field())
	return nil
}

func flags(ephemeral bool) discordgo.MessageFlags {
	if ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

// Responder answers commands, components and modal submissions.
type Responder struct {
	*core
}

// Defer acknowledges now and promises a message later, shown as "thinking".
func (r *Responder) Defer(ctx context.Context, ephemeral bool) {
	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
	if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: flags(true)}
	}
	r.callback(ctx, "defer", resp)
}

// Respond replies with a text message.
func (r *Responder) Respond(ctx context.Context, content string, ephemeral bool) {
	r.RespondWith(ctx, &discordgo.InteractionResponseData{Content: content}, ephemeral)
}

// RespondWith replies with a full message payload.
func (r *Responder) RespondWith(ctx context.Context, data *discordgo.InteractionResponseData, ephemeral bool) {
	var cp discordgo.InteractionResponseData
	if data != nil {
		cp = *data
	}
	if ephemeral {
		cp.Flags |= discordgo.MessageFlagsEphemeral
	}
	r.callback(ctx, "respond", &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &cp,
	})
}

// EditResponse edits the original response, typically after Defer.
func (r *Responder) EditResponse(ctx context.Context, edit *discordgo.WebhookEdit) {
	url := r.webhook().Messages().Original().URL()
	_ = r.send(ctx, "edit_response", http.MethodPatch, url, edit)
}

// FollowUp sends an additional message after the primary response.
func (r *Responder) FollowUp(ctx context.Context, params *discordgo.WebhookParams, ephemeral bool) {
	var cp discordgo.WebhookParams
	if params != nil {
		cp = *params
	}
	if ephemeral {
		cp.Flags |= discordgo.MessageFlagsEphemeral
	}
	_ = r.send(ctx, "follow_up", http.MethodPost, r.webhook().URL(), &cp)
}

// ModalResponder adds ShowModal for interactions that may open one.
type ModalResponder struct {
	*Responder
}

// ShowModal answers with a modal dialog.
func (r *ModalResponder) ShowModal(ctx context.Context, modal *Modal) {
	r.callback(ctx, "show_modal", &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   modal.CustomID,
			Title:      modal.Title,
			Components: modal.Components,
		},
	})
}

// ComponentResponder adds the message-update responses of components.
type ComponentResponder struct {
	*ModalResponder
}

// DeferUpdate acknowledges without changing the message yet.
func (r *ComponentResponder) DeferUpdate(ctx context.Context) {
	r.callback(ctx, "defer_update", &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

// UpdateMessage replaces the message the component is attached to.
func (r *ComponentResponder) UpdateMessage(ctx context.Context, data *discordgo.InteractionResponseData) {
	r.callback(ctx, "update_message", &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	})
}

// ChoiceResponder answers autocomplete requests.
type ChoiceResponder struct {
	*core
}

// RespondWithChoices returns up to 25 suggestions.
func (r *ChoiceResponder) RespondWithChoices(ctx context.Context, choices []*discordgo.ApplicationCommandOptionChoice) {
	if len(choices) > 25 {
		r.log.Warn("Too many autocomplete choices, truncating", zap.Int("count", len(choices)))
		choices = choices[:25]
	}
	if choices == nil {
		choices = []*discordgo.ApplicationCommandOptionChoice{}
	}
	r.callback(ctx, "autocomplete", &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
}
