// Package interaction decodes inbound interaction payloads into typed values
// and gives handlers the responders that are valid for each kind.
package interaction

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/discordgo"

	"interactbot/pkg/snowflake"
)

// Interaction is one of *Ping, *Command, *Autocomplete, *Component,
// *ModalSubmit, or *Base for a type this package does not know.
type Interaction interface {
	Info() *Base
	sealed()
}

// Base carries the fields shared by every interaction.
type Base struct {
	ID             string
	ApplicationID  string
	Type           discordgo.InteractionType
	Token          string
	Version        int
	GuildID        string
	ChannelID      string
	Channel        *discordgo.Channel
	Member         *discordgo.Member
	User           *discordgo.User
	AppPermissions int64
	Locale         string
	GuildLocale    string

	// Raw is the verified request body.
	Raw json.RawMessage
}

// Info returns the shared fields.
func (b *Base) Info() *Base { return b }

func (b *Base) sealed() {}

// Invoker returns the user behind the interaction: the member's user in a
// guild, the user field in direct messages.
func (b *Base) Invoker() *discordgo.User {
	if b.Member != nil && b.Member.User != nil {
		return b.Member.User
	}
	return b.User
}

// InGuild reports whether the interaction came from a guild.
func (b *Base) InGuild() bool {
	return b.GuildID != ""
}

// CreatedAt decodes the creation time from the interaction id.
func (b *Base) CreatedAt() (time.Time, error) {
	return snowflake.Timestamp(b.ID)
}

// Ping is the platform's endpoint liveness check.
type Ping struct {
	Base
}

// Command is a chat-input or context-menu command invocation.
type Command struct {
	Base
	Data *CommandData
	*ModalResponder
}

// Autocomplete asks for choices for the focused option of a command.
type Autocomplete struct {
	Base
	Data *CommandData
	*ChoiceResponder
}

// Component is a button press or select-menu change on a message.
type Component struct {
	Base
	Data    *ComponentData
	Message *MessageRef
	*ComponentResponder
}

// ModalSubmit carries the fields of a submitted modal.
type ModalSubmit struct {
	Base
	Data    *ModalSubmitData
	Message *MessageRef
	*Responder
}

// MessageRef identifies the message a component or modal was attached to.
type MessageRef struct {
	ID        string                 `json:"id"`
	ChannelID string                 `json:"channel_id"`
	Content   string                 `json:"content"`
	Flags     discordgo.MessageFlags `json:"flags"`
}

// TypeName returns a short lowercase label for logs.
func TypeName(t discordgo.InteractionType) string {
	switch t {
	case discordgo.InteractionPing:
		return "ping"
	case discordgo.InteractionApplicationCommand:
		return "command"
	case discordgo.InteractionMessageComponent:
		return "component"
	case discordgo.InteractionApplicationCommandAutocomplete:
		return "autocomplete"
	case discordgo.InteractionModalSubmit:
		return "modal_submit"
	default:
		return "unknown"
	}
}
