package interaction

import (
	"encoding/json"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// CommandData is the data of a command or autocomplete interaction.
type CommandData struct {
	ID       string                                               `json:"id"`
	Name     string                                               `json:"name"`
	Type     discordgo.ApplicationCommandType                     `json:"type"`
	Resolved *discordgo.ApplicationCommandInteractionDataResolved `json:"resolved,omitempty"`
	Options  []*CommandOption                                     `json:"options,omitempty"`
	GuildID  string                                               `json:"guild_id,omitempty"`
	// TargetID is the user or message a context-menu command was used on.
	TargetID string `json:"target_id,omitempty"`
}

// CommandOption is one node of the option tree sent with a command.
type CommandOption struct {
	Name    string                                 `json:"name"`
	Type    discordgo.ApplicationCommandOptionType `json:"type"`
	Value   json.RawMessage                        `json:"value,omitempty"`
	Options []*CommandOption                       `json:"options,omitempty"`
	Focused bool                                   `json:"focused,omitempty"`
}

// SubcommandPath returns "group/sub", "sub", or "" when the command has no subcommand.
func (d *CommandData) SubcommandPath() string {
	group, sub := d.subcommand()
	switch {
	case group != nil && sub != nil:
		return group.Name + "/" + sub.Name
	case sub != nil:
		return sub.Name
	default:
		return ""
	}
}

func (d *CommandData) subcommand() (group, sub *CommandOption) {
	for _, opt := range d.Options {
		if opt.Type == discordgo.ApplicationCommandOptionSubCommandGroup {
			group = opt
			break
		}
	}
	siblings := d.Options
	if group != nil {
		siblings = group.Options
	}
	for _, opt := range siblings {
		if opt.Type == discordgo.ApplicationCommandOptionSubCommand {
			return group, opt
		}
	}
	return group, nil
}

// LeafOptions returns the value-carrying options below the subcommand path.
func (d *CommandData) LeafOptions() []*CommandOption {
	_, sub := d.subcommand()
	if sub != nil {
		return sub.Options
	}
	return d.Options
}

// Option returns the leaf option called name.
func (d *CommandData) Option(name string) (*CommandOption, bool) {
	for _, opt := range d.LeafOptions() {
		if opt.Name == name {
			return opt, true
		}
	}
	return nil, false
}

// Focused returns the option the user is typing into during autocomplete.
func (d *CommandData) Focused() (*CommandOption, bool) {
	for _, opt := range d.LeafOptions() {
		if opt.Focused {
			return opt, true
		}
	}
	return nil, false
}

// IsContextMenu reports a user or message command.
func (d *CommandData) IsContextMenu() bool {
	return d.Type == discordgo.UserApplicationCommand || d.Type == discordgo.MessageApplicationCommand
}

// StringValue returns a string value. Numbers typed during autocomplete arrive as text too.
func (o *CommandOption) StringValue() (string, bool) {
	var s string
	if err := json.Unmarshal(o.Value, &s); err == nil {
		return s, true
	}
	if len(o.Value) > 0 {
		return string(o.Value), true
	}
	return "", false
}

// IntValue returns an integer value.
func (o *CommandOption) IntValue() (int64, bool) {
	var n int64
	if err := json.Unmarshal(o.Value, &n); err == nil {
		return n, true
	}
	if s, ok := o.StringValue(); ok {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// FloatValue returns a number value.
func (o *CommandOption) FloatValue() (float64, bool) {
	var f float64
	if err := json.Unmarshal(o.Value, &f); err == nil {
		return f, true
	}
	if s, ok := o.StringValue(); ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// BoolValue returns a boolean value.
func (o *CommandOption) BoolValue() (bool, bool) {
	var b bool
	if err := json.Unmarshal(o.Value, &b); err == nil {
		return b, true
	}
	return false, false
}

// SnowflakeValue returns the id carried by user, channel, role, mentionable and attachment options.
func (o *CommandOption) SnowflakeValue() (string, bool) {
	switch o.Type {
	case discordgo.ApplicationCommandOptionUser,
		discordgo.ApplicationCommandOptionChannel,
		discordgo.ApplicationCommandOptionRole,
		discordgo.ApplicationCommandOptionMentionable,
		discordgo.ApplicationCommandOptionAttachment:
		return o.StringValue()
	}
	return "", false
}

// ComponentData is the data of a component interaction.
type ComponentData struct {
	CustomID      string                  `json:"custom_id"`
	ComponentType discordgo.ComponentType `json:"component_type"`
	Values        []string                `json:"values,omitempty"`
}

// IsButton reports a button press.
func (d *ComponentData) IsButton() bool {
	return d.ComponentType == discordgo.ButtonComponent
}

// IsSelectMenu reports any of the select-menu kinds.
func (d *ComponentData) IsSelectMenu() bool {
	switch d.ComponentType {
	case discordgo.SelectMenuComponent,
		discordgo.UserSelectMenuComponent,
		discordgo.RoleSelectMenuComponent,
		discordgo.MentionableSelectMenuComponent,
		discordgo.ChannelSelectMenuComponent:
		return true
	}
	return false
}

func knownComponentType(t discordgo.ComponentType) bool {
	return t == discordgo.ButtonComponent || (&ComponentData{ComponentType: t}).IsSelectMenu()
}

// ModalSubmitData is the data of a modal submission.
type ModalSubmitData struct {
	CustomID string     `json:"custom_id"`
	Rows     []ModalRow `json:"components"`
}

// ModalRow is an action row of a submitted modal.
type ModalRow struct {
	Type   discordgo.ComponentType `json:"type"`
	Fields []ModalField            `json:"components"`
}

// ModalField is one submitted text input.
type ModalField struct {
	Type     discordgo.ComponentType `json:"type"`
	CustomID string                  `json:"custom_id"`
	Value    string                  `json:"value"`
}

// Value returns the submitted value of the text input customID.
func (d *ModalSubmitData) Value(customID string) (string, bool) {
	for _, row := range d.Rows {
		for _, f := range row.Fields {
			if f.CustomID == customID {
				return f.Value, true
			}
		}
	}
	return "", false
}

// Values returns every submitted field keyed by custom id.
func (d *ModalSubmitData) Values() map[string]string {
	out := make(map[string]string)
	for _, row := range d.Rows {
		for _, f := range row.Fields {
			out[f.CustomID] = f.Value
		}
	}
	return out
}
