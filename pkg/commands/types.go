// Package commands models application commands and registers them with the platform.
package commands

import (
	"encoding/json"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// Command types.
const (
	ChatInput = discordgo.ChatApplicationCommand
	User      = discordgo.UserApplicationCommand
	Message   = discordgo.MessageApplicationCommand
)

// Command describes an application command as it is registered with the platform.
type Command struct {
	Name        string
	Description string
	Type        discordgo.ApplicationCommandType
	Options     []Option

	// DefaultMemberPermissions is a permission bitmask. Nil leaves the command open to everyone.
	DefaultMemberPermissions *int64
	// DMAllowed controls availability in direct messages. Nil keeps the platform default.
	DMAllowed *bool
	// NSFW marks the command as age-restricted.
	NSFW bool
}

// New starts a chat-input (slash) command.
func New(name, description string) *Command {
	return &Command{Name: name, Description: description, Type: ChatInput}
}

// NewContextMenu starts a user or message context-menu command.
func NewContextMenu(name string, typ discordgo.ApplicationCommandType) *Command {
	return &Command{Name: name, Type: typ}
}

// AddOption appends one option.
func (c *Command) AddOption(opt Option) *Command {
	c.Options = append(c.Options, opt)
	return c
}

// AddOptions appends options in order.
func (c *Command) AddOptions(opts ...Option) *Command {
	c.Options = append(c.Options, opts...)
	return c
}

// SetDefaultMemberPermissions restricts the command to members holding perms.
func (c *Command) SetDefaultMemberPermissions(perms int64) *Command {
	c.DefaultMemberPermissions = &perms
	return c
}

// SetDMAllowed sets whether the command is usable in direct messages.
func (c *Command) SetDMAllowed(allowed bool) *Command {
	c.DMAllowed = &allowed
	return c
}

// SetNSFW marks the command age-restricted.
func (c *Command) SetNSFW(nsfw bool) *Command {
	c.NSFW = nsfw
	return c
}

// RawCommand is the wire shape of a Command.
type RawCommand struct {
	Name        string                           `json:"name"`
	Description string                           `json:"description"`
	Type        discordgo.ApplicationCommandType `json:"type"`
	Options     []RawOption                      `json:"options,omitempty"`
	// Always sent; null means no restriction.
	DefaultMemberPermissions *string `json:"default_member_permissions"`
	DMPermission             *bool   `json:"dm_permission,omitempty"`
	NSFW                     bool    `json:"nsfw,omitempty"`
}

// RawOption is the wire shape of an Option.
type RawOption struct {
	Type         discordgo.ApplicationCommandOptionType `json:"type"`
	Name         string                                 `json:"name"`
	Description  string                                 `json:"description"`
	Required     bool                                   `json:"required,omitempty"`
	Choices      []Choice                               `json:"choices,omitempty"`
	Options      []RawOption                            `json:"options,omitempty"`
	ChannelTypes []discordgo.ChannelType                `json:"channel_types,omitempty"`
	MinValue     *float64                               `json:"min_value,omitempty"`
	MaxValue     *float64                               `json:"max_value,omitempty"`
	MinLength    *int                                   `json:"min_length,omitempty"`
	MaxLength    *int                                   `json:"max_length,omitempty"`
	Autocomplete bool                                   `json:"autocomplete,omitempty"`
}

// Raw converts the command to its wire shape. It does not validate.
func (c *Command) Raw() RawCommand {
	typ := c.Type
	if typ == 0 {
		typ = ChatInput
	}
	raw := RawCommand{
		Name:         c.Name,
		Description:  c.Description,
		Type:         typ,
		DMPermission: c.DMAllowed,
		NSFW:         c.NSFW,
	}
	if c.DefaultMemberPermissions != nil {
		perms := strconv.FormatInt(*c.DefaultMemberPermissions, 10)
		raw.DefaultMemberPermissions = &perms
	}
	for _, opt := range c.Options {
		raw.Options = append(raw.Options, opt.raw())
	}
	return raw
}

// MarshalJSON encodes the wire shape.
func (c *Command) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Raw())
}
