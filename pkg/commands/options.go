package commands

import (
	"github.com/bwmarrin/discordgo"
)

// Option is one of the eleven option variants below. The set is closed.
type Option interface {
	OptionName() string
	OptionType() discordgo.ApplicationCommandOptionType
	raw() RawOption
}

// LeafOption is any option that is not a subcommand or subcommand group.
// Subcommands may only contain leaf options.
type LeafOption interface {
	Option
	leaf()
}

// Choice is a fixed value offered for a string, integer or number option.
type Choice struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// SubcommandOption groups leaf options under a subcommand.
type SubcommandOption struct {
	Name        string
	Description string
	Options     []LeafOption
}

// SubcommandGroupOption groups subcommands.
type SubcommandGroupOption struct {
	Name        string
	Description string
	Subcommands []*SubcommandOption
}

// StringOption accepts text.
type StringOption struct {
	Name         string
	Description  string
	Required     bool
	Choices      []Choice
	Autocomplete bool
	MinLength    *int
	MaxLength    *int
}

// IntegerOption accepts whole numbers.
type IntegerOption struct {
	Name         string
	Description  string
	Required     bool
	Choices      []Choice
	Autocomplete bool
	MinValue     *int64
	MaxValue     *int64
}

// NumberOption accepts floating-point numbers.
type NumberOption struct {
	Name         string
	Description  string
	Required     bool
	Choices      []Choice
	Autocomplete bool
	MinValue     *float64
	MaxValue     *float64
}

// BooleanOption accepts true or false.
type BooleanOption struct {
	Name        string
	Description string
	Required    bool
}

// UserOption accepts a user.
type UserOption struct {
	Name        string
	Description string
	Required    bool
}

// ChannelOption accepts a channel, optionally restricted to ChannelTypes.
type ChannelOption struct {
	Name         string
	Description  string
	Required     bool
	ChannelTypes []discordgo.ChannelType
}

// RoleOption accepts a role.
type RoleOption struct {
	Name        string
	Description string
	Required    bool
}

// MentionableOption accepts a user or a role.
type MentionableOption struct {
	Name        string
	Description string
	Required    bool
}

// AttachmentOption accepts an uploaded file.
type AttachmentOption struct {
	Name        string
	Description string
	Required    bool
}

func (o *SubcommandOption) OptionName() string      { return o.Name }
func (o *SubcommandGroupOption) OptionName() string { return o.Name }
func (o *StringOption) OptionName() string          { return o.Name }
func (o *IntegerOption) OptionName() string         { return o.Name }
func (o *NumberOption) OptionName() string          { return o.Name }
func (o *BooleanOption) OptionName() string         { return o.Name }
func (o *UserOption) OptionName() string            { return o.Name }
func (o *ChannelOption) OptionName() string         { return o.Name }
func (o *RoleOption) OptionName() string            { return o.Name }
func (o *MentionableOption) OptionName() string     { return o.Name }
func (o *AttachmentOption) OptionName() string      { return o.Name }

func (o *SubcommandOption) OptionType() discordgo.ApplicationCommandOptionType {
	return discordgo.ApplicationCommandOptionSubCommand
}

func (o *SubcommandGroupOption) OptionType() discordgo.ApplicationCommandOptionType {
	return discordgo.ApplicationCommandOptionSubCommandGroup
}

func (o *StringOption) OptionType() discordgo.ApplicationCommandOptionType {
	return discordgo.ApplicationCommandOptionString
}

func (o *IntegerOption) OptionType() discordgo.ApplicationCommandOptionType {
	return discordgo.ApplicationCommandOptionInteger
}

func (o *NumberOption) OptionType() discordgo.ApplicationCommandOptionType {
	return discordgo.ApplicationCommandOptionNumber
}

func (o *BooleanOption) OptionType() discordgo.ApplicationCommandOptionType {
	return discordgo.ApplicationCommandOptionBoolean
}

func (o *UserOption) OptionType() discordgo.ApplicationCommandOptionType {
	return discordgo.ApplicationCommandOptionUser
}

func (o *ChannelOption) OptionType() discordgo.ApplicationCommandOptionType {
	return discordgo.ApplicationCommandOptionChannel
}

func (o *RoleOption) OptionType() discordgo.ApplicationCommandOptionType {
	return discordgo.ApplicationCommandOptionRole
}

func (o *MentionableOption) OptionType() discordgo.ApplicationCommandOptionType {
	return discordgo.ApplicationCommandOptionMentionable
}

func (o *AttachmentOption) OptionType() discordgo.ApplicationCommandOptionType {
	return discordgo.ApplicationCommandOptionAttachment
}

func (*StringOption) leaf()      {}
func (*IntegerOption) leaf()     {}
func (*NumberOption) leaf()      {}
func (*BooleanOption) leaf()     {}
func (*UserOption) leaf()        {}
func (*ChannelOption) leaf()     {}
func (*RoleOption) leaf()        {}
func (*MentionableOption) leaf() {}
func (*AttachmentOption) leaf()  {}

func (o *SubcommandOption) raw() RawOption {
	r := RawOption{Type: o.OptionType(), Name: o.Name, Description: o.Description}
	for _, child := range o.Options {
		r.Options = append(r.Options, child.raw())
	}
	return r
}

func (o *SubcommandGroupOption) raw() RawOption {
	r := RawOption{Type: o.OptionType(), Name: o.Name, Description: o.Description}
	for _, sub := range o.Subcommands {
		r.Options = append(r.Options, sub.raw())
	}
	return r
}

func (o *StringOption) raw() RawOption {
	return RawOption{
		Type:         o.OptionType(),
		Name:         o.Name,
		Description:  o.Description,
		Required:     o.Required,
		Choices:      o.Choices,
		Autocomplete: o.Autocomplete,
		MinLength:    o.MinLength,
		MaxLength:    o.MaxLength,
	}
}

func (o *IntegerOption) raw() RawOption {
	return RawOption{
		Type:         o.OptionType(),
		Name:         o.Name,
		Description:  o.Description,
		Required:     o.Required,
		Choices:      o.Choices,
		Autocomplete: o.Autocomplete,
		MinValue:     intBound(o.MinValue),
		MaxValue:     intBound(o.MaxValue),
	}
}

func (o *NumberOption) raw() RawOption {
	return RawOption{
		Type:         o.OptionType(),
		Name:         o.Name,
		Description:  o.Description,
		Required:     o.Required,
		Choices:      o.Choices,
		Autocomplete: o.Autocomplete,
		MinValue:     o.MinValue,
		MaxValue:     o.MaxValue,
	}
}

func (o *BooleanOption) raw() RawOption {
	return RawOption{Type: o.OptionType(), Name: o.Name, Description: o.Description, Required: o.Required}
}

func (o *UserOption) raw() RawOption {
	return RawOption{Type: o.OptionType(), Name: o.Name, Description: o.Description, Required: o.Required}
}

func (o *ChannelOption) raw() RawOption {
	return RawOption{
		Type:         o.OptionType(),
		Name:         o.Name,
		Description:  o.Description,
		Required:     o.Required,
		ChannelTypes: o.ChannelTypes,
	}
}

func (o *RoleOption) raw() RawOption {
	return RawOption{Type: o.OptionType(), Name: o.Name, Description: o.Description, Required: o.Required}
}

func (o *MentionableOption) raw() RawOption {
	return RawOption{Type: o.OptionType(), Name: o.Name, Description: o.Description, Required: o.Required}
}

func (o *AttachmentOption) raw() RawOption {
	return RawOption{Type: o.OptionType(), Name: o.Name, Description: o.Description, Required: o.Required}
}

func intBound(v *int64) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

// Ptr returns a pointer to v, for the optional bounds above.
func Ptr[T any](v T) *T {
	return &v
}
