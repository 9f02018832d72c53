package commands

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// ErrInvalidCommand wraps every validation failure.
var ErrInvalidCommand = errors.New("invalid command")

const (
	maxOptions     = 25
	maxChoices     = 25
	maxDescription = 100
	maxChoiceName  = 100
	maxStringValue = 6000
)

var namePattern = regexp.MustCompile(`^[-_\p{L}\p{N}\p{Devanagari}\p{Thai}]{1,32}$`)

func invalid(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidCommand, path, fmt.Sprintf(format, args...))
}

// Validate checks the command against the platform's registration rules.
func (c *Command) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil command", ErrInvalidCommand)
	}
	path := c.Name
	if path == "" {
		path = "<unnamed>"
	}

	switch c.Type {
	case ChatInput, 0:
		if err := validateName(path, c.Name); err != nil {
			return err
		}
		if err := validateDescription(path, c.Description); err != nil {
			return err
		}
		return validateTopLevel(path, c.Options)

	case User, Message:
		if n := utf8.RuneCountInString(c.Name); n < 1 || n > 32 {
			return invalid(path, "context menu name must be 1-32 characters")
		}
		if c.Description != "" {
			return invalid(path, "context menu commands have no description")
		}
		if len(c.Options) > 0 {
			return invalid(path, "context menu commands have no options")
		}
		return nil

	default:
		return invalid(path, "unknown command type %d", c.Type)
	}
}

func validateName(path, name string) error {
	if !namePattern.MatchString(name) {
		return invalid(path, "name %q must be 1-32 letters, digits, - or _", name)
	}
	if strings.ToLower(name) != name {
		return invalid(path, "name %q must be lowercase", name)
	}
	return nil
}

func validateDescription(path, desc string) error {
	if n := utf8.RuneCountInString(desc); n < 1 || n > maxDescription {
		return invalid(path, "description must be 1-%d characters", maxDescription)
	}
	return nil
}

// validateTopLevel enforces that subcommands and leaf options are not mixed.
func validateTopLevel(path string, opts []Option) error {
	if len(opts) > maxOptions {
		return invalid(path, "at most %d options", maxOptions)
	}
	var nested, leaves int
	seen := make(map[string]bool, len(opts))
	var leafOpts []LeafOption
	for _, opt := range opts {
		if opt == nil {
			return invalid(path, "nil option")
		}
		if seen[opt.OptionName()] {
			return invalid(path, "duplicate option %q", opt.OptionName())
		}
		seen[opt.OptionName()] = true

		switch o := opt.(type) {
		case *SubcommandGroupOption:
			nested++
			if err := validateGroup(path+"/"+o.Name, o); err != nil {
				return err
			}
		case *SubcommandOption:
			nested++
			if err := validateSubcommand(path+"/"+o.Name, o); err != nil {
				return err
			}
		case LeafOption:
			leaves++
			leafOpts = append(leafOpts, o)
		}
	}
	if nested > 0 && leaves > 0 {
		return invalid(path, "subcommands cannot be mixed with other options")
	}
	return validateLeaves(path, leafOpts)
}

func validateGroup(path string, g *SubcommandGroupOption) error {
	if err := validateName(path, g.Name); err != nil {
		return err
	}
	if err := validateDescription(path, g.Description); err != nil {
		return err
	}
	if len(g.Subcommands) == 0 {
		return invalid(path, "subcommand group needs at least one subcommand")
	}
	if len(g.Subcommands) > maxOptions {
		return invalid(path, "at most %d subcommands", maxOptions)
	}
	seen := make(map[string]bool, len(g.Subcommands))
	for _, sub := range g.Subcommands {
		if sub == nil {
			return invalid(path, "nil subcommand")
		}
		if seen[sub.Name] {
			return invalid(path, "duplicate subcommand %q", sub.Name)
		}
		seen[sub.Name] = true
		if err := validateSubcommand(path+"/"+sub.Name, sub); err != nil {
			return err
		}
	}
	return nil
}

func validateSubcommand(path string, s *SubcommandOption) error {
	if err := validateName(path, s.Name); err != nil {
		return err
	}
	if err := validateDescription(path, s.Description); err != nil {
		return err
	}
	if len(s.Options) > maxOptions {
		return invalid(path, "at most %d options", maxOptions)
	}
	seen := make(map[string]bool, len(s.Options))
	for _, opt := range s.Options {
		if opt == nil {
			return invalid(path, "nil option")
		}
		if seen[opt.OptionName()] {
			return invalid(path, "duplicate option %q", opt.OptionName())
		}
		seen[opt.OptionName()] = true
	}
	return validateLeaves(path, s.Options)
}

// validateLeaves checks each leaf and that required options come first.
func validateLeaves(path string, opts []LeafOption) error {
	optionalSeen := false
	for _, opt := range opts {
		p := path + "/" + opt.OptionName()
		if err := validateName(p, opt.OptionName()); err != nil {
			return err
		}
		r := opt.raw()
		if err := validateDescription(p, r.Description); err != nil {
			return err
		}
		if r.Required && optionalSeen {
			return invalid(p, "required options must precede optional ones")
		}
		if !r.Required {
			optionalSeen = true
		}
		if err := validateLeaf(p, opt); err != nil {
			return err
		}
	}
	return nil
}

func validateLeaf(path string, opt LeafOption) error {
	switch o := opt.(type) {
	case *StringOption:
		if err := validateChoices(path, o.Choices, o.Autocomplete, discordgo.ApplicationCommandOptionString); err != nil {
			return err
		}
		if o.MinLength != nil && (*o.MinLength < 0 || *o.MinLength > maxStringValue) {
			return invalid(path, "min_length must be 0-%d", maxStringValue)
		}
		if o.MaxLength != nil && (*o.MaxLength < 1 || *o.MaxLength > maxStringValue) {
			return invalid(path, "max_length must be 1-%d", maxStringValue)
		}
		if o.MinLength != nil && o.MaxLength != nil && *o.MinLength > *o.MaxLength {
			return invalid(path, "min_length exceeds max_length")
		}
	case *IntegerOption:
		if err := validateChoices(path, o.Choices, o.Autocomplete, discordgo.ApplicationCommandOptionInteger); err != nil {
			return err
		}
		if o.MinValue != nil && o.MaxValue != nil && *o.MinValue > *o.MaxValue {
			return invalid(path, "min_value exceeds max_value")
		}
	case *NumberOption:
		if err := validateChoices(path, o.Choices, o.Autocomplete, discordgo.ApplicationCommandOptionNumber); err != nil {
			return err
		}
		if o.MinValue != nil && o.MaxValue != nil && *o.MinValue > *o.MaxValue {
			return invalid(path, "min_value exceeds max_value")
		}
	}
	return nil
}

func validateChoices(path string, choices []Choice, autocomplete bool, typ discordgo.ApplicationCommandOptionType) error {
	if len(choices) > 0 && autocomplete {
		return invalid(path, "choices and autocomplete are mutually exclusive")
	}
	if len(choices) > maxChoices {
		return invalid(path, "at most %d choices", maxChoices)
	}
	for _, ch := range choices {
		if n := utf8.RuneCountInString(ch.Name); n < 1 || n > maxChoiceName {
			return invalid(path, "choice name must be 1-%d characters", maxChoiceName)
		}
		if !choiceValueMatches(ch.Value, typ) {
			return invalid(path, "choice %q has a %T value", ch.Name, ch.Value)
		}
	}
	return nil
}

func choiceValueMatches(v any, typ discordgo.ApplicationCommandOptionType) bool {
	switch typ {
	case discordgo.ApplicationCommandOptionString:
		_, ok := v.(string)
		return ok
	case discordgo.ApplicationCommandOptionInteger:
		switch n := v.(type) {
		case int, int8, int16, int32, int64, uint8, uint16, uint32:
			return true
		case float64:
			return n == math.Trunc(n)
		}
		return false
	case discordgo.ApplicationCommandOptionNumber:
		switch v.(type) {
		case int, int8, int16, int32, int64, uint8, uint16, uint32, float32, float64:
			return true
		}
		return false
	}
	return false
}
