package interaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"interactbot/pkg/guard"
	"interactbot/pkg/logger"
)

// ErrMalformed is returned for bodies that are not a valid interaction.
var ErrMalformed = errors.New("malformed interaction")

type wireInteraction struct {
	ID             string                    `json:"id"`
	ApplicationID  string                    `json:"application_id"`
	Type           discordgo.InteractionType `json:"type"`
	Data           json.RawMessage           `json:"data"`
	GuildID        string                    `json:"guild_id"`
	ChannelID      string                    `json:"channel_id"`
	Channel        *discordgo.Channel        `json:"channel"`
	Member         *discordgo.Member         `json:"member"`
	User           *discordgo.User           `json:"user"`
	Token          string                    `json:"token"`
	Version        int                       `json:"version"`
	Message        *MessageRef               `json:"message"`
	AppPermissions string                    `json:"app_permissions"`
	Locale         string                    `json:"locale"`
	GuildLocale    string                    `json:"guild_locale"`
}

// Decoder turns verified request bodies into interactions bound to responders.
type Decoder struct {
	sender Sender
	guard  guard.Guard
	log    *logger.Logger
}

// NewDecoder creates a decoder. A nil guard grants every claim.
func NewDecoder(sender Sender, g guard.Guard, log *logger.Logger) *Decoder {
	if g == nil {
		g = guard.Nop{}
	}
	return &Decoder{sender: sender, guard: g, log: log}
}

// WithLogger returns a copy of d that logs to log, typically a request-scoped logger.
func (d *Decoder) WithLogger(log *logger.Logger) *Decoder {
	cp := *d
	cp.log = log
	return &cp
}

// Decode classifies body by its type field. Unknown types decode to *Base
// and are logged as anomalies.
//
// Only the type field must be well formed for pings and unknown types. Shared
// fields of the wrong JSON type are then dropped instead of failing the decode.
func (d *Decoder) Decode(body []byte) (Interaction, error) {
	var head struct {
		Type discordgo.InteractionType `json:"type"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var w wireInteraction
	if err := json.Unmarshal(body, &w); err != nil {
		if knownType(head.Type) && head.Type != discordgo.InteractionPing {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		d.log.Debug("Ignoring malformed interaction fields",
			zap.Int("type", int(head.Type)),
			zap.Error(err))
		w = wireInteraction{Type: head.Type}
	}

	base := Base{
		ID:            w.ID,
		ApplicationID: w.ApplicationID,
		Type:          w.Type,
		Token:         w.Token,
		Version:       w.Version,
		GuildID:       w.GuildID,
		ChannelID:     w.ChannelID,
		Channel:       w.Channel,
		Member:        w.Member,
		User:          w.User,
		Locale:        w.Locale,
		GuildLocale:   w.GuildLocale,
		Raw:           json.RawMessage(body),
	}
	if base.ChannelID == "" && w.Channel != nil {
		base.ChannelID = w.Channel.ID
	}
	if w.AppPermissions != "" {
		if perms, err := strconv.ParseInt(w.AppPermissions, 10, 64); err == nil {
			base.AppPermissions = perms
		}
	}

	log := d.log.WithFields(
		zap.String("interaction_id", w.ID),
		zap.String("interaction_type", TypeName(w.Type)),
	)

	switch w.Type {
	case discordgo.InteractionPing:
		return &Ping{Base: base}, nil

	case discordgo.InteractionApplicationCommand:
		data, err := decodeCommandData(w.Data)
		if err != nil {
			return nil, err
		}
		if data.Type != discordgo.ChatApplicationCommand && !data.IsContextMenu() {
			log.Warn("Unknown command type", zap.Int("command_type", int(data.Type)))
		}
		return &Command{
			Base:           base,
			Data:           data,
			ModalResponder: &ModalResponder{Responder: d.responder(log, w)},
		}, nil

	case discordgo.InteractionApplicationCommandAutocomplete:
		data, err := decodeCommandData(w.Data)
		if err != nil {
			return nil, err
		}
		return &Autocomplete{
			Base:            base,
			Data:            data,
			ChoiceResponder: &ChoiceResponder{core: d.core(log, w)},
		}, nil

	case discordgo.InteractionMessageComponent:
		var data ComponentData
		if err := decodeData(w.Data, &data); err != nil {
			return nil, err
		}
		if !knownComponentType(data.ComponentType) {
			log.Warn("Unknown component type", zap.Int("component_type", int(data.ComponentType)))
		}
		return &Component{
			Base:    base,
			Data:    &data,
			Message: w.Message,
			ComponentResponder: &ComponentResponder{
				ModalResponder: &ModalResponder{Responder: d.responder(log, w)},
			},
		}, nil

	case discordgo.InteractionModalSubmit:
		var data ModalSubmitData
		if err := decodeData(w.Data, &data); err != nil {
			return nil, err
		}
		return &ModalSubmit{
			Base:      base,
			Data:      &data,
			Message:   w.Message,
			Responder: d.responder(log, w),
		}, nil

	default:
		log.Warn("Unknown interaction type", zap.Int("type", int(w.Type)))
		return &base, nil
	}
}

func (d *Decoder) core(log *logger.Logger, w wireInteraction) *core {
	return newCore(d.sender, d.guard, log, w.ID, w.Token)
}

func (d *Decoder) responder(log *logger.Logger, w wireInteraction) *Responder {
	return &Responder{core: d.core(log, w)}
}

func decodeCommandData(raw json.RawMessage) (*CommandData, error) {
	var data CommandData
	if err := decodeData(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("%w: missing data", ErrMalformed)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: data: %v", ErrMalformed, err)
	}
	return nil
}

func knownType(t discordgo.InteractionType) bool {
	return TypeName(t) != "unknown"
}
