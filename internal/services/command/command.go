package command

import (
	"errors"
	"time"

	"github.com/Traijan1/emote-counter/internal/gateway"
)

// Kind is the closed set of supported slash commands.
type Kind int

const (
	KindUnknown Kind = iota
	KindCountEmote
	KindCountAllEmotes
	KindCountFrom
)

const (
	NameCountEmote     = "count_emote"
	NameCountAllEmotes = "count_all_emotes"
	NameCountFrom      = "count_emote_from"

	// Date option format for count_emote_from, e.g. "24.12.2023".
	dateLayout = "02.01.2006"
)

var (
	ErrMissingOption = errors.New("missing command option")
	ErrBadDate       = errors.New("invalid date option")
)

// Command is a parsed slash command with its typed arguments.
type Command struct {
	Kind  Kind
	Emote string
	From  time.Time
}

// Parse maps an interaction payload to a Command. Unknown names yield
// KindUnknown rather than an error; missing or malformed options do error.
func Parse(name string, options map[string]string) (Command, error) {
	switch name {
	case NameCountEmote:
		emote := options["emote"]
		if emote == "" {
			return Command{}, ErrMissingOption
		}
		return Command{Kind: KindCountEmote, Emote: emote}, nil

	case NameCountAllEmotes:
		return Command{Kind: KindCountAllEmotes}, nil

	case NameCountFrom:
		emote := options["emote"]
		if emote == "" {
			return Command{}, ErrMissingOption
		}
		from, err := time.Parse(dateLayout, options["start_date"])
		if err != nil {
			return Command{}, ErrBadDate
		}
		return Command{Kind: KindCountFrom, Emote: emote, From: from}, nil

	default:
		return Command{Kind: KindUnknown}, nil
	}
}

// Definitions returns the slash-command registration payloads.
func Definitions() []gateway.CommandDefinition {
	return []gateway.CommandDefinition{
		{
			Name:        NameCountEmote,
			Description: "Get the count of a specified emote",
			Options: []gateway.CommandOption{
				{Name: "emote", Description: "The emote you want the count of", Type: gateway.OptionTypeString, Required: true},
			},
		},
		{
			Name:        NameCountAllEmotes,
			Description: "Get the count of all emotes",
		},
		{
			Name:        NameCountFrom,
			Description: "Get the count of an emote from a certain date",
			Options: []gateway.CommandOption{
				{Name: "emote", Description: "The emote you want the count of", Type: gateway.OptionTypeString, Required: true},
				{Name: "start_date", Description: "The start date in format dd.mm.yyyy", Type: gateway.OptionTypeString, Required: true},
			},
		},
	}
}
