package command

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Reader is the subset of the usage store the commands read from.
type Reader interface {
	CountFor(ctx context.Context, query string) (int64, error)
	CountSince(ctx context.Context, query string, from time.Time) (int64, error)
}

// Renderer produces leaderboard pages.
type Renderer interface {
	RenderPage(ctx context.Context, page int) (string, error)
}

// Dispatcher executes parsed commands. Read failures degrade to a zero or
// empty answer; the user never sees a raw error.
type Dispatcher struct {
	store Reader
	view  Renderer
}

func NewDispatcher(store Reader, view Renderer) *Dispatcher {
	return &Dispatcher{store: store, view: view}
}

func (d *Dispatcher) Execute(ctx context.Context, cmd Command) string {
	switch cmd.Kind {
	case KindCountEmote:
		count, err := d.store.CountFor(ctx, cmd.Emote)
		if err != nil {
			log.Error().Err(err).Str("emote", cmd.Emote).Msg("Failed to count emote")
			count = 0
		}
		return fmt.Sprintf("Count of %s is: %d", cmd.Emote, count)

	case KindCountAllEmotes:
		content, err := d.view.RenderPage(ctx, 0)
		if err != nil {
			log.Error().Err(err).Msg("Failed to render leaderboard")
			return ""
		}
		return content

	case KindCountFrom:
		count, err := d.store.CountSince(ctx, cmd.Emote, cmd.From)
		if err != nil {
			log.Error().Err(err).Str("emote", cmd.Emote).Msg("Failed to count emote since date")
			count = 0
		}
		return fmt.Sprintf("Count of %s is: %d", cmd.Emote, count)

	case KindUnknown:
		return "This command does not exist"

	default:
		return "This command does not exist"
	}
}
