package bot

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/Traijan1/emote-counter/internal/gateway"
	"github.com/Traijan1/emote-counter/internal/services/command"
	"github.com/Traijan1/emote-counter/internal/services/leaderboard"
	"github.com/Traijan1/emote-counter/internal/services/usage"
)

// Responder is the platform client surface the event handler needs.
type Responder interface {
	RespondToInteraction(ctx context.Context, interactionID, content string) (string, error)
	React(ctx context.Context, channelID, messageID, emote string) error
}

// Handler routes gateway events to the ingestion, pagination, and command
// layers. Navigation-arrow reactions are paging input and never reach the
// usage ingester.
type Handler struct {
	ingester   *usage.Ingester
	pager      *leaderboard.Pager
	dispatcher *command.Dispatcher
	client     Responder
}

func NewHandler(ingester *usage.Ingester, pager *leaderboard.Pager, dispatcher *command.Dispatcher, client Responder) *Handler {
	return &Handler{
		ingester:   ingester,
		pager:      pager,
		dispatcher: dispatcher,
		client:     client,
	}
}

func (h *Handler) OnMessagePosted(ctx context.Context, ev gateway.MessagePosted) {
	if ev.AuthorIsBot {
		return
	}

	h.ingester.OnMessagePosted(ctx, ev.Content, ev.GuildEmotes)
}

func (h *Handler) OnReactionAdded(ctx context.Context, ev gateway.ReactionAdded) {
	if leaderboard.IsNavigation(ev.EmoteName) {
		h.pager.HandleNavigation(ctx, ev.ChannelID, ev.MessageID, ev.UserID, ev.EmoteName, ev.ActorIsBot)
		return
	}

	emoteID, err := strconv.ParseInt(ev.EmoteID, 10, 64)
	if err != nil {
		log.Warn().Str("emoteId", ev.EmoteID).Str("name", ev.EmoteName).Msg("Skipping unparseable reaction")
		return
	}

	h.ingester.OnReactionAdded(ctx, emoteID, ev.EmoteName)
}

func (h *Handler) OnReactionRemoved(ctx context.Context, ev gateway.ReactionRemoved) {
	if leaderboard.IsNavigation(ev.EmoteName) {
		return
	}

	emoteID, err := strconv.ParseInt(ev.EmoteID, 10, 64)
	if err != nil {
		log.Warn().Str("emoteId", ev.EmoteID).Str("name", ev.EmoteName).Msg("Skipping unparseable reaction")
		return
	}

	h.ingester.OnReactionRemoved(ctx, emoteID, ev.EmoteName)
}

func (h *Handler) OnInteractionCreated(ctx context.Context, ev gateway.InteractionCreated) {
	cmd, err := command.Parse(ev.Command, ev.Options)
	if err != nil {
		log.Warn().Err(err).Str("command", ev.Command).Msg("Rejecting malformed command")
		if _, err := h.client.RespondToInteraction(ctx, ev.ID, "Invalid command input"); err != nil {
			log.Error().Err(err).Msg("Cannot respond to slash command")
		}
		return
	}

	content := h.dispatcher.Execute(ctx, cmd)

	messageID, err := h.client.RespondToInteraction(ctx, ev.ID, content)
	if err != nil {
		log.Error().Err(err).Str("command", ev.Command).Msg("Cannot respond to slash command")
		return
	}

	// The leaderboard reply carries its own paging controls.
	if cmd.Kind == command.KindCountAllEmotes {
		h.pager.Track(messageID)

		for _, arrow := range []string{leaderboard.BackReaction, leaderboard.ForwardReaction} {
			if err := h.client.React(ctx, ev.ChannelID, messageID, arrow); err != nil {
				log.Error().Err(err).Str("messageId", messageID).Msg("Failed to attach navigation reaction")
			}
		}
	}
}
