package gateway

import (
	"context"
	"encoding/json"

	"github.com/Traijan1/emote-counter/internal/models"
)

// Inbound event types delivered by the platform gateway.
const (
	EventReady          = "READY"
	EventMessageCreate  = "MESSAGE_CREATE"
	EventReactionAdd    = "MESSAGE_REACTION_ADD"
	EventReactionRemove = "MESSAGE_REACTION_REMOVE"
	EventInteraction    = "INTERACTION_CREATE"
)

// Event is the gateway wire envelope.
type Event struct {
	Type string          `json:"t"`
	Data json.RawMessage `json:"d"`
}

// MessagePosted is delivered for every message in a subscribed guild,
// together with the guild's current emote catalog.
type MessagePosted struct {
	Content     string         `json:"content"`
	ChannelID   string         `json:"channel_id"`
	AuthorIsBot bool           `json:"author_is_bot"`
	GuildEmotes []models.Emote `json:"guild_emote_catalog"`
}

// ReactionAdded is delivered for every reaction applied to a message.
// EmoteID is empty for unicode reactions such as the navigation arrows.
type ReactionAdded struct {
	EmoteID    string `json:"emote_id"`
	EmoteName  string `json:"display_name"`
	MessageID  string `json:"message_id"`
	ChannelID  string `json:"channel_id"`
	UserID     string `json:"user_id"`
	ActorIsBot bool   `json:"actor_is_bot"`
}

// ReactionRemoved is delivered when a reaction is withdrawn.
type ReactionRemoved struct {
	EmoteID   string `json:"emote_id"`
	EmoteName string `json:"display_name"`
}

// InteractionCreated is delivered when a user invokes a slash command.
type InteractionCreated struct {
	ID        string            `json:"id"`
	ChannelID string            `json:"channel_id"`
	Command   string            `json:"command"`
	Options   map[string]string `json:"options"`
}

// EventHandler receives decoded gateway events. Each invocation runs on its
// own goroutine; handlers must be safe for concurrent use.
type EventHandler interface {
	OnMessagePosted(ctx context.Context, ev MessagePosted)
	OnReactionAdded(ctx context.Context, ev ReactionAdded)
	OnReactionRemoved(ctx context.Context, ev ReactionRemoved)
	OnInteractionCreated(ctx context.Context, ev InteractionCreated)
}
