package usage

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Traijan1/emote-counter/internal/models"
)

// Recorder is the subset of Store the ingester writes through.
type Recorder interface {
	RecordOccurrence(ctx context.Context, emoteID int64, name string) error
	RemoveOneOccurrence(ctx context.Context, emoteID int64, name string) error
}

// Ingester turns raw platform events into usage events. Every occurrence is
// attempted independently: a failed insert is logged and never blocks the
// rest of the batch.
type Ingester struct {
	store  Recorder
	filter *Filter
}

func NewIngester(store Recorder, filter *Filter) *Ingester {
	return &Ingester{store: store, filter: filter}
}

// OnMessagePosted records one occurrence per non-overlapping appearance of a
// known emote's canonical rendering in the message content.
func (i *Ingester) OnMessagePosted(ctx context.Context, content string, catalog []models.Emote) {
	for _, emote := range catalog {
		if !i.filter.Trackable(emote.Name) {
			continue
		}

		key := emote.Canonical()
		occurrences := strings.Count(content, key)

		for n := 0; n < occurrences; n++ {
			if err := i.store.RecordOccurrence(ctx, emote.ID, emote.Name); err != nil {
				log.Error().Err(err).Str("emote", key).Msg("Failed to record emote occurrence")
			}
		}
	}
}

// OnReactionAdded records a single occurrence for a reaction transition.
func (i *Ingester) OnReactionAdded(ctx context.Context, emoteID int64, name string) {
	if !i.filter.Trackable(name) {
		return
	}

	if err := i.store.RecordOccurrence(ctx, emoteID, name); err != nil {
		log.Error().Err(err).Str("emote", models.Canonical(emoteID, name)).Msg("Failed to record reaction")
	}
}

// OnReactionRemoved removes the most recent matching occurrence. A missing
// row is benign: the reaction may predate tracking.
func (i *Ingester) OnReactionRemoved(ctx context.Context, emoteID int64, name string) {
	if !i.filter.Trackable(name) {
		return
	}

	err := i.store.RemoveOneOccurrence(ctx, emoteID, name)
	if err != nil {
		if errors.Is(err, ErrNoOccurrence) {
			log.Debug().Str("emote", models.Canonical(emoteID, name)).Msg("No occurrence to remove")
			return
		}
		log.Error().Err(err).Str("emote", models.Canonical(emoteID, name)).Msg("Failed to remove reaction")
	}
}
