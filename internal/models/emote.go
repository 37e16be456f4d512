package models

import (
	"fmt"
	"strings"
	"time"
)

// Emote is a guild-defined custom emote: a stable numeric ID plus a
// mutable display name.
type Emote struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Canonical returns the platform rendering of the emote, e.g. "<:pog:42>".
// The canonical key is the unit of identity for usage tracking: two usage
// events refer to the same tracked entity iff their canonical keys are equal,
// so a rename of the same ID produces a distinct entity.
func (e Emote) Canonical() string {
	return Canonical(e.ID, e.Name)
}

func Canonical(emoteID int64, name string) string {
	return fmt.Sprintf("<:%s:%d>", name, emoteID)
}

// DisplayName extracts the human-readable name from a canonical key.
// Keys that don't look like a canonical rendering are returned as-is.
func DisplayName(canonicalKey string) string {
	if strings.HasPrefix(canonicalKey, "<:") && strings.HasSuffix(canonicalKey, ">") {
		inner := canonicalKey[2 : len(canonicalKey)-1]
		if idx := strings.LastIndex(inner, ":"); idx > 0 {
			return inner[:idx]
		}
	}
	return canonicalKey
}

// UsageEvent is one recorded occurrence of an emote, either typed in a
// message or applied as a reaction. Rows are append-only; counting is
// aggregation over canonical keys.
type UsageEvent struct {
	ID           int64     `json:"id" db:"id"`
	CanonicalKey string    `json:"canonicalKey" db:"emote_id"`
	GuildID      string    `json:"guildId,omitempty" db:"guild_id"`
	OccurredAt   time.Time `json:"occurredAt" db:"date"`
}

// RankedEntry is one row of the usage leaderboard, derived at read time.
type RankedEntry struct {
	Display string `json:"display"`
	Count   int64  `json:"count"`
}
