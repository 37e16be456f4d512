package usage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Traijan1/emote-counter/internal/models"
)

var (
	ErrInvalidInput = errors.New("invalid emote input")
	ErrNoOccurrence = errors.New("no matching occurrence")
)

// Store is the append-only usage event log. One row per occurrence; counts
// are aggregation, never a counter column. Removal deletes exactly one row,
// the most recently inserted match.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the usage table if it doesn't exist yet. The guild_id
// column is reserved for per-guild partitioning and always left empty.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS emote_usage (
			id BIGSERIAL PRIMARY KEY,
			emote_id TEXT NOT NULL,
			guild_id TEXT NOT NULL DEFAULT '',
			date BIGINT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create emote_usage table: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS idx_emote_usage_emote_id ON emote_usage (emote_id)`)
	if err != nil {
		return fmt.Errorf("failed to create emote_usage index: %w", err)
	}

	return nil
}

// RecordOccurrence appends one usage event for the emote. The emote_id
// column stores the canonical rendering, so a renamed emote counts as a new
// tracked entity.
func (s *Store) RecordOccurrence(ctx context.Context, emoteID int64, name string) error {
	if emoteID <= 0 || strings.TrimSpace(name) == "" {
		return ErrInvalidInput
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO emote_usage (emote_id, guild_id, date) VALUES ($1, '', $2)`,
		models.Canonical(emoteID, name), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record occurrence: %w", err)
	}

	return nil
}

// RemoveOneOccurrence deletes the most recently inserted row matching the
// emote's canonical key. Returns ErrNoOccurrence when nothing matches;
// callers may treat that as benign.
func (s *Store) RemoveOneOccurrence(ctx context.Context, emoteID int64, name string) error {
	if emoteID <= 0 || strings.TrimSpace(name) == "" {
		return ErrInvalidInput
	}

	tag, err := s.db.Exec(ctx, `
		DELETE FROM emote_usage WHERE id = (
			SELECT id FROM emote_usage
			WHERE emote_id LIKE '%' || $1 || '%'
			ORDER BY id DESC
			LIMIT 1
		)`,
		models.Canonical(emoteID, name),
	)
	if err != nil {
		return fmt.Errorf("failed to remove occurrence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoOccurrence
	}

	return nil
}

// CountByEmote returns the number of recorded occurrences per canonical key.
// A single aggregation query, so the result is a consistent snapshot with
// respect to concurrent writers.
func (s *Store) CountByEmote(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.Query(ctx,
		`SELECT emote_id, COUNT(*) FROM emote_usage GROUP BY emote_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate usage: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}
		counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read usage rows: %w", err)
	}

	return counts, nil
}

// CountFor counts occurrences whose canonical key contains the query string.
// Matching is substring containment, so both a bare name and a numeric ID
// find their emote. Returns 0, not an error, when nothing matches.
func (s *Store) CountFor(ctx context.Context, query string) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM emote_usage WHERE emote_id LIKE '%' || $1 || '%'`,
		query,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count occurrences: %w", err)
	}

	return count, nil
}

// CountSince counts matching occurrences recorded at or after the given time.
func (s *Store) CountSince(ctx context.Context, query string, from time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM emote_usage WHERE emote_id LIKE '%' || $1 || '%' AND date >= $2`,
		query, from.Unix(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count occurrences: %w", err)
	}

	return count, nil
}
