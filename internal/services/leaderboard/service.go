package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Traijan1/emote-counter/internal/models"
)

const DefaultPageSize = 25

// Counter is the aggregation read the leaderboard is derived from.
type Counter interface {
	CountByEmote(ctx context.Context) (map[string]int64, error)
}

// Service derives the ranked leaderboard from the usage aggregation and
// renders fixed-size pages of it.
type Service struct {
	store    Counter
	pageSize int
}

func NewService(store Counter, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{store: store, pageSize: pageSize}
}

func (s *Service) PageSize() int {
	return s.pageSize
}

// Ranking returns every tracked emote ordered by count descending. Ties are
// broken by display name so repeated reads render identically.
func (s *Service) Ranking(ctx context.Context) ([]models.RankedEntry, error) {
	counts, err := s.store.CountByEmote(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build ranking: %w", err)
	}

	entries := make([]models.RankedEntry, 0, len(counts))
	for key, count := range counts {
		entries = append(entries, models.RankedEntry{
			Display: models.DisplayName(key),
			Count:   count,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Display < entries[j].Display
	})

	return entries, nil
}

// RenderPage formats one zero-based page of the ranking as "<display> => <count>"
// lines. An empty string means the page is past the end; callers use that as
// the "no such page" signal.
func (s *Service) RenderPage(ctx context.Context, page int) (string, error) {
	if page < 0 {
		return "", nil
	}

	entries, err := s.Ranking(ctx)
	if err != nil {
		return "", err
	}

	start := page * s.pageSize
	if start >= len(entries) {
		return "", nil
	}

	end := start + s.pageSize
	if end > len(entries) {
		end = len(entries)
	}

	var b strings.Builder
	for _, entry := range entries[start:end] {
		fmt.Fprintf(&b, "%s => %d\n", entry.Display, entry.Count)
	}

	return b.String(), nil
}
